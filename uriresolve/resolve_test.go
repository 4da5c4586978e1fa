// Copyright 2026 The CDRL Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uriresolve_test

import (
	"testing"

	qt "github.com/go-quicktest/qt"

	"cdrl.dev/go/uriresolve"
)

func TestResolveRelative(t *testing.T) {
	got, err := uriresolve.Resolve("file:///configs/a.xml", "b.xml")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "file:///configs/b.xml"))
}

func TestResolveEquivalentPathsCollide(t *testing.T) {
	a, err := uriresolve.Resolve("file:///configs/", "./sub/../a.xml")
	qt.Assert(t, qt.IsNil(err))
	b, err := uriresolve.Resolve("file:///configs/", "a.xml")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(a, b))
}

func TestParent(t *testing.T) {
	got := uriresolve.Parent("file:///configs/sub/a.xml")
	qt.Assert(t, qt.Equals(got, "file:///configs/sub/"))
}

func TestResolveEmptyRef(t *testing.T) {
	_, err := uriresolve.Resolve("file:///configs/a.xml", "")
	qt.Assert(t, qt.IsNotNil(err))
}
