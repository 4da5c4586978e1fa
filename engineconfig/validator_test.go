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

package engineconfig

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestValidateNilConfigIsError(t *testing.T) {
	qt.Assert(t, qt.IsNotNil(Validate(nil)))
}

func TestValidateDefaultIsValid(t *testing.T) {
	qt.Assert(t, qt.IsNil(Validate(Default())))
}

func TestValidateRejectsNonPositivePoolSize(t *testing.T) {
	cfg := Default()
	cfg.Runtime.ReaderPoolSize = 0
	qt.Assert(t, qt.IsNotNil(Validate(cfg)))
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := Default()
	cfg.Runtime.AcquireTimeout = 0
	qt.Assert(t, qt.IsNotNil(Validate(cfg)))
}

func TestValidateRejectsEmptyClasspathRoot(t *testing.T) {
	cfg := Default()
	cfg.Extensions.ClasspathRoots = []string{""}
	qt.Assert(t, qt.IsNotNil(Validate(cfg)))
}

func TestValidateRejectsDuplicateClasspathRoot(t *testing.T) {
	cfg := Default()
	cfg.Extensions.ClasspathRoots = []string{"/a", "/a"}
	qt.Assert(t, qt.IsNotNil(Validate(cfg)))
}

func TestValidateRejectsEmptyMappingValue(t *testing.T) {
	cfg := Default()
	cfg.Extensions.Mappings = map[string]string{"https://cdrl.dev/ext/order": ""}
	qt.Assert(t, qt.IsNotNil(Validate(cfg)))
}
