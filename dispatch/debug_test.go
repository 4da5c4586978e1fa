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

package dispatch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"cdrl.dev/go/resource"
)

func TestDumpRendersDispatchKeys(t *testing.T) {
	h := &fakeHandler{caps: BeforeVisitor, name: "order-splitter"}
	bindings := []ContentHandlerBinding{
		{Config: &resource.Config{Selector: mustCompile(t, "order")}, Handler: h},
	}
	cfg, cerr := Plan(bindings, nil, nil, nil)
	qt.Assert(t, qt.IsNil(cerr))

	var buf bytes.Buffer
	cfg.Dump(&buf)
	qt.Assert(t, qt.IsTrue(strings.Contains(buf.String(), "order")))
}
