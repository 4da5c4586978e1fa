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
	"io"

	"github.com/kr/pretty"
)

// Dump renders cfg's three dispatch indices to w in a deep, readable
// %#v-style form, for tracing why a selector did or didn't fire. It is
// never called on its own initiative by Plan; a caller wires it in behind
// its own explicit debug flag.
func (cfg *ContentDeliveryConfig) Dump(w io.Writer) {
	pretty.Fprintf(w, "before: %# v\nchild: %# v\nafter: %# v\n", cfg.Before, cfg.Child, cfg.After)
}
