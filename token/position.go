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

// Package token describes source positions within a digested CDRL
// document, so that errors and compiled selectors can be traced back to
// the file and line that produced them.
package token

import "fmt"

// Position is a printable location within a CDRL source document.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// IsValid reports whether pos carries a usable line number.
func (pos Position) IsValid() bool { return pos.Line > 0 }

// String renders pos as "file:line:column", omitting parts that are unset.
func (pos Position) String() string {
	if !pos.IsValid() {
		if pos.Filename != "" {
			return pos.Filename
		}
		return "-"
	}
	if pos.Filename == "" {
		return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
}

// NoPos is the zero value of Position; it carries no location information.
var NoPos = Position{}
