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

// Package resource holds the resource-config model (components C4, C5):
// a single (selector-path, handler-descriptor, parameter-map, condition)
// unit, and the ordered, named sequence that collects them during
// digestion (spec §3).
package resource

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Parameter is one typed entry of a resource-config's parameter map.
// Parameters are semantically name -> list-of-typed-entries, with
// duplicates preserved in insertion order (spec §3, and the open
// question in spec §9 about "sax-handler" repeated params).
type Parameter struct {
	Name string
	Type string // "", "decimal", "bool"; "" means plain string
	Raw  string

	// Decimal is populated when Type == "decimal", exercising the
	// teacher's arbitrary-precision decimal the way a <param type="decimal">
	// value would (see SPEC_FULL.md Domain Stack).
	Decimal *apd.Decimal
}

// NewParameter builds a Parameter, parsing typed values eagerly so a
// malformed <param type="decimal"> fails during digestion rather than at
// first use.
func NewParameter(name, typ, raw string) (Parameter, error) {
	p := Parameter{Name: name, Type: typ, Raw: raw}
	if typ == "decimal" {
		d, _, err := apd.NewFromString(raw)
		if err != nil {
			return Parameter{}, fmt.Errorf("resource: param %q: invalid decimal %q: %w", name, raw, err)
		}
		p.Decimal = d
	}
	return p, nil
}

// ParameterMap is the insertion-ordered, duplicate-preserving parameter
// collection of a single ResourceConfig.
type ParameterMap struct {
	entries []Parameter
}

// Add appends p, preserving any prior entry with the same name.
func (m *ParameterMap) Add(p Parameter) {
	m.entries = append(m.entries, p)
}

// All returns every parameter with the given name, in insertion order.
func (m *ParameterMap) All(name string) []Parameter {
	var out []Parameter
	for _, e := range m.entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// First returns the first parameter with the given name.
func (m *ParameterMap) First(name string) (Parameter, bool) {
	for _, e := range m.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Parameter{}, false
}

// Entries returns every parameter in insertion order, duplicates intact.
func (m *ParameterMap) Entries() []Parameter {
	return append([]Parameter(nil), m.entries...)
}

// RepeatedParam returns the raw string values of every parameter with
// the given name, in insertion order. It is used for the <reader>
// element's repeated "sax-handler" parameters (spec §4.3, §9): do not
// dedupe.
func (m *ParameterMap) RepeatedParam(name string) []string {
	all := m.All(name)
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Raw
	}
	return out
}

// BoolParam returns the boolean value ("true" or "1") of the first
// parameter with the given name. The <reader> element's
// "feature-on"/"feature-off" parameters hold feature names, not
// booleans, and are read with RepeatedParam.
func (m *ParameterMap) BoolParam(name string) (bool, bool) {
	p, ok := m.First(name)
	if !ok {
		return false, false
	}
	return p.Raw == "true" || p.Raw == "1", true
}
