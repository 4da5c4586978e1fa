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

package resource

import "fmt"

// Item is one entry of a Sequence: either a resource-config or a
// profile-set (spec §3 "ResourceConfigSeq").
type Item struct {
	Config  *Config
	Profile *ProfileSet
}

// IsConfig reports whether this item carries a resource-config.
func (i Item) IsConfig() bool { return i.Config != nil }

// Sequence is the insertion-ordered, named container of resource-configs
// and profile-sets produced by a single digestion (spec §3
// "ResourceConfigSeq"). Duplicate Sequence names are legal: order of
// insertion is the order of application.
type Sequence struct {
	Name  string
	Items []Item

	profilesByBase map[string]*ProfileSet
}

// NewSequence returns an empty Sequence tagged with name (conventionally
// the digestion's base URI).
func NewSequence(name string) *Sequence {
	return &Sequence{Name: name, profilesByBase: map[string]*ProfileSet{}}
}

// AddConfig appends a resource-config.
func (s *Sequence) AddConfig(c *Config) {
	s.Items = append(s.Items, Item{Config: c})
}

// AddProfile appends a profile-set, enforcing the per-store uniqueness
// invariant on BaseProfile (spec §3 invariants).
func (s *Sequence) AddProfile(p *ProfileSet) error {
	if s.profilesByBase == nil {
		s.profilesByBase = map[string]*ProfileSet{}
	}
	if _, exists := s.profilesByBase[p.BaseProfile]; exists {
		return fmt.Errorf("resource: duplicate profile base-profile %q", p.BaseProfile)
	}
	s.profilesByBase[p.BaseProfile] = p
	s.Items = append(s.Items, Item{Profile: p})
	return nil
}

// Configs returns every resource-config in insertion order.
func (s *Sequence) Configs() []*Config {
	var out []*Config
	for _, it := range s.Items {
		if it.IsConfig() {
			out = append(out, it.Config)
		}
	}
	return out
}

// Profiles returns every profile-set in insertion order.
func (s *Sequence) Profiles() []*ProfileSet {
	var out []*ProfileSet
	for _, it := range s.Items {
		if !it.IsConfig() {
			out = append(out, it.Profile)
		}
	}
	return out
}

// Append transfers every item of other into s, in order, as the outer
// digestion does with the sequence an <import> or an extension element
// produced (spec §4.3 "Extension dispatch").
func (s *Sequence) Append(other *Sequence) error {
	for _, it := range other.Items {
		if it.IsConfig() {
			s.AddConfig(it.Config)
		} else if err := s.AddProfile(it.Profile); err != nil {
			return err
		}
	}
	return nil
}

// Len reports the number of items (configs and profiles) in the
// sequence.
func (s *Sequence) Len() int { return len(s.Items) }
