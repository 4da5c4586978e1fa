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

import (
	"github.com/mpvl/unique"
)

// ProfileSet names a base profile and the set of sub-profiles it
// inherits from (spec §3). Uniqueness of BaseProfile is enforced by the
// ResourceConfigSeq that holds it, per store (spec §3 invariants).
type ProfileSet struct {
	BaseProfile string
	SubProfiles []string
}

// NewProfileSet builds a ProfileSet, de-duplicating and sorting
// subProfiles with github.com/mpvl/unique the way the teacher dedupes
// any small in-memory string set, so SubProfiles is a canonical set
// rather than an insertion-ordered list that might hide duplicates.
func NewProfileSet(base string, subProfiles []string) *ProfileSet {
	subs := append([]string(nil), subProfiles...)
	unique.Strings(&subs)
	return &ProfileSet{BaseProfile: base, SubProfiles: subs}
}

// Matches reports whether this profile set applies given the caller's
// active profile names: either the base profile or any sub-profile is
// present in active (spec's implied profile-matching semantics,
// SPEC_FULL.md "Supplemented Features" #4).
func (p *ProfileSet) Matches(active []string) bool {
	for _, a := range active {
		if a == p.BaseProfile {
			return true
		}
		for _, s := range p.SubProfiles {
			if a == s {
				return true
			}
		}
	}
	return false
}
