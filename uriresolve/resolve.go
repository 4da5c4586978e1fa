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

// Package uriresolve resolves relative CDRL import references against a
// base URI and produces the normalized form used for import-cycle
// detection (component C1, spec §4, §9).
package uriresolve

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolve resolves ref against base the way an <import file="ref"/>
// element resolves relative to the document that contains it. base may
// be empty for the root document. The result is already normalized (see
// Normalize) so it is directly usable as a cycle-detection stack key.
func Resolve(base, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("uriresolve: empty import reference")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("uriresolve: invalid base URI %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("uriresolve: invalid reference %q: %w", ref, err)
	}
	resolved := baseURL.ResolveReference(refURL)
	return Normalize(resolved.String()), nil
}

// Normalize reduces uri to a canonical (scheme, host, cleaned-and-NFC-
// normalized path) form so that two textually distinct but semantically
// identical references collide correctly in the import-cycle stack, per
// the "Cycle detection via identity on URI" design note in spec §9.
func Normalize(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		// Not URI-shaped (e.g. a bare relative filesystem path); fall
		// back to normalizing it as a plain path.
		return norm.NFC.String(path.Clean(uri))
	}
	u.Path = norm.NFC.String(path.Clean(u.Path))
	if u.Scheme == "" && u.Host == "" {
		return u.Path
	}
	return u.String()
}

// Parent returns the base URI to use when resolving references found
// inside the document located at uri: everything up to, but excluding,
// the final path segment.
func Parent(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		dir := path.Dir(uri)
		if dir == "." {
			return ""
		}
		return dir + "/"
	}
	dir := path.Dir(u.Path)
	if dir == "." {
		dir = ""
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	u.Path = dir
	return u.String()
}
