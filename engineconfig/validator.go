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
	"errors"
	"fmt"
)

// Validate rejects a Config with tunables the runtime factory and reader
// pool cannot act on.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("engineconfig: config is nil")
	}
	if cfg.Runtime.ReaderPoolSize <= 0 {
		return fmt.Errorf("engineconfig: runtime.reader_pool_size must be positive, got %d", cfg.Runtime.ReaderPoolSize)
	}
	if cfg.Runtime.AcquireTimeout <= 0 {
		return fmt.Errorf("engineconfig: runtime.acquire_timeout must be positive, got %s", cfg.Runtime.AcquireTimeout)
	}
	seen := make(map[string]bool, len(cfg.Extensions.ClasspathRoots))
	for i, root := range cfg.Extensions.ClasspathRoots {
		if root == "" {
			return fmt.Errorf("engineconfig: extensions.classpath_roots[%d] is empty", i)
		}
		if seen[root] {
			return fmt.Errorf("engineconfig: duplicate classpath root %q", root)
		}
		seen[root] = true
	}
	for ns, entry := range cfg.Extensions.Mappings {
		if ns == "" {
			return errors.New("engineconfig: extensions.mappings has an empty namespace key")
		}
		if entry == "" {
			return fmt.Errorf("engineconfig: extensions.mappings[%q] is empty", ns)
		}
	}
	return nil
}
