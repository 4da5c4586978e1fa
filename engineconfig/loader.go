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
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader loads engine configuration from a YAML file and, optionally,
// hot-reloads it on change.
type Loader struct {
	path    string
	current atomic.Value // stores *Config
}

// NewLoader returns a Loader reading path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, parses, and validates the configuration file, caching the
// result for Current.
func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("engineconfig: read %s: %w", l.path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("engineconfig: parse %s: %w", l.path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("engineconfig: %w", err)
	}

	l.current.Store(cfg)
	return cfg, nil
}

// Current returns the most recently loaded configuration, or nil if Load
// has not yet succeeded.
func (l *Loader) Current() *Config {
	v := l.current.Load()
	if v == nil {
		return nil
	}
	return v.(*Config)
}

// Watch blocks, re-loading the configuration file on every write/create
// event and invoking onChange with the freshly loaded value. A failed
// reload keeps the previous configuration and is logged, not returned.
// Watch returns when done is closed or the watcher's channels close.
func (l *Loader) Watch(onChange func(*Config), done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("engineconfig: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.path); err != nil {
		return fmt.Errorf("engineconfig: watch %s: %w", l.path, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := l.Load()
			if err != nil {
				log.Printf("engineconfig: reload %s failed, keeping previous config: %v", l.path, err)
				continue
			}
			if onChange != nil {
				onChange(cfg)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("engineconfig: watcher error: %v", err)
		case <-done:
			return nil
		}
	}
}
