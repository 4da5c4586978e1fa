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

// Package engineconfig is the ambient configuration for the engine's own
// tunables — reader-pool sizing, reader-acquisition timeout, and the
// classpath roots extension dispatch resolves against — as distinct from
// the CDRL documents the digester parses. It is YAML-backed and
// hot-reloadable, the same shape SPEC_FULL.md's Configuration section
// models on the gateway's own config loader.
package engineconfig

import "time"

// Config is the top-level engine configuration.
type Config struct {
	Runtime    RuntimeConfig    `yaml:"runtime"`
	Extensions ExtensionsConfig `yaml:"extensions"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// RuntimeConfig tunes the runtime factory's reader pool (spec §4.5, §5).
type RuntimeConfig struct {
	// ReaderPoolSize is the number of pooled readers per delivery config.
	ReaderPoolSize int `yaml:"reader_pool_size"`
	// AcquireTimeout bounds how long ReaderPool.Acquire callers wait for
	// a free reader before failing with ReaderAcquisitionTimeout.
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

// ExtensionsConfig locates classpath-style resources the digester's
// extension dispatch (digest.ExtensionLoader) resolves against.
type ExtensionsConfig struct {
	// ClasspathRoots is searched in order for a namespace's extension
	// resource when no explicit mapping exists.
	ClasspathRoots []string `yaml:"classpath_roots"`
	// Mappings pins a namespace URI to an explicit classpath entry,
	// overriding root-search for that namespace.
	Mappings map[string]string `yaml:"mappings,omitempty"`
}

// LoggingConfig carries logging settings for the host process; no
// package in this module reads them.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			ReaderPoolSize: 8,
			AcquireTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
