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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-quicktest/qt"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte(content), 0o644)))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, `
runtime:
  reader_pool_size: 4
  acquire_timeout: 2s
extensions:
  classpath_roots:
    - /etc/cdrl/extensions
  mappings:
    "https://cdrl.dev/ext/order": order-ext.cdrl
logging:
  level: debug
  format: json
`)
	loader := NewLoader(path)
	cfg, err := loader.Load()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(cfg.Runtime.ReaderPoolSize, 4))
	qt.Assert(t, qt.Equals(cfg.Runtime.AcquireTimeout, 2*time.Second))
	qt.Assert(t, qt.HasLen(cfg.Extensions.ClasspathRoots, 1))
	qt.Assert(t, qt.Equals(cfg.Extensions.Mappings["https://cdrl.dev/ext/order"], "order-ext.cdrl"))

	cur := loader.Current()
	qt.Assert(t, qt.IsNotNil(cur))
	qt.Assert(t, qt.Equals(cur.Runtime.ReaderPoolSize, cfg.Runtime.ReaderPoolSize))
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := writeTemp(t, "runtime:\n  reader_pool_size: 2\n  acquire_timeout: 1s\n")
	cfg, err := NewLoader(path).Load()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(cfg.Logging.Level, "info"))
	qt.Assert(t, qt.Equals(cfg.Logging.Format, "text"))
}

func TestLoadInvalidYAMLIsError(t *testing.T) {
	path := writeTemp(t, "{{not yaml")
	_, err := NewLoader(path).Load()
	qt.Assert(t, qt.IsNotNil(err))
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	qt.Assert(t, qt.IsNotNil(err))
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeTemp(t, "runtime:\n  reader_pool_size: 0\n  acquire_timeout: 1s\n")
	_, err := NewLoader(path).Load()
	qt.Assert(t, qt.IsNotNil(err))
}

func TestCurrentReturnsNilBeforeLoad(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "missing.yaml"))
	qt.Assert(t, qt.IsNil(loader.Current()))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeTemp(t, "runtime:\n  reader_pool_size: 2\n  acquire_timeout: 1s\n")
	loader := NewLoader(path)
	_, err := loader.Load()
	qt.Assert(t, qt.IsNil(err))

	reloaded := make(chan *Config, 1)
	done := make(chan struct{})
	go func() {
		_ = loader.Watch(func(cfg *Config) {
			reloaded <- cfg
		}, done)
	}()
	defer close(done)

	// Give the watcher goroutine time to register its fsnotify watch
	// before the file is rewritten.
	time.Sleep(50 * time.Millisecond)
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("runtime:\n  reader_pool_size: 9\n  acquire_timeout: 1s\n"), 0o644)))

	select {
	case cfg := <-reloaded:
		qt.Assert(t, qt.Equals(cfg.Runtime.ReaderPoolSize, 9))
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
