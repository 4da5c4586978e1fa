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

package runtime

import "sync"

// computeCache is a concurrent compute-if-absent cache keyed by string,
// with one sync.Once per key so concurrent callers computing the same
// key block on a single computation while different keys proceed in
// parallel (spec §4.5 "Concurrency": "both caches use a compute-if-absent
// idiom and must produce one builder/pool per key despite concurrent
// callers").
type computeCache[V any] struct {
	mu    sync.Mutex
	gates map[string]*sync.Once
	vals  map[string]V
	errs  map[string]error
}

func newComputeCache[V any]() *computeCache[V] {
	return &computeCache[V]{
		gates: map[string]*sync.Once{},
		vals:  map[string]V{},
		errs:  map[string]error{},
	}
}

func (c *computeCache[V]) computeIfAbsent(key string, compute func() (V, error)) (V, error) {
	c.mu.Lock()
	gate, ok := c.gates[key]
	if !ok {
		gate = &sync.Once{}
		c.gates[key] = gate
	}
	c.mu.Unlock()

	gate.Do(func() {
		v, err := compute()
		c.mu.Lock()
		c.vals[key] = v
		c.errs[key] = err
		c.mu.Unlock()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vals[key], c.errs[key]
}
