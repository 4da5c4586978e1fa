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

package digest

import (
	"strings"

	"cdrl.dev/go/resource"
)

const defaultFactoryName = "default"

// ResourceConfigFactory builds a resource.Config from a parsed
// <resource-config> node. A Digester may register named factories and
// select one per element via the factory= attribute (spec §4.3).
type ResourceConfigFactory func(n *node) (*resource.Config, error)

type factoryRegistry struct {
	byName map[string]ResourceConfigFactory
}

func newFactoryRegistry() *factoryRegistry {
	r := &factoryRegistry{byName: map[string]ResourceConfigFactory{}}
	r.byName[defaultFactoryName] = defaultResourceConfigFactory
	return r
}

func (r *factoryRegistry) register(name string, f ResourceConfigFactory) {
	r.byName[name] = f
}

func (r *factoryRegistry) get(name string) (ResourceConfigFactory, bool) {
	if name == "" {
		name = defaultFactoryName
	}
	f, ok := r.byName[name]
	return f, ok
}

// defaultResourceConfigFactory builds the resource locator from a
// <resource-config> node: its class= or resource= attribute, else the
// text of its <resource> child. Selector, condition, profile, and
// parameter handling happen in the caller since they need frame-scoped
// state (spec §4.3 "resource-config").
func defaultResourceConfigFactory(n *node) (*resource.Config, error) {
	cfg := &resource.Config{}
	if v, ok := n.attr("class"); ok {
		cfg.ResourceLocator = v
	} else if v, ok := n.attr("resource"); ok {
		cfg.ResourceLocator = v
	} else if rs := n.childrenNamed("resource"); len(rs) > 0 {
		cfg.ResourceLocator = strings.TrimSpace(rs[0].Text)
	}
	return cfg, nil
}
