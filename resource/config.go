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
	"cdrl.dev/go/eval"
	"cdrl.dev/go/selector"
)

// GlobalParametersLocator is the sentinel resource-locator used for the
// single, synthetic resource that collects every <params><param/></params>
// entry seen across a digestion (spec §4.3 "params").
const GlobalParametersLocator = "cdrl:global-parameters"

// Config is a single (selector-path, handler-descriptor, parameter-map,
// condition) unit (spec §3 "ResourceConfig").
type Config struct {
	// Selector is nil for the GLOBAL_PARAMETERS sentinel and for any
	// resource a digester produced without a selector= attribute.
	Selector *selector.Path

	// ResourceLocator is the handler-descriptor: a fully-qualified class
	// name or a URI, depending on what the <resource-config> named.
	ResourceLocator string

	// Factory names the ResourceConfigFactory used to build this config,
	// or "" for the default factory (spec §4.3 "resource-config").
	Factory string

	Params ParameterMap

	// TargetProfile is the profile this resource-config applies to, or ""
	// if it applies unconditionally (subject to default-target-profile
	// propagation, spec §4.3 "Default propagation").
	TargetProfile string

	// Condition gates whether this resource-config is active for a given
	// match candidate; nil means unconditional.
	Condition eval.Evaluator

	// SourceFile records the digestion path the config was produced
	// under, for diagnostics.
	SourceFile string
}

// Indexed reports whether this config's selector ends in an Element step
// and therefore participates in element dispatch (spec §3).
func (c *Config) Indexed() bool {
	return c.Selector != nil && c.Selector.Indexed()
}

// DispatchKey returns the config's dispatch key: the selector's final
// element's local name, or "*" for non-indexed configs (spec §3).
func (c *Config) DispatchKey() string {
	if c.Selector == nil {
		return "*"
	}
	return c.Selector.DispatchKey()
}
