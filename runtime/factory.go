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

// Package runtime implements the runtime factory (component C8, spec
// §4.5): it caches a ContentDeliveryConfig per base profile and a
// ReaderPool per config identity, then hands out fresh Runtime values
// that reference (without owning) those cached, shared resources.
package runtime

import (
	"github.com/google/uuid"

	"cdrl.dev/go/cdrlerr"
	"cdrl.dev/go/dispatch"
	"cdrl.dev/go/resource"
	"cdrl.dev/go/token"
)

// Provider builds a ContentDeliveryConfig for a set of bindings, if it
// claims to be the right strategy for them (spec §4.5: "internally
// selects the best-matching provider among SaxNg / legacy SAX / DOM by
// consulting each provider's isProvider(bindings)").
type Provider interface {
	IsProvider(bindings []dispatch.ContentHandlerBinding) bool
	Build(bindings []dispatch.ContentHandlerBinding, namespaces map[string]string, activeProfiles []string) (*dispatch.ContentDeliveryConfig, cdrlerr.ConfigError)
}

// saxProvider is the only provider this module implements (spec §1:
// DOM-strategy planning is a separate, out-of-scope planner); it accepts
// every binding list and delegates straight to dispatch.Plan.
type saxProvider struct {
	intercept dispatch.InterceptorFactory
}

func (saxProvider) IsProvider(bindings []dispatch.ContentHandlerBinding) bool { return true }

func (p saxProvider) Build(bindings []dispatch.ContentHandlerBinding, namespaces map[string]string, activeProfiles []string) (*dispatch.ContentDeliveryConfig, cdrlerr.ConfigError) {
	return dispatch.Plan(bindings, namespaces, activeProfiles, p.intercept)
}

// Builder selects the first Provider that claims a binding list and asks
// it to build the ContentDeliveryConfig (spec §4.5).
type Builder struct {
	providers []Provider
}

// NewBuilder returns a Builder trying providers in order, falling back
// to the built-in streaming (SAX) provider if none of them claim a given
// binding list.
func NewBuilder(intercept dispatch.InterceptorFactory, providers ...Provider) *Builder {
	return &Builder{providers: append(providers, saxProvider{intercept: intercept})}
}

func (b *Builder) build(bindings []dispatch.ContentHandlerBinding, namespaces map[string]string, activeProfiles []string) (*dispatch.ContentDeliveryConfig, cdrlerr.ConfigError) {
	for _, p := range b.providers {
		if p.IsProvider(bindings) {
			return p.Build(bindings, namespaces, activeProfiles)
		}
	}
	return nil, cdrlerr.New(cdrlerr.FactoryInstantiationFailure, "", token.NoPos, "no provider claimed %d bindings", len(bindings))
}

// Runtime is a single execution handle: an identity, the (shared,
// immutable) delivery config it dispatches against, and the reader pool
// it acquires pooled readers from. Runtime itself owns neither; both are
// cached and shared across every Runtime created for the same key (spec
// §4.5: "references (does not own) the cached builder-derived config and
// the pooled readers").
type Runtime struct {
	ID      uuid.UUID
	Profile *resource.ProfileSet
	Config  *dispatch.ContentDeliveryConfig
	Pool    *ReaderPool
}

// Factory caches delivery configs per base profile and reader pools per
// config identity, producing a fresh Runtime on every Create call (spec
// §4.5, C8).
type Factory struct {
	builder       *Builder
	readerFactory ReaderFactory
	poolSize      int

	configs *computeCache[*dispatch.ContentDeliveryConfig]
	pools   *computeCache[*ReaderPool]
}

// NewFactory returns a Factory that builds delivery configs with builder
// and sizes each reader pool to poolSize, filled with readers from
// readerFactory.
func NewFactory(builder *Builder, readerFactory ReaderFactory, poolSize int) *Factory {
	return &Factory{
		builder:       builder,
		readerFactory: readerFactory,
		poolSize:      poolSize,
		configs:       newComputeCache[*dispatch.ContentDeliveryConfig](),
		pools:         newComputeCache[*ReaderPool](),
	}
}

// Create returns a fresh Runtime for profileSet, computing (or reusing a
// cached) ContentDeliveryConfig keyed by profileSet.BaseProfile and a
// ReaderPool keyed by that same config's identity (spec §4.5).
func (f *Factory) Create(profileSet *resource.ProfileSet, extendedBindings []dispatch.ContentHandlerBinding, namespaces map[string]string) (*Runtime, cdrlerr.ConfigError) {
	key := profileKey(profileSet)

	active := activeProfileNames(profileSet)
	cfg, err := f.configs.computeIfAbsent(key, func() (*dispatch.ContentDeliveryConfig, error) {
		c, cerr := f.builder.build(extendedBindings, namespaces, active)
		if cerr != nil {
			return nil, cerr
		}
		return c, nil
	})
	if err != nil {
		if cerr, ok := err.(cdrlerr.ConfigError); ok {
			return nil, cerr
		}
		return nil, cdrlerr.Wrap(cdrlerr.FactoryInstantiationFailure, "", token.NoPos, err, "building delivery config for profile %q", key)
	}

	pool, err := f.pools.computeIfAbsent(key, func() (*ReaderPool, error) {
		return NewReaderPool(f.readerFactory, f.poolSize), nil
	})
	if err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.FactoryInstantiationFailure, "", token.NoPos, err, "building reader pool for profile %q", key)
	}

	return &Runtime{
		ID:      uuid.New(),
		Profile: profileSet,
		Config:  cfg,
		Pool:    pool,
	}, nil
}

func profileKey(p *resource.ProfileSet) string {
	if p == nil {
		return "*"
	}
	return p.BaseProfile
}

// activeProfileNames flattens a ProfileSet into the plain name list
// dispatch.Plan filters target-profile bindings against.
func activeProfileNames(p *resource.ProfileSet) []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, 1+len(p.SubProfiles))
	names = append(names, p.BaseProfile)
	names = append(names, p.SubProfiles...)
	return names
}
