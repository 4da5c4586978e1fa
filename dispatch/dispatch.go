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

// Package dispatch builds the Before/Child/After dispatch indices from a
// list of visitor bindings (component C7, spec §4.4). It is the filter
// provider / dispatch planner: its output, a ContentDeliveryConfig, is
// handed to the runtime factory (C8) and driven by an execution engine
// that consumes the three indices per spec §4.6.
package dispatch

import (
	"sync"

	"cdrl.dev/go/cdrlerr"
	"cdrl.dev/go/resource"
	"cdrl.dev/go/selector"
	"cdrl.dev/go/token"
)

// Capability is a bitset of the roles a Handler can play during
// execution dispatch (spec §3 "ContentHandlerBinding").
type Capability int

const (
	BeforeVisitor Capability = 1 << iota
	ChildrenVisitor
	AfterVisitor
)

func (c Capability) Has(want Capability) bool { return c&want != 0 }

// Handler is the capability surface a user-supplied visitor must expose.
// What it actually does on a callback is out of scope for this module
// (spec §1: "individual visitor implementations (user-supplied)").
type Handler interface {
	Capabilities() Capability
}

// ContentHandlerBinding pairs one resource-config with the handler it
// names (spec §3).
type ContentHandlerBinding struct {
	Config  *resource.Config
	Handler Handler
}

// Entry is one planned (config, handler) pair installed under a dispatch
// key.
type Entry struct {
	Config  *resource.Config
	Handler Handler
}

// ContentDeliveryConfig holds the three dispatch indices produced by
// Plan (spec §3 "ContentDeliveryConfig", §4.4).
type ContentDeliveryConfig struct {
	Before map[string][]Entry
	Child  map[string][]Entry
	After  map[string][]Entry
}

func newContentDeliveryConfig() *ContentDeliveryConfig {
	return &ContentDeliveryConfig{
		Before: map[string][]Entry{},
		Child:  map[string][]Entry{},
		After:  map[string][]Entry{},
	}
}

// InterceptorFactory wraps a user handler with the registered
// interceptor-visitor pipeline (spec §4.4 step 4). A nil factory is a
// no-op wrap.
type InterceptorFactory func(h Handler) Handler

// Plan builds a ContentDeliveryConfig from bindings (spec §4.4).
// namespaces supplies the namespace table any binding's selector lacks
// its own (step 1). activeProfiles, if non-nil, excludes any binding
// whose config names a target-profile absent from it (SPEC_FULL.md
// "Supplemented Features" #4); pass nil to plan unconditionally for
// every profile. intercept, if non-nil, wraps every handler before
// indexing (step 4).
func Plan(bindings []ContentHandlerBinding, namespaces map[string]string, activeProfiles []string, intercept InterceptorFactory) (*ContentDeliveryConfig, cdrlerr.ConfigError) {
	cfg := newContentDeliveryConfig()
	beforeCounters := map[string][]Entry{}
	afterCounters := map[string][]Entry{}

	for _, b := range bindings {
		caps := b.Handler.Capabilities()
		if !caps.Has(BeforeVisitor) && !caps.Has(AfterVisitor) {
			// This planner targets the streaming (SAX) strategy only; a
			// DOM-only handler is planned by a separate provider (spec
			// §4.4 step 2).
			continue
		}
		if activeProfiles != nil && !profileActive(b.Config, activeProfiles) {
			continue
		}

		sel := b.Config.Selector
		if sel != nil {
			sel = sel.WithNamespaces(namespaces)
		}

		if caps.Has(BeforeVisitor) || caps.Has(ChildrenVisitor) {
			if lastAccessesText(sel) {
				return nil, cdrlerr.New(cdrlerr.InvalidSelector, b.Config.SourceFile, token.NoPos,
					"selector %q for resource %q targets text() but declares Before/Children capability",
					selectorSource(sel), b.Config.ResourceLocator)
			}
		}

		key := dispatchKey(sel)
		wrapped := b.Handler
		if intercept != nil {
			wrapped = intercept(wrapped)
		}
		entry := Entry{Config: b.Config, Handler: wrapped}

		registeredChild := false
		if caps.Has(BeforeVisitor) {
			cfg.Before[key] = append(cfg.Before[key], entry)
			if caps.Has(ChildrenVisitor) {
				cfg.Child[key] = append(cfg.Child[key], entry)
				registeredChild = true
			}
		}
		if caps.Has(AfterVisitor) {
			cfg.After[key] = append(cfg.After[key], entry)
			if caps.Has(ChildrenVisitor) && !registeredChild {
				cfg.Child[key] = append(cfg.Child[key], entry)
			}
		}

		bindPositionCounters(sel, beforeCounters, afterCounters)
	}

	// Position counters fire before any other Before/After handler at the
	// same dispatch key (spec §4.6), so they are prepended rather than
	// appended to the buckets the main loop built.
	for key, entries := range beforeCounters {
		cfg.Before[key] = append(append([]Entry(nil), entries...), cfg.Before[key]...)
	}
	for key, entries := range afterCounters {
		cfg.After[key] = append(append([]Entry(nil), entries...), cfg.After[key]...)
	}

	return cfg, nil
}

// profileActive reports whether cfg applies given the caller's active
// profile names: an empty TargetProfile means unconditional.
func profileActive(cfg *resource.Config, active []string) bool {
	if cfg == nil || cfg.TargetProfile == "" {
		return true
	}
	for _, a := range active {
		if a == cfg.TargetProfile {
			return true
		}
	}
	return false
}

func dispatchKey(sel *selector.Path) string {
	if sel == nil {
		return "*"
	}
	return sel.DispatchKey()
}

// lastAccessesText reports whether the selector's target element step (its
// last Element step, which a trailing text() step follows) accesses text.
func lastAccessesText(sel *selector.Path) bool {
	if sel == nil {
		return false
	}
	for i := len(sel.Steps) - 1; i >= 0; i-- {
		if sel.Steps[i].Kind == selector.Element {
			return sel.Steps[i].AccessesText()
		}
	}
	return false
}

func selectorSource(sel *selector.Path) string {
	if sel == nil {
		return ""
	}
	return sel.Source
}

// bindPositionCounters synthesizes an ElementPositionCounter for every
// Position predicate in sel (spec §4.4 step 7): one counter per
// (path-prefix, target-step). The counter itself is queued for Before
// registration keyed by the predicated step's own Element name, so it is
// bumped on every matching start. When the predicated step has a parent
// Element step in sel, a scope-enter/scope-exit pair is also queued,
// keyed by that parent's name, so the counter's ordinal resets to zero
// for every distinct occurrence of the parent rather than running
// monotonically across the whole document (spec: "bound to the path
// prefix up to the predicated step").
func bindPositionCounters(sel *selector.Path, beforeCounters, afterCounters map[string][]Entry) {
	if sel == nil {
		return
	}
	for i, step := range sel.Steps {
		for _, pred := range step.Predicates {
			pp, ok := pred.(*selector.PositionPredicate)
			if !ok || pp.Counter != nil {
				continue
			}
			counter := &ElementPositionCounter{}
			pp.Counter = counter

			incrKey := prefixDispatchKey(sel, i)
			beforeCounters[incrKey] = append(beforeCounters[incrKey], Entry{Handler: counter})

			if scopeKey, ok := scopeDispatchKey(sel, i); ok {
				beforeCounters[scopeKey] = append(beforeCounters[scopeKey], Entry{Handler: &PositionCounterScopeEnter{Counter: counter}})
				afterCounters[scopeKey] = append(afterCounters[scopeKey], Entry{Handler: &PositionCounterScopeExit{Counter: counter}})
			}
		}
	}
}

// prefixDispatchKey returns the local name of the last Element step at or
// before index i, or "*" if none exists.
func prefixDispatchKey(sel *selector.Path, i int) string {
	for j := i; j >= 0; j-- {
		if sel.Steps[j].Kind == selector.Element {
			return sel.Steps[j].QName.Local
		}
	}
	return "*"
}

// scopeDispatchKey returns the local name of the nearest Element step
// strictly before index i: the parent whose distinct occurrences bound
// the predicated step's counting scope. ok is false when no such step
// exists (the predicated step is itself the path's first step), in which
// case the predicate has no parent to scope against and counts globally
// across the whole document.
func scopeDispatchKey(sel *selector.Path, i int) (string, bool) {
	for j := i - 1; j >= 0; j-- {
		if sel.Steps[j].Kind == selector.Element {
			return sel.Steps[j].QName.Local, true
		}
	}
	return "", false
}

// ElementPositionCounter counts matching starts for the path prefix it was
// bound to, so a PositionPredicate can compare its ordinal against N (spec
// §3 "PositionCounter", §4.4 step 7). It is itself installed as a Before
// visitor: the execution engine firing before[key] increments it on every
// matching start, before predicate evaluation for the same element sees
// the updated count.
//
// Counting is kept on a stack rather than a flat total so nested
// occurrences of the bound parent (and the ordinary case of distinct
// sibling occurrences) count their own children independently:
// PushScope/PopScope bracket one parent occurrence, and Increment/Current
// always act on the innermost open one. A counter with no parent to
// scope against (scopeDispatchKey found none) is never pushed to by the
// engine, so Increment lazily opens a single, document-wide scope on
// first use, preserving the old global-counter behavior for that case.
type ElementPositionCounter struct {
	mu    sync.Mutex
	stack []int
}

func (c *ElementPositionCounter) Capabilities() Capability { return BeforeVisitor }

// Increment is called by the execution engine immediately before firing
// the remaining Before visitors at this dispatch key.
func (c *ElementPositionCounter) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) == 0 {
		c.stack = append(c.stack, 0)
	}
	c.stack[len(c.stack)-1]++
}

func (c *ElementPositionCounter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) == 0 {
		return 0
	}
	return c.stack[len(c.stack)-1]
}

// PushScope opens a new, independently-counted scope for one occurrence
// of the bound parent element.
func (c *ElementPositionCounter) PushScope() {
	c.mu.Lock()
	c.stack = append(c.stack, 0)
	c.mu.Unlock()
}

// PopScope discards the innermost scope's count once the bound parent
// element that opened it ends.
func (c *ElementPositionCounter) PopScope() {
	c.mu.Lock()
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.mu.Unlock()
}

// PositionCounterScopeEnter is installed as a Before visitor at a
// position counter's bound parent element: the execution engine
// special-cases it the same way it special-cases the counter itself,
// calling PushScope instead of testing a selector match.
type PositionCounterScopeEnter struct {
	Counter *ElementPositionCounter
}

func (e *PositionCounterScopeEnter) Capabilities() Capability { return BeforeVisitor }

// PositionCounterScopeExit is installed as an After visitor at the same
// parent element, popping the scope PositionCounterScopeEnter pushed.
type PositionCounterScopeExit struct {
	Counter *ElementPositionCounter
}

func (e *PositionCounterScopeExit) Capabilities() Capability { return AfterVisitor }
