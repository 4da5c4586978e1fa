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

// Package event implements the execution-time dispatch contract consumed
// by the streaming engine (spec §4.6): given the ContentDeliveryConfig
// produced by the dispatch planner (C7), it walks element start/child/end
// callbacks, matches the running path against each indexed selector, and
// fires Before/Child/After visitor hooks in the documented order. The
// bootstrapper that decodes characters into these calls, and the
// visitors' own business logic, are external collaborators (spec §1).
package event

import (
	"sync/atomic"

	"cdrl.dev/go/dispatch"
	"cdrl.dev/go/eval"
	"cdrl.dev/go/internal/metrics"
	"cdrl.dev/go/selector"
)

// ElementInfo is the element-shaped payload handed to a visitor hook.
type ElementInfo struct {
	QName selector.QName
	Attrs map[string]string
	Text  string
}

// BeforeHandler is implemented by a dispatch.Handler that wants to act on
// an element start, before its children are visited.
type BeforeHandler interface {
	Before(path []selector.Frame, el ElementInfo) error
}

// ChildHandler is implemented by a dispatch.Handler that wants to act on
// each direct child of a matched element.
type ChildHandler interface {
	OnChildElement(path []selector.Frame, el, child ElementInfo) error
}

// AfterHandler is implemented by a dispatch.Handler that wants to act on
// an element end.
type AfterHandler interface {
	After(path []selector.Frame, el ElementInfo) error
}

// Engine drives a single document's worth of SAX-style events through a
// ContentDeliveryConfig. It is not safe for concurrent use by multiple
// goroutines processing the same document (spec §5 "within a single
// document, visitor firings are deterministic").
type Engine struct {
	cfg       *dispatch.ContentDeliveryConfig
	cancelled int32
}

// New returns an Engine driving cfg's indices.
func New(cfg *dispatch.ContentDeliveryConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Cancel aborts further visitor callbacks (spec §5 "Cancellation": "a
// filter execution may be aborted externally; visitors observe no
// further callbacks after cancellation").
func (e *Engine) Cancel() { atomic.StoreInt32(&e.cancelled, 1) }

// Cancelled reports whether Cancel has been called.
func (e *Engine) Cancelled() bool { return atomic.LoadInt32(&e.cancelled) != 0 }

// FireBefore fires before[L] then before["*"] for the element at the top
// of path (spec §4.6). Position counters registered under the same key
// increment unconditionally before the remaining handlers' selectors are
// tested; a counter's bound parent element opens that counter's scope the
// same way, before its own other Before handlers run (spec §4.4 step 7).
func (e *Engine) FireBefore(path []selector.Frame, evalCtx eval.Context) error {
	if e.Cancelled() || len(path) == 0 {
		return nil
	}
	local := path[len(path)-1].QName.Local
	for _, key := range []string{local, "*"} {
		for _, entry := range e.cfg.Before[key] {
			if e.Cancelled() {
				return nil
			}
			switch h := entry.Handler.(type) {
			case *dispatch.ElementPositionCounter:
				h.Increment()
				continue
			case *dispatch.PositionCounterScopeEnter:
				h.Counter.PushScope()
				continue
			}
			matched, err := e.matches(entry, path, evalCtx)
			if err != nil {
				return err
			}
			if !matched {
				continue
			}
			if bh, ok := entry.Handler.(BeforeHandler); ok {
				metrics.RecordVisitorFiring("before", key)
				if err := bh.Before(path, elementInfo(path)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// FireChild fires child[L] for each direct child event of the element at
// the top of path (spec §4.6 "On each direct child event, fire matching
// child[L] handlers once per child").
func (e *Engine) FireChild(path []selector.Frame, child ElementInfo, evalCtx eval.Context) error {
	if e.Cancelled() || len(path) == 0 {
		return nil
	}
	local := path[len(path)-1].QName.Local
	for _, entry := range e.cfg.Child[local] {
		if e.Cancelled() {
			return nil
		}
		matched, err := e.matches(entry, path, evalCtx)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}
		if ch, ok := entry.Handler.(ChildHandler); ok {
			metrics.RecordVisitorFiring("child", local)
			if err := ch.OnChildElement(path, elementInfo(path), child); err != nil {
				return err
			}
		}
	}
	return nil
}

// FireAfter fires after[L] then after["*"] on element end (spec §4.6).
// After fires even when Before did not: the selector match is
// re-evaluated independently here. A position counter's bound parent
// element closes that counter's scope the same way, before the
// remaining After handlers at this key are tested (spec §4.4 step 7).
func (e *Engine) FireAfter(path []selector.Frame, evalCtx eval.Context) error {
	if e.Cancelled() || len(path) == 0 {
		return nil
	}
	local := path[len(path)-1].QName.Local
	for _, key := range []string{local, "*"} {
		for _, entry := range e.cfg.After[key] {
			if e.Cancelled() {
				return nil
			}
			if h, ok := entry.Handler.(*dispatch.PositionCounterScopeExit); ok {
				h.Counter.PopScope()
				continue
			}
			matched, err := e.matches(entry, path, evalCtx)
			if err != nil {
				return err
			}
			if !matched {
				continue
			}
			if ah, ok := entry.Handler.(AfterHandler); ok {
				metrics.RecordVisitorFiring("after", key)
				if err := ah.After(path, elementInfo(path)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Engine) matches(entry dispatch.Entry, path []selector.Frame, evalCtx eval.Context) (bool, error) {
	if entry.Config == nil || entry.Config.Selector == nil {
		return true, nil
	}
	ok, err := selector.Matches(entry.Config.Selector, path, evalCtx)
	if err != nil || !ok {
		return false, err
	}
	if entry.Config.Condition != nil {
		return entry.Config.Condition.Evaluate(evalCtx)
	}
	return true, nil
}

func elementInfo(path []selector.Frame) ElementInfo {
	top := path[len(path)-1]
	return ElementInfo{QName: top.QName, Attrs: top.Attrs}
}
