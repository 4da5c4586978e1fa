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

package event

import (
	"testing"

	"github.com/go-quicktest/qt"

	"cdrl.dev/go/dispatch"
	"cdrl.dev/go/eval"
	"cdrl.dev/go/resource"
	"cdrl.dev/go/selector"
)

type recordingHandler struct {
	caps        dispatch.Capability
	beforeCalls int
	afterCalls  int
	childCalls  int
}

func (h *recordingHandler) Capabilities() dispatch.Capability { return h.caps }

func (h *recordingHandler) Before(path []selector.Frame, el ElementInfo) error {
	h.beforeCalls++
	return nil
}

func (h *recordingHandler) OnChildElement(path []selector.Frame, el, child ElementInfo) error {
	h.childCalls++
	return nil
}

func (h *recordingHandler) After(path []selector.Frame, el ElementInfo) error {
	h.afterCalls++
	return nil
}

func mustCompile(t *testing.T, sel string) *selector.Path {
	t.Helper()
	p, err := selector.Compile(sel, nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	return p
}

func TestEngineFiresBeforeOnMatch(t *testing.T) {
	h := &recordingHandler{caps: dispatch.BeforeVisitor}
	sel := mustCompile(t, "order")
	bindings := []dispatch.ContentHandlerBinding{
		{Config: &resource.Config{Selector: sel}, Handler: h},
	}
	cfg, cerr := dispatch.Plan(bindings, nil, nil, nil)
	qt.Assert(t, qt.IsNil(cerr))

	e := New(cfg)
	path := []selector.Frame{{QName: selector.QName{Local: "order"}}}
	err := e.FireBefore(path, selector.FrameContext{Frame: path[0]})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(h.beforeCalls, 1))
}

func TestEngineFiresAfterEvenWithoutBeforeMatch(t *testing.T) {
	h := &recordingHandler{caps: dispatch.AfterVisitor}
	sel := mustCompile(t, "order")
	bindings := []dispatch.ContentHandlerBinding{
		{Config: &resource.Config{Selector: sel}, Handler: h},
	}
	cfg, cerr := dispatch.Plan(bindings, nil, nil, nil)
	qt.Assert(t, qt.IsNil(cerr))

	e := New(cfg)
	path := []selector.Frame{{QName: selector.QName{Local: "order"}}}
	err := e.FireAfter(path, selector.FrameContext{Frame: path[0]})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(h.afterCalls, 1))
}

func TestEngineSkipsNonMatchingElement(t *testing.T) {
	h := &recordingHandler{caps: dispatch.BeforeVisitor}
	sel := mustCompile(t, "order")
	bindings := []dispatch.ContentHandlerBinding{
		{Config: &resource.Config{Selector: sel}, Handler: h},
	}
	cfg, cerr := dispatch.Plan(bindings, nil, nil, nil)
	qt.Assert(t, qt.IsNil(cerr))

	e := New(cfg)
	path := []selector.Frame{{QName: selector.QName{Local: "invoice"}}}
	err := e.FireBefore(path, selector.FrameContext{Frame: path[0]})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(h.beforeCalls, 0))
}

func TestEngineCancelStopsFurtherCallbacks(t *testing.T) {
	h1 := &recordingHandler{caps: dispatch.BeforeVisitor}
	h2 := &recordingHandler{caps: dispatch.BeforeVisitor}
	sel := mustCompile(t, "order")
	bindings := []dispatch.ContentHandlerBinding{
		{Config: &resource.Config{Selector: sel}, Handler: h1},
		{Config: &resource.Config{Selector: sel}, Handler: h2},
	}
	cfg, cerr := dispatch.Plan(bindings, nil, nil, nil)
	qt.Assert(t, qt.IsNil(cerr))

	e := New(cfg)
	e.Cancel()
	path := []selector.Frame{{QName: selector.QName{Local: "order"}}}
	err := e.FireBefore(path, selector.FrameContext{Frame: path[0]})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(h1.beforeCalls, 0))
	qt.Assert(t, qt.Equals(h2.beforeCalls, 0))
}

func TestEnginePositionCounterIncrementsBeforePredicateEvaluated(t *testing.T) {
	h := &recordingHandler{caps: dispatch.BeforeVisitor}
	sel := mustCompile(t, "order[1]")
	bindings := []dispatch.ContentHandlerBinding{
		{Config: &resource.Config{Selector: sel}, Handler: h},
	}
	cfg, cerr := dispatch.Plan(bindings, nil, nil, nil)
	qt.Assert(t, qt.IsNil(cerr))

	e := New(cfg)
	path := []selector.Frame{{QName: selector.QName{Local: "order"}}}
	err := e.FireBefore(path, selector.FrameContext{Frame: path[0]})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(h.beforeCalls, 1))

	pp := sel.Steps[0].Predicates[0].(*selector.PositionPredicate)
	qt.Assert(t, qt.Equals(pp.Counter.Current(), 1))
}

// TestEnginePositionCounterScopesToEachParent walks two <a> parents, each
// with two <b> children, through "a/b[2]". The second <b> of each <a>
// must fire independently: a single document-wide counter would only
// ever see the predicate satisfied once, on the second <b> anywhere in
// the document.
func TestEnginePositionCounterScopesToEachParent(t *testing.T) {
	h := &recordingHandler{caps: dispatch.BeforeVisitor}
	sel := mustCompile(t, "a/b[2]")
	bindings := []dispatch.ContentHandlerBinding{
		{Config: &resource.Config{Selector: sel}, Handler: h},
	}
	cfg, cerr := dispatch.Plan(bindings, nil, nil, nil)
	qt.Assert(t, qt.IsNil(cerr))

	e := New(cfg)
	a := selector.Frame{QName: selector.QName{Local: "a"}}
	b := selector.Frame{QName: selector.QName{Local: "b"}}

	for parent := 0; parent < 2; parent++ {
		aPath := []selector.Frame{a}
		qt.Assert(t, qt.IsNil(e.FireBefore(aPath, selector.FrameContext{Frame: a})))

		for child := 0; child < 2; child++ {
			bPath := []selector.Frame{a, b}
			qt.Assert(t, qt.IsNil(e.FireBefore(bPath, selector.FrameContext{Frame: b})))
			qt.Assert(t, qt.IsNil(e.FireAfter(bPath, selector.FrameContext{Frame: b})))
		}

		qt.Assert(t, qt.IsNil(e.FireAfter(aPath, selector.FrameContext{Frame: a})))
	}

	qt.Assert(t, qt.Equals(h.beforeCalls, 2))
}
