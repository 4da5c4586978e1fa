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

// Package selector compiles the XPath-subset selector strings used by
// resource-configs into an indexed, normalized SelectorPath (component
// C2, spec §4.1).
package selector

import (
	"strconv"

	"cdrl.dev/go/eval"
)

// StepKind discriminates the four SelectorStep variants from spec §3.
type StepKind int

const (
	// Document is the synthetic root step produced by a leading '/'.
	Document StepKind = iota
	// Element matches a named element, or '*' for any element.
	Element
	// Attribute matches a named attribute.
	Attribute
	// Text matches an element's inner text content ('text()').
	Text
)

func (k StepKind) String() string {
	switch k {
	case Document:
		return "Document"
	case Element:
		return "Element"
	case Attribute:
		return "Attribute"
	case Text:
		return "Text"
	default:
		return "Unknown"
	}
}

// QName is a qualified name. Compile resolves a prefixed name's
// NamespaceURI against the namespace-prefix table captured at compile
// time, so later reuse never needs that table again (spec §4.1).
type QName struct {
	Prefix       string
	Local        string
	NamespaceURI string
}

// Wildcard reports whether this QName matches any local name ('*').
func (q QName) Wildcard() bool { return q.Local == "*" }

func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}
	return q.Prefix + ":" + q.Local
}

// Predicate narrows which candidate elements a Step matches.
type Predicate interface {
	// String renders the predicate body as it would appear between '['
	// and ']', for diagnostics.
	String() string
}

// PositionPredicate is a 1-based positional predicate, e.g. "b[2]". It
// requires exactly one ElementPositionCounter bound at plan time (spec
// §3, §4.4 step 7); Counter is nil until the dispatch planner binds one.
type PositionPredicate struct {
	N       int
	Counter PositionCounter
}

func (p *PositionPredicate) String() string { return strconv.Itoa(p.N) }

// PositionCounter tracks how many times its bound path prefix has
// matched, so PositionPredicate can compare against it. The dispatch
// planner supplies the concrete implementation (an ElementPositionCounter
// registered as a synthetic Before visitor, spec §4.4 step 7).
type PositionCounter interface {
	Current() int
}

// AttributeEqualsPredicate matches an attribute's literal value, e.g.
// "b[@type='x']" or the bare "b[type=x]" form.
type AttributeEqualsPredicate struct {
	QName   QName
	Literal string
}

func (p *AttributeEqualsPredicate) String() string { return p.QName.String() + "=" + p.Literal }

// ExpressionPredicate delegates to an arbitrary condition evaluator
// (component C3) for any predicate body that is neither an integer nor
// an attribute-equality test.
type ExpressionPredicate struct {
	Evaluator eval.Evaluator
	Source    string
}

func (p *ExpressionPredicate) String() string { return p.Source }

// Step is one segment of a compiled SelectorPath.
type Step struct {
	Kind       StepKind
	QName      QName
	Predicates []Predicate

	// accessesText records whether this Element step's path continues
	// into a 'text()' step; set by the compiler, read by the dispatch
	// planner's InvalidSelector check (spec §4.4 step 6).
	accessesText bool

	// Namespaces is the prefix table captured when this step was parsed.
	Namespaces map[string]string
}

// AccessesText reports whether this Element step is followed by a
// 'text()' step in the same path.
func (s *Step) AccessesText() bool { return s.Kind == Element && s.accessesText }

// Path is a compiled, ordered selector (spec §3).
type Path struct {
	Steps      []Step
	Namespaces map[string]string
	Source     string
}

// Indexed reports whether the path's final step is an Element step; only
// indexed paths participate in element dispatch (spec §3).
func (p *Path) Indexed() bool {
	if len(p.Steps) == 0 {
		return false
	}
	return p.Steps[len(p.Steps)-1].Kind == Element
}

// DispatchKey returns the local name of the path's final Element step,
// or "*" if the path is not indexed.
func (p *Path) DispatchKey() string {
	if !p.Indexed() {
		return "*"
	}
	return p.Steps[len(p.Steps)-1].QName.Local
}

// WithNamespaces returns a copy of p with ns installed as its namespace
// table wherever one was not already captured at parse time (spec §4.4
// step 1: "install the namespace table from the registry ... if
// absent").
func (p *Path) WithNamespaces(ns map[string]string) *Path {
	if len(p.Namespaces) > 0 {
		return p
	}
	clone := *p
	clone.Namespaces = ns
	return &clone
}
