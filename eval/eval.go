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

// Package eval instantiates named condition evaluators from
// (class-name, expression) pairs (component C3, spec §4.2). It is
// deliberately decoupled from any one expression language: Evaluator is
// a one-method capability, and Factory resolves implementations by a
// string key the way a bean factory would.
package eval

import (
	"cdrl.dev/go/cdrlerr"
	"cdrl.dev/go/token"
)

// Context is the match candidate an Evaluator inspects. The execution
// engine supplies a concrete implementation per element (spec §4.6).
type Context interface {
	// Attr returns the value of the named attribute on the current
	// element, if any.
	Attr(name string) (string, bool)
	// Text returns the current element's accumulated text content.
	Text() string
	// Var resolves an arbitrary named binding exposed by the caller
	// (parameters, profile names, and so on).
	Var(name string) (any, bool)
}

// Evaluator is a condition: it inspects a Context and reports whether
// the condition holds.
type Evaluator interface {
	Evaluate(ctx Context) (bool, error)
}

// ConstructorFunc builds an Evaluator from a raw expression body.
type ConstructorFunc func(expr string) (Evaluator, error)

// defaultClassName is used when a <condition> element omits evaluator=.
const defaultClassName = "cdrl.dev/go/eval.DefaultEvaluator"

// Factory is the evaluator registry. The zero value is not usable; use
// NewFactory.
type Factory struct {
	ctors map[string]ConstructorFunc
}

// NewFactory returns a Factory with the default (MVEL-style) evaluator
// already registered under defaultClassName.
func NewFactory() *Factory {
	f := &Factory{ctors: map[string]ConstructorFunc{}}
	f.Register(defaultClassName, func(expr string) (Evaluator, error) {
		return ParseDefaultExpr(expr)
	})
	return f
}

// Register installs a named evaluator constructor, as an extension or
// the built-in registry would at startup.
func (f *Factory) Register(className string, ctor ConstructorFunc) {
	f.ctors[className] = ctor
}

// Create instantiates the evaluator named by className (or the default
// evaluator if className is empty) for the given expression. An empty
// expression is always a configuration error (spec §4.2, §7 kind 8);
// an unregistered class name is a FactoryInstantiationFailure (§7 kind 12).
func (f *Factory) Create(className, expr string, path string, pos token.Position) (Evaluator, cdrlerr.ConfigError) {
	if expr == "" {
		return nil, cdrlerr.New(cdrlerr.EmptyConditionExpression, path, pos, "condition expression must not be empty")
	}
	if className == "" {
		className = defaultClassName
	}
	ctor, ok := f.ctors[className]
	if !ok {
		return nil, cdrlerr.New(cdrlerr.FactoryInstantiationFailure, path, pos,
			"no evaluator registered for class %q", className)
	}
	ev, err := ctor(expr)
	if err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.FactoryInstantiationFailure, path, pos, err,
			"evaluator class %q rejected expression %q", className, expr)
	}
	return ev, nil
}

// EvaluatorFunc adapts a plain function to the Evaluator interface, for
// evaluators registered programmatically rather than parsed from text.
type EvaluatorFunc func(ctx Context) (bool, error)

func (f EvaluatorFunc) Evaluate(ctx Context) (bool, error) { return f(ctx) }
