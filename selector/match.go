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

package selector

import "cdrl.dev/go/eval"

// Frame is one element on the running element-path the execution engine
// maintains while walking the event stream (spec §4.6).
type Frame struct {
	QName QName
	Attrs map[string]string
}

// FrameContext adapts a Frame (plus its accumulated text, if any) to
// eval.Context so ExpressionPredicate can evaluate against it.
type FrameContext struct {
	Frame   Frame
	Content string
	Vars    map[string]any
}

func (c FrameContext) Attr(name string) (string, bool) { v, ok := c.Frame.Attrs[name]; return v, ok }
func (c FrameContext) Text() string                     { return c.Content }
func (c FrameContext) Var(name string) (any, bool)      { v, ok := c.Vars[name]; return v, ok }

var _ eval.Context = FrameContext{}

// Matches reports whether path matches the running element-path frames,
// evaluating predicates left-to-right and short-circuiting on the first
// false one (spec §4.6). frames is the full ancestor chain from the
// document root down to, and including, the element being tested.
func Matches(path *Path, frames []Frame, evalCtx eval.Context) (bool, error) {
	steps := path.Steps
	rooted := len(steps) > 0 && steps[0].Kind == Document
	if rooted {
		steps = steps[1:]
	}

	// Only Element steps participate in path alignment; Attribute and
	// Text steps consume no frame, and Document was already consumed above.
	elementSteps := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s.Kind == Element {
			elementSteps = append(elementSteps, s)
		}
	}

	if rooted {
		if len(elementSteps) != len(frames) {
			return false, nil
		}
	} else if len(elementSteps) > len(frames) {
		return false, nil
	}

	offset := len(frames) - len(elementSteps)
	for i, step := range elementSteps {
		frame := frames[offset+i]
		if !step.QName.Wildcard() && step.QName.Local != frame.QName.Local {
			return false, nil
		}
		for _, pred := range step.Predicates {
			ok, err := evalPredicate(pred, frame, evalCtx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

func evalPredicate(pred Predicate, frame Frame, evalCtx eval.Context) (bool, error) {
	switch p := pred.(type) {
	case *PositionPredicate:
		if p.Counter == nil {
			return false, nil
		}
		return p.Counter.Current() == p.N, nil
	case *AttributeEqualsPredicate:
		v, ok := frame.Attrs[p.QName.Local]
		return ok && v == p.Literal, nil
	case *ExpressionPredicate:
		ctx := evalCtx
		if ctx == nil {
			ctx = FrameContext{Frame: frame}
		}
		return p.Evaluator.Evaluate(ctx)
	default:
		return false, nil
	}
}
