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
	"fmt"
	"strings"

	"cdrl.dev/go/eval"
)

// frame is one SmooksConfig stack entry (spec §3 "SmooksConfig frame"):
// it gives lexical scoping to idRef condition lookups and default
// profile/condition propagation.
type frame struct {
	configFileName   string
	parent           *frame
	fileURI          string
	defaultNamespace string

	defaultTargetProfile string
	defaultConditionRef  string

	conditions map[string]eval.Evaluator
}

func newFrame(configFileName, fileURI string, parent *frame) *frame {
	return &frame{
		configFileName: configFileName,
		fileURI:        fileURI,
		parent:         parent,
		conditions:     map[string]eval.Evaluator{},
	}
}

// registerCondition installs id in this frame, rejecting a duplicate
// (spec §3 invariant: "condition IDs are unique" per frame).
func (f *frame) registerCondition(id string, ev eval.Evaluator) error {
	if _, exists := f.conditions[id]; exists {
		return fmt.Errorf("duplicate condition id %q", id)
	}
	f.conditions[id] = ev
	return nil
}

// lookupCondition walks f and its ancestors until id is found (spec §3:
// "a lookup walks parent frames until found").
func (f *frame) lookupCondition(id string) (eval.Evaluator, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if ev, ok := cur.conditions[id]; ok {
			return ev, true
		}
	}
	return nil, false
}

// path renders the digestion stack as "/[root]/[imported.xml]" (spec
// §4.3 "getCurrentPath()"), read from the innermost frame outward.
func (f *frame) path() string {
	var names []string
	for cur := f; cur != nil; cur = cur.parent {
		name := cur.configFileName
		if name == "" {
			name = "root"
		}
		names = append([]string{name}, names...)
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString("/[")
		b.WriteString(n)
		b.WriteString("]")
	}
	return b.String()
}

// stack tracks the live digestion frames plus the normalized file URIs
// currently being processed, for import-cycle detection (spec §4.3
// "pushConfig"/"popConfig", §9 "Cycle detection via identity on URI").
type stack struct {
	top    *frame
	onPath map[string]bool
}

func newStack() *stack {
	return &stack{onPath: map[string]bool{}}
}

// push installs a new frame as the current top, asserting uri (already
// normalized by the caller) is not already on the live stack.
func (s *stack) push(configFileName, uri string) (*frame, error) {
	if uri != "" && s.onPath[uri] {
		return nil, fmt.Errorf("invalid circular reference to %q", uri)
	}
	f := newFrame(configFileName, uri, s.top)
	if uri != "" {
		s.onPath[uri] = true
	}
	s.top = f
	return f, nil
}

// pop removes the current top frame.
func (s *stack) pop() {
	if s.top == nil {
		return
	}
	if s.top.fileURI != "" {
		delete(s.onPath, s.top.fileURI)
	}
	s.top = s.top.parent
}
