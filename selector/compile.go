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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"cdrl.dev/go/eval"
	"cdrl.dev/go/token"
)

var zeroPos = token.NoPos

// Compile parses a selector string (the XPath subset in spec §4.1) into
// a Path. namespaces is the prefix table in effect at the point the
// selector was declared; it is captured into every Element/Attribute
// step so later reuse never needs prefix-mapping state again. factory
// resolves Expression predicate bodies into Evaluators.
func Compile(sel string, namespaces map[string]string, factory *eval.Factory) (*Path, error) {
	raw := sel
	steps, err := splitSteps(sel)
	if err != nil {
		return nil, fmt.Errorf("selector: %q: %w", raw, err)
	}

	p := &Path{Namespaces: namespaces, Source: raw}

	leading := false
	if len(steps) > 0 && steps[0] == "" {
		leading = true
		steps = steps[1:]
	}
	if leading {
		p.Steps = append(p.Steps, Step{Kind: Document})
	}

	for _, raw := range steps {
		step, err := compileStep(raw, namespaces, factory)
		if err != nil {
			return nil, fmt.Errorf("selector: %q: %w", sel, err)
		}
		p.Steps = append(p.Steps, step)
	}

	// Propagate accessesText onto the preceding Element step (spec §4.1:
	// "text() becomes a Text step and sets the containing Element step's
	// accessesText=true").
	for i := 1; i < len(p.Steps); i++ {
		if p.Steps[i].Kind == Text && p.Steps[i-1].Kind == Element {
			p.Steps[i-1].accessesText = true
		}
	}

	return p, nil
}

// splitSteps splits sel on '/' while respecting '[' ... ']' nesting, so a
// predicate body containing a literal '/' does not get split apart.
func splitSteps(sel string) ([]string, error) {
	var steps []string
	depth := 0
	start := 0
	for i, r := range sel {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']'")
			}
		case '/':
			if depth == 0 {
				steps = append(steps, sel[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '['")
	}
	steps = append(steps, sel[start:])
	return steps, nil
}

func compileStep(raw string, namespaces map[string]string, factory *eval.Factory) (Step, error) {
	nameTest, predicateBodies, err := splitPredicates(raw)
	if err != nil {
		return Step{}, err
	}

	step := Step{Namespaces: namespaces}

	switch {
	case nameTest == "text()":
		step.Kind = Text
	case nameTest == "@*" || strings.HasPrefix(nameTest, "@"):
		step.Kind = Attribute
		step.QName = parseQName(strings.TrimPrefix(nameTest, "@"))
	case nameTest == "*" || nameTest != "":
		step.Kind = Element
		step.QName = parseQName(nameTest)
	default:
		return Step{}, fmt.Errorf("empty step")
	}
	if step.QName.Prefix != "" {
		step.QName.NamespaceURI = namespaces[step.QName.Prefix]
	}

	for _, body := range predicateBodies {
		pred, err := compilePredicate(body, namespaces, factory)
		if err != nil {
			return Step{}, err
		}
		step.Predicates = append(step.Predicates, pred)
	}
	return step, nil
}

func splitPredicates(raw string) (nameTest string, predicates []string, err error) {
	i := strings.IndexByte(raw, '[')
	if i < 0 {
		return raw, nil, nil
	}
	nameTest = raw[:i]
	rest := raw[i:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("expected '[' in %q", raw)
		}
		depth := 0
		j := 0
		for ; j < len(rest); j++ {
			switch rest[j] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					goto closed
				}
			}
		}
		return "", nil, fmt.Errorf("unterminated predicate in %q", raw)
	closed:
		predicates = append(predicates, rest[1:j])
		rest = rest[j+1:]
	}
	return nameTest, predicates, nil
}

func parseQName(s string) QName {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return QName{Prefix: s[:i], Local: s[i+1:]}
	}
	return QName{Local: s}
}

func compilePredicate(body string, namespaces map[string]string, factory *eval.Factory) (Predicate, error) {
	body = strings.TrimSpace(body)
	if n, err := strconv.Atoi(body); err == nil {
		if n < 1 {
			return nil, fmt.Errorf("position predicate must be >= 1, got %d", n)
		}
		return &PositionPredicate{N: n}, nil
	}

	// google/shlex tokenizes the predicate body so a quoted literal
	// containing '=' or whitespace ("@type = 'a b'") still yields exactly
	// the three tokens of an attribute-equality test.
	toks, shlexErr := shlex.Split(body)
	if shlexErr == nil && len(toks) == 3 && toks[1] == "=" {
		name := strings.TrimPrefix(toks[0], "@")
		literal := unquote(toks[2])
		return &AttributeEqualsPredicate{QName: parseQName(name), Literal: literal}, nil
	}
	if shlexErr == nil && len(toks) == 1 {
		if i := strings.IndexByte(toks[0], '='); i > 0 {
			name := strings.TrimPrefix(toks[0][:i], "@")
			literal := unquote(toks[0][i+1:])
			return &AttributeEqualsPredicate{QName: parseQName(name), Literal: literal}, nil
		}
	}

	ev, cerr := factory.Create("", body, "", zeroPos)
	if cerr != nil {
		return nil, cerr
	}
	return &ExpressionPredicate{Evaluator: ev, Source: body}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
