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

package selector_test

import (
	"testing"

	qt "github.com/go-quicktest/qt"

	"cdrl.dev/go/eval"
	"cdrl.dev/go/selector"
)

func TestCompileSimpleElement(t *testing.T) {
	p, err := selector.Compile("order", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(p.Steps), 1))
	qt.Assert(t, qt.Equals(p.Steps[0].Kind, selector.Element))
	qt.Assert(t, qt.Equals(p.Steps[0].QName.Local, "order"))
	qt.Assert(t, qt.IsTrue(p.Indexed()))
	qt.Assert(t, qt.Equals(p.DispatchKey(), "order"))
}

func TestCompileLeadingSlashIsDocumentRoot(t *testing.T) {
	p, err := selector.Compile("/order/item", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(p.Steps[0].Kind, selector.Document))
	qt.Assert(t, qt.Equals(p.DispatchKey(), "item"))
}

func TestCompilePositionPredicate(t *testing.T) {
	p, err := selector.Compile("a/b[2]", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	last := p.Steps[len(p.Steps)-1]
	pred, ok := last.Predicates[0].(*selector.PositionPredicate)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(pred.N, 2))
}

func TestCompileTextSetsAccessesText(t *testing.T) {
	p, err := selector.Compile("a/b/text()", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(p.Steps), 3))
	qt.Assert(t, qt.IsTrue(p.Steps[1].AccessesText()))
	qt.Assert(t, qt.Equals(p.Steps[2].Kind, selector.Text))
	// Not indexed: final step is Text, not Element.
	qt.Assert(t, qt.IsFalse(p.Indexed()))
}

func TestCompileAttributeEqualsPredicate(t *testing.T) {
	p, err := selector.Compile("b[@type='x']", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	pred, ok := p.Steps[0].Predicates[0].(*selector.AttributeEqualsPredicate)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(pred.QName.Local, "type"))
	qt.Assert(t, qt.Equals(pred.Literal, "x"))
}

func TestCompileQuotedLiteralWithSpaces(t *testing.T) {
	p, err := selector.Compile("b[@type = 'a value']", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	pred, ok := p.Steps[0].Predicates[0].(*selector.AttributeEqualsPredicate)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(pred.Literal, "a value"))
}

func TestCompileWildcard(t *testing.T) {
	p, err := selector.Compile("*", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(p.Steps[0].QName.Wildcard()))
}

func TestCompileExpressionPredicate(t *testing.T) {
	p, err := selector.Compile("b[@x == 'y' && @z == '1']", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	_, ok := p.Steps[0].Predicates[0].(*selector.ExpressionPredicate)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestMatchesSuffix(t *testing.T) {
	p, err := selector.Compile("a/b", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	frames := []selector.Frame{
		{QName: selector.QName{Local: "root"}},
		{QName: selector.QName{Local: "a"}},
		{QName: selector.QName{Local: "b"}},
	}
	ok, err := selector.Matches(p, frames, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(ok))
}

func TestMatchesRootedRequiresFullAlignment(t *testing.T) {
	p, err := selector.Compile("/a/b", nil, eval.NewFactory())
	qt.Assert(t, qt.IsNil(err))
	frames := []selector.Frame{
		{QName: selector.QName{Local: "root"}},
		{QName: selector.QName{Local: "a"}},
		{QName: selector.QName{Local: "b"}},
	}
	ok, err := selector.Matches(p, frames, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(ok))
}
