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
	"encoding/xml"
	"io"
	"strings"
)

// node is a generic, parsed representation of one CDRL XML element. The
// digester walks a tree of these rather than operating on xml.Decoder
// tokens directly, because extension dispatch reads a whole extension
// element's attributes and children (its children re-serialized as XML)
// as substitution values for the extension's template (spec §4.3
// "Extension dispatch"). The parse loop itself follows the same
// xml.Decoder token loop the teacher's encoding/xml/koala decoder uses.
type node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*node
	Text     string
	Parent   *node

	// namespaces is the xmlns prefix table in scope at this node,
	// inherited from and possibly extended beyond the parent's.
	namespaces map[string]string
}

// attr returns the value of the named attribute (by local name, ignoring
// namespace), if present.
func (n *node) attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// childrenNamed returns the child elements with the given local name, in
// document order.
func (n *node) childrenNamed(local string) []*node {
	var out []*node
	for _, c := range n.Children {
		if c.Name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// innerXML serializes n's children (not n itself) back to XML text, used
// for <import> parameter substitution (spec §4.3, §6: "substitution
// value is the XML-serialized inner content of the matching <param>").
func (n *node) innerXML() string {
	var b strings.Builder
	for _, c := range n.Children {
		writeNodeXML(&b, c)
	}
	if b.Len() == 0 {
		return n.Text
	}
	return b.String()
}

func writeNodeXML(b *strings.Builder, n *node) {
	b.WriteByte('<')
	b.WriteString(n.Name.Local)
	for _, a := range n.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name.Local)
		b.WriteString(`="`)
		xml.EscapeText(b2w{b}, []byte(a.Value))
		b.WriteByte('"')
	}
	if len(n.Children) == 0 && strings.TrimSpace(n.Text) == "" {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	if n.Text != "" {
		xml.EscapeText(b2w{b}, []byte(n.Text))
	}
	for _, c := range n.Children {
		writeNodeXML(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Name.Local)
	b.WriteByte('>')
}

// b2w adapts a *strings.Builder to io.Writer for xml.EscapeText.
type b2w struct{ b *strings.Builder }

func (w b2w) Write(p []byte) (int, error) { return w.b.Write(p) }

// parseNodeTree decodes r as XML into a node tree rooted at the document
// element.
func parseNodeTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var root *node
	var stack []*node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			ns := map[string]string{}
			if len(stack) > 0 {
				for k, v := range stack[len(stack)-1].namespaces {
					ns[k] = v
				}
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					ns[a.Name.Local] = a.Value
				} else if a.Name.Local == "xmlns" {
					ns[""] = a.Value
				}
			}
			n := &node{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...), namespaces: ns}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				n.Parent = parent
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	return root, nil
}
