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
	"io"
	"strings"

	"cdrl.dev/go/cdrlerr"
	"cdrl.dev/go/resource"
	"cdrl.dev/go/selector"
	"cdrl.dev/go/token"
	"cdrl.dev/go/uriresolve"
)

// copyAll drains r into w, reporting the first error either side
// produces. Kept as a small indirection (rather than calling io.Copy
// directly at each call site) so import/extension loading has one place
// to adjust buffering if a loader ever streams large documents.
func copyAll(w io.Writer, r io.Reader) (int64, error) {
	return io.Copy(w, r)
}

// handleParams appends every <param name>VALUE</param> child to the
// sentinel GLOBAL_PARAMETERS resource-config (spec §4.3 "params").
func (d *Digester) handleParams(n *node, seq *resource.Sequence) cdrlerr.ConfigError {
	sentinel := findGlobalParameters(seq)
	if sentinel == nil {
		sentinel = &resource.Config{ResourceLocator: resource.GlobalParametersLocator}
		seq.AddConfig(sentinel)
	}
	for _, p := range n.childrenNamed("param") {
		name, _ := p.attr("name")
		typ, _ := p.attr("type")
		param, err := resource.NewParameter(name, typ, p.Text)
		if err != nil {
			return cdrlerr.Wrap(cdrlerr.SchemaInvalid, "", token.NoPos, err, "invalid global param %q", name)
		}
		sentinel.Params.Add(param)
	}
	return nil
}

func findGlobalParameters(seq *resource.Sequence) *resource.Config {
	for _, c := range seq.Configs() {
		if c.ResourceLocator == resource.GlobalParametersLocator {
			return c
		}
	}
	return nil
}

// handleConditions registers each <condition id evaluator?>EXPR</condition>
// in f (spec §4.3 "conditions").
func (d *Digester) handleConditions(n *node, f *frame) cdrlerr.ConfigError {
	for _, c := range n.childrenNamed("condition") {
		id, _ := c.attr("id")
		evaluatorClass, _ := c.attr("evaluator")
		expr := strings.TrimSpace(c.Text)
		ev, cerr := d.factory.Create(evaluatorClass, expr, f.path(), token.NoPos)
		if cerr != nil {
			return cerr
		}
		if err := f.registerCondition(id, ev); err != nil {
			return cdrlerr.New(cdrlerr.DuplicateConditionId, f.path(), token.NoPos, "%s", err.Error())
		}
	}
	return nil
}

// handleProfiles emits a resource.ProfileSet per <profile/> child (spec
// §4.3 "profiles").
func (d *Digester) handleProfiles(n *node, seq *resource.Sequence) cdrlerr.ConfigError {
	for _, p := range n.childrenNamed("profile") {
		base, _ := p.attr("base-profile")
		subsAttr, _ := p.attr("sub-profiles")
		var subs []string
		if subsAttr != "" {
			for _, s := range strings.Split(subsAttr, ",") {
				s = strings.TrimSpace(s)
				if s != "" {
					subs = append(subs, s)
				}
			}
		}
		if err := seq.AddProfile(resource.NewProfileSet(base, subs)); err != nil {
			return cdrlerr.New(cdrlerr.SchemaInvalid, "", token.NoPos, "%s", err.Error())
		}
	}
	return nil
}

// handleImport resolves, loads, parameter-substitutes, and recursively
// digests an <import file="..."> element (spec §4.3 "import", §6).
func (d *Digester) handleImport(n *node, st *stack, f *frame, mode Mode) (*resource.Sequence, cdrlerr.ConfigError) {
	file, ok := n.attr("file")
	if !ok || file == "" {
		return nil, cdrlerr.New(cdrlerr.SchemaInvalid, f.path(), token.NoPos, "<import> missing file= attribute")
	}

	importURI, err := uriresolve.Resolve(f.fileURI, file)
	if err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.ImportIOFailure, f.path(), token.NoPos, err, "cannot resolve import %q", file)
	}

	rc, err := d.loader.Load(importURI)
	if err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.ImportIOFailure, f.path(), token.NoPos, err, "cannot load import %q", importURI)
	}
	defer rc.Close()

	text := new(strings.Builder)
	if _, err := copyAll(text, rc); err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.ImportIOFailure, f.path(), token.NoPos, err, "cannot read import %q", importURI)
	}

	substituted := text.String()
	for _, p := range n.childrenNamed("param") {
		name, _ := p.attr("name")
		if name == "" {
			continue
		}
		substituted = strings.ReplaceAll(substituted, "@"+name+"@", p.innerXML())
	}

	childSeq, cerr := d.digestRecursively(st, strings.NewReader(substituted), importURI, file, mode)
	if cerr != nil {
		return nil, cerr
	}
	return childSeq, nil
}

// handleReader builds the synthetic "org.xml.sax.driver" resource-config
// for a <reader> element (spec §4.3 "reader").
func (d *Digester) handleReader(n *node, f *frame) (*resource.Config, cdrlerr.ConfigError) {
	sel, serr := selector.Compile("org.xml.sax.driver", n.namespaces, d.factory)
	if serr != nil {
		return nil, cdrlerr.Wrap(cdrlerr.SchemaInvalid, f.path(), token.NoPos, serr, "invalid reader selector")
	}
	cfg := &resource.Config{Selector: sel, SourceFile: f.path()}
	cfg.ResourceLocator, _ = n.attr("class")

	for _, handlers := range n.childrenNamed("handlers") {
		for _, h := range handlers.childrenNamed("handler") {
			if cls, ok := h.attr("class"); ok {
				p, err := resource.NewParameter("sax-handler", "", cls)
				if err != nil {
					return nil, cdrlerr.Wrap(cdrlerr.SchemaInvalid, f.path(), token.NoPos, err, "invalid sax-handler")
				}
				cfg.Params.Add(p)
			}
		}
	}
	for _, features := range n.childrenNamed("features") {
		for _, on := range features.childrenNamed("setOn") {
			if feat, ok := on.attr("feature"); ok {
				p, _ := resource.NewParameter("feature-on", "", feat)
				cfg.Params.Add(p)
			}
		}
		for _, off := range features.childrenNamed("setOff") {
			if feat, ok := off.attr("feature"); ok {
				p, _ := resource.NewParameter("feature-off", "", feat)
				cfg.Params.Add(p)
			}
		}
	}
	for _, params := range n.childrenNamed("params") {
		if err := copyParams(params, &cfg.Params); err != nil {
			return nil, cdrlerr.Wrap(cdrlerr.SchemaInvalid, f.path(), token.NoPos, err, "invalid reader param")
		}
	}
	return cfg, nil
}

// handleResourceConfig builds a resource-config from a <resource-config>
// element (spec §4.3 "resource-config").
func (d *Digester) handleResourceConfig(n *node, f *frame) (*resource.Config, cdrlerr.ConfigError) {
	factoryName, _ := n.attr("factory")
	build, ok := d.registry.get(factoryName)
	if !ok {
		return nil, cdrlerr.New(cdrlerr.FactoryInstantiationFailure, f.path(), token.NoPos,
			"unknown resource-config factory %q", factoryName)
	}
	cfg, err := build(n)
	if err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.FactoryInstantiationFailure, f.path(), token.NoPos, err,
			"factory %q failed", factoryName)
	}
	cfg.Factory = factoryName
	cfg.SourceFile = f.path()

	if selStr, ok := n.attr("selector"); ok && selStr != "" {
		sel, serr := selector.Compile(selStr, n.namespaces, d.factory)
		if serr != nil {
			return nil, cdrlerr.Wrap(cdrlerr.SchemaInvalid, f.path(), token.NoPos, serr, "invalid selector %q", selStr)
		}
		cfg.Selector = sel
	}

	cfg.TargetProfile, _ = n.attr("target-profile")
	if cfg.TargetProfile == "" {
		cfg.TargetProfile = f.defaultTargetProfile
	}

	if cerr := d.attachCondition(n, f, cfg); cerr != nil {
		return nil, cerr
	}

	if err := copyParams(n, &cfg.Params); err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.SchemaInvalid, f.path(), token.NoPos, err, "invalid resource-config param")
	}

	return cfg, nil
}

// attachCondition resolves a <resource-config>'s condition, either
// inline, by idRef, or falling back to the document's
// default-condition-ref (spec §4.3 "resource-config").
func (d *Digester) attachCondition(n *node, f *frame, cfg *resource.Config) cdrlerr.ConfigError {
	conds := n.childrenNamed("condition")
	if len(conds) == 0 {
		if f.defaultConditionRef == "" {
			return nil
		}
		ev, ok := f.lookupCondition(f.defaultConditionRef)
		if !ok {
			return cdrlerr.New(cdrlerr.UnknownConditionIdRef, f.path(), token.NoPos,
				"default-condition-ref %q not found", f.defaultConditionRef)
		}
		cfg.Condition = ev
		return nil
	}

	c := conds[0]
	if idRef, ok := c.attr("idRef"); ok && idRef != "" {
		ev, ok := f.lookupCondition(idRef)
		if !ok {
			return cdrlerr.New(cdrlerr.UnknownConditionIdRef, f.path(), token.NoPos, "idRef %q not found", idRef)
		}
		cfg.Condition = ev
		return nil
	}

	evaluatorClass, _ := c.attr("evaluator")
	expr := strings.TrimSpace(c.Text)
	ev, cerr := d.factory.Create(evaluatorClass, expr, f.path(), token.NoPos)
	if cerr != nil {
		return cerr
	}
	cfg.Condition = ev
	return nil
}

// handleExtension resolves and runs an extension-namespace template
// (spec §4.3 "Extension dispatch", §6). Individual visitor
// implementations are user-supplied and out of scope (spec §1), so
// rather than executing a separate DOM-visitor engine, the extension's
// classpath template is driven through the same @NAME@-substitution and
// nested-digest machinery already built for <import>: the extension
// element's own attributes and children supply the substitution values,
// and the substituted template is digested in ExtensionMode.
func (d *Digester) handleExtension(n *node, namespaceURI string, f *frame) (*resource.Sequence, cdrlerr.ConfigError) {
	ext := d.extensionDigester(namespaceURI)

	classpathPath := d.extLoad.ClasspathPath(namespaceURI)
	rc, err := ext.loader.Load(classpathPath)
	if err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.ExtensionResourceMissing, f.path(), token.NoPos, err,
			"no extension resource for namespace %q (looked for %q)", namespaceURI, classpathPath)
	}
	defer rc.Close()

	text := new(strings.Builder)
	if _, err := copyAll(text, rc); err != nil {
		return nil, cdrlerr.Wrap(cdrlerr.ExtensionResourceMissing, f.path(), token.NoPos, err,
			"cannot read extension resource %q", classpathPath)
	}

	substituted := text.String()
	for _, a := range n.Attrs {
		substituted = strings.ReplaceAll(substituted, "@"+a.Name.Local+"@", a.Value)
	}
	for _, c := range n.Children {
		substituted = strings.ReplaceAll(substituted, "@"+c.Name.Local+"@", c.innerXML())
	}

	st := newStack()
	seq, cerr := ext.digestRecursively(st, strings.NewReader(substituted), classpathPath, namespaceURI, ExtensionMode)
	if cerr != nil {
		return nil, cerr
	}
	return seq, nil
}

// extensionDigester returns the cached Digester "identity" for
// namespaceURI, creating one on first use (spec §4.3: "a second
// invocation with the same namespace URI yields the same extension
// digester identity"). The cached digester shares this Digester's
// loader, extension loader, and evaluator factory but digests under its
// own frame stack per call.
func (d *Digester) extensionDigester(namespaceURI string) *Digester {
	key := uriresolve.Normalize(namespaceURI)

	d.mu.Lock()
	defer d.mu.Unlock()
	if cached, ok := d.extCache[key]; ok {
		return cached
	}
	nested := New(d.loader, d.extLoad, WithEvalFactory(d.factory))
	d.extCache[key] = nested
	return nested
}

// copyParams copies every <param name [type]>VAL</param> child of n into
// m (spec §4.3 "resource-config": "copy all param children into the
// config's parameter map").
func copyParams(n *node, m *resource.ParameterMap) error {
	for _, p := range n.childrenNamed("param") {
		name, _ := p.attr("name")
		typ, _ := p.attr("type")
		param, err := resource.NewParameter(name, typ, p.Text)
		if err != nil {
			return err
		}
		m.Add(param)
	}
	return nil
}
