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

// Package digest implements the XML config digester (component C6,
// spec §4.3): it parses a .cdrl document, recurses into imports,
// expands parameterized imports, and dispatches to built-in vs
// extension element handlers, producing a resource.Sequence.
package digest

import (
	"io"
	"sync"
	"time"

	"cdrl.dev/go/cdrlerr"
	"cdrl.dev/go/eval"
	"cdrl.dev/go/internal/metrics"
	"cdrl.dev/go/resource"
	"cdrl.dev/go/token"
	"cdrl.dev/go/uriresolve"
)

// SmooksNamespace is the only default namespace a root CDRL document may
// declare (spec §4.3 "Root document rules", §6).
const SmooksNamespace = "https://www.smooks.org/xsd/smooks-2.0.xsd"

// extensionResourcePattern is the classpath lookup template for
// extension namespaces (spec §4.3 "Extension dispatch", §6).
const extensionResourcePattern = "/META-INF%s-smooks.xml"

// Mode distinguishes root digestion from extension digestion (spec §4.3
// "Extension-digest mode", §9 design note: an explicit mode threaded
// through calls, not thread-local state).
type Mode int

const (
	// RootMode accepts the full root-document element set.
	RootMode Mode = iota
	// ExtensionMode accepts only <import> and <resource-config>
	// elements; every other element name is an error (spec §4.3).
	ExtensionMode
)

// StreamLoader resolves an import or extension URI to a readable stream.
// It is the external collaborator that supplies imported document
// bytes; this package never touches a filesystem or classpath directly.
type StreamLoader interface {
	Load(uri string) (io.ReadCloser, error)
}

// ExtensionLoader resolves an extension namespace URI to the classpath
// resource that defines it (spec §4.3 "Extension dispatch", §6). The
// returned path is the key handed to the StreamLoader to read that
// resource, and is quoted in ExtensionResourceMissing errors.
type ExtensionLoader interface {
	// ClasspathPath returns the classpath-relative resource name for
	// namespaceURI (conventionally extensionResourcePattern applied to
	// the namespace's path component).
	ClasspathPath(namespaceURI string) string
}

// Digester digests CDRL documents. A Digester is not safe for concurrent
// Digest calls that share live stack state, but a Digester value itself
// may be reused sequentially (spec §5 "Digestion is single-threaded per
// task").
type Digester struct {
	loader   StreamLoader
	extLoad  ExtensionLoader
	factory  *eval.Factory
	registry *factoryRegistry

	mu         sync.Mutex
	extCache   map[string]*Digester // keyed by normalized namespace URI
}

// Option configures a Digester.
type Option func(*Digester)

// WithEvalFactory overrides the default expression-evaluator factory.
func WithEvalFactory(f *eval.Factory) Option {
	return func(d *Digester) { d.factory = f }
}

// WithResourceConfigFactory registers a named ResourceConfigFactory
// (spec §4.3 "resource-config ... build via ResourceConfigFactory
// (default or named via factory= attribute)").
func WithResourceConfigFactory(name string, f ResourceConfigFactory) Option {
	return func(d *Digester) { d.registry.register(name, f) }
}

// New returns a Digester that loads imports and extension resources
// through loader/extLoad.
func New(loader StreamLoader, extLoad ExtensionLoader, opts ...Option) *Digester {
	d := &Digester{
		loader:   loader,
		extLoad:  extLoad,
		factory:  eval.NewFactory(),
		registry: newFactoryRegistry(),
		extCache: map[string]*Digester{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Digest parses r as a root CDRL document at baseURI and returns the
// resulting resource.Sequence, or a ConfigError (spec §4.3, §7).
func (d *Digester) Digest(r io.Reader, baseURI string) (*resource.Sequence, cdrlerr.ConfigError) {
	start := time.Now()
	st := newStack()
	seq, cerr := d.digestRecursively(st, r, baseURire(baseURI), "root", RootMode)
	if cerr != nil {
		metrics.RecordDigest("error", time.Since(start))
		return nil, cerr
	}
	if len(seq.Configs()) == 0 {
		metrics.RecordDigest("error", time.Since(start))
		return nil, cdrlerr.New(cdrlerr.EmptyConfiguration, "/[root]", token.NoPos,
			"0 Content Delivery Resource definitions")
	}
	metrics.RecordDigest("ok", time.Since(start))
	return seq, nil
}

func baseURire(s string) string { return uriresolve.Normalize(s) }

// digestRecursively is the heart of C6: it parses one document, applies
// default propagation, and walks its children, recursing into <import>
// and extension elements (spec §4.3).
func (d *Digester) digestRecursively(st *stack, r io.Reader, fileURI, configFileName string, mode Mode) (*resource.Sequence, cdrlerr.ConfigError) {
	f, err := st.push(configFileName, fileURI)
	if err != nil {
		return nil, cdrlerr.New(cdrlerr.ImportCycle, st.pathOrRoot(), token.NoPos, "%s", err.Error())
	}
	defer st.pop()

	root, perr := parseNodeTree(r)
	if perr != nil {
		return nil, cdrlerr.Wrap(cdrlerr.SchemaInvalid, f.path(), token.NoPos, perr, "malformed CDRL document")
	}
	if root == nil {
		return nil, cdrlerr.New(cdrlerr.SchemaInvalid, f.path(), token.NoPos, "empty document")
	}

	// Every digested document -- root, imported, or an extension's
	// substituted classpath template -- must declare the Smooks
	// namespace (spec §4.3 "Root document rules"). encoding/xml already
	// resolves the element's namespace prefix to its URI, so the root
	// element's own Name.Space is the document's default namespace.
	ns := root.Name.Space
	if ns != SmooksNamespace {
		return nil, cdrlerr.New(cdrlerr.UnsupportedNamespace, f.path(), token.NoPos,
			"Unsupported default Namespace %q", ns)
	}
	f.defaultNamespace = ns
	if v, ok := root.attr("default-target-profile"); ok {
		f.defaultTargetProfile = v
	}
	if v, ok := root.attr("default-condition-ref"); ok {
		f.defaultConditionRef = v
	}

	seq := resource.NewSequence(fileURI)

	for _, child := range root.Children {
		if mode == ExtensionMode && child.Name.Local != "import" && child.Name.Local != "resource-config" {
			return nil, cdrlerr.New(cdrlerr.IllegalExtensionElement, f.path(), token.NoPos,
				"element %q is not permitted in extension mode", child.Name.Local)
		}

		childNS := child.Name.Space
		inSmooksNS := childNS == SmooksNamespace || childNS == ""

		switch {
		case child.Name.Local == "params" && inSmooksNS:
			if err := d.handleParams(child, seq); err != nil {
				return nil, err
			}
		case child.Name.Local == "conditions" && inSmooksNS:
			if err := d.handleConditions(child, f); err != nil {
				return nil, err
			}
		case child.Name.Local == "profiles" && inSmooksNS:
			if err := d.handleProfiles(child, seq); err != nil {
				return nil, err
			}
		case child.Name.Local == "import" && inSmooksNS:
			imported, err := d.handleImport(child, st, f, mode)
			if err != nil {
				return nil, err
			}
			if err := seq.Append(imported); err != nil {
				return nil, cdrlerr.New(cdrlerr.SchemaInvalid, f.path(), token.NoPos, "%s", err.Error())
			}
		case child.Name.Local == "reader" && inSmooksNS:
			cfg, err := d.handleReader(child, f)
			if err != nil {
				return nil, err
			}
			seq.AddConfig(cfg)
		case child.Name.Local == "resource-config" && inSmooksNS:
			cfg, err := d.handleResourceConfig(child, f)
			if err != nil {
				return nil, err
			}
			seq.AddConfig(cfg)
		case !inSmooksNS:
			extSeq, err := d.handleExtension(child, childNS, f)
			if err != nil {
				return nil, err
			}
			if err := seq.Append(extSeq); err != nil {
				return nil, cdrlerr.New(cdrlerr.SchemaInvalid, f.path(), token.NoPos, "%s", err.Error())
			}
		default:
			return nil, cdrlerr.New(cdrlerr.SchemaInvalid, f.path(), token.NoPos,
				"unrecognized element %q", child.Name.Local)
		}
	}

	return seq, nil
}

// pathOrRoot renders the live stack's current config path (the
// getCurrentPath() form), or "/[root]" when no frame has been pushed.
func (s *stack) pathOrRoot() string {
	if s.top == nil {
		return "/[root]"
	}
	return s.top.path()
}
