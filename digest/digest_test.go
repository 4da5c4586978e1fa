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
	"io"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"cdrl.dev/go/cdrlerr"
)

// fakeLoader serves documents from an in-memory map, keyed by the exact
// URI string a test resolves an import or extension reference to.
type fakeLoader map[string]string

func (f fakeLoader) Load(uri string) (io.ReadCloser, error) {
	body, ok := f[uri]
	if !ok {
		return nil, fmt.Errorf("fakeLoader: no document at %q", uri)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

// fakeExtensionLoader maps every namespace to a fixed classpath entry in
// the same fakeLoader map, following extensionResourcePattern loosely
// (tests register the resulting path directly rather than deriving it).
type fakeExtensionLoader map[string]string

func (f fakeExtensionLoader) ClasspathPath(namespaceURI string) string {
	return f[namespaceURI]
}

const smooksHeader = `<?xml version="1.0"?>
<smooks-resource-list xmlns="https://www.smooks.org/xsd/smooks-2.0.xsd">`

func TestDigestSimpleResourceConfig(t *testing.T) {
	doc := smooksHeader + `
  <resource-config selector="order">
    <resource>com.example.OrderVisitor</resource>
    <param name="mode">strict</param>
  </resource-config>
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	seq, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNil(cerr))
	qt.Assert(t, qt.HasLen(seq.Configs(), 1))

	cfg := seq.Configs()[0]
	qt.Assert(t, qt.Equals(cfg.ResourceLocator, "com.example.OrderVisitor"))
	qt.Assert(t, qt.IsTrue(cfg.Selector != nil))
	mode, ok := cfg.Params.First("mode")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(mode.Raw, "strict"))
}

func TestDigestEmptyConfigurationIsError(t *testing.T) {
	doc := smooksHeader + `
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	_, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.EmptyConfiguration))
}

// TestDigestProfilesOnlyIsEmptyConfigurationError guards against checking
// seq.Len() instead of len(seq.Configs()): a document that declares only
// a <profiles> block, with no resource-config at all, still has 0
// Content Delivery Resource definitions and must fail the same way an
// entirely empty document does.
func TestDigestProfilesOnlyIsEmptyConfigurationError(t *testing.T) {
	doc := smooksHeader + `
  <profiles>
    <profile base-profile="checkout" sub-profiles="billing,shipping" />
  </profiles>
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	_, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.EmptyConfiguration))
}

func TestDigestUnsupportedNamespaceIsError(t *testing.T) {
	doc := `<?xml version="1.0"?>
<smooks-resource-list xmlns="https://example.com/wrong">
  <resource-config selector="order">
    <resource>com.example.OrderVisitor</resource>
  </resource-config>
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	_, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.UnsupportedNamespace))
}

func TestDigestImportCycleIsError(t *testing.T) {
	root := smooksHeader + `
  <import file="child.xml"/>
</smooks-resource-list>`
	child := smooksHeader + `
  <import file="root.xml"/>
</smooks-resource-list>`

	loader := fakeLoader{
		"test:///root.xml":  root,
		"test:///child.xml": child,
	}
	d := New(loader, fakeExtensionLoader{})
	_, cerr := d.Digest(strings.NewReader(root), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.ImportCycle))
}

func TestDigestImportMissingIsIOFailure(t *testing.T) {
	root := smooksHeader + `
  <import file="missing.xml"/>
</smooks-resource-list>`

	d := New(fakeLoader{"test:///root.xml": root}, fakeExtensionLoader{})
	_, cerr := d.Digest(strings.NewReader(root), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.ImportIOFailure))
}

func TestDigestParameterizedImportSubstitution(t *testing.T) {
	root := smooksHeader + `
  <import file="child.xml">
    <param name="MODE">fast</param>
  </import>
</smooks-resource-list>`
	child := smooksHeader + `
  <resource-config selector="order">
    <resource>com.example.OrderVisitor</resource>
    <param name="mode">@MODE@</param>
  </resource-config>
</smooks-resource-list>`

	loader := fakeLoader{
		"test:///root.xml":  root,
		"test:///child.xml": child,
	}
	d := New(loader, fakeExtensionLoader{})
	seq, cerr := d.Digest(strings.NewReader(root), "test:///root.xml")
	qt.Assert(t, qt.IsNil(cerr))
	qt.Assert(t, qt.HasLen(seq.Configs(), 1))

	mode, ok := seq.Configs()[0].Params.First("mode")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(mode.Raw, "fast"))
}

func TestDigestDuplicateConditionIdIsError(t *testing.T) {
	doc := smooksHeader + `
  <conditions>
    <condition id="isOrder">@type == 'order'</condition>
    <condition id="isOrder">@type == 'invoice'</condition>
  </conditions>
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	_, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.DuplicateConditionId))
}

func TestDigestUnknownConditionIdRefIsError(t *testing.T) {
	doc := smooksHeader + `
  <resource-config selector="order">
    <resource>com.example.OrderVisitor</resource>
    <condition idRef="missing"/>
  </resource-config>
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	_, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.UnknownConditionIdRef))
}

func TestDigestConditionIdRefResolves(t *testing.T) {
	doc := smooksHeader + `
  <conditions>
    <condition id="isOrder">@type == 'order'</condition>
  </conditions>
  <resource-config selector="order">
    <resource>com.example.OrderVisitor</resource>
    <condition idRef="isOrder"/>
  </resource-config>
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	seq, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNil(cerr))
	qt.Assert(t, qt.HasLen(seq.Configs(), 1))
	qt.Assert(t, qt.IsTrue(seq.Configs()[0].Condition != nil))
}

func TestDigestGlobalParamsMergeIntoSentinel(t *testing.T) {
	doc := smooksHeader + `
  <params>
    <param name="encoding">UTF-8</param>
  </params>
  <resource-config selector="order">
    <resource>com.example.OrderVisitor</resource>
  </resource-config>
</smooks-resource-list>`

	d := New(fakeLoader{}, fakeExtensionLoader{})
	seq, cerr := d.Digest(strings.NewReader(doc), "test:///root.xml")
	qt.Assert(t, qt.IsNil(cerr))

	found := findGlobalParameters(seq)
	qt.Assert(t, qt.IsTrue(found != nil))
	enc, ok := found.Params.First("encoding")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(enc.Raw, "UTF-8"))
}

func TestDigestExtensionDispatchSubstitutesAndDigests(t *testing.T) {
	extNS := "https://example.com/ext-1.0"
	root := `<?xml version="1.0"?>
<smooks-resource-list xmlns="https://www.smooks.org/xsd/smooks-2.0.xsd"
                       xmlns:ext="` + extNS + `">
  <ext:myExtension target="order"/>
</smooks-resource-list>`

	classpathPath := "/META-INF/ext-smooks.xml"
	extTemplate := smooksHeader + `
  <resource-config selector="@target@">
    <resource>com.example.ExtVisitor</resource>
  </resource-config>
</smooks-resource-list>`

	loader := fakeLoader{classpathPath: extTemplate}
	extLoad := fakeExtensionLoader{extNS: classpathPath}

	d := New(loader, extLoad)
	seq, cerr := d.Digest(strings.NewReader(root), "test:///root.xml")
	qt.Assert(t, qt.IsNil(cerr))
	qt.Assert(t, qt.HasLen(seq.Configs(), 1))
	qt.Assert(t, qt.Equals(seq.Configs()[0].ResourceLocator, "com.example.ExtVisitor"))
}

func TestDigestIllegalExtensionElementInExtensionMode(t *testing.T) {
	extNS := "https://example.com/ext-1.0"
	root := `<?xml version="1.0"?>
<smooks-resource-list xmlns="https://www.smooks.org/xsd/smooks-2.0.xsd"
                       xmlns:ext="` + extNS + `">
  <ext:myExtension/>
</smooks-resource-list>`

	classpathPath := "/META-INF/ext-smooks.xml"
	extTemplate := smooksHeader + `
  <profiles>
    <profile base-profile="x"/>
  </profiles>
</smooks-resource-list>`

	loader := fakeLoader{classpathPath: extTemplate}
	extLoad := fakeExtensionLoader{extNS: classpathPath}

	d := New(loader, extLoad)
	_, cerr := d.Digest(strings.NewReader(root), "test:///root.xml")
	qt.Assert(t, qt.IsNotNil(cerr))
	qt.Assert(t, qt.Equals(cerr.Kind(), cdrlerr.IllegalExtensionElement))
}
