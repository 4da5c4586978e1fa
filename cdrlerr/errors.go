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

// Package cdrlerr defines the error kinds raised by the configuration
// digester and dispatch planner, annotated with the digestion stack's
// current config path (see spec §4.3, §7). Errors raised while handling
// <params> and <profiles> elements carry an empty path.
package cdrlerr

import (
	"errors"
	"fmt"
	"strings"

	"cdrl.dev/go/token"
)

// Kind enumerates the error kinds from spec §7.
type Kind int

const (
	SchemaInvalid Kind = iota
	UnsupportedNamespace
	EmptyConfiguration
	ImportCycle
	ImportIOFailure
	UnknownConditionIdRef
	DuplicateConditionId
	EmptyConditionExpression
	IllegalExtensionElement
	ExtensionResourceMissing
	InvalidSelector
	FactoryInstantiationFailure
	ReaderAcquisitionTimeout
)

func (k Kind) String() string {
	switch k {
	case SchemaInvalid:
		return "SchemaInvalid"
	case UnsupportedNamespace:
		return "UnsupportedNamespace"
	case EmptyConfiguration:
		return "EmptyConfiguration"
	case ImportCycle:
		return "ImportCycle"
	case ImportIOFailure:
		return "ImportIOFailure"
	case UnknownConditionIdRef:
		return "UnknownConditionIdRef"
	case DuplicateConditionId:
		return "DuplicateConditionId"
	case EmptyConditionExpression:
		return "EmptyConditionExpression"
	case IllegalExtensionElement:
		return "IllegalExtensionElement"
	case ExtensionResourceMissing:
		return "ExtensionResourceMissing"
	case InvalidSelector:
		return "InvalidSelector"
	case FactoryInstantiationFailure:
		return "FactoryInstantiationFailure"
	case ReaderAcquisitionTimeout:
		return "ReaderAcquisitionTimeout"
	default:
		return "Unknown"
	}
}

// ConfigError is the interface implemented by every digestion-time and
// dispatch-planning-time error this module raises. Reader-acquisition
// timeouts from the runtime package also implement it; errors returned
// by visitor callbacks are passed through unchanged, and visitor panics
// are not recovered.
type ConfigError interface {
	error
	Kind() Kind
	// Path renders the digestion stack that was active when the error
	// occurred, e.g. "/[root]/[imported.xml]".
	Path() string
	Pos() token.Position
}

type configError struct {
	kind Kind
	msg  string
	path string
	pos  token.Position
	wrap error
}

func (e *configError) Error() string {
	var b strings.Builder
	if e.path != "" {
		b.WriteString(e.path)
		b.WriteString(": ")
	}
	b.WriteString(e.msg)
	if e.wrap != nil {
		b.WriteString(": ")
		b.WriteString(e.wrap.Error())
	}
	return b.String()
}

func (e *configError) Kind() Kind          { return e.kind }
func (e *configError) Path() string        { return e.path }
func (e *configError) Pos() token.Position { return e.pos }
func (e *configError) Unwrap() error       { return e.wrap }

// New constructs a ConfigError of the given kind, scoped to the given
// digestion path, with a formatted message.
func New(kind Kind, path string, pos token.Position, format string, args ...any) ConfigError {
	return &configError{kind: kind, msg: fmt.Sprintf(format, args...), path: path, pos: pos}
}

// Wrap constructs a ConfigError that carries an underlying cause, as used
// for ImportIOFailure and FactoryInstantiationFailure.
func Wrap(kind Kind, path string, pos token.Position, cause error, format string, args ...any) ConfigError {
	return &configError{kind: kind, msg: fmt.Sprintf(format, args...), path: path, pos: pos, wrap: cause}
}

// Is reports whether err, or any error it wraps, is a ConfigError of kind k.
func Is(err error, k Kind) bool {
	var ce ConfigError
	if errors.As(err, &ce) {
		return ce.Kind() == k
	}
	return false
}

// List accumulates ConfigErrors for a caller that reports every failure
// it finds rather than stopping at the first. The digester itself stops
// at the first error and does not use List.
type List struct {
	errs []ConfigError
}

func (l *List) Add(err ConfigError) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

func (l *List) Errs() []ConfigError { return l.errs }

func (l *List) Err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return &listError{errs: l.errs}
}

type listError struct{ errs []ConfigError }

func (l *listError) Error() string {
	parts := make([]string, len(l.errs))
	for i, e := range l.errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

func (l *listError) Unwrap() []error {
	out := make([]error, len(l.errs))
	for i, e := range l.errs {
		out[i] = e
	}
	return out
}
