// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package ident provides process-wide string interning for identifiers, plus
// the namespaced/qualified/resolvable identifier algebra used throughout
// semantic analysis.
package ident

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/airlang/airc/pkg/internal/invariant"
	"github.com/airlang/airc/pkg/source"
)

// Id is an interned string handle.  Two identifiers with the same text
// always intern to the same Id within one Interner; separate Interners
// number their strings independently (the global interner has process
// lifetime and is never reset).
type Id uint32

// GobEncode implements gob.GobEncoder. An Id is only meaningful within the
// process whose interner produced it, so it is encoded by its underlying
// text and re-interned (via the decoding process's own global interner) on
// the way back in, rather than by its raw numeric value.
func (id Id) GobEncode() ([]byte, error) {
	return []byte(Text(id)), nil
}

// GobDecode implements gob.GobDecoder.
func (id *Id) GobDecode(data []byte) error {
	*id = Intern(string(data))

	return nil
}

// Interner maps identifier text to stable integer handles.  It grows
// monotonically and is never garbage collected; interning is a compiler-wide
// concern, not a per-compilation one.
type Interner struct {
	mu     sync.Mutex
	lookup map[string]Id
	names  []string
}

// global is the process-wide interner.  All Identifier construction goes
// through it so that two occurrences of the same name anywhere in a
// compilation share one Id.
var global = NewInterner()

// NewInterner constructs an empty interner.  Exposed primarily for testing;
// production code should use the package-level Intern/Text helpers which
// operate on the shared global interner.
func NewInterner() *Interner {
	return &Interner{lookup: make(map[string]Id)}
}

// Intern returns the Id for s, allocating a new one if s has not been seen
// before.
func (in *Interner) Intern(s string) Id {
	in.mu.Lock()
	defer in.mu.Unlock()

	if id, ok := in.lookup[s]; ok {
		return id
	}

	id := Id(len(in.names))
	in.names = append(in.names, s)
	in.lookup[s] = id

	return id
}

// Text returns the original string for id.  Panics if id was never produced
// by this interner, which would indicate an internal compiler bug.
func (in *Interner) Text(id Id) string {
	in.mu.Lock()
	defer in.mu.Unlock()

	invariant.Check(int(id) < len(in.names), "ident: unknown interned id %d", id)

	return in.names[id]
}

// Intern interns s using the shared global interner.
func Intern(s string) Id { return global.Intern(s) }

// Text resolves id to its string using the shared global interner.
func Text(id Id) string { return global.Text(id) }

// Identifier is a single (non-namespaced) name occurring in source, together
// with the span it was parsed from.
type Identifier struct {
	id   Id
	span source.Span
}

// NewIdentifier constructs an Identifier from source text and its span.
func NewIdentifier(name string, span source.Span) Identifier {
	return Identifier{Intern(name), span}
}

// Name returns the textual name of this identifier.
func (n Identifier) Name() string { return Text(n.id) }

// Id returns the interned handle for this identifier's text.
func (n Identifier) Id() Id { return n.id }

// Span returns the source span this identifier was parsed from.
func (n Identifier) Span() source.Span { return n.span }

func (n Identifier) String() string { return n.Name() }

// identifierGob is Identifier's gob wire shape. Identifiers are encoded by
// their text rather than their interned Id, since an Id is only stable
// within the process that produced it - decoding re-interns the text into
// whichever process reads the file back, which may have populated its
// interner differently (e.g. builtin names interned in a different order).
type identifierGob struct {
	Name string
	Span source.Span
}

// GobEncode implements gob.GobEncoder.
func (n Identifier) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(identifierGob{n.Name(), n.span}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (n *Identifier) GobDecode(data []byte) error {
	var g identifierGob

	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}

	*n = NewIdentifier(g.Name, g.Span)

	return nil
}

// Namespace distinguishes the two lookup spaces that share an identifier
// string: ordinary bindings (columns, constants, locals, random values,
// public inputs, periodic columns) and function-like bindings (evaluators,
// pure functions, builtins).  A single name may be declared once in each
// namespace without conflicting.
type Namespace uint8

const (
	// NamespaceBinding identifies a binding (column, constant, local, etc).
	NamespaceBinding Namespace = iota
	// NamespaceFunction identifies a function or evaluator.
	NamespaceFunction
)

func (n Namespace) String() string {
	if n == NamespaceFunction {
		return "function"
	}

	return "binding"
}

// NamespacedIdentifier pairs an identifier with the namespace it inhabits.
// Two NamespacedIdentifier values with the same text but different
// namespaces name different things and do not conflict.
type NamespacedIdentifier struct {
	Name      Identifier
	Namespace Namespace
}

// Binding constructs a NamespacedIdentifier in the binding namespace.
func Binding(name Identifier) NamespacedIdentifier {
	return NamespacedIdentifier{name, NamespaceBinding}
}

// Function constructs a NamespacedIdentifier in the function namespace.
func Function(name Identifier) NamespacedIdentifier {
	return NamespacedIdentifier{name, NamespaceFunction}
}

func (n NamespacedIdentifier) String() string {
	return fmt.Sprintf("%s(%s)", n.Namespace, n.Name.Name())
}

// ModuleName identifies a module by its interned name; the empty/default
// module name denotes the implicit root.
type ModuleName = Id

// QualifiedIdentifier anchors a NamespacedIdentifier to the module in which
// it is declared, making it globally unambiguous across a multi-module
// program.
type QualifiedIdentifier struct {
	Module ModuleName
	Item   NamespacedIdentifier
}

// NewQualifiedIdentifier constructs a QualifiedIdentifier.
func NewQualifiedIdentifier(module ModuleName, item NamespacedIdentifier) QualifiedIdentifier {
	return QualifiedIdentifier{module, item}
}

func (q QualifiedIdentifier) String() string {
	return fmt.Sprintf("%s::%s", Text(q.Module), q.Item)
}

// ResolvableKind distinguishes the states a name reference passes through
// between parsing and the end of semantic analysis.
type ResolvableKind uint8

const (
	// Unresolved is the state every reference starts in when parsed: we
	// know its text and namespace, but not what it refers to.
	Unresolved ResolvableKind = iota
	// Local indicates resolution to a binding visible in the current
	// lexical scope (a local let-binding, function/evaluator parameter, or
	// comprehension-bound variable).
	Local
	// Global indicates resolution to a module-wide binding visible from
	// anywhere in the program (random values and their sub-bindings).
	Global
	// Resolved indicates resolution to an item declared elsewhere,
	// addressed by its fully QualifiedIdentifier (constants, functions,
	// evaluators, periodic columns, trace columns, public inputs - whether local to the current module
	// or imported from another).
	Resolved
)

// Resolvable is a name reference in one of the four resolution states above.
// Semantic analysis guarantees that no Unresolved value survives a
// successful analysis of a module; see pkg/sema.
type Resolvable struct {
	kind       ResolvableKind
	unresolved NamespacedIdentifier
	local      Identifier
	global     Identifier
	resolved   QualifiedIdentifier
}

// NewUnresolved constructs a Resolvable in the Unresolved state.
func NewUnresolved(nid NamespacedIdentifier) Resolvable {
	return Resolvable{kind: Unresolved, unresolved: nid}
}

// NewLocal constructs a Resolvable in the Local state.
func NewLocal(name Identifier) Resolvable {
	return Resolvable{kind: Local, local: name}
}

// NewGlobal constructs a Resolvable in the Global state.
func NewGlobal(name Identifier) Resolvable {
	return Resolvable{kind: Global, global: name}
}

// NewResolved constructs a Resolvable in the Resolved state.
func NewResolved(q QualifiedIdentifier) Resolvable {
	return Resolvable{kind: Resolved, resolved: q}
}

// Kind returns which of the four resolution states this value is in.
func (r Resolvable) Kind() ResolvableKind { return r.kind }

// AsUnresolved returns the unresolved namespaced identifier and true iff Kind() == Unresolved.
func (r Resolvable) AsUnresolved() (NamespacedIdentifier, bool) {
	return r.unresolved, r.kind == Unresolved
}

// AsLocal returns the local identifier and true iff Kind() == Local.
func (r Resolvable) AsLocal() (Identifier, bool) {
	return r.local, r.kind == Local
}

// AsGlobal returns the global identifier and true iff Kind() == Global.
func (r Resolvable) AsGlobal() (Identifier, bool) {
	return r.global, r.kind == Global
}

// AsResolved returns the qualified identifier and true iff Kind() == Resolved.
func (r Resolvable) AsResolved() (QualifiedIdentifier, bool) {
	return r.resolved, r.kind == Resolved
}

// Namespace reports the namespace of whichever identifier this value
// currently carries.
func (r Resolvable) Namespace() Namespace {
	switch r.kind {
	case Unresolved:
		return r.unresolved.Namespace
	case Resolved:
		return r.resolved.Item.Namespace
	default:
		return NamespaceBinding
	}
}

// Text returns the underlying name text, regardless of resolution state.
func (r Resolvable) Text() string {
	switch r.kind {
	case Unresolved:
		return r.unresolved.Name.Name()
	case Local:
		return r.local.Name()
	case Global:
		return r.global.Name()
	case Resolved:
		return r.resolved.Item.Name.Name()
	default:
		return "?"
	}
}

func (r Resolvable) String() string {
	switch r.kind {
	case Unresolved:
		return fmt.Sprintf("Unresolved(%s)", r.unresolved)
	case Local:
		return fmt.Sprintf("Local(%s)", r.local)
	case Global:
		return fmt.Sprintf("Global(%s)", r.global)
	case Resolved:
		return fmt.Sprintf("Resolved(%s)", r.resolved)
	default:
		return "?"
	}
}

// resolvableGob is Resolvable's gob wire shape: the active kind plus
// whichever of the four payloads applies, the others left zero.
type resolvableGob struct {
	Kind       ResolvableKind
	Unresolved NamespacedIdentifier
	Local      Identifier
	Global     Identifier
	Resolved   QualifiedIdentifier
}

// GobEncode implements gob.GobEncoder.
func (r Resolvable) GobEncode() ([]byte, error) {
	var buf bytes.Buffer

	g := resolvableGob{Kind: r.kind}

	switch r.kind {
	case Unresolved:
		g.Unresolved = r.unresolved
	case Local:
		g.Local = r.local
	case Global:
		g.Global = r.global
	case Resolved:
		g.Resolved = r.resolved
	}

	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *Resolvable) GobDecode(data []byte) error {
	var g resolvableGob

	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}

	*r = Resolvable{
		kind:       g.Kind,
		unresolved: g.Unresolved,
		local:      g.Local,
		global:     g.Global,
		resolved:   g.Resolved,
	}

	return nil
}
