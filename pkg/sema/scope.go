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

package sema

import (
	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/types"
)

// Scope is the lexically-nested table of local bindings active at a point in
// a function/evaluator body or constraint block: let-bindings,
// comprehension-bound variables, and function/evaluator parameters. Lookup
// falls through to the parent scope only; name resolution consults the
// module's global table (constants, trace columns, periodic columns,
// imports) separately when Lookup finds nothing.
type Scope struct {
	parent *Scope
	locals map[ident.Id]BindingType
}

// NewScope constructs a root scope with no parent.
func NewScope() *Scope {
	return &Scope{locals: make(map[ident.Id]BindingType)}
}

// Push creates a child scope nested inside s.
func (s *Scope) Push() *Scope {
	return &Scope{parent: s, locals: make(map[ident.Id]BindingType)}
}

// Bind introduces name into this scope, shadowing any outer binding of the
// same name (spec.md section 4.2: "let-bindings and comprehension variables
// may shadow").
func (s *Scope) Bind(name ident.Id, b BindingType) {
	s.locals[name] = b
}

// Lookup searches this scope and its ancestors for name.
func (s *Scope) Lookup(name ident.Id) (BindingType, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.locals[name]; ok {
			return b, true
		}
	}

	return BindingType{}, false
}

// Globals is a module's resolved table of module-scoped and imported items,
// keyed by their namespaced identifier. Two tables exist per module: the
// binding table (columns, constants, random values, public inputs, periodic
// columns) and the function table (evaluators, functions). Entries that
// originate from another module via `use` carry the QualifiedIdentifier of
// their true home so references resolve to a stable cross-module address.
type Globals struct {
	bindings  map[ident.Id]globalEntry
	functions map[ident.Id]globalEntry
}

type globalEntry struct {
	qualified ident.QualifiedIdentifier
	binding   BindingType
}

// NewGlobals constructs an empty global table.
func NewGlobals() *Globals {
	return &Globals{
		bindings:  make(map[ident.Id]globalEntry),
		functions: make(map[ident.Id]globalEntry),
	}
}

func (g *Globals) table(ns ident.Namespace) map[ident.Id]globalEntry {
	if ns == ident.NamespaceFunction {
		return g.functions
	}

	return g.bindings
}

// Declare records a module-local or imported item under its namespaced name.
func (g *Globals) Declare(nid ident.NamespacedIdentifier, q ident.QualifiedIdentifier, b BindingType) {
	g.table(nid.Namespace)[nid.Name.Id()] = globalEntry{q, b}
}

// Lookup resolves a namespaced name against this table.
func (g *Globals) Lookup(nid ident.NamespacedIdentifier) (ident.QualifiedIdentifier, BindingType, bool) {
	e, ok := g.table(nid.Namespace)[nid.Name.Id()]

	return e.qualified, e.binding, ok
}

// BuildGlobals assembles a module's global table from its own declarations
// and its (already-assembled) imports, resolving `use module::*` wildcard
// imports against the sibling module's public items and `use module::{a,b}`
// named imports against the explicit item list (spec.md C3/C4 boundary: the
// module assembler records which names were imported from where; semantic
// analysis is what actually looks the referent up and assigns it a
// BindingType).
func BuildGlobals(m *ast.Module, program *ast.Program) *Globals {
	g := NewGlobals()

	declareModuleOwnItems(g, m)

	for nid, fromModule := range m.Imports {
		src := program.Module(fromModule)
		if src == nil {
			continue
		}

		if q, b, ok := lookupOwn(src, nid); ok {
			g.Declare(nid, q, b)
		}
	}

	for _, fromModule := range m.WildcardImports {
		src := program.Module(fromModule)
		if src == nil {
			continue
		}

		importWildcard(g, src)
	}

	return g
}

func importWildcard(g *Globals, src *ast.Module) {
	for id := range src.Constants {
		nid := ident.Binding(src.Constants[id].Name)
		if q, b, ok := lookupOwn(src, nid); ok {
			g.Declare(nid, q, b)
		}
	}

	for id := range src.PeriodicColumns {
		nid := ident.Binding(src.PeriodicColumns[id].Name)
		if q, b, ok := lookupOwn(src, nid); ok {
			g.Declare(nid, q, b)
		}
	}

	for id := range src.Evaluators {
		nid := ident.Function(src.Evaluators[id].Name)
		if q, b, ok := lookupOwn(src, nid); ok {
			g.Declare(nid, q, b)
		}
	}

	for id := range src.Functions {
		nid := ident.Function(src.Functions[id].Name)
		if q, b, ok := lookupOwn(src, nid); ok {
			g.Declare(nid, q, b)
		}
	}
}

// lookupOwn resolves a namespaced name against m's own (non-imported)
// declarations only, returning its qualified address and binding type.
func lookupOwn(m *ast.Module, nid ident.NamespacedIdentifier) (ident.QualifiedIdentifier, BindingType, bool) {
	q := ident.NewQualifiedIdentifier(m.Name, nid)

	switch nid.Namespace {
	case ident.NamespaceFunction:
		if e, ok := m.Evaluators[nid.Name.Id()]; ok {
			return q, Function(evaluatorType(e)), true
		}

		if f, ok := m.Functions[nid.Name.Id()]; ok {
			return q, Function(functionType(f)), true
		}
	default:
		if c, ok := m.Constants[nid.Name.Id()]; ok {
			return q, Constant(constantType(c)), true
		}

		if pc, ok := m.PeriodicColumns[nid.Name.Id()]; ok {
			return q, PeriodicColumn(uint(len(pc.Values))), true
		}
	}

	return ident.QualifiedIdentifier{}, BindingType{}, false
}

// declareModuleOwnItems populates g with everything m declares directly:
// constants, periodic columns, evaluators/functions (global, cross-module
// addressable), plus trace columns/random values/public inputs (root module
// only, locally addressable but still placed in the global table since
// constraint sections reference them without any `use`).
func declareModuleOwnItems(g *Globals, m *ast.Module) {
	for _, c := range m.Constants {
		nid := ident.Binding(c.Name)
		g.Declare(nid, ident.NewQualifiedIdentifier(m.Name, nid), Constant(constantType(c)))
	}

	for _, pc := range m.PeriodicColumns {
		nid := ident.Binding(pc.Name)
		g.Declare(nid, ident.NewQualifiedIdentifier(m.Name, nid), PeriodicColumn(uint(len(pc.Values))))
	}

	for _, e := range m.Evaluators {
		nid := ident.Function(e.Name)
		g.Declare(nid, ident.NewQualifiedIdentifier(m.Name, nid), Function(evaluatorType(e)))
	}

	for _, f := range m.Functions {
		nid := ident.Function(f.Name)
		g.Declare(nid, ident.NewQualifiedIdentifier(m.Name, nid), Function(functionType(f)))
	}

	for _, seg := range m.TraceSegments {
		for _, tb := range seg.Bindings {
			nid := ident.Binding(tb.Name)
			g.Declare(nid, ident.NewQualifiedIdentifier(m.Name, nid), TraceColumn(tb))
		}
	}

	if m.RandomValues != nil {
		nid := ident.Binding(m.RandomValues.Name)
		g.Declare(nid, ident.NewQualifiedIdentifier(m.Name, nid), RandomValue(ast.RandBinding{
			Name: m.RandomValues.Name,
			Size: m.RandomValues.Size,
		}))

		for _, rb := range m.RandomValues.Bindings {
			bnid := ident.Binding(rb.Name)
			g.Declare(bnid, ident.NewQualifiedIdentifier(m.Name, bnid), RandomValue(rb))
		}
	}

	for _, pi := range m.PublicInputs {
		nid := ident.Binding(pi.Name)
		ty := vectorOrFelt(pi.Size)

		g.Declare(nid, ident.NewQualifiedIdentifier(m.Name, nid), PublicInput(ty))
	}
}

func constantType(c *ast.ConstantDecl) (t types.Type) {
	switch {
	case c.Value.IsMatrix():
		rows := len(c.Value.Matrix)
		cols := 0

		if rows > 0 {
			cols = len(c.Value.Matrix[0])
		}

		return types.NewMatrixType(uint(rows), uint(cols))
	case c.Value.IsVector():
		return types.NewVectorType(uint(len(c.Value.Vector)))
	default:
		return types.NewFeltType()
	}
}

func evaluatorType(e *ast.EvaluatorDecl) FunctionType {
	segs := make([][]types.Type, len(e.ParamSegments))

	for i, group := range e.ParamSegments {
		ts := make([]types.Type, len(group))
		for j, p := range group {
			ts[j] = p.Type
		}

		segs[i] = ts
	}

	return FunctionType{Kind: EvaluatorFn, ParamSegments: segs}
}

func functionType(f *ast.FunctionDecl) FunctionType {
	params := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}

	return FunctionType{Kind: PureFn, Params: params, Return: f.Return}
}

// BuiltinOf reports whether name is a builtin aggregate function name; a
// thin re-export so this package does not need to import pkg/ast at every
// call site just for this one lookup.
func BuiltinOf(name string) bool { return ast.BuiltinOf(name) != ast.NotBuiltin }

// ResolveQualified looks up the BindingType a Resolved SymbolAccess/CallExpr
// now refers to, given its QualifiedIdentifier. Used by later passes (pkg/mir)
// that need a resolved reference's classification but run after the Scope
// used during analysis has gone out of scope.
func ResolveQualified(program *ast.Program, q ident.QualifiedIdentifier) (BindingType, bool) {
	mod := program.Module(q.Module)
	if mod == nil {
		return BindingType{}, false
	}

	_, b, ok := lookupOwn(mod, q.Item)
	if ok {
		return b, true
	}

	g := BuildGlobals(mod, program)
	_, b, ok = g.Lookup(q.Item)

	return b, ok
}
