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
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/types"
	"github.com/airlang/airc/pkg/source"
)

// spanner is satisfied by every ast.Expr and ast.Statement.
type spanner interface {
	Span() source.Span
}

// sectionKind tracks which constraint section (if any) the statement being
// analysed belongs to, since `col.first`/`col.last` are legal only in
// boundary_constraints and `col'` only in integrity_constraints (spec.md
// section 4.2).
type sectionKind uint8

const (
	sectionNone sectionKind = iota
	sectionBoundary
	sectionIntegrity
)

// ctx is the shared, read-mostly state threaded through one module's
// analysis: the diagnostics sink, its resolved global table, the dependency
// graph being built, and per-column boundary-uniqueness tracking.
type ctx struct {
	sink    diag.Handler
	globals *Globals
	graph   *DependencyGraph
	module  ident.Id
	section sectionKind
	current ident.QualifiedIdentifier // dependency-graph node for the item being analysed
	errs    int

	boundaries map[ident.Id]types.ColumnBoundaryFlags
}

// AnalyseProgram resolves, type-checks and context-checks every module of
// program, and returns the dependency graph built across all of them.
// Diagnostics are reported through sink; AnalyseProgram itself returns an
// error only once at least one Error-severity diagnostic has been emitted,
// summarising how many were found (spec.md section 7).
func AnalyseProgram(sink diag.Handler, program *ast.Program) (*DependencyGraph, error) {
	graph := NewDependencyGraph()

	for _, m := range program.Modules() {
		globals := BuildGlobals(m, program)
		analyseModule(sink, globals, graph, m)
	}

	if sink.HasErrors() {
		count := 0

		for _, d := range sink.All() {
			if d.Severity == diag.Error {
				count++
			}
		}

		return graph, &Error{Count: count, Msg: "semantic analysis failed"}
	}

	return graph, nil
}

func analyseModule(sink diag.Handler, globals *Globals, graph *DependencyGraph, m *ast.Module) {
	c := &ctx{sink: sink, globals: globals, graph: graph, module: m.Name, boundaries: make(map[ident.Id]types.ColumnBoundaryFlags)}

	root := RootNode()
	c.current = root

	c.section = sectionBoundary
	for _, s := range m.BoundaryConstraints {
		c.analyseStatement(NewScope(), s)
	}

	c.section = sectionIntegrity
	for _, s := range m.IntegrityConstraints {
		c.analyseStatement(NewScope(), s)
	}

	c.section = sectionNone

	for _, e := range m.Evaluators {
		c.current = ident.NewQualifiedIdentifier(m.Name, ident.Function(e.Name))
		c.analyseEvaluator(e)
	}

	for _, f := range m.Functions {
		c.current = ident.NewQualifiedIdentifier(m.Name, ident.Function(f.Name))
		c.analyseFunction(f)
	}

	if cyc, ok := graph.HasCycle(root); ok {
		var zero source.Span
		c.errorfSpan(zero, "cyclic definition detected involving %d item(s)", len(cyc))
	}
}

func (c *ctx) analyseEvaluator(e *ast.EvaluatorDecl) {
	scope := NewScope()

	for _, group := range e.ParamSegments {
		for _, p := range group {
			scope.Bind(p.Name.Id(), Local(p.Type))
		}
	}

	c.section = sectionIntegrity

	for _, s := range e.Body {
		c.analyseStatement(scope, s)
	}

	c.section = sectionNone
}

func (c *ctx) analyseFunction(f *ast.FunctionDecl) {
	scope := NewScope()

	for _, p := range f.Params {
		scope.Bind(p.Name.Id(), Local(p.Type))
	}

	for _, s := range f.Body {
		c.analyseStatement(scope, s)
	}
}

func (c *ctx) analyseStatement(scope *Scope, s ast.Statement) {
	switch st := s.(type) {
	case *ast.LetStatement:
		t, _ := c.infer(scope, st.Value)

		child := scope.Push()
		child.Bind(st.Name.Id(), Local(t))

		for _, body := range st.Body {
			c.analyseStatement(child, body)
		}
	case *ast.EnforceStatement:
		c.checkEnforceable(st.Span(), "enf")
		c.analyseConstraintExpr(scope, st.Expr)
	case *ast.EnforceIfStatement:
		c.checkEnforceable(st.Span(), "enf ... when")

		selTy, err := c.infer(scope, st.Selector)
		if err == nil && !selTy.IsFelt() {
			c.errorf(st, "selector of a conditional constraint must be scalar, found %s", selTy)
		}

		c.analyseConstraintExpr(scope, st.Expr)
	case *ast.EnforceAllStatement:
		c.checkEnforceable(st.Span(), "enf ... for")
		c.analyseComprehension(scope, st.Iterables, st.Selector, func(inner *Scope) {
			c.analyseConstraintExpr(inner, st.Body)
		})
	case *ast.ExprStatement:
		c.infer(scope, st.Expr)
	}
}

// checkEnforceable reports use of `enf` outside a boundary/integrity
// constraints section, e.g. inside a pure function body (spec.md section
// 4.2).
func (c *ctx) checkEnforceable(span source.Span, form string) {
	if c.section == sectionNone {
		c.errorfSpan(span, "%q is only valid inside a constraints section or evaluator body", form)
	}
}

// analyseConstraintExpr type-checks one constraint body expression
// (typically `lhs = rhs`, or an evaluator call) and, in boundary context,
// enforces the one-unconstrained-access-per-boundary-constraint rule and
// tracks per-column boundary uniqueness (spec.md property 5).
func (c *ctx) analyseConstraintExpr(scope *Scope, e ast.Expr) {
	bin, ok := e.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.Eq {
		c.infer(scope, e)
		return
	}

	lt, lerr := c.infer(scope, bin.Lhs)
	rt, rerr := c.infer(scope, bin.Rhs)

	if lerr == nil && rerr == nil && !typesCompatible(lt, rt) {
		c.errorf(bin, "type mismatch in constraint: %s vs %s", lt, rt)
	}

	if c.section == sectionBoundary {
		c.checkBoundaryLhs(bin.Lhs)
	}

	bin.SetType(types.NewFeltType())
}

func (c *ctx) checkBoundaryLhs(e ast.Expr) {
	bsa, ok := e.(*ast.BoundedSymbolAccess)
	if !ok {
		c.errorf(e, "boundary constraint left-hand side must be `column.first` or `column.last`")
		return
	}

	local, isLocal := bsa.Name.AsLocal()
	if !isLocal {
		return
	}

	flags := c.boundaries[local.Id()]
	if flags.Has(bsa.Boundary) {
		c.errorf(e, "column %q already has a %s boundary constraint", local.Name(), bsa.Boundary)
		return
	}

	c.boundaries[local.Id()] = flags.With(bsa.Boundary)
}

func typesCompatible(a, b types.Type) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch a.Kind() {
	case types.Vector:
		return a.Length() == b.Length()
	case types.Matrix:
		ar, ac := a.Dimensions()
		br, bc := b.Dimensions()

		return ar == br && ac == bc
	default:
		return true
	}
}

// analyseComprehension binds each iterable's loop variable to its element
// type in a fresh child scope, checks all iterables share one length when
// statically known, then invokes body with that scope.
func (c *ctx) analyseComprehension(scope *Scope, iterables []ast.Iterable, selector ast.Expr, body func(*Scope)) {
	child := scope.Push()

	var length = -1

	for _, it := range iterables {
		srcTy, err := c.infer(scope, it.Source)
		if err != nil {
			continue
		}

		var elemTy types.Type
		var n int

		switch it.Kind {
		case ast.IterRange:
			elemTy = types.NewFeltType()

			if rng, ok := it.Source.(*ast.RangeExpr); ok {
				n = int(rng.End.Int64() - rng.Start.Int64())
			}
		case ast.IterMatrixRow:
			if srcTy.IsMatrix() {
				_, cols := srcTy.Dimensions()
				elemTy = types.NewVectorType(cols)
				r, _ := srcTy.Dimensions()
				n = int(r)
			}
		default:
			if srcTy.IsVector() {
				elemTy = types.NewFeltType()
				n = int(srcTy.Length())
			} else {
				elemTy = srcTy
			}
		}

		if length == -1 {
			length = n
		} else if n != 0 && length != n {
			c.errorf(it.Source, "comprehension iterables must share one length")
		}

		child.Bind(it.Binding.Id(), Local(elemTy))
	}

	if selector != nil {
		selTy, err := c.infer(child, selector)
		if err == nil && !selTy.IsFelt() {
			c.errorf(selector, "comprehension selector must be scalar, found %s", selTy)
		}
	}

	body(child)
}

func (c *ctx) errorf(at spanner, format string, args ...any) {
	c.errorfSpan(at.Span(), format, args...)
}

func (c *ctx) errorfSpan(span source.Span, format string, args ...any) {
	c.errs++
	c.sink.Diagnostic(diag.Error).
		WithMessagef(format, args...).
		WithPrimaryLabel(span, "here").
		Emit()
}

func (c *ctx) warnf(at spanner, format string, args ...any) {
	c.sink.Diagnostic(diag.Warning).
		WithMessagef(format, args...).
		WithPrimaryLabel(at.Span(), "here").
		Emit()
}
