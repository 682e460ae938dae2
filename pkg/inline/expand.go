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

package inline

import (
	"math/big"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/types"
	"github.com/airlang/airc/pkg/source"
)

// Expander holds the cross-module lookup context inlining needs to resolve
// an evaluator/function call site to its declaring module's body.
type Expander struct {
	sink    diag.Handler
	program *ast.Program
	failed  bool
}

// NewExpander constructs an Expander for one compilation's program.
func NewExpander(sink diag.Handler, program *ast.Program) *Expander {
	return &Expander{sink: sink, program: program}
}

// ExpandModule flattens m's boundary and integrity constraint sections in
// place, expanding every evaluator call, constraint comprehension and let
// away. List comprehensions in expression position are left as they are.
func (x *Expander) ExpandModule(m *ast.Module) error {
	m.BoundaryConstraints = x.expandList(m.BoundaryConstraints, newBindings(nil), nil)
	m.IntegrityConstraints = x.expandList(m.IntegrityConstraints, newBindings(nil), nil)

	if x.failed {
		return &Error{Msg: "inlining failed"}
	}

	return nil
}

// expandList expands a statement list under the given substitution and
// accumulated selector condition (non-nil when this list is itself the body
// of a `when`-guarded construct or an inlined evaluator call), returning a
// flat list of Enforce/EnforceIf statements.
func (x *Expander) expandList(stmts []ast.Statement, subst *bindings, selector ast.Expr) []ast.Statement {
	var out []ast.Statement

	for _, s := range stmts {
		out = append(out, x.expandStmt(s, subst, selector)...)
	}

	return out
}

func (x *Expander) expandStmt(s ast.Statement, subst *bindings, selector ast.Expr) []ast.Statement {
	switch st := s.(type) {
	case *ast.LetStatement:
		child := newBindings(subst)
		child.bind(st.Name.Id(), substitute(subst, st.Value))

		return x.expandList(st.Body, child, selector)
	case *ast.EnforceStatement:
		return x.enforce(substitute(subst, st.Expr), selector)
	case *ast.EnforceIfStatement:
		sel := combineSelectors(selector, substitute(subst, st.Selector))
		return x.enforce(substitute(subst, st.Expr), sel)
	case *ast.EnforceAllStatement:
		return x.expandComprehensionConstraint(st, subst, selector)
	case *ast.ExprStatement:
		return nil
	default:
		return nil
	}
}

// enforce is reached once expr has had the current substitution applied.
// If expr is itself a call to a user-defined evaluator, the call site is
// expanded in place (the callee's body is spliced in with the callee's
// parameters bound to the caller's - possibly column-split - arguments and
// the active selector carried through by multiplication); otherwise expr is
// a plain relation and becomes one flat Enforce/EnforceIf statement.
func (x *Expander) enforce(expr ast.Expr, selector ast.Expr) []ast.Statement {
	if call, ok := expr.(*ast.CallExpr); ok {
		return x.expandEvaluatorCall(call, selector)
	}

	if selector != nil {
		return []ast.Statement{ast.NewEnforceIfStatement(expr.Span(), expr, selector)}
	}

	return []ast.Statement{ast.NewEnforceStatement(expr.Span(), expr)}
}

func combineSelectors(a, b ast.Expr) ast.Expr {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	return ast.NewBinaryExpr(a.Span(), ast.Mul, a, b)
}

// expandEvaluatorCall looks up the evaluator call refers to, binds its
// per-segment parameters to the (column-split, where the argument supplies
// more columns than one parameter needs) caller arguments, and recursively
// expands the evaluator's body under that binding and the active selector.
func (x *Expander) expandEvaluatorCall(call *ast.CallExpr, selector ast.Expr) []ast.Statement {
	q, ok := call.Callee.AsResolved()
	if !ok {
		x.errorf(call.Span(), "call site did not resolve to a concrete evaluator")
		return nil
	}

	mod := x.program.Module(q.Module)
	if mod == nil {
		x.errorf(call.Span(), "evaluator %q's declaring module is missing", q.Item.Name.Name())
		return nil
	}

	decl, ok := mod.Evaluators[q.Item.Name.Id()]
	if !ok {
		x.errorf(call.Span(), "%q is not an evaluator", q.Item.Name.Name())
		return nil
	}

	if len(call.Args) != len(decl.ParamSegments) {
		x.errorf(call.Span(), "evaluator %q expects %d argument group(s), found %d", q.Item.Name.Name(), len(decl.ParamSegments), len(call.Args))
		return nil
	}

	child := newBindings(nil)

	for i, group := range decl.ParamSegments {
		if err := x.bindParamGroup(child, group, call.Args[i]); err != nil {
			x.errorf(call.Span(), "%s", err)
			return nil
		}
	}

	return x.expandList(decl.Body, child, selector)
}

// bindParamGroup splits arg's trace columns across group's parameters in
// declaration order, binding each parameter name to its (possibly
// projected) slice of arg.
func (x *Expander) bindParamGroup(child *bindings, group []ast.Param, arg ast.Expr) error {
	var need uint

	for _, p := range group {
		need += columnsOf(p.Type)
	}

	if t := arg.Type(); t != nil && columnsOf(*t) < need {
		return &Error{ColumnUnderSupply, arg.Span(), "evaluator argument supplies fewer columns than its parameter group requires"}
	}

	offset := uint(0)

	for _, p := range group {
		size := columnsOf(p.Type)
		child.bind(p.Name.Id(), projectArg(arg, offset, size))
		offset += size
	}

	return nil
}

// projectArg builds the expression denoting columns [offset, offset+size)
// of arg.
func projectArg(arg ast.Expr, offset, size uint) ast.Expr {
	if sa, ok := arg.(*ast.SymbolAccess); ok {
		return ast.NewProjectedSymbolAccess(sa.Span(), sa.Name, composeAccess(sa.Access, subAccessFor(offset, size)))
	}

	return projectLiteral(arg, subAccessFor(offset, size))
}

// expandComprehensionConstraint unrolls a constraint comprehension into one
// enforce (or evaluator expansion) per iteration, with the comprehension's
// own selector (if any) multiplied into the active one.
func (x *Expander) expandComprehensionConstraint(st *ast.EnforceAllStatement, subst *bindings, selector ast.Expr) []ast.Statement {
	n, columns, ok := x.resolveIterables(st.Iterables, subst)
	if !ok {
		x.errorf(st.Span(), "comprehension iterable did not reduce to a constant aggregate")
		return nil
	}

	var out []ast.Statement

	for i := 0; i < n; i++ {
		iter := newBindings(subst)

		for j, it := range st.Iterables {
			iter.bind(it.Binding.Id(), columns[j][i])
		}

		var sel ast.Expr
		if st.Selector != nil {
			sel = substitute(iter, st.Selector)
		}

		out = append(out, x.expandStmt(ast.NewEnforceStatement(st.Span(), st.Body), iter, combineSelectors(selector, sel))...)
	}

	return out
}

// resolveIterables evaluates each iterable's source (after substitution)
// down to a concrete length and per-index element expression. All
// iterables of one comprehension must agree on length (checked during
// semantic analysis); the first is treated as authoritative here.
func (x *Expander) resolveIterables(iterables []ast.Iterable, subst *bindings) (int, [][]ast.Expr, bool) {
	columns := make([][]ast.Expr, len(iterables))
	length := -1

	for i, it := range iterables {
		src := substitute(subst, it.Source)

		elems, ok := elementsOf(src, it.Kind)
		if !ok {
			return 0, nil, false
		}

		if length == -1 {
			length = len(elems)
		}

		columns[i] = elems
	}

	return length, columns, true
}

func elementsOf(src ast.Expr, kind ast.IterableKind) ([]ast.Expr, bool) {
	switch kind {
	case ast.IterRange:
		rng, ok := src.(*ast.RangeExpr)
		if !ok {
			return nil, false
		}

		n := int(rng.End.Int64() - rng.Start.Int64())
		out := make([]ast.Expr, n)

		for i := 0; i < n; i++ {
			v := new(big.Int).Add(rng.Start, big.NewInt(int64(i)))
			out[i] = ast.NewConstExpr(rng.Span(), ast.ScalarValue(v))
		}

		return out, true
	case ast.IterMatrixRow:
		switch m := src.(type) {
		case *ast.MatrixExpr:
			out := make([]ast.Expr, len(m.Rows))
			for i, row := range m.Rows {
				out[i] = ast.NewVectorExpr(m.Span(), row)
			}

			return out, true
		case *ast.SymbolAccess:
			if m.Type() == nil || !m.Type().IsMatrix() {
				return nil, false
			}

			rows, _ := m.Type().Dimensions()
			out := make([]ast.Expr, rows)

			for i := range out {
				out[i] = ast.NewProjectedSymbolAccess(m.Span(), m.Name, composeAccess(m.Access, types.IndexAccess(uint(i))))
			}

			return out, true
		default:
			return nil, false
		}
	default:
		switch v := src.(type) {
		case *ast.VectorExpr:
			return v.Elements, true
		case *ast.ConstExpr:
			if !v.Value.IsVector() {
				return nil, false
			}

			out := make([]ast.Expr, len(v.Value.Vector))
			for i, s := range v.Value.Vector {
				out[i] = ast.NewConstExpr(v.Span(), ast.ScalarValue(s))
			}

			return out, true
		case *ast.SymbolAccess:
			if v.Type() == nil || !v.Type().IsVector() {
				return nil, false
			}

			n := int(v.Type().Length())
			out := make([]ast.Expr, n)

			for i := range out {
				out[i] = ast.NewProjectedSymbolAccess(v.Span(), v.Name, composeAccess(v.Access, types.IndexAccess(uint(i))))
			}

			return out, true
		default:
			return nil, false
		}
	}
}

func (x *Expander) errorf(span source.Span, format string, args ...any) {
	x.failed = true
	x.sink.Diagnostic(diag.Error).WithMessagef(format, args...).WithPrimaryLabel(span, "here").Emit()
}
