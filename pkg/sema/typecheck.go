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

// infer resolves every name reference reachable from e, assigns e (and its
// subexpressions) their static Type via Expr.SetType, and returns e's own
// type. Errors are reported through c and a zero Type plus non-nil error is
// returned on failure, so callers can decide whether to keep checking
// siblings (most do, to accumulate diagnostics per spec.md section 7) or
// bail.
func (c *ctx) infer(scope *Scope, e ast.Expr) (types.Type, error) {
	t, err := c.inferInner(scope, e)
	if err == nil {
		e.SetType(t)
	}

	return t, err
}

func (c *ctx) inferInner(scope *Scope, e ast.Expr) (types.Type, error) {
	switch ex := e.(type) {
	case *ast.ConstExpr:
		return constValueType(ex.Value), nil
	case *ast.RangeExpr:
		return types.NewFeltType(), nil
	case *ast.VectorExpr:
		return c.inferVector(scope, ex)
	case *ast.MatrixExpr:
		return c.inferMatrix(scope, ex)
	case *ast.BinaryExpr:
		return c.inferBinary(scope, ex)
	case *ast.CallExpr:
		return c.inferCall(scope, ex)
	case *ast.SymbolAccess:
		return c.inferSymbol(scope, ex.Name, ex.Access, ex, func(r ident.Resolvable) { ex.Name = r })
	case *ast.BoundedSymbolAccess:
		if c.section != sectionBoundary {
			c.errorf(ex, "`.first`/`.last` access is only valid inside boundary_constraints")
		}

		return c.inferSymbol(scope, ex.Name, ex.Access, ex, func(r ident.Resolvable) { ex.Name = r })
	case *ast.ShiftedSymbolAccess:
		if c.section != sectionIntegrity {
			c.errorf(ex, "row-shifted access (`'`) is only valid inside integrity_constraints")
		}

		return c.inferSymbol(scope, ex.Name, ex.Access, ex, func(r ident.Resolvable) { ex.Name = r })
	case *ast.PeriodicColumnAccess:
		return types.NewFeltType(), nil
	case *ast.ListComprehension:
		return c.inferComprehension(scope, ex)
	case *ast.LetExpr:
		vt, _ := c.infer(scope, ex.Value)
		child := scope.Push()
		child.Bind(ex.Name.Id(), Local(vt))

		return c.infer(child, ex.Body)
	case *ast.IfExpr:
		return c.inferIf(scope, ex)
	default:
		return types.Type{}, &types.InvalidAccessError{Kind: types.UndefinedVariable}
	}
}

func constValueType(v ast.ConstantValue) types.Type {
	switch {
	case v.IsMatrix():
		rows := len(v.Matrix)
		cols := 0

		if rows > 0 {
			cols = len(v.Matrix[0])
		}

		return types.NewMatrixType(uint(rows), uint(cols))
	case v.IsVector():
		return types.NewVectorType(uint(len(v.Vector)))
	default:
		return types.NewFeltType()
	}
}

func (c *ctx) inferVector(scope *Scope, ex *ast.VectorExpr) (types.Type, error) {
	for _, el := range ex.Elements {
		c.infer(scope, el)
	}

	return types.NewVectorType(uint(len(ex.Elements))), nil
}

func (c *ctx) inferMatrix(scope *Scope, ex *ast.MatrixExpr) (types.Type, error) {
	for _, row := range ex.Rows {
		for _, el := range row {
			c.infer(scope, el)
		}
	}

	cols := 0
	if len(ex.Rows) > 0 {
		cols = len(ex.Rows[0])
	}

	return types.NewMatrixType(uint(len(ex.Rows)), uint(cols)), nil
}

func (c *ctx) inferBinary(scope *Scope, ex *ast.BinaryExpr) (types.Type, error) {
	lt, lerr := c.infer(scope, ex.Lhs)

	if ex.Op == ast.Exp {
		rng, ok := ex.Rhs.(*ast.ConstExpr)
		if !ok || !rng.Value.IsScalar() {
			c.errorf(ex, "exponent must be a constant scalar")
		}

		ex.Rhs.SetType(types.NewFeltType())

		return lt, lerr
	}

	rt, rerr := c.infer(scope, ex.Rhs)

	if lerr != nil || rerr != nil {
		return types.Type{}, lerr
	}

	if !typesCompatible(lt, rt) {
		c.errorf(ex, "operand type mismatch: %s vs %s", lt, rt)

		return lt, nil
	}

	return lt, nil
}

func (c *ctx) inferIf(scope *Scope, ex *ast.IfExpr) (types.Type, error) {
	condTy, cerr := c.infer(scope, ex.Cond)
	if cerr == nil && !condTy.IsFelt() {
		c.errorf(ex.Cond, "if-condition must be scalar, found %s", condTy)
	}

	tt, _ := c.infer(scope, ex.Then)
	et, _ := c.infer(scope, ex.Else)

	if !typesCompatible(tt, et) {
		c.errorf(ex, "if-branches must share a type: %s vs %s", tt, et)
	}

	return tt, nil
}

func (c *ctx) inferComprehension(scope *Scope, ex *ast.ListComprehension) (types.Type, error) {
	c.analyseComprehension(scope, ex.Iterables, ex.Selector, func(inner *Scope) {
		c.infer(inner, ex.Body)
	})

	n := comprehensionLength(ex)
	if n == 0 {
		return types.Type{}, &types.InvalidAccessError{Kind: types.UndefinedVariable}
	}

	return types.NewVectorType(uint(n)), nil
}

// comprehensionLength tries to determine a comprehension's static length
// from its first iterable; used only to shape the reported Type, since the
// inliner (not semantic analysis) is what actually needs the length to
// unroll the comprehension (spec.md C6).
func comprehensionLength(ex *ast.ListComprehension) int {
	if len(ex.Iterables) == 0 {
		return 0
	}

	it := ex.Iterables[0]

	switch it.Kind {
	case ast.IterRange:
		if rng, ok := it.Source.(*ast.RangeExpr); ok {
			return int(rng.End.Int64() - rng.Start.Int64())
		}
	case ast.IterMatrixRow:
		if it.Source.Type() != nil && it.Source.Type().IsMatrix() {
			r, _ := it.Source.Type().Dimensions()
			return int(r)
		}
	default:
		if it.Source.Type() != nil && it.Source.Type().IsVector() {
			return int(it.Source.Type().Length())
		}
	}

	return 0
}

// inferSymbol resolves a name reference against the local scope, then the
// module's global table, applies the use-site AccessType, and records a
// dependency-graph edge when the referent is a constant, periodic column,
// function or evaluator (the only things that can recurse).
func (c *ctx) inferSymbol(scope *Scope, name ident.Resolvable, access types.AccessType, at spanner, set func(ident.Resolvable)) (types.Type, error) {
	nid, ok := name.AsUnresolved()
	if !ok {
		// Already resolved by an earlier pass over shared subexpressions;
		// nothing further to do.
		return types.Type{}, nil
	}

	if b, ok := scope.Lookup(nid.Name.Id()); ok {
		set(ident.NewLocal(nid.Name))

		return c.applyAccess(b, access, at)
	}

	q, b, ok := c.globals.Lookup(nid)
	if !ok {
		c.errorf(at, "undefined %s %q", nid.Namespace, nid.Name.Name())

		return types.Type{}, &types.InvalidAccessError{Kind: types.UndefinedVariable}
	}

	switch b.Kind {
	case BindingRandomValue:
		set(ident.NewGlobal(nid.Name))
	default:
		set(ident.NewResolved(q))

		if b.Kind == BindingConstant || b.Kind == BindingPeriodicColumn || b.Kind == BindingFunction {
			c.graph.AddEdge(c.current, q)
		}
	}

	return c.applyAccess(b, access, at)
}

func (c *ctx) applyAccess(b BindingType, access types.AccessType, at spanner) (types.Type, error) {
	if access.Kind() == types.Default {
		return b.Ty(), nil
	}

	r, err := b.Access(access)
	if err != nil {
		c.errorf(at, "%s", err)

		return types.Type{}, err
	}

	return r.Ty(), nil
}

func (c *ctx) inferCall(scope *Scope, ex *ast.CallExpr) (types.Type, error) {
	for _, a := range ex.Args {
		c.infer(scope, a)
	}

	nid, ok := ex.Callee.AsUnresolved()
	if !ok {
		return types.Type{}, nil
	}

	if b := ast.BuiltinOf(nid.Name.Name()); b != ast.NotBuiltin {
		if len(ex.Args) != 1 {
			c.errorf(ex, "%s takes exactly one argument", nid.Name.Name())
		}

		return types.NewFeltType(), nil
	}

	q, b, ok := c.globals.Lookup(nid)
	if !ok {
		c.errorf(ex, "undefined function %q", nid.Name.Name())

		return types.Type{}, &types.InvalidAccessError{Kind: types.UndefinedVariable}
	}

	ex.Callee = ident.NewResolved(q)
	c.graph.AddEdge(c.current, q)

	if b.Kind != BindingFunction {
		c.errorf(ex, "%q is not callable", nid.Name.Name())

		return types.Type{}, nil
	}

	c.checkArity(ex, b.Function)

	if b.Function.Kind == PureFn {
		return b.Function.Return, nil
	}

	return types.NewFeltType(), nil
}

// checkArity validates a call's argument count against the callee's
// parameter shape. Evaluator calls group parameters per trace segment
// (spec.md section 4.2: "evaluator call arity"); each argument supplies one
// whole group's worth of columns, so arity here means "one argument per
// parameter segment", with per-column size agreement left to the inliner's
// column-splitting at expansion time.
func (c *ctx) checkArity(ex *ast.CallExpr, ft FunctionType) {
	switch ft.Kind {
	case EvaluatorFn:
		if len(ex.Args) != len(ft.ParamSegments) {
			c.errorf(ex, "evaluator call expects %d argument group(s), found %d", len(ft.ParamSegments), len(ex.Args))
		}
	case PureFn:
		if len(ex.Args) != len(ft.Params) {
			c.errorf(ex, "function call expects %d argument(s), found %d", len(ft.Params), len(ex.Args))
		}
	}
}
