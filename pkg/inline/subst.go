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
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/types"
)

// bindings maps a let-bound name, comprehension variable, or evaluator/
// function parameter to the expression it stands for at a particular
// inlining site. Lookup falls through a parent chain exactly like a lexical
// scope, so a nested let or comprehension variable correctly shadows an
// outer parameter of the same name.
type bindings struct {
	parent *bindings
	vars   map[ident.Id]ast.Expr
}

func newBindings(parent *bindings) *bindings {
	return &bindings{parent: parent, vars: make(map[ident.Id]ast.Expr)}
}

func (b *bindings) bind(id ident.Id, e ast.Expr) {
	b.vars[id] = e
}

func (b *bindings) lookup(id ident.Id) (ast.Expr, bool) {
	for s := b; s != nil; s = s.parent {
		if e, ok := s.vars[id]; ok {
			return e, true
		}
	}

	return nil, false
}

// substitute rewrites every Local-resolved name reference in e that
// `subst` has a binding for, with that binding's expression, composing
// access projections where the reference being replaced was itself
// indexed/sliced. Names not found in subst (trace columns, random values,
// resolved cross-module items) are left untouched - they are exactly the
// vocabulary the AIR graph is ultimately built from.
func substitute(subst *bindings, e ast.Expr) ast.Expr {
	switch ex := e.(type) {
	case *ast.ConstExpr, *ast.RangeExpr, *ast.PeriodicColumnAccess:
		return ex
	case *ast.SymbolAccess:
		if rep := substituteSymbol(subst, ex.Name, ex.Access); rep != nil {
			return rep
		}

		return ex
	case *ast.BoundedSymbolAccess:
		if rep := substituteSymbol(subst, ex.Name, ex.Access); rep != nil {
			// A boundary access composes onto whatever the substitution
			// produced, but the substituted value is always itself a plain
			// trace-column reference (evaluators never receive `.first`/
			// `.last` arguments), so re-wrap as a BoundedSymbolAccess over
			// the same name with the composed access.
			if sa, ok := rep.(*ast.SymbolAccess); ok {
				return ast.NewBoundedSymbolAccess(ex.Span(), sa.Name, sa.Access, ex.Boundary)
			}
		}

		return ex
	case *ast.ShiftedSymbolAccess:
		if rep := substituteSymbol(subst, ex.Name, ex.Access); rep != nil {
			if sa, ok := rep.(*ast.SymbolAccess); ok {
				return ast.NewShiftedSymbolAccess(ex.Span(), sa.Name, sa.Access, ex.Offset)
			}
		}

		return ex
	case *ast.VectorExpr:
		out := make([]ast.Expr, len(ex.Elements))
		for i, el := range ex.Elements {
			out[i] = substitute(subst, el)
		}

		return ast.NewVectorExpr(ex.Span(), out)
	case *ast.MatrixExpr:
		rows := make([][]ast.Expr, len(ex.Rows))
		for i, row := range ex.Rows {
			out := make([]ast.Expr, len(row))
			for j, el := range row {
				out[j] = substitute(subst, el)
			}

			rows[i] = out
		}

		return ast.NewMatrixExpr(ex.Span(), rows)
	case *ast.BinaryExpr:
		return ast.NewBinaryExpr(ex.Span(), ex.Op, substitute(subst, ex.Lhs), substitute(subst, ex.Rhs))
	case *ast.IfExpr:
		return ast.NewIfExpr(ex.Span(), substitute(subst, ex.Cond), substitute(subst, ex.Then), substitute(subst, ex.Else))
	case *ast.LetExpr:
		child := newBindings(subst)
		val := substitute(subst, ex.Value)
		child.bind(ex.Name.Id(), val)

		return substitute(child, ex.Body)
	case *ast.CallExpr:
		args := make([]ast.Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = substitute(subst, a)
		}

		return ast.NewCallExpr(ex.Span(), ex.Callee, args)
	case *ast.ListComprehension:
		iters := make([]ast.Iterable, len(ex.Iterables))
		child := newBindings(subst)

		for i, it := range ex.Iterables {
			iters[i] = ast.Iterable{Binding: it.Binding, Source: substitute(subst, it.Source), Kind: it.Kind}
		}

		var sel ast.Expr
		if ex.Selector != nil {
			sel = substitute(child, ex.Selector)
		}

		return ast.NewListComprehension(ex.Span(), substitute(child, ex.Body), iters, sel)
	default:
		return e
	}
}

// substituteSymbol looks up a Local-resolved name in subst and, if bound,
// returns the replacement expression with access composed on top of it.
// Returns nil when name is not a Local reference, or has no binding (e.g.
// it refers to a trace column, random value, or resolved cross-module
// item), meaning the caller should keep the original node unchanged.
func substituteSymbol(subst *bindings, name ident.Resolvable, access types.AccessType) ast.Expr {
	local, ok := name.AsLocal()
	if !ok {
		return nil
	}

	repl, ok := subst.lookup(local.Id())
	if !ok {
		return nil
	}

	if sa, ok := repl.(*ast.SymbolAccess); ok {
		return ast.NewProjectedSymbolAccess(sa.Span(), sa.Name, composeAccess(sa.Access, access))
	}

	if access.Kind() == types.Default {
		return repl
	}

	// The substituted value is a non-symbol expression (a constant, a
	// vector literal, ...) being projected; specialise the common literal
	// cases directly rather than synthesising a generic projection node.
	return projectLiteral(repl, access)
}

// projectLiteral applies an index/slice access directly to a constant or
// vector-literal expression, used when a parameter bound to a literal
// aggregate is itself indexed inside the callee body.
func projectLiteral(e ast.Expr, access types.AccessType) ast.Expr {
	switch v := e.(type) {
	case *ast.VectorExpr:
		switch access.Kind() {
		case types.Index:
			i := access.Index()
			if int(i) < len(v.Elements) {
				return v.Elements[i]
			}
		case types.Slice:
			s, en := access.SliceRange()
			if int(en) <= len(v.Elements) {
				return ast.NewVectorExpr(v.Span(), append([]ast.Expr{}, v.Elements[s:en]...))
			}
		}
	case *ast.ConstExpr:
		if v.Value.IsVector() {
			switch access.Kind() {
			case types.Index:
				i := access.Index()
				if int(i) < len(v.Value.Vector) {
					return ast.NewConstExpr(v.Span(), ast.ScalarValue(v.Value.Vector[i]))
				}
			case types.Slice:
				s, en := access.SliceRange()
				if int(en) <= len(v.Value.Vector) {
					return ast.NewConstExpr(v.Span(), ast.VectorValue(append([]*big.Int{}, v.Value.Vector[s:en]...)))
				}
			}
		}
	}

	return e
}
