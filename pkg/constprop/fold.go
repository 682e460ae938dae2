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

package constprop

import (
	"math/big"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/felt"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/types"
	"github.com/airlang/airc/pkg/source"
)

// Fold rewrites every statement list of m in place, folding any subtree
// whose leaves are all literal/declared constants into a single ConstExpr.
// Module-level CONSTANT declarations are treated as foldable leaves;
// trace-column, random-value and public-input references are not, since
// their values are only known at proving time.
func Fold(sink diag.Handler, m *ast.Module) error {
	consts := collectConstants(m)

	failed := false

	foldStmts := func(stmts []ast.Statement) []ast.Statement {
		return foldStatementList(sink, consts, stmts, &failed)
	}

	m.BoundaryConstraints = foldStmts(m.BoundaryConstraints)
	m.IntegrityConstraints = foldStmts(m.IntegrityConstraints)

	for _, e := range m.Evaluators {
		e.Body = foldStmts(e.Body)
	}

	for _, f := range m.Functions {
		f.Body = foldStmts(f.Body)
	}

	if failed {
		return &Error{Msg: "constant folding failed"}
	}

	return nil
}

// collectConstants builds the id->value table of a module's own CONSTANT
// declarations. Imported constants are folded lazily: a SymbolAccess that
// resolves (via sema) to another module's constant carries a Resolved
// ident, not a bare name, so it never matches this module-local table and
// is simply left unfolded here - it gets folded when that module's own pass
// runs, before this module's inlining ever looks at it.
func collectConstants(m *ast.Module) map[ident.Id]ast.ConstantValue {
	out := make(map[ident.Id]ast.ConstantValue, len(m.Constants))

	for id, c := range m.Constants {
		out[id] = c.Value
	}

	return out
}

func foldStatementList(sink diag.Handler, consts map[ident.Id]ast.ConstantValue, stmts []ast.Statement, failed *bool) []ast.Statement {
	out := make([]ast.Statement, len(stmts))

	for i, s := range stmts {
		out[i] = foldStatement(sink, consts, s, failed)
	}

	return out
}

func foldStatement(sink diag.Handler, consts map[ident.Id]ast.ConstantValue, s ast.Statement, failed *bool) ast.Statement {
	switch st := s.(type) {
	case *ast.LetStatement:
		st.Value = foldExpr(sink, consts, st.Value, failed)
		st.Body = foldStatementList(sink, consts, st.Body, failed)

		return st
	case *ast.EnforceStatement:
		st.Expr = foldExpr(sink, consts, st.Expr, failed)

		return st
	case *ast.EnforceIfStatement:
		st.Expr = foldExpr(sink, consts, st.Expr, failed)
		st.Selector = foldExpr(sink, consts, st.Selector, failed)

		return st
	case *ast.EnforceAllStatement:
		st.Body = foldExpr(sink, consts, st.Body, failed)

		if st.Selector != nil {
			st.Selector = foldExpr(sink, consts, st.Selector, failed)
		}

		for i := range st.Iterables {
			st.Iterables[i].Source = foldExpr(sink, consts, st.Iterables[i].Source, failed)
		}

		return st
	case *ast.ExprStatement:
		st.Expr = foldExpr(sink, consts, st.Expr, failed)

		return st
	default:
		return s
	}
}

// foldExpr recursively folds e's subexpressions, returning a ConstExpr in
// place of e when every leaf it depends on is a compile-time constant.
// Expressions that are not (fully) foldable are returned with their
// children folded where possible, ready for the inliner to handle.
func foldExpr(sink diag.Handler, consts map[ident.Id]ast.ConstantValue, e ast.Expr, failed *bool) ast.Expr {
	switch ex := e.(type) {
	case *ast.ConstExpr:
		return ex
	case *ast.VectorExpr:
		for i, el := range ex.Elements {
			ex.Elements[i] = foldExpr(sink, consts, el, failed)
		}

		if vals, ok := allConst(ex.Elements); ok {
			return ast.NewConstExpr(ex.Span(), ast.VectorValue(vals))
		}

		return ex
	case *ast.MatrixExpr:
		for _, row := range ex.Rows {
			for i, el := range row {
				row[i] = foldExpr(sink, consts, el, failed)
			}
		}

		return ex
	case *ast.BinaryExpr:
		return foldBinary(sink, consts, ex, failed)
	case *ast.SymbolAccess:
		if local, ok := ex.Name.AsLocal(); ok {
			if v, ok := consts[local.Id()]; ok && ex.Access.Kind() == types.Default {
				return ast.NewConstExpr(ex.Span(), v)
			}
		}

		return ex
	case *ast.LetExpr:
		ex.Value = foldExpr(sink, consts, ex.Value, failed)
		ex.Body = foldExpr(sink, consts, ex.Body, failed)

		return ex
	case *ast.IfExpr:
		ex.Cond = foldExpr(sink, consts, ex.Cond, failed)
		ex.Then = foldExpr(sink, consts, ex.Then, failed)
		ex.Else = foldExpr(sink, consts, ex.Else, failed)

		if c, ok := ex.Cond.(*ast.ConstExpr); ok && c.Value.IsScalar() {
			if c.Value.Scalar.Sign() == 0 {
				return ex.Else
			}

			return ex.Then
		}

		return ex
	case *ast.ListComprehension:
		ex.Body = foldExpr(sink, consts, ex.Body, failed)

		if ex.Selector != nil {
			ex.Selector = foldExpr(sink, consts, ex.Selector, failed)
		}

		for i := range ex.Iterables {
			ex.Iterables[i].Source = foldExpr(sink, consts, ex.Iterables[i].Source, failed)
		}

		return ex
	case *ast.CallExpr:
		for i, a := range ex.Args {
			ex.Args[i] = foldExpr(sink, consts, a, failed)
		}

		return ex
	default:
		return e
	}
}

func allConst(exprs []ast.Expr) ([]*big.Int, bool) {
	vals := make([]*big.Int, len(exprs))

	for i, e := range exprs {
		c, ok := e.(*ast.ConstExpr)
		if !ok || !c.Value.IsScalar() {
			return nil, false
		}

		vals[i] = c.Value.Scalar
	}

	return vals, true
}

func foldBinary(sink diag.Handler, consts map[ident.Id]ast.ConstantValue, ex *ast.BinaryExpr, failed *bool) ast.Expr {
	ex.Lhs = foldExpr(sink, consts, ex.Lhs, failed)
	ex.Rhs = foldExpr(sink, consts, ex.Rhs, failed)

	lc, lok := ex.Lhs.(*ast.ConstExpr)

	if ex.Op == ast.Exp {
		rc, ok := ex.Rhs.(*ast.ConstExpr)
		if !ok || !rc.Value.IsScalar() {
			sink.Diagnostic(diag.Error).WithMessage("exponent must be a constant scalar").WithPrimaryLabel(ex.Span(), "here").Emit()
			*failed = true

			return ex
		}

		if !rc.Value.Scalar.IsUint64() || rc.Value.Scalar.Uint64() > uint64(^uint32(0)) {
			sink.Diagnostic(diag.Error).WithMessage("exponent does not fit in a uint32").WithPrimaryLabel(ex.Span(), "here").Emit()
			*failed = true

			return ex
		}

		if lok && lc.Value.IsScalar() {
			r := felt.FromBigInt(lc.Value.Scalar).Exp(rc.Value.Scalar.Uint64())
			return ast.NewConstExpr(ex.Span(), ast.ScalarValue(r.ToBigInt()))
		}

		return ex
	}

	rc, rok := ex.Rhs.(*ast.ConstExpr)

	if !lok || !rok {
		return ex
	}

	v, err := evalConst(ex.Op, lc.Value, rc.Value)
	if err != nil {
		sink.Diagnostic(diag.Error).WithMessage(err.Error()).WithPrimaryLabel(ex.Span(), "here").Emit()
		*failed = true

		return ex
	}

	return ast.NewConstExpr(ex.Span(), v)
}

func evalConst(op ast.BinaryOp, l, r ast.ConstantValue) (ast.ConstantValue, error) {
	switch {
	case l.IsScalar() && r.IsScalar():
		return ast.ScalarValue(evalScalar(op, l.Scalar, r.Scalar)), nil
	case l.IsVector() && r.IsVector():
		if len(l.Vector) != len(r.Vector) {
			var zero source.Span
			return ast.ConstantValue{}, &Error{ShapeMismatch, zero, "vector shape mismatch in constant expression"}
		}

		out := make([]*big.Int, len(l.Vector))
		for i := range out {
			out[i] = evalScalar(op, l.Vector[i], r.Vector[i])
		}

		return ast.VectorValue(out), nil
	default:
		var zero source.Span
		return ast.ConstantValue{}, &Error{ShapeMismatch, zero, "mismatched operand shapes in constant expression"}
	}
}

func evalScalar(op ast.BinaryOp, a, b *big.Int) *big.Int {
	ea := felt.FromBigInt(a)
	eb := felt.FromBigInt(b)

	switch op {
	case ast.Add:
		return ea.Add(eb).ToBigInt()
	case ast.Sub:
		return ea.Sub(eb).ToBigInt()
	case ast.Mul:
		return ea.Mul(eb).ToBigInt()
	case ast.Eq:
		if ea.Equal(eb) {
			return big.NewInt(1)
		}

		return big.NewInt(0)
	default:
		return big.NewInt(0)
	}
}
