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
package constprop

import (
	"math/big"
	"testing"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/source"
)

var span = source.NewSpan(0, 1)

func scalarConst(v int64) *ast.ConstExpr {
	return ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(v)))
}

func TestFold_FoldsArithmeticSubtree(t *testing.T) {
	m := ast.NewModule(ast.RootModule, ident.Intern("m1"), ident.Intern("m1.air"))

	sum := ast.NewBinaryExpr(span, ast.Add, scalarConst(3), scalarConst(5))
	m.IntegrityConstraints = []ast.Statement{ast.NewExprStatement(span, sum)}

	sink := diag.NewSink()
	if err := Fold(sink, m); err != nil {
		t.Fatalf("Fold: %v", err)
	}

	got, ok := m.IntegrityConstraints[0].(*ast.ExprStatement).Expr.(*ast.ConstExpr)
	if !ok {
		t.Fatalf("expected folded expression to be a ConstExpr, got %T", m.IntegrityConstraints[0].(*ast.ExprStatement).Expr)
	}

	if got.Value.Scalar.Cmp(big.NewInt(8)) != 0 {
		t.Errorf("3 + 5 folded to %v, want 8", got.Value.Scalar)
	}
}

func TestFold_FoldsModuleConstantReference(t *testing.T) {
	m := ast.NewModule(ast.RootModule, ident.Intern("m2"), ident.Intern("m2.air"))

	name := ident.NewIdentifier("FOO", span)
	m.Constants[name.Id()] = ast.NewConstantDecl(span, name, ast.ScalarValue(big.NewInt(42)))

	ref := ast.NewSymbolAccess(span, ident.NewLocal(name))
	m.IntegrityConstraints = []ast.Statement{ast.NewExprStatement(span, ref)}

	sink := diag.NewSink()
	if err := Fold(sink, m); err != nil {
		t.Fatalf("Fold: %v", err)
	}

	got, ok := m.IntegrityConstraints[0].(*ast.ExprStatement).Expr.(*ast.ConstExpr)
	if !ok {
		t.Fatalf("expected constant reference to fold to a ConstExpr, got %T", m.IntegrityConstraints[0].(*ast.ExprStatement).Expr)
	}

	if got.Value.Scalar.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("folded constant = %v, want 42", got.Value.Scalar)
	}
}

func TestFold_ExponentiationOfConstantBase(t *testing.T) {
	m := ast.NewModule(ast.RootModule, ident.Intern("m3"), ident.Intern("m3.air"))

	exp := ast.NewBinaryExpr(span, ast.Exp, scalarConst(2), scalarConst(10))
	m.IntegrityConstraints = []ast.Statement{ast.NewExprStatement(span, exp)}

	sink := diag.NewSink()
	if err := Fold(sink, m); err != nil {
		t.Fatalf("Fold: %v", err)
	}

	got, ok := m.IntegrityConstraints[0].(*ast.ExprStatement).Expr.(*ast.ConstExpr)
	if !ok {
		t.Fatalf("expected 2^10 to fold to a ConstExpr, got %T", m.IntegrityConstraints[0].(*ast.ExprStatement).Expr)
	}

	if got.Value.Scalar.Cmp(big.NewInt(1024)) != 0 {
		t.Errorf("2^10 folded to %v, want 1024", got.Value.Scalar)
	}
}

func TestFold_NonConstantExponentFails(t *testing.T) {
	m := ast.NewModule(ast.RootModule, ident.Intern("m4"), ident.Intern("m4.air"))

	notConst := ast.NewSymbolAccess(span, ident.NewUnresolved(ident.Binding(ident.NewIdentifier("n", span))))
	exp := ast.NewBinaryExpr(span, ast.Exp, scalarConst(2), notConst)
	m.IntegrityConstraints = []ast.Statement{ast.NewExprStatement(span, exp)}

	sink := diag.NewSink()

	err := Fold(sink, m)
	if err == nil {
		t.Fatal("expected an error for a non-constant exponent")
	}

	if !sink.HasErrors() {
		t.Error("expected a diagnostic for a non-constant exponent")
	}
}

func TestFold_VectorShapeMismatch(t *testing.T) {
	m := ast.NewModule(ast.RootModule, ident.Intern("m5"), ident.Intern("m5.air"))

	lhs := ast.NewConstExpr(span, ast.VectorValue([]*big.Int{big.NewInt(1), big.NewInt(2)}))
	rhs := ast.NewConstExpr(span, ast.VectorValue([]*big.Int{big.NewInt(1)}))
	add := ast.NewBinaryExpr(span, ast.Add, lhs, rhs)
	m.IntegrityConstraints = []ast.Statement{ast.NewExprStatement(span, add)}

	sink := diag.NewSink()

	err := Fold(sink, m)
	if err == nil {
		t.Fatal("expected an error for mismatched vector shapes")
	}
}

func TestFold_LeavesNonFoldableExpressionAlone(t *testing.T) {
	m := ast.NewModule(ast.RootModule, ident.Intern("m6"), ident.Intern("m6.air"))

	col := ast.NewSymbolAccess(span, ident.NewUnresolved(ident.Binding(ident.NewIdentifier("col", span))))
	eq := ast.NewBinaryExpr(span, ast.Eq, col, scalarConst(0))
	m.IntegrityConstraints = []ast.Statement{ast.NewEnforceStatement(span, eq)}

	sink := diag.NewSink()
	if err := Fold(sink, m); err != nil {
		t.Fatalf("Fold: %v", err)
	}

	got := m.IntegrityConstraints[0].(*ast.EnforceStatement).Expr.(*ast.BinaryExpr)
	if _, ok := got.Lhs.(*ast.SymbolAccess); !ok {
		t.Errorf("expected the trace-column reference to survive folding, got %T", got.Lhs)
	}
}
