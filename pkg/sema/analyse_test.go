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
package sema

import (
	"math/big"
	"testing"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/types"
	"github.com/airlang/airc/pkg/source"
)

var span = source.NewSpan(0, 1)

func columnRef(name string) ident.Resolvable {
	return ident.NewUnresolved(ident.Binding(ident.NewIdentifier(name, span)))
}

func buildProgram(integrityExpr ast.Expr) *ast.Program {
	m := ast.NewModule(ast.RootModule, ident.Intern("main"), ident.Intern("main.air"))

	m.TraceSegments = []*ast.TraceSegmentDecl{
		ast.NewTraceSegmentDecl(span, types.MainSegment, []ast.TraceBinding{
			{Name: ident.NewIdentifier("a", span), Segment: types.MainSegment, Offset: 0, Size: 1, Type: types.NewFeltType()},
		}),
	}

	m.PublicInputs[ident.Intern("stack")] = ast.PublicInput{Name: ident.NewIdentifier("stack", span), Size: 1}

	firstAccess := ast.NewBoundedSymbolAccess(span, columnRef("a"), types.DefaultAccess(), types.First)
	zero := ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(0)))
	boundary := ast.NewEnforceStatement(span, ast.NewBinaryExpr(span, ast.Eq, firstAccess, zero))

	m.BoundaryConstraints = []ast.Statement{boundary}
	m.IntegrityConstraints = []ast.Statement{ast.NewEnforceStatement(span, integrityExpr)}

	return ast.NewProgram(ident.NewIdentifier("main", span), m, map[ident.Id]*ast.Module{})
}

func TestAnalyseProgram_Valid(t *testing.T) {
	sym := ast.NewSymbolAccess(span, columnRef("a"))
	zero := ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(0)))
	eq := ast.NewBinaryExpr(span, ast.Eq, sym, zero)

	sink := diag.NewSink()
	p := buildProgram(eq)

	_, err := AnalyseProgram(sink, p)
	if err != nil {
		t.Fatalf("AnalyseProgram: %v (diagnostics: %v)", err, sink.All())
	}

	if _, isResolved := sym.Name.AsResolved(); !isResolved {
		t.Errorf("symbol access to a trace column should resolve to Resolved, got %v", sym.Name)
	}

	if sym.Type() == nil || !sym.Type().IsFelt() {
		t.Errorf("symbol access type = %v, want felt", sym.Type())
	}
}

func TestAnalyseProgram_UndefinedVariable(t *testing.T) {
	sym := ast.NewSymbolAccess(span, columnRef("nope"))
	zero := ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(0)))
	eq := ast.NewBinaryExpr(span, ast.Eq, sym, zero)

	sink := diag.NewSink()
	p := buildProgram(eq)

	_, err := AnalyseProgram(sink, p)
	if err == nil {
		t.Fatal("expected an error for a reference to an undeclared column")
	}

	if !sink.HasErrors() {
		t.Error("expected at least one Error-severity diagnostic")
	}
}

func TestAnalyseProgram_TypeMismatch(t *testing.T) {
	sym := ast.NewSymbolAccess(span, columnRef("a"))
	vec := ast.NewVectorExpr(span, []ast.Expr{
		ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(0))),
		ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(1))),
	})
	eq := ast.NewBinaryExpr(span, ast.Eq, sym, vec)

	sink := diag.NewSink()
	p := buildProgram(eq)

	_, err := AnalyseProgram(sink, p)
	if err == nil {
		t.Fatal("expected a type-mismatch error comparing a felt column to a vector literal")
	}
}

func TestAnalyseProgram_BoundaryLhsMustBeBoundedAccess(t *testing.T) {
	sink := diag.NewSink()

	sym := ast.NewSymbolAccess(span, columnRef("a"))
	zero := ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(0)))

	m := ast.NewModule(ast.RootModule, ident.Intern("badlhs"), ident.Intern("badlhs.air"))
	m.TraceSegments = []*ast.TraceSegmentDecl{
		ast.NewTraceSegmentDecl(span, types.MainSegment, []ast.TraceBinding{
			{Name: ident.NewIdentifier("a", span), Segment: types.MainSegment, Offset: 0, Size: 1, Type: types.NewFeltType()},
		}),
	}
	m.PublicInputs[ident.Intern("stack")] = ast.PublicInput{Name: ident.NewIdentifier("stack", span), Size: 1}

	// A bare column reference (rather than `a.first`/`a.last`) is not a
	// legal boundary-constraint left-hand side.
	m.BoundaryConstraints = []ast.Statement{
		ast.NewEnforceStatement(span, ast.NewBinaryExpr(span, ast.Eq, sym, zero)),
	}
	m.IntegrityConstraints = []ast.Statement{
		ast.NewEnforceStatement(span, ast.NewBinaryExpr(span, ast.Eq, ast.NewSymbolAccess(span, columnRef("a")), zero)),
	}

	p := ast.NewProgram(ident.NewIdentifier("badlhs", span), m, map[ident.Id]*ast.Module{})

	_, err := AnalyseProgram(sink, p)
	if err == nil {
		t.Fatal("expected an error for a boundary constraint whose lhs is not a `col.first`/`col.last` access")
	}
}
