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
package cmd

import (
	"math/big"
	"testing"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/module"
	"github.com/airlang/airc/pkg/source"
	"github.com/airlang/airc/pkg/types"
)

// buildProgram assembles a minimal root module: one felt column `a`, one
// public input, a boundary constraint pinning `a` to zero at the first row,
// and an integrity constraint enforcing `a = 0` on every row.
func buildProgram(t *testing.T) *ast.Program {
	t.Helper()

	span := source.NewSpan(0, 1)

	mainSeg := ast.NewTraceSegmentDecl(span, types.MainSegment, []ast.TraceBinding{
		{Name: ident.NewIdentifier("a", span), Segment: types.MainSegment, Offset: 0, Size: 1, Type: types.NewFeltType()},
	})

	pubIn := ast.NewPublicInputsDecl(span, []ast.PublicInput{
		{Name: ident.NewIdentifier("stack", span), Size: 1},
	})

	colRef := func() *ast.SymbolAccess {
		return ast.NewSymbolAccess(span, ident.NewUnresolved(ident.Binding(ident.NewIdentifier("a", span))))
	}
	zero := ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(0)))

	boundaryLhs := ast.NewBoundedSymbolAccess(span,
		ident.NewUnresolved(ident.Binding(ident.NewIdentifier("a", span))), types.DefaultAccess(), types.First)
	boundary := ast.NewEnforceStatement(span, ast.NewBinaryExpr(span, ast.Eq, boundaryLhs, zero))
	integrity := ast.NewEnforceStatement(span, ast.NewBinaryExpr(span, ast.Eq, colRef(), zero))

	decls := []ast.Declaration{
		mainSeg,
		pubIn,
		ast.NewBoundaryConstraintsDecl(span, []ast.Statement{boundary}),
		ast.NewIntegrityConstraintsDecl(span, []ast.Statement{integrity}),
	}

	sink := diag.NewSink()

	m, err := module.Assemble(sink, ast.RootModule, ident.Intern("main"), ident.Intern("main.air"), decls)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	return ast.NewProgram(ident.NewIdentifier("main", span), m, map[ident.Id]*ast.Module{})
}

func TestCompile_LowersMinimalProgramToAirGraph(t *testing.T) {
	program := buildProgram(t)
	sink := diag.NewSink()

	g, err := Compile(sink, program)
	if err != nil {
		t.Fatalf("Compile: %v (diagnostics: %v)", err, sink.All())
	}

	if len(g.Constraints) != 2 {
		t.Fatalf("expected 2 constraints (1 boundary, 1 integrity), got %d", len(g.Constraints))
	}

	boundaryCount, integrityCount := 0, 0
	for _, c := range g.Constraints {
		if c.IsBoundary {
			boundaryCount++
		} else {
			integrityCount++
		}
	}

	if boundaryCount != 1 || integrityCount != 1 {
		t.Errorf("expected 1 boundary + 1 integrity constraint, got %d + %d", boundaryCount, integrityCount)
	}
}

func TestCompile_FailsOnSemanticError(t *testing.T) {
	program := buildProgram(t)

	// Corrupt the integrity constraint to reference an undeclared column,
	// which semantic analysis must reject before any later stage runs.
	span := source.NewSpan(0, 1)
	bogus := ast.NewSymbolAccess(span, ident.NewUnresolved(ident.Binding(ident.NewIdentifier("nope", span))))
	zero := ast.NewConstExpr(span, ast.ScalarValue(big.NewInt(0)))
	program.Root.IntegrityConstraints = []ast.Statement{
		ast.NewEnforceStatement(span, ast.NewBinaryExpr(span, ast.Eq, bogus, zero)),
	}

	sink := diag.NewSink()

	_, err := Compile(sink, program)
	if err == nil {
		t.Fatal("expected Compile to fail on a reference to an undeclared column")
	}

	if !sink.HasErrors() {
		t.Error("expected at least one diagnostic")
	}
}
