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
package module

import (
	"math/big"
	"testing"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/source"
	"github.com/airlang/airc/pkg/types"
)

var noSpan = source.NewSpan(0, 1)

func mainSegment() *ast.TraceSegmentDecl {
	return ast.NewTraceSegmentDecl(noSpan, types.MainSegment, []ast.TraceBinding{
		{Name: ident.NewIdentifier("a", noSpan), Segment: types.MainSegment, Offset: 0, Size: 1, Type: types.NewFeltType()},
	})
}

func publicInputs() *ast.PublicInputsDecl {
	return ast.NewPublicInputsDecl(noSpan, []ast.PublicInput{
		{Name: ident.NewIdentifier("stack", noSpan), Size: 1},
	})
}

func enforceStatement() ast.Statement {
	sym := ast.NewSymbolAccess(noSpan, ident.NewLocal(ident.NewIdentifier("a", noSpan)))
	zero := ast.NewConstExpr(noSpan, ast.ScalarValue(big.NewInt(0)))
	return ast.NewEnforceStatement(noSpan, ast.NewBinaryExpr(noSpan, ast.Eq, sym, zero))
}

func minimalRootDecls() []ast.Declaration {
	return []ast.Declaration{
		mainSegment(),
		publicInputs(),
		ast.NewBoundaryConstraintsDecl(noSpan, []ast.Statement{enforceStatement()}),
		ast.NewIntegrityConstraintsDecl(noSpan, []ast.Statement{enforceStatement()}),
	}
}

func TestAssemble_MinimalRootModule(t *testing.T) {
	sink := diag.NewSink()

	m, err := Assemble(sink, ast.RootModule, ident.Intern("main"), ident.Intern("main.air"), minimalRootDecls())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if m.Segment(0) == nil {
		t.Error("expected $main segment to be recorded")
	}

	if len(m.PublicInputs) != 1 {
		t.Errorf("expected 1 public input, got %d", len(m.PublicInputs))
	}

	if len(m.BoundaryConstraints) != 1 || len(m.IntegrityConstraints) != 1 {
		t.Errorf("expected one statement in each constraint bucket, got %d/%d",
			len(m.BoundaryConstraints), len(m.IntegrityConstraints))
	}

	if sink.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", sink.All())
	}
}

func TestAssemble_RootMissingPublicInputs(t *testing.T) {
	sink := diag.NewSink()

	decls := []ast.Declaration{
		mainSegment(),
		ast.NewBoundaryConstraintsDecl(noSpan, []ast.Statement{enforceStatement()}),
		ast.NewIntegrityConstraintsDecl(noSpan, []ast.Statement{enforceStatement()}),
	}

	_, err := Assemble(sink, ast.RootModule, ident.Intern("main2"), ident.Intern("main2.air"), decls)
	if err == nil {
		t.Fatal("expected an error for a root module with no public inputs")
	}

	modErr, ok := err.(*Error)
	if !ok || modErr.Kind != MissingPublicInputs {
		t.Errorf("got error %v, want MissingPublicInputs", err)
	}
}

func TestAssemble_RootMissingConstraints(t *testing.T) {
	sink := diag.NewSink()

	decls := []ast.Declaration{mainSegment(), publicInputs()}

	_, err := Assemble(sink, ast.RootModule, ident.Intern("main3"), ident.Intern("main3.air"), decls)
	if err == nil {
		t.Fatal("expected an error for a root module with no constraints")
	}

	modErr, ok := err.(*Error)
	if !ok || modErr.Kind != MissingConstraints {
		t.Errorf("got error %v, want MissingConstraints", err)
	}
}

func TestAssemble_LibraryRejectsRootSections(t *testing.T) {
	sink := diag.NewSink()

	decls := []ast.Declaration{mainSegment()}

	_, err := Assemble(sink, ast.LibraryModule, ident.Intern("lib1"), ident.Intern("lib1.air"), decls)
	if err == nil {
		t.Fatal("expected an error for trace_columns in a library module")
	}

	modErr, ok := err.(*Error)
	if !ok || modErr.Kind != RootSectionInLibrary {
		t.Errorf("got error %v, want RootSectionInLibrary", err)
	}
}

func TestAssemble_DuplicateNameConflict(t *testing.T) {
	sink := diag.NewSink()

	c := ast.NewConstantDecl(noSpan, ident.NewIdentifier("FOO", noSpan), ast.ScalarValue(big.NewInt(1)))
	dup := ast.NewConstantDecl(noSpan, ident.NewIdentifier("FOO", noSpan), ast.ScalarValue(big.NewInt(2)))

	decls := append(minimalRootDecls(), c, dup)

	_, err := Assemble(sink, ast.RootModule, ident.Intern("main4"), ident.Intern("main4.air"), decls)
	if err == nil {
		t.Fatal("expected a name-conflict error for a duplicate constant")
	}

	modErr, ok := err.(*Error)
	if !ok || modErr.Kind != NameConflict {
		t.Errorf("got error %v, want NameConflict", err)
	}
}

func TestAssemble_ConstantMustBeAllCaps(t *testing.T) {
	sink := diag.NewSink()

	bad := ast.NewConstantDecl(noSpan, ident.NewIdentifier("lowercase", noSpan), ast.ScalarValue(big.NewInt(1)))
	decls := append(minimalRootDecls(), bad)

	_, err := Assemble(sink, ast.RootModule, ident.Intern("main5"), ident.Intern("main5.air"), decls)
	if err == nil {
		t.Fatal("expected an error for a non-ALL_CAPS constant name")
	}
}

func TestAssemble_PeriodicColumnMustBePowerOfTwo(t *testing.T) {
	sink := diag.NewSink()

	bad := ast.NewPeriodicColumnDecl(noSpan, ident.NewIdentifier("p", noSpan), []uint64{1, 2, 3})
	decls := append(minimalRootDecls(), bad)

	_, err := Assemble(sink, ast.RootModule, ident.Intern("main6"), ident.Intern("main6.air"), decls)
	if err == nil {
		t.Fatal("expected an error for a non-power-of-two periodic column length")
	}
}

func TestAssemble_ImportSelf(t *testing.T) {
	sink := diag.NewSink()

	self := ident.Intern("main7")
	imp := ast.NewImportDecl(noSpan, self, ast.ImportWildcard, nil)
	decls := append(minimalRootDecls(), imp)

	_, err := Assemble(sink, ast.RootModule, self, ident.Intern("main7.air"), decls)
	if err == nil {
		t.Fatal("expected an error for a self-import")
	}

	modErr, ok := err.(*Error)
	if !ok || modErr.Kind != ImportSelf {
		t.Errorf("got error %v, want ImportSelf", err)
	}
}
