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
package ast

import (
	"bytes"
	"encoding/gob"
	"math/big"
	"testing"

	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/source"
)

// buildSampleModule constructs a tiny root module whose integrity
// constraints exercise a handful of expression/statement kinds, so a gob
// round trip has something to lose if a span or interface registration is
// missing.
func buildSampleModule() *Module {
	span := source.NewSpan(3, 9)

	col := NewSymbolAccess(span, ident.NewLocal(ident.NewIdentifier("x", span)))
	one := NewConstExpr(span, ScalarValue(big.NewInt(1)))
	eq := NewBinaryExpr(span, Eq, col, one)
	enforce := NewEnforceStatement(span, eq)

	m := NewModule(RootModule, ident.Intern("main"), ident.Intern("main.air"))
	m.IntegrityConstraints = []Statement{enforce}

	return m
}

func TestModule_GobRoundTrip(t *testing.T) {
	want := buildSampleModule()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(want); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got Module
	if err := gob.NewDecoder(&buf).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(got.IntegrityConstraints) != 1 {
		t.Fatalf("round-tripped %d integrity constraints, want 1", len(got.IntegrityConstraints))
	}

	enforce, ok := got.IntegrityConstraints[0].(*EnforceStatement)
	if !ok {
		t.Fatalf("round-tripped statement has type %T, want *EnforceStatement", got.IntegrityConstraints[0])
	}

	wantSpan := want.IntegrityConstraints[0].Span()
	gotSpan := enforce.Span()
	if gotSpan.Start() != wantSpan.Start() || gotSpan.End() != wantSpan.End() {
		t.Errorf("EnforceStatement span = %v, want %v", gotSpan, wantSpan)
	}

	eq, ok := enforce.Expr.(*BinaryExpr)
	if !ok {
		t.Fatalf("enforce body has type %T, want *BinaryExpr", enforce.Expr)
	}

	if eq.Op != Eq {
		t.Errorf("binary op = %v, want Eq", eq.Op)
	}

	lhs, ok := eq.Lhs.(*SymbolAccess)
	if !ok {
		t.Fatalf("lhs has type %T, want *SymbolAccess", eq.Lhs)
	}

	lhsSpan := lhs.Span()
	if lhsSpan.Start() != 3 || lhsSpan.End() != 9 {
		t.Errorf("SymbolAccess span = %v, want (3,9)", lhsSpan)
	}

	rhs, ok := eq.Rhs.(*ConstExpr)
	if !ok {
		t.Fatalf("rhs has type %T, want *ConstExpr", eq.Rhs)
	}

	if rhs.Value.Scalar.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("const value = %v, want 1", rhs.Value.Scalar)
	}
}

func TestProgram_GobRoundTrip(t *testing.T) {
	root := buildSampleModule()
	lib := NewModule(LibraryModule, ident.Intern("helpers"), ident.Intern("helpers.air"))

	want := NewProgram(ident.NewIdentifier("main", source.NewSpan(0, 4)), root, map[ident.Id]*Module{
		lib.Name: lib,
	})

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(want); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got Program
	if err := gob.NewDecoder(&buf).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Root.Name != root.Name {
		t.Errorf("root module name = %v, want %v", got.Root.Name, root.Name)
	}

	if len(got.Library) != 1 || got.Library[lib.Name] == nil {
		t.Fatalf("library did not round-trip: %v", got.Library)
	}

	if len(got.Modules()) != 2 {
		t.Errorf("Modules() returned %d modules, want 2", len(got.Modules()))
	}

	if got.Module(lib.Name) == nil {
		t.Error("Module(lib.Name) returned nil after round trip")
	}
}
