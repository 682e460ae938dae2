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
package air

import (
	"testing"

	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/felt"
	"github.com/airlang/airc/pkg/mir"
	"github.com/airlang/airc/pkg/types"
)

func TestLower_StripsEnfAndCopiesConstraint(t *testing.T) {
	src := mir.NewGraph()

	col := src.TraceAccess(mir.TraceRef{Segment: types.MainSegment, Column: 0, RowOffset: 0})
	zero := src.Const(felt.Zero())
	diff := src.Binary(mir.OpSub, col, zero)
	enf := src.Enf(diff)

	src.IntegrityRoots = append(src.IntegrityRoots, mir.IntegrityRoot{
		Segment: types.MainSegment,
		Domain:  types.EveryRow,
		Node:    enf,
	})

	sink := diag.NewSink()

	g, err := Lower(sink, src)
	if err != nil {
		t.Fatalf("Lower: %v (diagnostics: %v)", err, sink.All())
	}

	if len(g.Constraints) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(g.Constraints))
	}

	root := g.Node(g.Constraints[0].Node)
	if root.Op != OpSub {
		t.Errorf("expected the Enf wrapper to be stripped leaving OpSub, got %v", root.Op)
	}
}

func TestLower_RejectsDuplicateBoundaryOnSameColumn(t *testing.T) {
	src := mir.NewGraph()

	col := src.TraceAccess(mir.TraceRef{Segment: types.MainSegment, Column: 0, RowOffset: 0})
	zero := src.Const(felt.Zero())
	diff := src.Binary(mir.OpSub, col, zero)
	enf1 := src.Enf(diff)
	enf2 := src.Enf(src.Binary(mir.OpSub, col, src.Const(felt.One())))

	src.BoundaryRoots = append(src.BoundaryRoots,
		mir.BoundaryRoot{Segment: types.MainSegment, Column: 0, Boundary: types.First, Node: enf1},
		mir.BoundaryRoot{Segment: types.MainSegment, Column: 0, Boundary: types.First, Node: enf2},
	)

	sink := diag.NewSink()

	_, err := Lower(sink, src)
	if err == nil {
		t.Fatal("expected an error for two boundary constraints pinning the same column/boundary pair")
	}

	if !sink.HasErrors() {
		t.Error("expected a diagnostic for the duplicate boundary constraint")
	}
}

func TestLower_AllowsFirstAndLastOnSameColumn(t *testing.T) {
	src := mir.NewGraph()

	col := src.TraceAccess(mir.TraceRef{Segment: types.MainSegment, Column: 0, RowOffset: 0})
	enfFirst := src.Enf(src.Binary(mir.OpSub, col, src.Const(felt.Zero())))
	enfLast := src.Enf(src.Binary(mir.OpSub, col, src.Const(felt.One())))

	src.BoundaryRoots = append(src.BoundaryRoots,
		mir.BoundaryRoot{Segment: types.MainSegment, Column: 0, Boundary: types.First, Node: enfFirst},
		mir.BoundaryRoot{Segment: types.MainSegment, Column: 0, Boundary: types.Last, Node: enfLast},
	)

	sink := diag.NewSink()

	g, err := Lower(sink, src)
	if err != nil {
		t.Fatalf("Lower: %v (diagnostics: %v)", err, sink.All())
	}

	if len(g.Constraints) != 2 {
		t.Fatalf("expected both boundary constraints to survive, got %d", len(g.Constraints))
	}
}

func TestLower_PanicsOnNonEnfConstraintRoot(t *testing.T) {
	src := mir.NewGraph()

	notEnf := src.Const(felt.Zero())
	src.IntegrityRoots = append(src.IntegrityRoots, mir.IntegrityRoot{Node: notEnf})

	defer func() {
		if recover() == nil {
			t.Fatal("expected Lower to panic when a constraint root is not an Enf node")
		}
	}()

	_, _ = Lower(diag.NewSink(), src)
}
