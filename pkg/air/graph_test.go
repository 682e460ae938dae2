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
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/airlang/airc/pkg/felt"
	"github.com/airlang/airc/pkg/types"
)

func TestGraph_InsertDeduplicates(t *testing.T) {
	g := NewGraph()

	a := g.Const(felt.FromUint64(5))
	b := g.Const(felt.FromUint64(5))

	if a != b {
		t.Error("identical constants should share a node")
	}

	x := g.TraceAccess(TraceRef{Segment: types.MainSegment, Column: 1, RowOffset: 0})
	y := g.TraceAccess(TraceRef{Segment: types.MainSegment, Column: 1, RowOffset: 0})

	if x != y {
		t.Error("identical trace accesses should share a node")
	}

	sum1 := g.Binary(OpAdd, a, x)
	sum2 := g.Binary(OpAdd, a, x)

	if sum1 != sum2 {
		t.Error("identical Add nodes should share a node")
	}

	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (const, trace access, add)", g.Len())
	}
}

func TestGraph_GobRoundTrip(t *testing.T) {
	want := NewGraph()

	col := want.TraceAccess(TraceRef{Segment: types.MainSegment, Column: 2, RowOffset: 1})
	one := want.Const(felt.One())
	diff := want.Binary(OpSub, col, one)
	cubed := want.Binary(OpMul, diff, want.Binary(OpMul, diff, diff))

	want.Constraints = append(want.Constraints, Constraint{
		Segment: types.MainSegment,
		Domain:  types.EveryRow,
		Node:    cubed,
	})

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(want); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got := NewGraph()
	if err := gob.NewDecoder(&buf).Decode(got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Len() != want.Len() {
		t.Fatalf("round-tripped graph has %d nodes, want %d", got.Len(), want.Len())
	}

	if len(got.Constraints) != 1 {
		t.Fatalf("round-tripped %d constraints, want 1", len(got.Constraints))
	}

	root := got.Node(got.Constraints[0].Node)
	if root.Op != OpMul {
		t.Fatalf("round-tripped constraint root = %+v, want OpMul (diff cubed)", root)
	}

	square := got.Node(root.Children[1])
	if square.Op != OpMul {
		t.Fatalf("round-tripped constraint root's rhs op = %v, want OpMul (diff squared)", square.Op)
	}

	body := got.Node(root.Children[0])
	if body.Op != OpSub {
		t.Fatalf("round-tripped constraint body op = %v, want OpSub", body.Op)
	}

	lhs := got.Node(body.Children[0])
	if lhs.Op != OpTraceAccess || lhs.Trace.Column != 2 || lhs.Trace.RowOffset != 1 {
		t.Errorf("round-tripped lhs = %+v, want TraceAccess{Column:2, RowOffset:1}", lhs)
	}

	// Re-inserting an equivalent node post-decode must still dedup against
	// the replayed arena, proving GobDecode rebuilt a working hash-cons index.
	again := got.TraceAccess(TraceRef{Segment: types.MainSegment, Column: 2, RowOffset: 1})
	if again != body.Children[0] {
		t.Error("post-decode insert did not dedup against the replayed arena")
	}
}
