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

package air

import (
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/internal/invariant"
	"github.com/airlang/airc/pkg/mir"
	"github.com/airlang/airc/pkg/types"
)

// columnKey identifies one trace column for boundary-uniqueness tracking.
type columnKey struct {
	segment types.SegmentId
	column  uint
}

// Lower turns a fully-built MIR graph into an AIR graph: it validates that
// no trace column is pinned at the same boundary row by more than one
// boundary root (spec.md section 4.8: "at most one constraint per
// column/boundary pair"), then copies every boundary and integrity root's
// constraint subgraph - with its Enf wrapper stripped, since an AIR
// Constraint's Node already means "this must vanish" - into a fresh,
// independently hash-consed Graph.
func Lower(sink diag.Handler, g *mir.Graph) (*Graph, error) {
	l := &lowerer{src: g, dst: NewGraph(), memo: make(map[mir.NodeIdx]NodeIdx)}

	seen := make(map[columnKey]types.ColumnBoundaryFlags)

	for _, root := range g.BoundaryRoots {
		key := columnKey{root.Segment, root.Column}
		flags := seen[key]

		if flags.Has(root.Boundary) {
			l.failed = true
			sink.Diagnostic(diag.Error).WithMessagef(
				"column %d of segment %s is constrained at boundary %s by more than one constraint",
				root.Column, root.Segment, root.Boundary,
			).Emit()

			continue
		}

		seen[key] = flags.With(root.Boundary)

		l.dst.Constraints = append(l.dst.Constraints, Constraint{
			Segment:    root.Segment,
			Domain:     types.DomainOfBoundary(root.Boundary),
			Boundary:   root.Boundary,
			Column:     root.Column,
			IsBoundary: true,
			Node:       l.copyEnfBody(root.Node),
		})
	}

	for _, root := range g.IntegrityRoots {
		l.dst.Constraints = append(l.dst.Constraints, Constraint{
			Segment: root.Segment,
			Domain:  root.Domain,
			Node:    l.copyEnfBody(root.Node),
		})
	}

	if l.failed {
		return nil, &Error{Msg: "AIR lowering failed"}
	}

	return l.dst, nil
}

type lowerer struct {
	src    *mir.Graph
	dst    *Graph
	memo   map[mir.NodeIdx]NodeIdx
	failed bool
}

// copyEnfBody copies the subgraph rooted at an OpEnf node's single child -
// the Enf wrapper itself carries no AIR-level meaning beyond "this is a
// constraint root".
func (l *lowerer) copyEnfBody(idx mir.NodeIdx) NodeIdx {
	n := l.src.Node(idx)
	invariant.Check(n.Op == mir.OpEnf, "air: constraint root is not an Enf node")

	return l.copy(n.Children[0])
}

func (l *lowerer) copy(idx mir.NodeIdx) NodeIdx {
	if out, ok := l.memo[idx]; ok {
		return out
	}

	n := l.src.Node(idx)

	var out NodeIdx

	switch n.Op {
	case mir.OpConst:
		out = l.dst.Const(n.Const)
	case mir.OpTraceAccess:
		out = l.dst.TraceAccess(TraceRef{Segment: n.Trace.Segment, Column: n.Trace.Column, RowOffset: n.Trace.RowOffset})
	case mir.OpRandomAccess:
		out = l.dst.RandomAccess(n.Random)
	case mir.OpPeriodicAccess:
		out = l.dst.PeriodicAccess(n.Periodic)
	case mir.OpPublicAccess:
		out = l.dst.PublicAccess(n.Public)
	case mir.OpAdd:
		out = l.dst.Binary(OpAdd, l.copy(n.Children[0]), l.copy(n.Children[1]))
	case mir.OpSub:
		out = l.dst.Binary(OpSub, l.copy(n.Children[0]), l.copy(n.Children[1]))
	case mir.OpMul:
		out = l.dst.Binary(OpMul, l.copy(n.Children[0]), l.copy(n.Children[1]))
	default:
		// OpEnf/OpIf/OpPlaceholder reaching here is an internal-compiler-bug
		// condition: every constraint body should already be pure arithmetic
		// by the time MIR lowering finishes (pkg/mir's IfExpr handling
		// expands conditionals to arithmetic selection at construction time,
		// and a placeholder should never be left unpopulated).
		invariant.Unreachable("air: unexpected MIR op %d reachable from a constraint root", n.Op)
	}

	l.memo[idx] = out

	return out
}
