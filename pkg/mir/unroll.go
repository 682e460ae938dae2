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

package mir

import "github.com/airlang/airc/pkg/internal/invariant"

// Unroll is the pass spec.md names C9, run immediately after LowerModule
// (C8). By the time pkg/inline has expanded every constraint comprehension, evaluator
// call and let-binding at the AST level, a module's constraint roots already
// denote one constraint per concrete row/column/selector combination, so
// there is no repeated structure left for this pass to expand - the actual
// unrolling happened one level up, at the AST. What Unroll does here is
// confirm that invariant holds before pkg/air is allowed to treat the graph
// as settled: every constraint root's subgraph is fully concrete, with no
// unresolved placeholder (InsertPlaceholder left un-Update'd) and no
// surviving If node (value-position conditionals are arithmetised to a
// selection formula at construction time in lowerIf; a structural If
// reaching here means some lowering path skipped that step).
//
// Unroll panics on violation rather than reporting a diagnostic: unlike
// lowering, which turns malformed user constraints into pkg/diag errors,
// every condition Unroll checks is one pkg/mir itself is responsible for
// maintaining, so a failure here is a compiler bug, not a bad input.
func Unroll(g *Graph) {
	visited := make(map[NodeIdx]bool, g.Len())

	for _, root := range g.BoundaryRoots {
		verifyConcrete(g, root.Node, visited)
	}

	for _, root := range g.IntegrityRoots {
		verifyConcrete(g, root.Node, visited)
	}
}

// concreteOps is every Op a fully-unrolled constraint root's subgraph may
// legitimately contain. It is a whitelist, not a blacklist: a future Op
// added to the graph (a Fold/For/Call/Definition node reinstating some
// piece of C9's general unrolling, say) must be added here deliberately
// before Unroll will accept it, rather than silently passing it through to
// pkg/air by virtue of not being OpPlaceholder or OpIf.
var concreteOps = map[Op]bool{
	OpConst:          true,
	OpTraceAccess:    true,
	OpRandomAccess:   true,
	OpPeriodicAccess: true,
	OpPublicAccess:   true,
	OpAdd:            true,
	OpSub:            true,
	OpMul:            true,
	OpEnf:            true,
}

func verifyConcrete(g *Graph, idx NodeIdx, visited map[NodeIdx]bool) {
	if visited[idx] {
		return
	}

	visited[idx] = true

	n := g.Node(idx)

	invariant.Check(concreteOps[n.Op], "mir: non-concrete op %d reachable from constraint root %d", n.Op, idx)

	for _, c := range n.Children {
		verifyConcrete(g, c, visited)
	}
}
