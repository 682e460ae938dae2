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

// Package mir builds the mid-level, hash-consed constraint graph that
// sits between the fully-inlined AST (spec.md C6) and the AIR graph
// (spec.md C10): a DAG of arithmetic and access nodes addressed by stable
// NodeIdx rather than pointers, with structural sharing guaranteed by
// insert's deduplication (spec.md property 4).  By the time a module
// reaches this package its constraint sections are already flat -
// evaluator calls, constraint comprehensions and lets have all been expanded away by
// pkg/inline - so lowering here is a straight AST-expression-tree to
// hash-consed-DAG translation with no unrolling of its own left to do.
package mir

import (
	"github.com/airlang/airc/pkg/felt"
	"github.com/airlang/airc/pkg/internal/invariant"
	"github.com/airlang/airc/pkg/types"
)

// NodeIdx is a stable index into a Graph's node arena.
type NodeIdx uint32

// Op enumerates the kinds of node a Graph can contain.
type Op uint8

const (
	// OpConst is a literal field-element leaf.
	OpConst Op = iota
	// OpTraceAccess reads one trace column at a row offset (0 = current
	// row, >0 = shifted ahead, used only in integrity constraints).
	OpTraceAccess
	// OpRandomAccess reads one element of the random-value array.
	OpRandomAccess
	// OpPeriodicAccess reads the current-row value of a periodic column.
	OpPeriodicAccess
	// OpPublicAccess reads one element of a public input.
	OpPublicAccess
	// OpAdd is n-ary-folded-to-binary addition; two children.
	OpAdd
	// OpSub is subtraction; two children.
	OpSub
	// OpMul is multiplication; two children.
	OpMul
	// OpEnf wraps a boundary/integrity relation `lhs = rhs`, represented
	// as Enf(Sub(lhs, rhs)): one child, the value that must vanish.
	OpEnf
	// OpIf is a conditional with three children (cond, then, else).
	// LowerModule never builds one (conditionals are arithmetised), and
	// both Unroll and AIR lowering reject any OpIf they reach.
	OpIf
	// OpPlaceholder is a reserved, not-yet-populated node slot; see
	// InsertPlaceholder. Never deduplicated and never a valid leaf for
	// AIR lowering until overwritten by Update.
	OpPlaceholder
)

// TraceRef identifies a single trace-column access.
type TraceRef struct {
	Segment types.SegmentId
	Column  uint
	RowOffset int
}

// Node is one arena entry. Only the fields relevant to Op are meaningful;
// e.g. Children is empty for every leaf kind.
type Node struct {
	Op       Op
	Children []NodeIdx
	Const    felt.Element
	Trace    TraceRef
	Random   uint // index into the random-value array
	Periodic uint // periodic-column identity: the ordinal LowerModule assigns each periodic column
	Public   uint // index into a public input array
}

// Graph is the arena plus its hash-consing index and use-list side table.
type Graph struct {
	nodes []Node
	index map[nodeKey]NodeIdx
	uses  map[NodeIdx][]NodeIdx

	BoundaryRoots  []BoundaryRoot
	IntegrityRoots []IntegrityRoot
}

// BoundaryRoot is one boundary constraint lowered into the graph: the
// single trace column it pins, which boundary row, and the node computing
// `column.boundary - rhs` (an OpEnf wrapping an OpSub, per spec.md section
// 4.8's "Enf(Sub) lowering").
type BoundaryRoot struct {
	Segment  types.SegmentId
	Column   uint
	Boundary types.Boundary
	Node     NodeIdx
}

// IntegrityRoot is one integrity constraint lowered into the graph: which
// segment and row domain it applies over, and the constraint node (an
// OpEnf over an OpSub, or over Mul(selector, Sub) for a `when` constraint).
type IntegrityRoot struct {
	Segment types.SegmentId
	Domain  types.Domain
	Node    NodeIdx
}

// nodeKey is the structural identity used for deduplication: everything
// that distinguishes two otherwise-identical nodes.
type nodeKey struct {
	op       Op
	children [3]NodeIdx
	nChild   int
	constHi  uint64
	trace    TraceRef
	random   uint
	periodic uint
	public   uint
}

// NewGraph constructs an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[nodeKey]NodeIdx), uses: make(map[NodeIdx][]NodeIdx)}
}

func keyOf(n Node) nodeKey {
	k := nodeKey{op: n.Op, nChild: len(n.Children), trace: n.Trace, random: n.Random, periodic: n.Periodic, public: n.Public}

	for i, c := range n.Children {
		if i < 3 {
			k.children[i] = c
		}
	}

	if n.Op == OpConst {
		b := n.Const.ToBigInt().Bytes()
		var h uint64

		for _, by := range b {
			h = h*131 + uint64(by)
		}

		k.constHi = h
	}

	return k
}

// insert deduplicates n against the existing arena, returning the index of
// an existing structurally-identical node if one exists, or appending n and
// returning its fresh index otherwise. This is the graph's one and only
// entry point for constructing non-placeholder nodes, guaranteeing the
// structural-sharing property the AIR graph depends on (spec.md property
// 4).
func (g *Graph) insert(n Node) NodeIdx {
	if n.Op == OpPlaceholder {
		idx := NodeIdx(len(g.nodes))
		g.nodes = append(g.nodes, n)

		return idx
	}

	k := keyOf(n)
	if idx, ok := g.index[k]; ok {
		return idx
	}

	idx := NodeIdx(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.index[k] = idx

	for _, c := range n.Children {
		g.uses[c] = append(g.uses[c], idx)
	}

	return idx
}

// InsertPlaceholder reserves a node slot that will be filled in later via
// Update, used by callers that need a stable NodeIdx to refer to before the
// node's final contents are known.
func (g *Graph) InsertPlaceholder() NodeIdx {
	return g.insert(Node{Op: OpPlaceholder})
}

// Update overwrites a placeholder node's contents in place. Panics (an
// internal-compiler-bug condition) if idx does not currently hold a
// placeholder, since overwriting a hash-consed node would silently corrupt
// every other node sharing it.
func (g *Graph) Update(idx NodeIdx, n Node) {
	invariant.Check(g.nodes[idx].Op == OpPlaceholder, "mir: Update called on a non-placeholder node")

	g.nodes[idx] = n

	for _, c := range n.Children {
		g.uses[c] = append(g.uses[c], idx)
	}
}

// Node returns the node at idx.
func (g *Graph) Node(idx NodeIdx) Node { return g.nodes[idx] }

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// Uses returns every node that directly references idx as a child.
func (g *Graph) Uses(idx NodeIdx) []NodeIdx { return g.uses[idx] }

// Const inserts (or reuses) a constant leaf.
func (g *Graph) Const(v felt.Element) NodeIdx { return g.insert(Node{Op: OpConst, Const: v}) }

// TraceAccess inserts (or reuses) a trace-column access leaf.
func (g *Graph) TraceAccess(ref TraceRef) NodeIdx { return g.insert(Node{Op: OpTraceAccess, Trace: ref}) }

// RandomAccess inserts (or reuses) a random-value access leaf.
func (g *Graph) RandomAccess(i uint) NodeIdx { return g.insert(Node{Op: OpRandomAccess, Random: i}) }

// PeriodicAccess inserts (or reuses) a periodic-column access leaf.
func (g *Graph) PeriodicAccess(i uint) NodeIdx { return g.insert(Node{Op: OpPeriodicAccess, Periodic: i}) }

// PublicAccess inserts (or reuses) a public-input access leaf.
func (g *Graph) PublicAccess(i uint) NodeIdx { return g.insert(Node{Op: OpPublicAccess, Public: i}) }

// Binary inserts (or reuses) an Add/Sub/Mul node.
func (g *Graph) Binary(op Op, lhs, rhs NodeIdx) NodeIdx {
	return g.insert(Node{Op: op, Children: []NodeIdx{lhs, rhs}})
}

// Enf inserts (or reuses) a constraint-wrapper node.
func (g *Graph) Enf(inner NodeIdx) NodeIdx {
	return g.insert(Node{Op: OpEnf, Children: []NodeIdx{inner}})
}

// If inserts (or reuses) a conditional node.
func (g *Graph) If(cond, then, els NodeIdx) NodeIdx {
	return g.insert(Node{Op: OpIf, Children: []NodeIdx{cond, then, els}})
}
