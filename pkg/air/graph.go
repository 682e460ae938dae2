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

// Package air builds the final AIR constraint graph (spec.md C10): the
// arithmetic-only DAG actually handed to a prover backend, with every
// Enf/If wrapper from pkg/mir's richer node set already resolved away -
// boundary roots validated for uniqueness and integrity roots reduced to
// a flat list of polynomials that must vanish.
package air

import (
	"bytes"
	"encoding/gob"

	"github.com/airlang/airc/pkg/felt"
	"github.com/airlang/airc/pkg/types"
)

// NodeIdx is a stable index into a Graph's node arena.
type NodeIdx uint32

// Op enumerates the arithmetic/access node kinds an AIR graph contains.
// There is deliberately no Enf or If here: by construction every node
// reachable from a Constraint is already pure arithmetic over leaves.
type Op uint8

const (
	OpConst Op = iota
	OpTraceAccess
	OpRandomAccess
	OpPeriodicAccess
	OpPublicAccess
	OpAdd
	OpSub
	OpMul
)

// TraceRef identifies a single trace-column access.
type TraceRef struct {
	Segment   types.SegmentId
	Column    uint
	RowOffset int
}

// Node is one arena entry.
type Node struct {
	Op       Op
	Children []NodeIdx
	Const    felt.Element
	Trace    TraceRef
	Random   uint
	Periodic uint
	Public   uint
}

// Constraint is one root polynomial that must vanish, plus the domain of
// rows it applies to.
type Constraint struct {
	Segment  types.SegmentId
	Domain   types.Domain
	Boundary types.Boundary // meaningful only when Domain is FirstRow/LastRow from a boundary root
	Column   uint            // the pinned column, boundary constraints only
	IsBoundary bool
	Node     NodeIdx
}

// Graph is the arena plus its hash-consing index.
type Graph struct {
	nodes       []Node
	index       map[nodeKey]NodeIdx
	Constraints []Constraint
}

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
	return &Graph{index: make(map[nodeKey]NodeIdx)}
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

func (g *Graph) insert(n Node) NodeIdx {
	k := keyOf(n)
	if idx, ok := g.index[k]; ok {
		return idx
	}

	idx := NodeIdx(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.index[k] = idx

	return idx
}

// Node returns the node at idx.
func (g *Graph) Node(idx NodeIdx) Node { return g.nodes[idx] }

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

func (g *Graph) Const(v felt.Element) NodeIdx { return g.insert(Node{Op: OpConst, Const: v}) }

func (g *Graph) TraceAccess(ref TraceRef) NodeIdx { return g.insert(Node{Op: OpTraceAccess, Trace: ref}) }

func (g *Graph) RandomAccess(i uint) NodeIdx { return g.insert(Node{Op: OpRandomAccess, Random: i}) }

func (g *Graph) PeriodicAccess(i uint) NodeIdx { return g.insert(Node{Op: OpPeriodicAccess, Periodic: i}) }

func (g *Graph) PublicAccess(i uint) NodeIdx { return g.insert(Node{Op: OpPublicAccess, Public: i}) }

func (g *Graph) Binary(op Op, lhs, rhs NodeIdx) NodeIdx {
	return g.insert(Node{Op: op, Children: []NodeIdx{lhs, rhs}})
}

// graphGob is Graph's gob wire shape. The hash-consing index is not
// persisted: it is a derived cache, and replaying the already-deduplicated
// node arena through insert (which is what GobDecode does) rebuilds an
// identical index deterministically, since every stored node is by
// construction already unique.
type graphGob struct {
	Nodes       []Node
	Constraints []Constraint
}

// GobEncode implements gob.GobEncoder, letting pkg/cmd write a compiled
// Graph out as the compiler driver's output file.
func (g *Graph) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(graphGob{g.nodes, g.Constraints}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (g *Graph) GobDecode(data []byte) error {
	var w graphGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}

	g.nodes = nil
	g.index = make(map[nodeKey]NodeIdx)

	for _, n := range w.Nodes {
		g.insert(n)
	}

	g.Constraints = w.Constraints

	return nil
}
