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

package sema

import (
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/source"
)

// rootNodeName is the synthetic node every boundary/integrity constraint
// statement hangs off of, so the call graph of constants/functions/
// evaluators reachable from the constraint sections has a single root to
// walk from when checking for cycles (spec.md section 4.2).
var rootNodeName = ident.Intern("$root")

// RootNode is the synthetic dependency-graph node representing "referenced
// directly by a boundary or integrity constraint statement".
func RootNode() ident.QualifiedIdentifier {
	var span source.Span

	return ident.NewQualifiedIdentifier(rootNodeName, ident.Function(ident.NewIdentifier("$root", span)))
}

// DependencyGraph tracks which named items (constants, functions,
// evaluators) reference which others, so that recursive definitions -
// impossible to inline to a finite AIR graph - are caught before the
// inliner ever runs. Builtins (sum, prod) do not contribute edges: they are
// fixed-arity primitives that MIR lowering folds directly, never user
// definitions that could recurse.
type DependencyGraph struct {
	edges map[ident.QualifiedIdentifier]map[ident.QualifiedIdentifier]bool
}

// NewDependencyGraph constructs an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{edges: make(map[ident.QualifiedIdentifier]map[ident.QualifiedIdentifier]bool)}
}

// AddEdge records that from references to (e.g. a function body calling
// another function, or a constraint statement referencing a constant).
func (g *DependencyGraph) AddEdge(from, to ident.QualifiedIdentifier) {
	if g.edges[from] == nil {
		g.edges[from] = make(map[ident.QualifiedIdentifier]bool)
	}

	g.edges[from][to] = true
}

// HasCycle reports whether the graph contains a cycle reachable from node,
// and if so returns the cycle as a path of qualified identifiers.
func (g *DependencyGraph) HasCycle(node ident.QualifiedIdentifier) ([]ident.QualifiedIdentifier, bool) {
	visiting := make(map[ident.QualifiedIdentifier]bool)
	visited := make(map[ident.QualifiedIdentifier]bool)

	var path []ident.QualifiedIdentifier

	var walk func(n ident.QualifiedIdentifier) []ident.QualifiedIdentifier

	walk = func(n ident.QualifiedIdentifier) []ident.QualifiedIdentifier {
		if visiting[n] {
			return append(append([]ident.QualifiedIdentifier{}, path...), n)
		}

		if visited[n] {
			return nil
		}

		visiting[n] = true
		path = append(path, n)

		for to := range g.edges[n] {
			if cyc := walk(to); cyc != nil {
				return cyc
			}
		}

		path = path[:len(path)-1]
		visiting[n] = false
		visited[n] = true

		return nil
	}

	cyc := walk(node)

	return cyc, cyc != nil
}
