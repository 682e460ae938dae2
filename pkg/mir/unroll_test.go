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
package mir

import (
	"testing"

	"github.com/airlang/airc/pkg/felt"
)

func TestUnroll_AcceptsFullyConcreteGraph(t *testing.T) {
	g := NewGraph()

	lhs := g.Const(felt.FromUint64(1))
	rhs := g.Const(felt.FromUint64(1))
	sub := g.Binary(OpSub, lhs, rhs)
	g.IntegrityRoots = append(g.IntegrityRoots, IntegrityRoot{Node: g.Enf(sub)})

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Unroll panicked on a fully concrete graph: %v", r)
		}
	}()

	Unroll(g)
}

func TestUnroll_PanicsOnUnresolvedPlaceholder(t *testing.T) {
	g := NewGraph()

	ph := g.InsertPlaceholder()
	g.IntegrityRoots = append(g.IntegrityRoots, IntegrityRoot{Node: g.Enf(ph)})

	defer func() {
		if recover() == nil {
			t.Fatal("expected Unroll to panic on a constraint root reaching an un-Updated placeholder")
		}
	}()

	Unroll(g)
}

func TestUnroll_PanicsOnSurvivingIfNode(t *testing.T) {
	g := NewGraph()

	cond := g.Const(felt.One())
	then := g.Const(felt.FromUint64(2))
	els := g.Const(felt.FromUint64(3))
	ifNode := g.If(cond, then, els)

	g.BoundaryRoots = append(g.BoundaryRoots, BoundaryRoot{Node: g.Enf(ifNode)})

	defer func() {
		if recover() == nil {
			t.Fatal("expected Unroll to panic on a structural If node surviving to a constraint root")
		}
	}()

	Unroll(g)
}
