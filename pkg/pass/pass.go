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

// Package pass provides the trivial sequential runner the compiler driver
// (pkg/cmd) uses to chain C3-C10 together: each stage is a plain function
// from one representation to the next, and Run/Chain2/Chain3 only run them
// in order, stopping and returning the first error, while logging per-stage
// timing the way the teacher's CLI layer does (pkg/util.PerfStats).
//
// There is deliberately no dependency-graph scheduler, retry policy, or
// plugin registry here: spec.md section 1 keeps the pass pipeline itself
// out of scope beyond "kept trivial", since the pipeline's stage order is
// fixed by the language (you cannot inline before you have resolved names,
// you cannot lower to MIR before you have inlined).
package pass

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/airlang/airc/pkg/util"
)

// Pass transforms an I into an O, or fails. A pass never logs and never
// touches a diagnostics sink directly unless its signature says so - it
// just returns an error, which Run wraps with the stage's name on
// failure.
type Pass[I, O any] func(I) (O, error)

// Named pairs a Pass with the label Run logs it under.
type Named[I, O any] struct {
	Name string
	Run  Pass[I, O]
}

// Run executes p, logging its wall-clock/memory cost under name via logrus,
// exactly as the teacher's CLI commands wrap expensive steps in a
// util.NewPerfStats()/defer stats.Log(name) pair.
func Run[I, O any](name string, p Pass[I, O], in I) (O, error) {
	stats := util.NewPerfStats()
	defer stats.Log(name)

	out, err := p(in)
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}

	log.Debugf("%s: ok", name)

	return out, nil
}

// Chain2 runs two passes back to back, short-circuiting on the first error.
// Stages are named individually so Chain2/Chain3/... nest cleanly instead of
// needing a heterogeneous list (Go's type system has no variadic-generic
// pipeline type without reaching for `any` and losing the static types this
// pipeline otherwise has at every stage boundary).
func Chain2[A, B, C any](a Named[A, B], b Named[B, C], in A) (C, error) {
	var zero C

	mid, err := Run(a.Name, a.Run, in)
	if err != nil {
		return zero, err
	}

	return Run(b.Name, b.Run, mid)
}

// Chain3 runs three passes back to back.
func Chain3[A, B, C, D any](a Named[A, B], b Named[B, C], c Named[C, D], in A) (D, error) {
	var zero D

	mid, err := Chain2(a, b, in)
	if err != nil {
		return zero, err
	}

	return Run(c.Name, c.Run, mid)
}
