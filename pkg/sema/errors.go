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

import "github.com/airlang/airc/pkg/source"

// ErrorKind enumerates the ways semantic analysis can fail. Analysis
// accumulates one diagnostic per occurrence and keeps going across a whole
// module (spec.md section 7); Error itself is only returned once, wrapping
// the count of Error-severity diagnostics, after analysis of the whole
// program completes with at least one emitted. AnalyseProgram leaves its
// Kind and Span at their zero values.
type ErrorKind uint8

const (
	// UndefinedVariable is a reference to a name not found in any visible scope.
	UndefinedVariable ErrorKind = iota
	// TypeMismatch is an operator or call used with operand types it does
	// not support.
	TypeMismatch
	// InvalidAccess is an out-of-bounds or ill-typed projection.
	InvalidAccess
	// ArityMismatch is a function/evaluator call with the wrong number of
	// arguments, or argument group sizes that do not match the callee's
	// per-segment parameter shape.
	ArityMismatch
	// InvalidContext is a construct used outside the context it requires
	// (e.g. `col.first` outside boundary_constraints, `col'` outside
	// integrity_constraints, `enf` outside a constraint section).
	InvalidContext
	// CyclicDefinition is a constant/function/evaluator whose definition
	// (transitively) depends on itself.
	CyclicDefinition
	// DuplicateBoundary is a second boundary constraint pinning a row
	// already constrained for that column (spec.md property 5).
	DuplicateBoundary
)

// Error is returned once semantic analysis of a program finishes with at
// least one Error-severity diagnostic recorded in the sink.
type Error struct {
	Kind  ErrorKind
	Span  source.Span
	Msg   string
	Count int // total number of Error-severity diagnostics emitted
}

func (e *Error) Error() string { return e.Msg }
