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

// Package inline expands evaluator call sites, constraint comprehensions
// and lets away, leaving every boundary/integrity constraints section a
// flat list of `enf lhs = rhs [when selector];` statements with no
// evaluator calls, lets or constraint comprehensions remaining. Calls to
// sum/prod are left in place for pkg/mir to fold, and list comprehensions
// in expression position are not expanded.
package inline

import "github.com/airlang/airc/pkg/source"

// ErrorKind enumerates the ways inlining can fail.
type ErrorKind uint8

const (
	// UnresolvedCallee is a call whose callee never resolved to a concrete
	// module item (an internal-compiler-bug condition by the time inlining
	// runs, since semantic analysis is supposed to guarantee this).
	UnresolvedCallee ErrorKind = iota
	// ColumnUnderSupply is an evaluator call whose argument supplies fewer
	// trace columns than its parameter group declares.
	ColumnUnderSupply
	// NonConstantIterable is a comprehension whose iterable did not reduce
	// to a literal aggregate after constant folding and prior inlining
	// passes, so it cannot be unrolled to a fixed number of iterations.
	NonConstantIterable
)

// Error is returned when a construct cannot be inlined away.
type Error struct {
	Kind ErrorKind
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
