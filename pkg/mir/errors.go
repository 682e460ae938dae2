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

import "github.com/airlang/airc/pkg/source"

// ErrorKind enumerates the ways AST to MIR lowering can fail.
type ErrorKind uint8

const (
	// UnsupportedExpr is an expression shape the MIR graph has no node for
	// (a pure-function call, or a constant that never folded down to a
	// scalar).
	UnsupportedExpr ErrorKind = iota
	// UnboundReference is a symbol access that did not resolve against the
	// module's global table - an internal-compiler-bug condition, since
	// semantic analysis is supposed to guarantee every reference resolves.
	UnboundReference
	// InvalidBoundaryRoot is a boundary constraint whose LHS is not a
	// single, unconstrained trace-column boundary access.
	InvalidBoundaryRoot
)

// Error is returned when lowering cannot produce a valid MIR node.
type Error struct {
	Kind ErrorKind
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
