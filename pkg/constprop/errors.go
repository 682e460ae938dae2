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

// Package constprop folds constant subexpressions ahead of inlining
// (spec.md C5): scalar and aggregate arithmetic over literal/constant
// operands is evaluated at compile time rather than carried into MIR, and
// the `^` operator's exponent is validated to be a constant that fits in a
// uint32 (anything larger is rejected here rather than silently
// truncated).
package constprop

import "github.com/airlang/airc/pkg/source"

// ErrorKind enumerates the ways constant folding can fail.
type ErrorKind uint8

const (
	// InvalidExponent is a `^` expression whose exponent is not a constant
	// scalar, or is a constant outside the uint32 range.
	InvalidExponent ErrorKind = iota
	// ShapeMismatch is a constant binary operation between operands whose
	// aggregate shapes disagree (e.g. vectors of different length).
	ShapeMismatch
)

// Error is returned when a constant expression cannot be folded.
type Error struct {
	Kind ErrorKind
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
