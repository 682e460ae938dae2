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

package ast

import (
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/types"
	"github.com/airlang/airc/pkg/source"
)

// Declaration is a single top-level item as produced by the parser, prior
// to being sorted into a Module's typed buckets by the module assembler
// (spec.md C3).
type Declaration interface {
	Span() source.Span
}

// declBase's span is exported (unlike its name) so gob's default struct
// encoding carries it through pkg/cmd's gob-encoded program file instead of
// silently dropping it (see exprBase in expr.go for the same concern).
type declBase struct {
	SrcSpan source.Span
}

func (d *declBase) Span() source.Span { return d.SrcSpan }

// TraceBinding describes one named, sized, typed column within a trace
// segment.
type TraceBinding struct {
	Name    ident.Identifier
	Segment types.SegmentId
	Offset  uint // starting column index within the segment
	Size    uint // number of columns occupied (>1 for aggregate bindings)
	Type    types.Type
}

// TraceSegmentDecl is one `trace_columns { $main: [...] }` (or `$aux`) block.
type TraceSegmentDecl struct {
	declBase
	Segment  types.SegmentId
	Bindings []TraceBinding
}

// NewTraceSegmentDecl constructs a trace-segment declaration.
func NewTraceSegmentDecl(span source.Span, seg types.SegmentId, bindings []TraceBinding) *TraceSegmentDecl {
	return &TraceSegmentDecl{declBase{span}, seg, bindings}
}

// PublicInput is a named, fixed-size array exposed to the verifier.
type PublicInput struct {
	Name ident.Identifier
	Size uint
}

// PublicInputsDecl is a `public_inputs { ... }` block.
type PublicInputsDecl struct {
	declBase
	Inputs []PublicInput
}

// NewPublicInputsDecl constructs a public-inputs declaration.
func NewPublicInputsDecl(span source.Span, inputs []PublicInput) *PublicInputsDecl {
	return &PublicInputsDecl{declBase{span}, inputs}
}

// RandBinding is one named sub-range of the random-value array.
type RandBinding struct {
	Name   ident.Identifier
	Offset uint
	Size   uint
	Type   types.Type
}

// RandomValuesDecl is the single `random_values { ... }` block a root module
// may declare.
type RandomValuesDecl struct {
	declBase
	Name     ident.Identifier
	Size     uint
	Bindings []RandBinding
}

// NewRandomValuesDecl constructs a random-values declaration.
func NewRandomValuesDecl(span source.Span, name ident.Identifier, size uint, bindings []RandBinding) *RandomValuesDecl {
	return &RandomValuesDecl{declBase{span}, name, size, bindings}
}

// PeriodicColumnDecl declares one cyclic sequence of field constants; Cycle
// (== len(Values)) must be a power of two >= 2 (validated by the module
// assembler, spec.md C3).
type PeriodicColumnDecl struct {
	declBase
	Name   ident.Identifier
	Values []uint64
}

// NewPeriodicColumnDecl constructs a periodic-column declaration.
func NewPeriodicColumnDecl(span source.Span, name ident.Identifier, values []uint64) *PeriodicColumnDecl {
	return &PeriodicColumnDecl{declBase{span}, name, values}
}

// ConstantDecl declares a named constant value. Name must be ALL_CAPS
// (validated by the module assembler); matrix constants must have uniform
// row width.
type ConstantDecl struct {
	declBase
	Name  ident.Identifier
	Value ConstantValue
}

// NewConstantDecl constructs a constant declaration.
func NewConstantDecl(span source.Span, name ident.Identifier, value ConstantValue) *ConstantDecl {
	return &ConstantDecl{declBase{span}, name, value}
}

// Param is a single evaluator/function parameter.
type Param struct {
	Name ident.Identifier
	Type types.Type
}

// EvaluatorDecl declares an evaluator: a function whose body consists
// entirely of constraints and which is inlined at every call site. Params
// are grouped per trace segment they bind into (spec.md section 4.2,
// "evaluator call arity").
type EvaluatorDecl struct {
	declBase
	Name           ident.Identifier
	ParamSegments  [][]Param // one []Param group per trace-segment parameter
	Body           []Statement
}

// NewEvaluatorDecl constructs an evaluator declaration.
func NewEvaluatorDecl(span source.Span, name ident.Identifier, paramSegments [][]Param, body []Statement) *EvaluatorDecl {
	return &EvaluatorDecl{declBase{span}, name, paramSegments, body}
}

// FunctionDecl declares a pure (non-evaluator) function returning a value.
// Scaffolded per spec.md section 9's open question: the language accepts
// these syntactically, but AST->MIR lowering of calls to them is an explicit
// "unsupported feature" error rather than silently miscompiling (see
// lowerCall in pkg/mir).
type FunctionDecl struct {
	declBase
	Name    ident.Identifier
	Params  []Param
	Return  types.Type
	Body    []Statement
}

// NewFunctionDecl constructs a pure-function declaration.
func NewFunctionDecl(span source.Span, name ident.Identifier, params []Param, ret types.Type, body []Statement) *FunctionDecl {
	return &FunctionDecl{declBase{span}, name, params, ret, body}
}

// BoundaryConstraintsDecl is a `boundary_constraints { ... }` block.
type BoundaryConstraintsDecl struct {
	declBase
	Statements []Statement
}

// NewBoundaryConstraintsDecl constructs a boundary-constraints declaration.
func NewBoundaryConstraintsDecl(span source.Span, stmts []Statement) *BoundaryConstraintsDecl {
	return &BoundaryConstraintsDecl{declBase{span}, stmts}
}

// IntegrityConstraintsDecl is an `integrity_constraints { ... }` block.
type IntegrityConstraintsDecl struct {
	declBase
	Statements []Statement
}

// NewIntegrityConstraintsDecl constructs an integrity-constraints declaration.
func NewIntegrityConstraintsDecl(span source.Span, stmts []Statement) *IntegrityConstraintsDecl {
	return &IntegrityConstraintsDecl{declBase{span}, stmts}
}

// ImportKind distinguishes a wildcard import from a named-item import.
type ImportKind uint8

const (
	// ImportWildcard is `use module::*;`.
	ImportWildcard ImportKind = iota
	// ImportItem is `use module::{item, ...};`.
	ImportItem
)

// ImportDecl is one `use` declaration.
type ImportDecl struct {
	declBase
	Module ident.Id
	Kind   ImportKind
	Items  []ident.NamespacedIdentifier // empty for ImportWildcard
}

// NewImportDecl constructs an import declaration.
func NewImportDecl(span source.Span, module ident.Id, kind ImportKind, items []ident.NamespacedIdentifier) *ImportDecl {
	return &ImportDecl{declBase{span}, module, kind, items}
}
