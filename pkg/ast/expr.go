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

// Package ast defines the tree the parser produces: modules, declarations,
// statements and expressions of the source language.  Only the shape of
// this tree is consumed here; the lexer/parser that builds it is an
// external collaborator (spec section 1).
package ast

import (
	"math/big"

	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/types"
	"github.com/airlang/airc/pkg/source"
)

// BinaryOp enumerates the operators usable in a BinaryExpr.
type BinaryOp uint8

const (
	// Add is addition.
	Add BinaryOp = iota
	// Sub is subtraction.
	Sub
	// Mul is multiplication.
	Mul
	// Exp is exponentiation by a constant.
	Exp
	// Eq is equality, valid only directly inside a constraint statement.
	Eq
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Exp:
		return "^"
	case Eq:
		return "="
	default:
		return "?"
	}
}

// Expr is any expression node. All expressions carry a source span and,
// once semantic analysis has run, a static Type.
type Expr interface {
	Span() source.Span
	// Type returns the expression's static type.  Populated by semantic
	// analysis; nil before that (spec.md property 2).
	Type() *types.Type
	// SetType is used by semantic analysis to record the inferred type.
	SetType(types.Type)
}

// exprBase's span is exported (unlike its name) so that gob's default
// struct encoding - which only walks exported fields, including those of
// anonymously embedded structs - carries it through pkg/cmd's gob-encoded
// program file rather than silently dropping it (see pkg/ident for the
// same concern on identifiers).
type exprBase struct {
	SrcSpan source.Span
	ty      *types.Type
}

func (e *exprBase) Span() source.Span    { return e.SrcSpan }
func (e *exprBase) Type() *types.Type    { return e.ty }
func (e *exprBase) SetType(t types.Type) { e.ty = &t }

// ConstExpr is a literal constant, reduced to a (possibly aggregate) value.
// Scalars, vectors and matrices are all represented with ConstantValue so
// that constant propagation can fold aggregates uniformly (spec.md C5).
type ConstExpr struct {
	exprBase
	Value ConstantValue
}

// NewConstExpr constructs a scalar or aggregate constant expression.
func NewConstExpr(span source.Span, v ConstantValue) *ConstExpr {
	return &ConstExpr{exprBase{SrcSpan: span}, v}
}

// ConstantValue is the folded value of a constant expression: a scalar, a
// vector of scalars, or a row-major matrix of scalars.
type ConstantValue struct {
	Scalar *big.Int
	Vector []*big.Int
	Matrix [][]*big.Int
}

// IsScalar reports whether this value is a single field element.
func (c ConstantValue) IsScalar() bool { return c.Scalar != nil }

// IsVector reports whether this value is a 1-dimensional aggregate.
func (c ConstantValue) IsVector() bool { return c.Vector != nil }

// IsMatrix reports whether this value is a 2-dimensional aggregate.
func (c ConstantValue) IsMatrix() bool { return c.Matrix != nil }

// ScalarValue constructs a scalar ConstantValue.
func ScalarValue(v *big.Int) ConstantValue { return ConstantValue{Scalar: v} }

// VectorValue constructs a vector ConstantValue.
func VectorValue(v []*big.Int) ConstantValue { return ConstantValue{Vector: v} }

// MatrixValue constructs a matrix ConstantValue.
func MatrixValue(v [][]*big.Int) ConstantValue { return ConstantValue{Matrix: v} }

// RangeExpr is `a..b`, a constant range of integers; only ever legal where a
// vector of consecutive constants is expected (e.g. as an iterable in a
// comprehension, or as the argument of sum/prod).
type RangeExpr struct {
	exprBase
	Start, End *big.Int
}

// NewRangeExpr constructs a range expression.
func NewRangeExpr(span source.Span, start, end *big.Int) *RangeExpr {
	return &RangeExpr{exprBase{SrcSpan: span}, start, end}
}

// VectorExpr is a vector literal `[e0, e1, ...]`.
type VectorExpr struct {
	exprBase
	Elements []Expr
}

// NewVectorExpr constructs a vector literal.
func NewVectorExpr(span source.Span, elems []Expr) *VectorExpr {
	return &VectorExpr{exprBase{SrcSpan: span}, elems}
}

// MatrixExpr is a matrix literal `[[...], [...], ...]`.
type MatrixExpr struct {
	exprBase
	Rows [][]Expr
}

// NewMatrixExpr constructs a matrix literal.
func NewMatrixExpr(span source.Span, rows [][]Expr) *MatrixExpr {
	return &MatrixExpr{exprBase{SrcSpan: span}, rows}
}

// BinaryExpr is `lhs op rhs`.
type BinaryExpr struct {
	exprBase
	Op       BinaryOp
	Lhs, Rhs Expr
}

// NewBinaryExpr constructs a binary expression.
func NewBinaryExpr(span source.Span, op BinaryOp, lhs, rhs Expr) *BinaryExpr {
	return &BinaryExpr{exprBase{SrcSpan: span}, op, lhs, rhs}
}

// CallExpr is a call to a function, evaluator, or builtin (sum/prod).
type CallExpr struct {
	exprBase
	Callee ident.Resolvable
	Args   []Expr
}

// NewCallExpr constructs a call expression.
func NewCallExpr(span source.Span, callee ident.Resolvable, args []Expr) *CallExpr {
	return &CallExpr{exprBase{SrcSpan: span}, callee, args}
}

// Builtin identifies one of the two fixed-arity, fixed-semantics aggregate
// functions the language supports natively; calls to these do not flow
// through user-defined-function/evaluator resolution or dependency-graph
// edges (spec.md section 4.2: "Builtins (sum, prod) do not contribute
// edges").
type Builtin uint8

const (
	// NotBuiltin marks a CallExpr whose Callee is a user-defined function
	// or evaluator.
	NotBuiltin Builtin = iota
	// Sum folds a vector/range by addition.
	Sum
	// Prod folds a vector/range by multiplication.
	Prod
)

// BuiltinOf returns which builtin (if any) a name denotes.
func BuiltinOf(name string) Builtin {
	switch name {
	case "sum":
		return Sum
	case "prod":
		return Prod
	default:
		return NotBuiltin
	}
}

// SymbolAccess is a (possibly projected) reference to a named binding:
// a local, a constant, a trace column, a random value, a public input, or a
// periodic column.
type SymbolAccess struct {
	exprBase
	Name   ident.Resolvable
	Access types.AccessType
}

// NewSymbolAccess constructs a default (unprojected) symbol access.
func NewSymbolAccess(span source.Span, name ident.Resolvable) *SymbolAccess {
	return &SymbolAccess{exprBase{SrcSpan: span}, name, types.DefaultAccess()}
}

// NewProjectedSymbolAccess constructs a symbol access under a non-default
// AccessType (index/slice/matrix-index).
func NewProjectedSymbolAccess(span source.Span, name ident.Resolvable, access types.AccessType) *SymbolAccess {
	return &SymbolAccess{exprBase{SrcSpan: span}, name, access}
}

// BoundedSymbolAccess is `col.first` / `col.last`: a reference to a single
// trace column's value at one of the two boundary rows.  Legal only as the
// LHS of a boundary constraint (spec.md section 4.2).
type BoundedSymbolAccess struct {
	exprBase
	Name     ident.Resolvable
	Access   types.AccessType
	Boundary types.Boundary
}

// NewBoundedSymbolAccess constructs a boundary-row access.
func NewBoundedSymbolAccess(span source.Span, name ident.Resolvable, access types.AccessType, b types.Boundary) *BoundedSymbolAccess {
	return &BoundedSymbolAccess{exprBase{SrcSpan: span}, name, access, b}
}

// ShiftedSymbolAccess is `col'`: a reference to a trace column's value one
// row ahead of the current row. Only meaningful inside integrity
// constraints.
type ShiftedSymbolAccess struct {
	exprBase
	Name   ident.Resolvable
	Access types.AccessType
	Offset int
}

// NewShiftedSymbolAccess constructs a row-shifted access.
func NewShiftedSymbolAccess(span source.Span, name ident.Resolvable, access types.AccessType, offset int) *ShiftedSymbolAccess {
	return &ShiftedSymbolAccess{exprBase{SrcSpan: span}, name, access, offset}
}

// PeriodicColumnAccess references a declared periodic column by name; its
// cycle length is filled in once the access has been resolved against the
// declaring PeriodicColumn.
type PeriodicColumnAccess struct {
	exprBase
	Name  ident.QualifiedIdentifier
	Cycle uint
}

// NewPeriodicColumnAccess constructs a periodic-column access.
func NewPeriodicColumnAccess(span source.Span, name ident.QualifiedIdentifier, cycle uint) *PeriodicColumnAccess {
	return &PeriodicColumnAccess{exprBase{SrcSpan: span}, name, cycle}
}

// IterableKind distinguishes the three things a comprehension can iterate
// over.
type IterableKind uint8

const (
	// IterAggregate iterates the elements of a vector-typed symbol access.
	IterAggregate IterableKind = iota
	// IterRange iterates the integers of a RangeExpr.
	IterRange
	// IterMatrixRow iterates the rows of a matrix-typed symbol access,
	// each row itself a vector.
	IterMatrixRow
)

// Iterable is one `x in A` clause of a comprehension.
type Iterable struct {
	Binding  ident.Identifier
	Source   Expr
	Kind     IterableKind
}

// ListComprehension is `[ expr for (x,y,...) in (A,B,...) ]` (and, when
// Selector != nil and used in constraint position, the constraint-comprehension
// form `enf expr for ... when sel`). All iterables must share one length
// (spec.md section 4.2).
type ListComprehension struct {
	exprBase
	Body      Expr
	Iterables []Iterable
	Selector  Expr // nil unless this is a constraint comprehension with a `when` clause
}

// NewListComprehension constructs a comprehension expression.
func NewListComprehension(span source.Span, body Expr, iterables []Iterable, selector Expr) *ListComprehension {
	return &ListComprehension{exprBase{SrcSpan: span}, body, iterables, selector}
}

// LetExpr is `let x = value in body` used in expression position (as
// opposed to Let used as a statement inside a block - see stmt.go). The two
// are unified during inlining via expandLet operating over statement lists;
// LetExpr exists for source programs that write `let` directly as an
// expression tail.
type LetExpr struct {
	exprBase
	Name  ident.Identifier
	Value Expr
	Body  Expr
}

// NewLetExpr constructs a let-expression.
func NewLetExpr(span source.Span, name ident.Identifier, value, body Expr) *LetExpr {
	return &LetExpr{exprBase{SrcSpan: span}, name, value, body}
}

// IfExpr is `if c { t } else { e }`, used only as the value of an integrity
// constraint's RHS. pkg/mir lowers it to the arithmetic selection
// c*t + (1-c)*e; no MIR If node is built and the constraint is not split
// into two.
type IfExpr struct {
	exprBase
	Cond, Then, Else Expr
}

// NewIfExpr constructs a conditional expression.
func NewIfExpr(span source.Span, cond, then, els Expr) *IfExpr {
	return &IfExpr{exprBase{SrcSpan: span}, cond, then, els}
}
