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

// Package sema implements semantic analysis (spec.md C4): name resolution,
// type/arity checking, constraint-context checking and dependency-graph
// construction.
package sema

import (
	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/types"
)

// BindingKind enumerates the compile-time binding kinds of spec.md section
// 3's BindingType sum.
type BindingKind uint8

const (
	// BindingLocal is a let-bound or comprehension-bound scalar/aggregate local.
	BindingLocal BindingKind = iota
	// BindingAlias wraps another BindingType: a let-bound name that
	// turned out to alias a trace access exactly (inliner-introduced).
	BindingAlias
	// BindingConstant is a declared constant.
	BindingConstant
	// BindingFunction is an evaluator or pure function.
	BindingFunction
	// BindingTraceParam is an evaluator/function parameter bound to
	// (possibly discontiguous) trace columns, consumed from the caller's
	// arguments at inlining time.
	BindingTraceParam
	// BindingTraceColumn is a declared trace column.
	BindingTraceColumn
	// BindingVector is a tuple of other BindingTypes, used to represent a
	// parameter whose columns were assembled from more than one
	// contiguous run in the caller (spec.md C6, evaluator expansion).
	BindingVector
	// BindingRandomValue is the random-value array or one of its
	// sub-bindings.
	BindingRandomValue
	// BindingPublicInput is a declared public input.
	BindingPublicInput
	// BindingPeriodicColumn is a declared periodic column.
	BindingPeriodicColumn
)

// FunctionKind distinguishes an evaluator (no return value, body of
// constraints) from a pure function (returns a value).
type FunctionKind uint8

const (
	// EvaluatorFn has no return type; body statements are constraints.
	EvaluatorFn FunctionKind = iota
	// PureFn returns a value; scaffolded per spec.md section 9.
	PureFn
)

// FunctionType captures an evaluator's per-segment parameter grouping, or a
// pure function's flat parameter/return types.
type FunctionType struct {
	Kind          FunctionKind
	ParamSegments [][]types.Type // evaluators: one group per trace segment
	Params        []types.Type   // pure functions: flat parameter list
	Return        types.Type     // pure functions only
}

// BindingType is the compile-time classification of a resolved identifier;
// see spec.md section 3.
type BindingType struct {
	Kind BindingKind

	Scalar   types.Type           // Local, Constant, PublicInput
	Inner    *BindingType         // Alias
	Function FunctionType         // Function
	Trace    ast.TraceBinding     // TraceParam, TraceColumn
	Elems    []BindingType        // Vector
	Random   ast.RandBinding      // RandomValue
	Cycle    uint                 // PeriodicColumn
}

// Local constructs a BindingLocal.
func Local(t types.Type) BindingType { return BindingType{Kind: BindingLocal, Scalar: t} }

// Alias constructs a BindingAlias wrapping inner.
func Alias(inner BindingType) BindingType { return BindingType{Kind: BindingAlias, Inner: &inner} }

// Constant constructs a BindingConstant.
func Constant(t types.Type) BindingType { return BindingType{Kind: BindingConstant, Scalar: t} }

// Function constructs a BindingFunction.
func Function(ft FunctionType) BindingType { return BindingType{Kind: BindingFunction, Function: ft} }

// TraceParam constructs a BindingTraceParam.
func TraceParam(tb ast.TraceBinding) BindingType { return BindingType{Kind: BindingTraceParam, Trace: tb} }

// TraceColumn constructs a BindingTraceColumn.
func TraceColumn(tb ast.TraceBinding) BindingType { return BindingType{Kind: BindingTraceColumn, Trace: tb} }

// VectorOf constructs a BindingVector.
func VectorOf(elems []BindingType) BindingType { return BindingType{Kind: BindingVector, Elems: elems} }

// RandomValue constructs a BindingRandomValue.
func RandomValue(rb ast.RandBinding) BindingType { return BindingType{Kind: BindingRandomValue, Random: rb} }

// PublicInput constructs a BindingPublicInput.
func PublicInput(t types.Type) BindingType { return BindingType{Kind: BindingPublicInput, Scalar: t} }

// PeriodicColumn constructs a BindingPeriodicColumn.
func PeriodicColumn(cycle uint) BindingType { return BindingType{Kind: BindingPeriodicColumn, Cycle: cycle} }

// Ty returns the static Type this binding presents as, unwrapping Alias.
func (b BindingType) Ty() types.Type {
	switch b.Kind {
	case BindingAlias:
		return b.Inner.Ty()
	case BindingLocal, BindingConstant, BindingPublicInput:
		return b.Scalar
	case BindingTraceParam, BindingTraceColumn:
		if b.Trace.Size == 1 {
			return types.NewFeltType()
		}

		return types.NewVectorType(b.Trace.Size)
	case BindingVector:
		return types.NewVectorType(uint(len(b.Elems)))
	case BindingRandomValue:
		if b.Random.Size == 1 {
			return types.NewFeltType()
		}

		return types.NewVectorType(b.Random.Size)
	case BindingPeriodicColumn:
		return types.NewFeltType()
	default:
		return types.NewFeltType()
	}
}

// Access applies an AccessType to this binding, returning the resulting
// (generally smaller) BindingType. This is the destructuring algebra shared
// between semantic analysis's type inference and the inliner's
// trace-access rewriting (spec.md section 3).
func (b BindingType) Access(a types.AccessType) (BindingType, error) {
	if b.Kind == BindingAlias {
		inner, err := b.Inner.Access(a)
		if err != nil {
			return BindingType{}, err
		}

		return Alias(inner), nil
	}

	if a.Kind() == types.Default {
		return b, nil
	}

	switch b.Kind {
	case BindingTraceParam, BindingTraceColumn:
		return b.accessTrace(a)
	case BindingRandomValue:
		return b.accessRandom(a)
	case BindingVector:
		return b.accessVector(a)
	default:
		// Local/Constant/PublicInput/PeriodicColumn/Function: defer to
		// the plain Type algebra; the result has no further structural
		// meaning beyond its Type, so wrap it back up as a Local.
		t, err := b.Ty().Access(a)
		if err != nil {
			return BindingType{}, err
		}

		return Local(t), nil
	}
}

func (b BindingType) accessTrace(a types.AccessType) (BindingType, error) {
	switch a.Kind() {
	case types.Index:
		i := a.Index()
		if i >= b.Trace.Size {
			return BindingType{}, &types.InvalidAccessError{Kind: types.IndexOutOfBounds, Type: b.Ty(), Access: a}
		}

		tb := b.Trace
		tb.Offset += i
		tb.Size = 1
		tb.Type = types.NewFeltType()

		return mk(b.Kind, tb), nil
	case types.Slice:
		start, end := a.SliceRange()
		if start >= end || end > b.Trace.Size {
			return BindingType{}, &types.InvalidAccessError{Kind: types.IndexOutOfBounds, Type: b.Ty(), Access: a}
		}

		tb := b.Trace
		tb.Offset += start
		tb.Size = end - start
		tb.Type = types.NewVectorType(tb.Size)

		return mk(b.Kind, tb), nil
	default:
		return BindingType{}, &types.InvalidAccessError{Kind: types.InvalidBinding, Type: b.Ty(), Access: a}
	}
}

func mk(kind BindingKind, tb ast.TraceBinding) BindingType {
	if kind == BindingTraceParam {
		return TraceParam(tb)
	}

	return TraceColumn(tb)
}

func (b BindingType) accessRandom(a types.AccessType) (BindingType, error) {
	switch a.Kind() {
	case types.Index:
		i := a.Index()
		if i >= b.Random.Size {
			return BindingType{}, &types.InvalidAccessError{Kind: types.IndexOutOfBounds, Type: b.Ty(), Access: a}
		}

		rb := b.Random
		rb.Offset += i
		rb.Size = 1

		return RandomValue(rb), nil
	case types.Slice:
		start, end := a.SliceRange()
		if start >= end || end > b.Random.Size {
			return BindingType{}, &types.InvalidAccessError{Kind: types.IndexOutOfBounds, Type: b.Ty(), Access: a}
		}

		rb := b.Random
		rb.Offset += start
		rb.Size = end - start

		return RandomValue(rb), nil
	default:
		return BindingType{}, &types.InvalidAccessError{Kind: types.InvalidBinding, Type: b.Ty(), Access: a}
	}
}

func (b BindingType) accessVector(a types.AccessType) (BindingType, error) {
	switch a.Kind() {
	case types.Index:
		i := a.Index()
		if int(i) >= len(b.Elems) {
			return BindingType{}, &types.InvalidAccessError{Kind: types.IndexOutOfBounds, Type: b.Ty(), Access: a}
		}

		return b.Elems[i], nil
	case types.Slice:
		start, end := a.SliceRange()
		if start >= end || int(end) > len(b.Elems) {
			return BindingType{}, &types.InvalidAccessError{Kind: types.IndexOutOfBounds, Type: b.Ty(), Access: a}
		}

		return VectorOf(append([]BindingType{}, b.Elems[start:end]...)), nil
	default:
		return BindingType{}, &types.InvalidAccessError{Kind: types.InvalidBinding, Type: b.Ty(), Access: a}
	}
}

// ColumnCount returns how many individual trace columns this binding
// ultimately covers: 1 for a scalar trace binding, N for an aggregate one,
// the sum of elements for a Vector of trace bindings, and 0 for anything
// that isn't trace-column-shaped.
func (b BindingType) ColumnCount() uint {
	switch b.Kind {
	case BindingTraceParam, BindingTraceColumn:
		return b.Trace.Size
	case BindingVector:
		var total uint
		for _, e := range b.Elems {
			total += e.ColumnCount()
		}

		return total
	case BindingAlias:
		return b.Inner.ColumnCount()
	default:
		return 0
	}
}

// SplitColumns splits n columns off the front of this binding, consuming
// whole sub-bindings of a Vector as needed, returning (head, tail). If the
// binding supplies exactly or more than n columns, it returns (head, tail,
// nil); if it supplies strictly fewer, it returns the partial head consumed
// so far and a non-nil error (spec.md section 3: "Err(partial) on
// under-supply").
func (b BindingType) SplitColumns(n uint) (BindingType, BindingType, error) {
	switch b.Kind {
	case BindingTraceParam, BindingTraceColumn:
		if n >= b.Trace.Size {
			return b, BindingType{}, nil
		}

		head := b.Trace
		head.Size = n
		head.Type = vectorOrFelt(n)

		tail := b.Trace
		tail.Offset += n
		tail.Size -= n
		tail.Type = vectorOrFelt(tail.Size)

		return mk(b.Kind, head), mk(b.Kind, tail), nil
	case BindingVector:
		var (
			head    []BindingType
			remain  = n
		)

		for i, e := range b.Elems {
			if remain == 0 {
				return VectorOf(head), VectorOf(append([]BindingType{}, b.Elems[i:]...)), nil
			}

			count := e.ColumnCount()

			if count <= remain {
				head = append(head, e)
				remain -= count

				continue
			}

			eh, et, err := e.SplitColumns(remain)
			if err != nil {
				head = append(head, eh)

				return VectorOf(head), BindingType{}, err
			}

			head = append(head, eh)
			tail := append([]BindingType{et}, b.Elems[i+1:]...)

			return VectorOf(head), VectorOf(tail), nil
		}

		if remain > 0 {
			return VectorOf(head), BindingType{}, &underSupplyError{remain}
		}

		return VectorOf(head), VectorOf(nil), nil
	default:
		return BindingType{}, BindingType{}, &underSupplyError{n}
	}
}

// PopColumn splits a single column off the front; a thin convenience over
// SplitColumns(1).
func (b BindingType) PopColumn() (BindingType, BindingType, error) {
	return b.SplitColumns(1)
}

func vectorOrFelt(n uint) types.Type {
	if n == 1 {
		return types.NewFeltType()
	}

	return types.NewVectorType(n)
}

// underSupplyError reports that a binding could not supply the requested
// number of trace columns.
type underSupplyError struct {
	shortBy uint
}

func (e *underSupplyError) Error() string {
	return "trace binding under-supplies requested columns"
}
