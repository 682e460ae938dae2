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
package types

import "testing"

func TestType_Constructors(t *testing.T) {
	if k := NewFeltType().Kind(); k != Felt {
		t.Errorf("NewFeltType().Kind() = %v, want Felt", k)
	}

	v := NewVectorType(4)
	if !v.IsVector() || v.Length() != 4 {
		t.Errorf("NewVectorType(4) = %v, length %d", v, v.Length())
	}

	m := NewMatrixType(2, 3)
	rows, cols := m.Dimensions()
	if !m.IsMatrix() || rows != 2 || cols != 3 {
		t.Errorf("NewMatrixType(2,3) = %v, dims (%d,%d)", m, rows, cols)
	}
}

func TestType_ZeroLengthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero-length vector type")
		}
	}()

	NewVectorType(0)
}

func TestType_WrongAccessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling Length() on a non-vector type")
		}
	}()

	NewFeltType().Length()
}

func TestAccess_Default(t *testing.T) {
	v := NewVectorType(3)

	got, err := v.Access(DefaultAccess())
	if err != nil || got != v {
		t.Errorf("DefaultAccess: got %v, %v; want %v, nil", got, err, v)
	}
}

func TestAccess_IndexIntoScalar(t *testing.T) {
	_, err := NewFeltType().Access(IndexAccess(0))

	var iae *InvalidAccessError
	if err == nil {
		t.Fatal("expected an error indexing into a scalar")
	}

	if !asInvalidAccessError(err, &iae) || iae.Kind != IndexIntoScalar {
		t.Errorf("got error %v, want IndexIntoScalar", err)
	}
}

func TestAccess_VectorIndex(t *testing.T) {
	v := NewVectorType(5)

	got, err := v.Access(IndexAccess(2))
	if err != nil || !got.IsFelt() {
		t.Fatalf("Access(IndexAccess(2)) = %v, %v; want felt, nil", got, err)
	}

	if _, err := v.Access(IndexAccess(5)); err == nil {
		t.Error("expected out-of-bounds error indexing element 5 of a length-5 vector")
	}
}

func TestAccess_MatrixRowThenScalar(t *testing.T) {
	m := NewMatrixType(2, 4)

	row, err := m.Access(IndexAccess(0))
	if err != nil || !row.IsVector() || row.Length() != 4 {
		t.Fatalf("matrix row access = %v, %v; want felt[4], nil", row, err)
	}

	scalar, err := m.Access(MatrixIndexAccess(1, 3))
	if err != nil || !scalar.IsFelt() {
		t.Fatalf("matrix scalar access = %v, %v; want felt, nil", scalar, err)
	}

	if _, err := m.Access(MatrixIndexAccess(2, 0)); err == nil {
		t.Error("expected out-of-bounds error for row 2 of a 2-row matrix")
	}
}

func TestAccess_Slice(t *testing.T) {
	v := NewVectorType(10)

	got, err := v.Access(SliceAccess(2, 5))
	if err != nil || !got.IsVector() || got.Length() != 3 {
		t.Fatalf("SliceAccess(2,5) of felt[10] = %v, %v; want felt[3], nil", got, err)
	}

	if _, err := v.Access(SliceAccess(5, 5)); err == nil {
		t.Error("expected an error for an empty slice (start == end)")
	}

	if _, err := NewFeltType().Access(SliceAccess(0, 1)); err == nil {
		t.Error("expected an error slicing a scalar")
	}
}

func TestColumnBoundaryFlags(t *testing.T) {
	f := NoBoundary
	if f.Has(First) || f.Has(Last) {
		t.Fatal("NoBoundary should have neither boundary set")
	}

	f = f.With(First)
	if !f.Has(First) || f.Has(Last) {
		t.Fatalf("after With(First): %v", f)
	}

	f = f.With(Last)
	if f != BothConstrained {
		t.Fatalf("after With(First).With(Last): got %v, want BothConstrained", f)
	}
}

func TestDomainOfBoundary(t *testing.T) {
	if DomainOfBoundary(First) != FirstRow {
		t.Error("DomainOfBoundary(First) != FirstRow")
	}

	if DomainOfBoundary(Last) != LastRow {
		t.Error("DomainOfBoundary(Last) != LastRow")
	}
}

func asInvalidAccessError(err error, target **InvalidAccessError) bool {
	e, ok := err.(*InvalidAccessError)
	if ok {
		*target = e
	}

	return ok
}
