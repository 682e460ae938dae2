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

// Package felt provides the Felt scalar used throughout the compiler,
// backed by the bls12-377 scalar field from gnark-crypto.
package felt

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"github.com/airlang/airc/pkg/internal/invariant"
)

// Element wraps fr.Element to give it value semantics convenient for use as
// a map key and struct field (constants are compared/hashed structurally
// throughout the constant propagator and the AIR graph's hash-consing).
type Element struct {
	inner fr.Element
}

// Zero is the additive identity.
func Zero() Element { return Element{} }

// One is the multiplicative identity.
func One() Element {
	var e Element
	e.inner.SetOne()

	return e
}

// FromUint64 constructs the element representing v.
func FromUint64(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)

	return e
}

// FromBigInt constructs the element representing v reduced modulo the field
// order.
func FromBigInt(v *big.Int) Element {
	var e Element
	e.inner.SetBigInt(v)

	return e
}

// Add returns x + y.
func (x Element) Add(y Element) Element {
	var r Element
	r.inner.Add(&x.inner, &y.inner)

	return r
}

// Sub returns x - y.
func (x Element) Sub(y Element) Element {
	var r Element
	r.inner.Sub(&x.inner, &y.inner)

	return r
}

// Mul returns x * y.
func (x Element) Mul(y Element) Element {
	var r Element
	r.inner.Mul(&x.inner, &y.inner)

	return r
}

// Neg returns -x.
func (x Element) Neg() Element {
	var r Element
	r.inner.Neg(&x.inner)

	return r
}

// Exp returns x^n.
func (x Element) Exp(n uint64) Element {
	var r Element

	exp := new(big.Int).SetUint64(n)
	r.inner.Exp(x.inner, exp)

	return r
}

// IsZero reports whether x is the additive identity.
func (x Element) IsZero() bool { return x.inner.IsZero() }

// IsOne reports whether x is the multiplicative identity.
func (x Element) IsOne() bool { return x.inner.IsOne() }

// Equal reports whether x and y represent the same field element.
func (x Element) Equal(y Element) bool { return x.inner.Equal(&y.inner) }

// Cmp returns -1, 0 or +1 as x is numerically less than, equal to, or
// greater than y (consistent ordering for sorting/printing purposes only;
// the field itself has no intrinsic order).
func (x Element) Cmp(y Element) int { return x.inner.Cmp(&y.inner) }

// String formats x in decimal.
func (x Element) String() string { return x.inner.String() }

// ToBigInt returns the canonical big.Int representation of x.
func (x Element) ToBigInt() *big.Int {
	var v big.Int
	x.inner.BigInt(&v)

	return &v
}

// ToUint64 returns x as a uint64.  Panics if x does not fit.
func (x Element) ToUint64() uint64 {
	invariant.Check(x.inner.IsUint64(), "felt: element does not fit in uint64")

	return x.inner.Uint64()
}

// GobEncode implements gob.GobEncoder, so an Element embedded anywhere in an
// ast.Program (e.g. a ConstExpr's value) survives the compiler driver's
// gob-encoded program/constraint-set file format (pkg/cmd, grounded on the
// teacher's pkg/binfile gob encoding).
func (x Element) GobEncode() ([]byte, error) {
	b := x.inner.Bytes()

	return b[:], nil
}

// GobDecode implements gob.GobDecoder.
func (x *Element) GobDecode(data []byte) error {
	x.inner.SetBytes(data)

	return nil
}
