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

package inline

import "github.com/airlang/airc/pkg/types"

// composeAccess folds a projection applied on top of an already-projected
// reference into a single AccessType relative to the original binding. This
// is what lets an evaluator parameter that was itself bound to a slice of
// the caller's trace columns (column splitting, below) be further indexed
// or sliced inside the evaluator body without ever materialising an
// intermediate value.
func composeAccess(base, sub types.AccessType) types.AccessType {
	if sub.Kind() == types.Default {
		return base
	}

	switch base.Kind() {
	case types.Default:
		return sub
	case types.Slice:
		start, _ := base.SliceRange()

		switch sub.Kind() {
		case types.Index:
			return types.IndexAccess(start + sub.Index())
		case types.Slice:
			ss, se := sub.SliceRange()
			return types.SliceAccess(start+ss, start+se)
		}
	case types.Index:
		// Indexing further into an already-scalar projection is a
		// semantic-analysis bug if it ever reaches here; fall through to
		// returning sub as-is so callers see *something* rather than panic.
	}

	return sub
}

// columnsOf reports how many trace columns a declared type occupies: 1 for
// a scalar, its length for a vector. Matrix-typed evaluator parameters are
// not supported by column splitting (the language only ever groups scalar
// and vector columns per trace segment; spec.md section 4.2).
func columnsOf(t types.Type) uint {
	if t.IsVector() {
		return t.Length()
	}

	return 1
}

// subAccessFor builds the AccessType that projects out [offset, offset+size)
// columns, degrading to a plain Index when a single column is requested.
func subAccessFor(offset, size uint) types.AccessType {
	if size == 1 {
		return types.IndexAccess(offset)
	}

	return types.SliceAccess(offset, offset+size)
}
