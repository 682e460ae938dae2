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

import "encoding/gob"

// init registers every concrete Expr/Statement implementor with the default
// gob encoding so that a Module's interface-typed fields (BoundaryConstraints,
// IntegrityConstraints, and the Body of every EvaluatorDecl/FunctionDecl) can
// round-trip through pkg/cmd's gob-encoded program file. Declaration is not
// registered: a Declaration only exists transiently between parsing and
// pkg/module.Assemble sorting it into a Module's typed buckets, and is never
// itself stored in a Module or Program field.
func init() {
	gob.Register(&ConstExpr{})
	gob.Register(&RangeExpr{})
	gob.Register(&VectorExpr{})
	gob.Register(&MatrixExpr{})
	gob.Register(&BinaryExpr{})
	gob.Register(&CallExpr{})
	gob.Register(&SymbolAccess{})
	gob.Register(&BoundedSymbolAccess{})
	gob.Register(&ShiftedSymbolAccess{})
	gob.Register(&PeriodicColumnAccess{})
	gob.Register(&ListComprehension{})
	gob.Register(&LetExpr{})
	gob.Register(&IfExpr{})

	gob.Register(&LetStatement{})
	gob.Register(&EnforceStatement{})
	gob.Register(&EnforceIfStatement{})
	gob.Register(&EnforceAllStatement{})
	gob.Register(&ExprStatement{})
}
