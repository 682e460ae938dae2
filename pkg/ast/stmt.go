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
	"github.com/airlang/airc/pkg/source"
)

// Statement is a single item of a boundary/integrity constraints section, or
// of a function/evaluator body.
type Statement interface {
	Span() source.Span
}

// stmtBase's span is exported (unlike its name) so gob's default struct
// encoding carries it through pkg/cmd's gob-encoded program file instead of
// silently dropping it (see exprBase in expr.go for the same concern).
type stmtBase struct {
	SrcSpan source.Span
}

func (s *stmtBase) Span() source.Span { return s.SrcSpan }

// LetStatement is `let x = value; <rest of block>`.  Inlining flattens most
// of these away (spec.md C6); any that survive to the AIR boundary are
// either non-aggregate bindings or still referenced by name in their body.
type LetStatement struct {
	stmtBase
	Name  ident.Identifier
	Value Expr
	Body  []Statement
}

// NewLetStatement constructs a let-statement.
func NewLetStatement(span source.Span, name ident.Identifier, value Expr, body []Statement) *LetStatement {
	return &LetStatement{stmtBase{span}, name, value, body}
}

// EnforceStatement is `enf lhs = rhs;` or `enf evaluator_call(args);`.
type EnforceStatement struct {
	stmtBase
	Expr Expr
}

// NewEnforceStatement constructs an enforce statement.
func NewEnforceStatement(span source.Span, expr Expr) *EnforceStatement {
	return &EnforceStatement{stmtBase{span}, expr}
}

// EnforceIfStatement is `enf expr when selector;`: expr is enforced only
// when selector is non-zero (MIR lowering multiplies the selector into the
// constraint: Enf(Mul(selector, Sub(lhs, rhs)))).
type EnforceIfStatement struct {
	stmtBase
	Expr     Expr
	Selector Expr
}

// NewEnforceIfStatement constructs a conditional enforce statement.
func NewEnforceIfStatement(span source.Span, expr, selector Expr) *EnforceIfStatement {
	return &EnforceIfStatement{stmtBase{span}, expr, selector}
}

// EnforceAllStatement is `enf expr for (x,...) in (A,...) [when sel];`, the
// constraint-comprehension form. Fully expanded away by the inliner
// (spec.md property 3).
type EnforceAllStatement struct {
	stmtBase
	Body      Expr
	Iterables []Iterable
	Selector  Expr
}

// NewEnforceAllStatement constructs a constraint comprehension statement.
func NewEnforceAllStatement(span source.Span, body Expr, iterables []Iterable, selector Expr) *EnforceAllStatement {
	return &EnforceAllStatement{stmtBase{span}, body, iterables, selector}
}

// ExprStatement wraps a bare expression used as the tail value of a block
// (e.g. the final value of a function body, or of a let-tree).
type ExprStatement struct {
	stmtBase
	Expr Expr
}

// NewExprStatement constructs an expression statement.
func NewExprStatement(span source.Span, expr Expr) *ExprStatement {
	return &ExprStatement{stmtBase{span}, expr}
}
