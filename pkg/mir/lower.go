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

import (
	"math/big"
	"sort"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/felt"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/sema"
	"github.com/airlang/airc/pkg/types"
	"github.com/airlang/airc/pkg/source"
)

// lowering holds the state needed to walk one (already inlined and constant-
// folded) root module's constraint sections into a Graph.
type lowering struct {
	sink    diag.Handler
	program *ast.Program
	module  *ast.Module
	graph   *Graph
	failed  bool

	publicOffset map[ident.Id]uint
	periodicIdx  map[ident.Id]uint
}

// LowerModule walks m's boundary and integrity constraint sections (already
// expanded free of evaluator calls, constraint comprehensions and lets by pkg/inline,
// and constant-folded by pkg/constprop) into a hash-consed Graph, recording
// one BoundaryRoot/IntegrityRoot per top-level `enf`.
func LowerModule(sink diag.Handler, program *ast.Program, m *ast.Module) (*Graph, error) {
	l := &lowering{
		sink:         sink,
		program:      program,
		module:       m,
		graph:        NewGraph(),
		publicOffset: publicInputOffsets(m),
		periodicIdx:  make(map[ident.Id]uint),
	}

	for _, s := range m.BoundaryConstraints {
		l.lowerBoundaryStatement(s, nil)
	}

	for _, s := range m.IntegrityConstraints {
		l.lowerIntegrityStatement(s, nil)
	}

	if l.failed {
		return nil, &Error{Msg: "MIR lowering failed"}
	}

	Unroll(l.graph)

	return l.graph, nil
}

// publicInputOffsets assigns each public input a stable base offset into a
// single flat array, in alphabetical-by-name order (the declaration order a
// map cannot otherwise provide deterministically).
func publicInputOffsets(m *ast.Module) map[ident.Id]uint {
	type entry struct {
		id   ident.Id
		name string
		size uint
	}

	entries := make([]entry, 0, len(m.PublicInputs))
	for id, pi := range m.PublicInputs {
		entries = append(entries, entry{id, pi.Name.Name(), pi.Size})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	out := make(map[ident.Id]uint, len(entries))
	offset := uint(0)

	for _, e := range entries {
		out[e.id] = offset
		offset += e.size
	}

	return out
}

func (l *lowering) lowerBoundaryStatement(s ast.Statement, selector ast.Expr) {
	switch st := s.(type) {
	case *ast.EnforceIfStatement:
		l.lowerBoundaryStatement(ast.NewEnforceStatement(st.Span(), st.Expr), combineSelectors(selector, st.Selector))
	case *ast.EnforceStatement:
		l.lowerBoundaryRoot(st.Expr, selector)
	}
}

// lowerBoundaryRoot expects expr to be `lhs = rhs` with lhs a
// BoundedSymbolAccess (`col.first`/`col.last`); anything else is rejected
// (spec.md section 4.3: "boundary constraint LHS must be a single
// unconstrained trace column boundary access").
func (l *lowering) lowerBoundaryRoot(expr ast.Expr, selector ast.Expr) {
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.Eq {
		l.errorf(expr.Span(), "boundary constraint is not an equality")
		return
	}

	lhs, ok := bin.Lhs.(*ast.BoundedSymbolAccess)
	if !ok {
		l.errorf(expr.Span(), "boundary constraint LHS must be a single `.first`/`.last` column access")
		return
	}

	_, binding, ok := l.resolve(lhs.Name)
	if !ok {
		l.errorf(lhs.Span(), "unresolved boundary column reference")
		return
	}

	binding, err := binding.Access(lhs.Access)
	if err != nil {
		l.errorf(lhs.Span(), "%s", err)
		return
	}

	if binding.Kind != sema.BindingTraceColumn {
		l.errorf(lhs.Span(), "boundary constraint LHS must reference a trace column")
		return
	}

	rhs, ok := l.lowerExpr(bin.Rhs)
	if !ok {
		return
	}

	diff := l.graph.Binary(OpSub, l.leafTraceAccess(binding, 0), rhs)

	if selector != nil {
		sel, ok := l.lowerExpr(selector)
		if !ok {
			return
		}

		diff = l.graph.Binary(OpMul, sel, diff)
	}

	l.graph.BoundaryRoots = append(l.graph.BoundaryRoots, BoundaryRoot{
		Segment:  binding.Trace.Segment,
		Column:   binding.Trace.Offset,
		Boundary: lhs.Boundary,
		Node:     l.graph.Enf(diff),
	})
}

func (l *lowering) lowerIntegrityStatement(s ast.Statement, selector ast.Expr) {
	switch st := s.(type) {
	case *ast.EnforceIfStatement:
		l.lowerIntegrityStatement(ast.NewEnforceStatement(st.Span(), st.Expr), combineSelectors(selector, st.Selector))
	case *ast.EnforceStatement:
		l.lowerIntegrityRoot(st.Expr, selector)
	}
}

func (l *lowering) lowerIntegrityRoot(expr ast.Expr, selector ast.Expr) {
	bin, ok := expr.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.Eq {
		l.errorf(expr.Span(), "integrity constraint is not an equality")
		return
	}

	lhs, ok := l.lowerExpr(bin.Lhs)
	if !ok {
		return
	}

	rhs, ok := l.lowerExpr(bin.Rhs)
	if !ok {
		return
	}

	diff := l.graph.Binary(OpSub, lhs, rhs)

	if selector != nil {
		sel, ok := l.lowerExpr(selector)
		if !ok {
			return
		}

		diff = l.graph.Binary(OpMul, sel, diff)
	}

	l.graph.IntegrityRoots = append(l.graph.IntegrityRoots, IntegrityRoot{
		Segment: l.segmentOf(bin.Lhs, bin.Rhs),
		Domain:  types.EveryRow,
		Node:    l.graph.Enf(diff),
	})
}

// segmentOf reports the trace segment an integrity root belongs to, taken
// from the first trace access found, left side first; a relation mixing
// two segments is not rejected, here or in semantic analysis.
func (l *lowering) segmentOf(exprs ...ast.Expr) types.SegmentId {
	for _, e := range exprs {
		if seg, ok := l.findSegment(e); ok {
			return seg
		}
	}

	return types.MainSegment
}

func (l *lowering) findSegment(e ast.Expr) (types.SegmentId, bool) {
	switch ex := e.(type) {
	case *ast.SymbolAccess:
		if _, b, ok := l.resolve(ex.Name); ok && (b.Kind == sema.BindingTraceColumn) {
			return b.Trace.Segment, true
		}
	case *ast.ShiftedSymbolAccess:
		if _, b, ok := l.resolve(ex.Name); ok && (b.Kind == sema.BindingTraceColumn) {
			return b.Trace.Segment, true
		}
	case *ast.BinaryExpr:
		if seg, ok := l.findSegment(ex.Lhs); ok {
			return seg, true
		}

		return l.findSegment(ex.Rhs)
	}

	return 0, false
}

func combineSelectors(a, b ast.Expr) ast.Expr {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	return ast.NewBinaryExpr(a.Span(), ast.Mul, a, b)
}

func (l *lowering) resolve(name ident.Resolvable) (ident.QualifiedIdentifier, sema.BindingType, bool) {
	q, ok := name.AsResolved()
	if !ok {
		return ident.QualifiedIdentifier{}, sema.BindingType{}, false
	}

	b, ok := sema.ResolveQualified(l.program, q)

	return q, b, ok
}

// leafTraceAccess builds the TraceAccess leaf node for a resolved,
// fully-indexed (single-column) trace binding.
func (l *lowering) leafTraceAccess(b sema.BindingType, rowOffset int) NodeIdx {
	return l.graph.TraceAccess(TraceRef{Segment: b.Trace.Segment, Column: b.Trace.Offset, RowOffset: rowOffset})
}

func (l *lowering) lowerExpr(e ast.Expr) (NodeIdx, bool) {
	switch ex := e.(type) {
	case *ast.ConstExpr:
		if !ex.Value.IsScalar() {
			l.errorf(ex.Span(), "constant did not reduce to a scalar field element before MIR lowering")
			return 0, false
		}

		return l.graph.Const(felt.FromBigInt(ex.Value.Scalar)), true
	case *ast.SymbolAccess:
		return l.lowerSymbol(ex.Name, ex.Access, 0, ex)
	case *ast.ShiftedSymbolAccess:
		return l.lowerSymbol(ex.Name, ex.Access, ex.Offset, ex)
	case *ast.PeriodicColumnAccess:
		return l.graph.PeriodicAccess(l.periodicOrdinal(ex.Name)), true
	case *ast.BinaryExpr:
		return l.lowerBinary(ex)
	case *ast.IfExpr:
		return l.lowerIf(ex)
	case *ast.CallExpr:
		return l.lowerCall(ex)
	default:
		l.errorf(e.Span(), "expression shape %T has no MIR node", e)
		return 0, false
	}
}

func (l *lowering) lowerSymbol(name ident.Resolvable, access types.AccessType, rowOffset int, at ast.Expr) (NodeIdx, bool) {
	q, binding, ok := l.resolve(name)
	if !ok {
		l.errorf(at.Span(), "unresolved reference")
		return 0, false
	}

	binding, err := binding.Access(access)
	if err != nil {
		l.errorf(at.Span(), "%s", err)
		return 0, false
	}

	switch binding.Kind {
	case sema.BindingTraceColumn, sema.BindingTraceParam:
		return l.leafTraceAccess(binding, rowOffset), true
	case sema.BindingRandomValue:
		return l.graph.RandomAccess(binding.Random.Offset), true
	case sema.BindingPublicInput:
		base := l.publicOffset[q.Item.Name.Id()]

		if access.Kind() == types.Index {
			base += access.Index()
		}

		return l.graph.PublicAccess(base), true
	default:
		l.errorf(at.Span(), "reference did not reduce to a trace/random/public leaf before MIR lowering")
		return 0, false
	}
}

func (l *lowering) periodicOrdinal(q ident.QualifiedIdentifier) uint {
	if idx, ok := l.periodicIdx[q.Item.Name.Id()]; ok {
		return idx
	}

	idx := uint(len(l.periodicIdx))
	l.periodicIdx[q.Item.Name.Id()] = idx

	return idx
}

func (l *lowering) lowerBinary(ex *ast.BinaryExpr) (NodeIdx, bool) {
	if ex.Op == ast.Eq {
		lhs, ok := l.lowerExpr(ex.Lhs)
		if !ok {
			return 0, false
		}

		rhs, ok := l.lowerExpr(ex.Rhs)
		if !ok {
			return 0, false
		}

		return l.graph.Enf(l.graph.Binary(OpSub, lhs, rhs)), true
	}

	lhs, ok := l.lowerExpr(ex.Lhs)
	if !ok {
		return 0, false
	}

	if ex.Op == ast.Exp {
		n, ok := constExponent(ex.Rhs)
		if !ok {
			l.errorf(ex.Span(), "exponent did not reduce to a constant by MIR lowering")
			return 0, false
		}

		return l.expandExp(lhs, n), true
	}

	rhs, ok := l.lowerExpr(ex.Rhs)
	if !ok {
		return 0, false
	}

	switch ex.Op {
	case ast.Add:
		return l.graph.Binary(OpAdd, lhs, rhs), true
	case ast.Sub:
		return l.graph.Binary(OpSub, lhs, rhs), true
	case ast.Mul:
		return l.graph.Binary(OpMul, lhs, rhs), true
	default:
		l.errorf(ex.Span(), "unsupported binary operator")
		return 0, false
	}
}

func constExponent(e ast.Expr) (uint64, bool) {
	c, ok := e.(*ast.ConstExpr)
	if !ok || !c.Value.IsScalar() || !c.Value.Scalar.IsUint64() {
		return 0, false
	}

	return c.Value.Scalar.Uint64(), true
}

// expandExp lowers Exp(base, n) by exponentiation-by-squaring into a chain
// of OpMul nodes: AIR has no exponentiation primitive (spec.md section 4.8:
// "only Add/Sub/Mul and the five Value leaves are valid"), so this is the
// one place a constant power ever gets turned into multiplications rather
// than carried as a node of its own.
func (l *lowering) expandExp(base NodeIdx, n uint64) NodeIdx {
	if n == 0 {
		return l.graph.Const(felt.One())
	}

	var (
		acc     NodeIdx
		haveAcc bool
		cur     = base
	)

	for n > 0 {
		if n&1 == 1 {
			if haveAcc {
				acc = l.graph.Binary(OpMul, acc, cur)
			} else {
				acc = cur
				haveAcc = true
			}
		}

		n >>= 1

		if n > 0 {
			cur = l.graph.Binary(OpMul, cur, cur)
		}
	}

	return acc
}

// lowerIf encodes a value-position conditional `if c then t else e` as the
// arithmetic selection `c*t + (1-c)*e`; c is assumed boolean-valued (checked
// during semantic analysis), so exactly one term survives per row.
func (l *lowering) lowerIf(ex *ast.IfExpr) (NodeIdx, bool) {
	cond, ok := l.lowerExpr(ex.Cond)
	if !ok {
		return 0, false
	}

	then, ok := l.lowerExpr(ex.Then)
	if !ok {
		return 0, false
	}

	els, ok := l.lowerExpr(ex.Else)
	if !ok {
		return 0, false
	}

	one := l.graph.Const(felt.One())
	notCond := l.graph.Binary(OpSub, one, cond)

	return l.graph.Binary(OpAdd, l.graph.Binary(OpMul, cond, then), l.graph.Binary(OpMul, notCond, els)), true
}

// lowerCall handles the two builtin aggregate functions; every other call
// should have been resolved away by pkg/inline (evaluator calls) or is a
// pure-function call, which this compiler does not lower to MIR (spec.md
// section 9's scaffolded-but-unimplemented pure-function body inlining).
func (l *lowering) lowerCall(ex *ast.CallExpr) (NodeIdx, bool) {
	nid, ok := ex.Callee.AsUnresolved()
	if ok {
		switch ast.BuiltinOf(nid.Name.Name()) {
		case ast.Sum:
			return l.lowerFold(ex, OpAdd, felt.Zero())
		case ast.Prod:
			return l.lowerFold(ex, OpMul, felt.One())
		}
	}

	l.errorf(ex.Span(), "pure-function calls are not supported in constraint position")

	return 0, false
}

func (l *lowering) lowerFold(ex *ast.CallExpr, op Op, identity felt.Element) (NodeIdx, bool) {
	if len(ex.Args) != 1 {
		l.errorf(ex.Span(), "sum/prod take exactly one aggregate argument")
		return 0, false
	}

	elems, ok := l.elementsOf(ex.Args[0])
	if !ok {
		l.errorf(ex.Span(), "sum/prod argument did not reduce to a fixed-length aggregate")
		return 0, false
	}

	acc := l.graph.Const(identity)

	for _, el := range elems {
		n, ok := l.lowerExpr(el)
		if !ok {
			return 0, false
		}

		acc = l.graph.Binary(op, acc, n)
	}

	return acc, true
}

// elementsOf splits a vector-shaped expression into its per-element
// expressions, handling ranges, vector literals, constant vectors, and
// symbol accesses typed as vectors.
func (l *lowering) elementsOf(e ast.Expr) ([]ast.Expr, bool) {
	switch v := e.(type) {
	case *ast.RangeExpr:
		n := int(v.End.Int64() - v.Start.Int64())
		out := make([]ast.Expr, n)

		for i := 0; i < n; i++ {
			s := new(big.Int).Add(v.Start, big.NewInt(int64(i)))
			out[i] = ast.NewConstExpr(v.Span(), ast.ScalarValue(s))
		}

		return out, true
	case *ast.VectorExpr:
		return v.Elements, true
	case *ast.ConstExpr:
		if !v.Value.IsVector() {
			return nil, false
		}

		out := make([]ast.Expr, len(v.Value.Vector))
		for i, s := range v.Value.Vector {
			out[i] = ast.NewConstExpr(v.Span(), ast.ScalarValue(s))
		}

		return out, true
	case *ast.SymbolAccess:
		t := v.Type()
		if t == nil || !t.IsVector() {
			return nil, false
		}

		n := int(t.Length())
		out := make([]ast.Expr, n)

		for i := range out {
			out[i] = ast.NewProjectedSymbolAccess(v.Span(), v.Name, types.IndexAccess(uint(i)))
		}

		return out, true
	default:
		return nil, false
	}
}

func (l *lowering) errorf(span source.Span, format string, args ...any) {
	l.failed = true
	l.sink.Diagnostic(diag.Error).WithMessagef(format, args...).WithPrimaryLabel(span, "here").Emit()
}
