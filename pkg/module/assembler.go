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

// Package module assembles a module's raw declarations into its typed
// buckets and enforces the structural rules that distinguish root modules
// from library modules (spec.md C3).
package module

import (
	"fmt"
	"strings"

	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/ident"
	"github.com/airlang/airc/pkg/source"
)

// ErrorKind enumerates the ways module assembly can fail (spec.md section 7).
type ErrorKind uint8

const (
	// NameConflict is a duplicate binding/function name within one module.
	NameConflict ErrorKind = iota
	// RootSectionInLibrary is a trace_columns/public_inputs/random_values/
	// boundary_constraints/integrity_constraints section in a library module.
	RootSectionInLibrary
	// ImportSelf is `import *` (or a named import) of the current module.
	ImportSelf
	// MissingConstraints is a root module lacking one of the two
	// constraint sections, or one with zero statements.
	MissingConstraints
	// MissingPublicInputs is a root module declaring no public inputs.
	MissingPublicInputs
	// Invalid is a catch-all for other structural violations (bad
	// constant name, non-power-of-two periodic cycle, non-uniform matrix
	// constant, missing $main/$aux segment).
	Invalid
)

// Error is the structured error returned by Assemble.
type Error struct {
	Kind ErrorKind
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Assemble sorts a module's raw declarations into typed buckets and
// validates the root/library structural rules. A diagnostic is emitted for
// every violation found; assembly stops and returns the first hard error it
// hits (unlike semantic analysis, which accumulates across a whole module -
// module assembly operates on the much smaller, purely syntactic surface of
// "which bucket does this declaration belong in", so the teacher's
// corresponding pass bails on the first mistake too).
func Assemble(sink diag.Handler, ty ast.ModuleType, name, source_ ident.Id, decls []ast.Declaration) (*ast.Module, error) {
	m := ast.NewModule(ty, name, source_)

	declared := make(map[ident.NamespacedIdentifier]source.Span)

	for _, d := range decls {
		if err := place(sink, m, declared, d); err != nil {
			return nil, err
		}
	}

	if ty == ast.LibraryModule {
		if err := checkNoRootSections(sink, m); err != nil {
			return nil, err
		}
	} else {
		if err := checkRootRequirements(sink, m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func place(sink diag.Handler, m *ast.Module, declared map[ident.NamespacedIdentifier]source.Span, d ast.Declaration) error {
	switch decl := d.(type) {
	case *ast.ConstantDecl:
		if !isAllCaps(decl.Name.Name()) {
			sink.Diagnostic(diag.Error).
				WithMessagef("constant name %q must be ALL_CAPS", decl.Name.Name()).
				WithPrimaryLabel(decl.Span(), "declared here").
				Emit()

			return &Error{Invalid, decl.Span(), "invalid constant name"}
		}

		if decl.Value.IsMatrix() {
			width := -1
			for _, row := range decl.Value.Matrix {
				if width == -1 {
					width = len(row)
				} else if len(row) != width {
					sink.Diagnostic(diag.Error).
						WithMessage("matrix constant rows must have uniform width").
						WithPrimaryLabel(decl.Span(), "declared here").
						Emit()

					return &Error{Invalid, decl.Span(), "non-uniform matrix constant"}
				}
			}
		}

		if err := claim(sink, m, declared, ident.Binding(decl.Name), decl.Span()); err != nil {
			return err
		}

		m.Constants[decl.Name.Id()] = decl
	case *ast.EvaluatorDecl:
		if err := claim(sink, m, declared, ident.Function(decl.Name), decl.Span()); err != nil {
			return err
		}

		m.Evaluators[decl.Name.Id()] = decl
	case *ast.FunctionDecl:
		if err := claim(sink, m, declared, ident.Function(decl.Name), decl.Span()); err != nil {
			return err
		}

		m.Functions[decl.Name.Id()] = decl
	case *ast.PeriodicColumnDecl:
		if !isPowerOfTwoAtLeast2(len(decl.Values)) {
			sink.Diagnostic(diag.Error).
				WithMessagef("periodic column %q must have a power-of-two length >= 2", decl.Name.Name()).
				WithPrimaryLabel(decl.Span(), "declared here").
				Emit()

			return &Error{Invalid, decl.Span(), "invalid periodic column length"}
		}

		if err := claim(sink, m, declared, ident.Binding(decl.Name), decl.Span()); err != nil {
			return err
		}

		m.PeriodicColumns[decl.Name.Id()] = decl
	case *ast.PublicInputsDecl:
		if m.Type == ast.LibraryModule {
			return rootSectionErr(sink, decl.Span(), "public_inputs")
		}

		for _, pi := range decl.Inputs {
			if err := claim(sink, m, declared, ident.Binding(pi.Name), decl.Span()); err != nil {
				return err
			}

			m.PublicInputs[pi.Name.Id()] = pi
		}
	case *ast.RandomValuesDecl:
		if m.Type == ast.LibraryModule {
			return rootSectionErr(sink, decl.Span(), "random_values")
		}

		m.RandomValues = decl

		if err := claim(sink, m, declared, ident.Binding(decl.Name), decl.Span()); err != nil {
			return err
		}

		for _, rb := range decl.Bindings {
			if err := claim(sink, m, declared, ident.Binding(rb.Name), decl.Span()); err != nil {
				return err
			}
		}
	case *ast.TraceSegmentDecl:
		if m.Type == ast.LibraryModule {
			return rootSectionErr(sink, decl.Span(), "trace_columns")
		}

		m.TraceSegments = append(m.TraceSegments, decl)

		for _, tb := range decl.Bindings {
			if err := claim(sink, m, declared, ident.Binding(tb.Name), decl.Span()); err != nil {
				return err
			}
		}
	case *ast.BoundaryConstraintsDecl:
		if m.Type == ast.LibraryModule {
			return rootSectionErr(sink, decl.Span(), "boundary_constraints")
		}

		m.BoundaryConstraints = append(m.BoundaryConstraints, decl.Statements...)
	case *ast.IntegrityConstraintsDecl:
		if m.Type == ast.LibraryModule {
			return rootSectionErr(sink, decl.Span(), "integrity_constraints")
		}

		m.IntegrityConstraints = append(m.IntegrityConstraints, decl.Statements...)
	case *ast.ImportDecl:
		return placeImport(sink, m, decl)
	default:
		return &Error{Invalid, d.Span(), fmt.Sprintf("unknown declaration kind %T", d)}
	}

	return nil
}

func placeImport(sink diag.Handler, m *ast.Module, decl *ast.ImportDecl) error {
	if decl.Module == m.Name {
		sink.Diagnostic(diag.Error).
			WithMessage("a module cannot import itself").
			WithPrimaryLabel(decl.Span(), "self-import here").
			Emit()

		return &Error{ImportSelf, decl.Span(), "self import"}
	}

	switch decl.Kind {
	case ast.ImportWildcard:
		for _, prior := range m.WildcardImports {
			if prior == decl.Module {
				sink.Diagnostic(diag.Warning).
					WithMessagef("duplicate wildcard import of module %q", ident.Text(decl.Module)).
					WithPrimaryLabel(decl.Span(), "duplicate import here").
					Emit()

				return nil
			}
		}

		m.WildcardImports = append(m.WildcardImports, decl.Module)
	case ast.ImportItem:
		for _, item := range decl.Items {
			if prior, ok := m.Imports[item]; ok && prior == decl.Module {
				sink.Diagnostic(diag.Warning).
					WithMessagef("duplicate import of %s", item).
					WithPrimaryLabel(decl.Span(), "duplicate import here").
					Emit()

				continue
			}

			m.Imports[item] = decl.Module
		}
	}

	return nil
}

func claim(sink diag.Handler, m *ast.Module, declared map[ident.NamespacedIdentifier]source.Span, nid ident.NamespacedIdentifier, span source.Span) error {
	if prior, ok := declared[nid]; ok {
		sink.Diagnostic(diag.Error).
			WithMessagef("%q is already declared in this module", nid.Name.Name()).
			WithPrimaryLabel(span, "re-declared here").
			WithSecondaryLabel(prior, "first declared here").
			Emit()

		return &Error{NameConflict, span, "name conflict"}
	}

	if importedFrom, ok := m.Imports[nid]; ok {
		sink.Diagnostic(diag.Error).
			WithMessagef("%q conflicts with an item imported from module %q", nid.Name.Name(), ident.Text(importedFrom)).
			WithPrimaryLabel(span, "declared here").
			Emit()

		return &Error{NameConflict, span, "name conflict with import"}
	}

	declared[nid] = span

	return nil
}

func rootSectionErr(sink diag.Handler, span source.Span, section string) error {
	sink.Diagnostic(diag.Error).
		WithMessagef("%q is only permitted in the root module", section).
		WithPrimaryLabel(span, "declared here").
		Emit()

	return &Error{RootSectionInLibrary, span, "root-only section in library"}
}

func checkNoRootSections(_ diag.Handler, _ *ast.Module) error {
	// Violations are reported (and the error returned) at the point of
	// placement above; nothing further to check once every declaration
	// has been placed.
	return nil
}

func checkRootRequirements(sink diag.Handler, m *ast.Module) error {
	var zero source.Span

	if m.Segment(0) == nil {
		sink.Diagnostic(diag.Error).
			WithMessage("root module must declare a $main trace segment").
			WithPrimaryLabel(zero, "missing $main").
			Emit()

		return &Error{Invalid, zero, "missing $main segment"}
	}

	if m.RandomValues != nil && m.Segment(1) == nil {
		sink.Diagnostic(diag.Error).
			WithMessage("root module declares random_values but no $aux trace segment").
			WithPrimaryLabel(m.RandomValues.Span(), "random_values declared here").
			Emit()

		return &Error{Invalid, m.RandomValues.Span(), "missing $aux segment"}
	}

	if len(m.BoundaryConstraints) == 0 || len(m.IntegrityConstraints) == 0 {
		sink.Diagnostic(diag.Error).
			WithMessage("root module must declare both boundary_constraints and integrity_constraints, each with at least one statement").
			WithPrimaryLabel(zero, "missing constraints").
			Emit()

		return &Error{MissingConstraints, zero, "missing constraints"}
	}

	if len(m.PublicInputs) == 0 {
		sink.Diagnostic(diag.Error).
			WithMessage("root module must declare at least one public input").
			WithPrimaryLabel(zero, "missing public_inputs").
			Emit()

		return &Error{MissingPublicInputs, zero, "missing public inputs"}
	}

	return nil
}

func isAllCaps(s string) bool {
	if s == "" {
		return false
	}

	return s == strings.ToUpper(s)
}

func isPowerOfTwoAtLeast2(n int) bool {
	if n < 2 {
		return false
	}

	return n&(n-1) == 0
}
