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

import "github.com/airlang/airc/pkg/ident"

// ModuleType distinguishes the single root module of a program (which may
// declare trace columns and constraints) from library modules (which may
// not; spec.md C3).
type ModuleType uint8

const (
	// RootModule is the program's single entry-point module.
	RootModule ModuleType = iota
	// LibraryModule is any other module, imported for its constants,
	// functions and evaluators.
	LibraryModule
)

// Module is the typed, bucketed result of module assembly (spec.md C3): a
// raw `(ModuleType, name, []Declaration)` triple sorted into its
// constituent kinds.
type Module struct {
	Type   ModuleType
	Name   ident.Id
	Source ident.Id // original source-file identity, for diagnostics only

	Constants          map[ident.Id]*ConstantDecl
	Evaluators         map[ident.Id]*EvaluatorDecl
	Functions          map[ident.Id]*FunctionDecl
	PeriodicColumns    map[ident.Id]*PeriodicColumnDecl
	PublicInputs       map[ident.Id]PublicInput
	RandomValues       *RandomValuesDecl
	TraceSegments      []*TraceSegmentDecl
	BoundaryConstraints []Statement
	IntegrityConstraints []Statement
	Imports            map[ident.NamespacedIdentifier]ident.Id // item -> source module
	WildcardImports    []ident.Id                              // modules imported via `import *`
}

// NewModule constructs an empty module of the given type and name, ready to
// be populated by the module assembler.
func NewModule(ty ModuleType, name, source ident.Id) *Module {
	return &Module{
		Type:         ty,
		Name:         name,
		Source:       source,
		Constants:    make(map[ident.Id]*ConstantDecl),
		Evaluators:   make(map[ident.Id]*EvaluatorDecl),
		Functions:    make(map[ident.Id]*FunctionDecl),
		PeriodicColumns: make(map[ident.Id]*PeriodicColumnDecl),
		PublicInputs: make(map[ident.Id]PublicInput),
		Imports:      make(map[ident.NamespacedIdentifier]ident.Id),
	}
}

// Segment returns the trace segment declaration with the given id, or nil.
func (m *Module) Segment(id uint8) *TraceSegmentDecl {
	for _, s := range m.TraceSegments {
		if uint8(s.Segment) == id {
			return s
		}
	}

	return nil
}

// Program is the whole multi-module compilation unit: one root Module plus
// zero or more library Modules it (transitively) imports from. This is the
// external interface toward the parser (spec.md section 6); the root
// module's buckets are exactly the `trace_columns`/`public_inputs`/
// `random_values`/`periodic_columns`/`constants`/`evaluators`/`functions`/
// `boundary_constraints`/`integrity_constraints` named there.
type Program struct {
	Name    ident.Identifier
	Root    *Module
	Library map[ident.Id]*Module // keyed by module name, excludes Root
}

// NewProgram constructs a program from an already-assembled root module and
// library.
func NewProgram(name ident.Identifier, root *Module, library map[ident.Id]*Module) *Program {
	return &Program{name, root, library}
}

// Modules returns every module in the program, root first.
func (p *Program) Modules() []*Module {
	mods := make([]*Module, 0, 1+len(p.Library))
	mods = append(mods, p.Root)

	for _, m := range p.Library {
		mods = append(mods, m)
	}

	return mods
}

// Module looks up a module (root or library) by name.
func (p *Program) Module(name ident.Id) *Module {
	if p.Root.Name == name {
		return p.Root
	}

	return p.Library[name]
}
