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
package cmd

import (
	"fmt"

	"github.com/airlang/airc/pkg/air"
	"github.com/airlang/airc/pkg/ast"
	"github.com/airlang/airc/pkg/constprop"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/inline"
	"github.com/airlang/airc/pkg/mir"
	"github.com/airlang/airc/pkg/pass"
	"github.com/airlang/airc/pkg/sema"
)

// Compile runs every stage spec.md names C4 through C10 over an
// already-assembled program (the lexer/parser is out of scope, and module
// assembly, C3, must have already produced program). It stops at the
// first stage whose diagnostics sink accumulates an error, mirroring the
// teacher's per-module error accumulation in corset.CompileSourceFile.
func Compile(sink diag.Handler, program *ast.Program) (*air.Graph, error) {
	if _, err := pass.Run("sema", func(p *ast.Program) (*ast.Program, error) {
		_, err := sema.AnalyseProgram(sink, p)
		return p, err
	}, program); err != nil {
		return nil, err
	}

	if sink.HasErrors() {
		return nil, fmt.Errorf("semantic analysis failed")
	}

	for _, m := range program.Modules() {
		if _, err := pass.Run("constprop", func(mod *ast.Module) (*ast.Module, error) {
			return mod, constprop.Fold(sink, mod)
		}, m); err != nil {
			return nil, err
		}
	}

	if sink.HasErrors() {
		return nil, fmt.Errorf("constant propagation failed")
	}

	expander := inline.NewExpander(sink, program)

	for _, m := range program.Modules() {
		if _, err := pass.Run("inline", func(mod *ast.Module) (*ast.Module, error) {
			return mod, expander.ExpandModule(mod)
		}, m); err != nil {
			return nil, err
		}
	}

	if sink.HasErrors() {
		return nil, fmt.Errorf("inlining failed")
	}

	mirGraph, err := pass.Run("mir-lower", func(p *ast.Program) (*mir.Graph, error) {
		return mir.LowerModule(sink, p, p.Root)
	}, program)
	if err != nil {
		return nil, err
	}

	airGraph, err := pass.Run("air-lower", func(g *mir.Graph) (*air.Graph, error) {
		return air.Lower(sink, g)
	}, mirGraph)
	if err != nil {
		return nil, err
	}

	return airGraph, nil
}
