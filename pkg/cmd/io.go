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
	"encoding/gob"
	"fmt"
	"os"

	"github.com/airlang/airc/pkg/air"
	"github.com/airlang/airc/pkg/ast"
)

// ReadProgramFile decodes a gob-encoded ast.Program from filename. The
// lexer/parser producing ast.Program values is out of scope here (spec.md
// section 1): airc consumes an already-parsed program, the same way the
// teacher's binfile format lets downstream tools consume an already-compiled
// schema without re-running the front end (pkg/binfile.BinaryFile).
func ReadProgramFile(filename string) (*ast.Program, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening program file: %w", err)
	}
	defer f.Close()

	var program ast.Program
	if err := gob.NewDecoder(f).Decode(&program); err != nil {
		return nil, fmt.Errorf("decoding program file: %w", err)
	}

	return &program, nil
}

// WriteGraphFile gob-encodes a compiled AIR graph to filename.
func WriteGraphFile(g *air.Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(g); err != nil {
		return fmt.Errorf("encoding output file: %w", err)
	}

	return nil
}
