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
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/airlang/airc/pkg/air"
	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/felt"
	"github.com/airlang/airc/pkg/types"
)

func TestReadProgramFile_RoundTripsAGobEncodedProgram(t *testing.T) {
	program := buildProgram(t)

	path := filepath.Join(t.TempDir(), "program.gob")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := gob.NewEncoder(f).Encode(program); err != nil {
		f.Close()
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	got, err := ReadProgramFile(path)
	if err != nil {
		t.Fatalf("ReadProgramFile: %v", err)
	}

	if got.Root.Name != program.Root.Name {
		t.Errorf("root module name = %v, want %v", got.Root.Name, program.Root.Name)
	}
}

func TestReadProgramFile_MissingFile(t *testing.T) {
	if _, err := ReadProgramFile(filepath.Join(t.TempDir(), "does-not-exist.gob")); err == nil {
		t.Fatal("expected an error reading a nonexistent program file")
	}
}

func TestWriteGraphFile_RoundTripsAnAirGraph(t *testing.T) {
	program := buildProgram(t)
	sink := diag.NewSink()

	g, err := Compile(sink, program)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.air.gob")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back written file: %v", err)
	}

	var got air.Graph
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Len() != g.Len() {
		t.Errorf("round-tripped graph has %d nodes, want %d", got.Len(), g.Len())
	}

	if len(got.Constraints) != len(g.Constraints) {
		t.Errorf("round-tripped graph has %d constraints, want %d", len(got.Constraints), len(g.Constraints))
	}
}

func TestWriteGraphFile_UnwritableDestination(t *testing.T) {
	g := air.NewGraph()
	g.Const(felt.Zero())
	g.Constraints = append(g.Constraints, air.Constraint{Segment: types.MainSegment})

	if err := WriteGraphFile(g, filepath.Join(t.TempDir(), "missing-dir", "out.gob")); err == nil {
		t.Fatal("expected an error writing to a nonexistent directory")
	}
}
