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
	"os"

	"github.com/spf13/cobra"

	"github.com/airlang/airc/pkg/diag"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] program.gob",
	Short: "compile a parsed program into an AIR constraint graph.",
	Long: `Compile reads a gob-encoded ast.Program (as produced by an external
lexer/parser) and lowers it through semantic analysis, constant propagation,
inlining, MIR and finally AIR, writing the resulting constraint graph as a
gob-encoded file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		output := GetString(cmd, "output")

		program, err := ReadProgramFile(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		sink := diag.NewSink()

		graph, err := Compile(sink, program)
		if err != nil {
			printDiagnostics(os.Stderr, sink.All())
			fmt.Println(err)
			os.Exit(1)
		}

		if err := WriteGraphFile(graph, output); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if len(sink.All()) > 0 {
			printDiagnostics(os.Stderr, sink.All())
		}
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "a.air.gob", "specify output file")
}
