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
	"io"

	"github.com/airlang/airc/pkg/diag"
)

// printDiagnostics renders diagnostics by byte offset rather than against a
// rendered source line: airc's input is a pre-parsed program (spec.md
// section 1), so unlike the teacher's CLI there is no source text on hand to
// snippet against. diag.Render is left for callers that do have the
// originating source.File available (e.g. a future front end).
func printDiagnostics(w io.Writer, diagnostics []diag.Diagnostic) {
	for _, d := range diagnostics {
		fmt.Fprintf(w, "%s: %s\n", d.Severity, d.Message)

		for _, l := range d.Labels {
			kind := "-->"
			if l.Secondary {
				kind = "..."
			}

			fmt.Fprintf(w, "  %s [%d:%d]: %s\n", kind, l.Span.Start(), l.Span.End(), l.Message)
		}

		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s\n", n)
		}
	}
}
