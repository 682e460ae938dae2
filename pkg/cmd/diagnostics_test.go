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
	"strings"
	"testing"

	"github.com/airlang/airc/pkg/diag"
	"github.com/airlang/airc/pkg/source"
)

func TestPrintDiagnostics_RendersSeverityMessageLabelsAndNotes(t *testing.T) {
	diagnostics := []diag.Diagnostic{
		{
			Severity: diag.Error,
			Message:  "type mismatch",
			Labels: []diag.Label{
				{Span: source.NewSpan(3, 9), Message: "here", Secondary: false},
				{Span: source.NewSpan(0, 2), Message: "declared here", Secondary: true},
			},
			Notes: []string{"expected felt"},
		},
	}

	var buf bytes.Buffer
	printDiagnostics(&buf, diagnostics)

	out := buf.String()

	for _, want := range []string{"type mismatch", "[3:9]", "here", "...", "declared here", "note: expected felt"} {
		if !strings.Contains(out, want) {
			t.Errorf("printDiagnostics output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDiagnostics_EmptyInputWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	printDiagnostics(&buf, nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output for an empty diagnostics slice, got %q", buf.String())
	}
}
