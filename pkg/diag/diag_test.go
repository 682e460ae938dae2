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
package diag

import (
	"strings"
	"testing"

	"github.com/airlang/airc/pkg/source"
)

func TestSink_EmptyHasNoErrors(t *testing.T) {
	s := NewSink()

	if s.HasErrors() {
		t.Error("a fresh sink should not report errors")
	}

	if len(s.All()) != 0 {
		t.Error("a fresh sink should have no diagnostics")
	}
}

func TestSink_WarningDoesNotCountAsError(t *testing.T) {
	s := NewSink()

	s.Diagnostic(Warning).WithMessage("watch out").Emit()

	if s.HasErrors() {
		t.Error("a warning-only sink should not report HasErrors")
	}

	if len(s.All()) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(s.All()))
	}
}

func TestSink_ErrorCountsAndAccumulates(t *testing.T) {
	s := NewSink()

	span := source.NewSpan(2, 5)
	s.Diagnostic(Error).
		WithMessagef("bad %s", "column").
		WithPrimaryLabel(span, "here").
		WithSecondaryLabel(span, "also here").
		WithNote("a free-form note").
		Emit()

	s.Diagnostic(Warning).WithMessage("something minor").Emit()

	if !s.HasErrors() {
		t.Fatal("expected HasErrors to be true after emitting an Error diagnostic")
	}

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(all))
	}

	d := all[0]
	if d.Message != "bad column" {
		t.Errorf("message = %q, want %q", d.Message, "bad column")
	}

	if len(d.Labels) != 2 || d.Labels[0].Secondary || !d.Labels[1].Secondary {
		t.Errorf("labels did not retain primary/secondary ordering: %+v", d.Labels)
	}

	if len(d.Notes) != 1 || d.Notes[0] != "a free-form note" {
		t.Errorf("notes = %v", d.Notes)
	}
}

func TestRender(t *testing.T) {
	file := source.NewSourceFile("test.air", []byte("let x = 1\nenforce x = 0\n"))

	span := source.NewSpan(10, 13)

	diagnostics := []Diagnostic{
		{
			Severity: Error,
			Message:  "type mismatch",
			Labels:   []Label{{Span: span, Message: "here", Secondary: false}},
			Notes:    []string{"expected felt"},
		},
	}

	out := Render(file, diagnostics)

	if !strings.Contains(out, "error: type mismatch") {
		t.Errorf("rendered output missing headline: %q", out)
	}

	if !strings.Contains(out, "test.air:2:") {
		t.Errorf("rendered output missing file:line label: %q", out)
	}

	if !strings.Contains(out, "note: expected felt") {
		t.Errorf("rendered output missing note: %q", out)
	}
}
