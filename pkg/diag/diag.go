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

// Package diag provides the diagnostics sink capability consumed by every
// compiler pass.  Errors are structured (severity, message, labels, notes)
// tuples rather than plain strings, following the teacher's separation
// between source-mapped compiler errors (pkg/source.SyntaxError) and
// free-text CLI logging.
package diag

import (
	"fmt"
	"strings"

	"github.com/airlang/airc/pkg/source"
)

// Severity classifies a diagnostic. Warnings never abort a pass; errors
// cause the owning pass to eventually return a non-nil error.
type Severity uint8

const (
	// Warning does not cause analysis to fail.
	Warning Severity = iota
	// Error causes the owning pass to report failure once it finishes
	// accumulating diagnostics for the current module.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}

	return "warning"
}

// Label annotates a specific span with a short message. A diagnostic may
// carry primary labels and any number of secondary ones (e.g. pointing at
// the span of a conflicting prior declaration); some diagnostics carry no
// label at all.
type Label struct {
	Span      source.Span
	Message   string
	Secondary bool
}

// Diagnostic is a single structured compiler message.
type Diagnostic struct {
	Severity Severity
	Message  string
	Labels   []Label
	Notes    []string
}

// Handler is the capability every pass receives (by reference, never as a
// package-level global) to report diagnostics.  Building a Diagnostic
// through Builder lets a pass attach labels/notes fluently before calling
// Emit; Handler itself stays a minimal interface so passes can be tested
// against a fake sink.
type Handler interface {
	// Diagnostic begins building a new diagnostic at the given severity.
	Diagnostic(sev Severity) *Builder
	// HasErrors reports whether any Error-severity diagnostic has been
	// emitted through this handler so far.
	HasErrors() bool
	// All returns every diagnostic emitted so far, in emission order.
	All() []Diagnostic
}

// Builder accumulates the pieces of a single diagnostic before it is
// emitted.  Not safe for concurrent use; diagnostics are always built and
// emitted from a single pass running single-threaded (see spec.md section
// 5).
type Builder struct {
	sink *Sink
	d    Diagnostic
}

// WithMessage sets the diagnostic's headline message.
func (b *Builder) WithMessage(msg string) *Builder {
	b.d.Message = msg
	return b
}

// WithMessagef is WithMessage with fmt.Sprintf formatting.
func (b *Builder) WithMessagef(format string, args ...any) *Builder {
	return b.WithMessage(fmt.Sprintf(format, args...))
}

// WithPrimaryLabel attaches the (first) primary label pointing at the
// offending construct.
func (b *Builder) WithPrimaryLabel(span source.Span, msg string) *Builder {
	b.d.Labels = append(b.d.Labels, Label{span, msg, false})
	return b
}

// WithSecondaryLabel attaches a secondary label, typically pointing at
// related context (e.g. the span of an earlier conflicting declaration).
func (b *Builder) WithSecondaryLabel(span source.Span, msg string) *Builder {
	b.d.Labels = append(b.d.Labels, Label{span, msg, true})
	return b
}

// WithNote attaches a free-form note with no associated span.
func (b *Builder) WithNote(note string) *Builder {
	b.d.Notes = append(b.d.Notes, note)
	return b
}

// Emit finalises and records the diagnostic with its sink.
func (b *Builder) Emit() {
	b.sink.emit(b.d)
}

// Sink is the default in-memory Handler implementation: it simply
// accumulates diagnostics for later rendering, matching the teacher's
// pattern of collecting everything sema finds in one module pass before
// deciding success/failure (spec.md section 7: "semantic analysis
// accumulates multiple errors per module").
type Sink struct {
	diagnostics []Diagnostic
	errorCount  int
}

// NewSink constructs an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{}
}

// Diagnostic begins building a new diagnostic.
func (s *Sink) Diagnostic(sev Severity) *Builder {
	return &Builder{sink: s, d: Diagnostic{Severity: sev}}
}

func (s *Sink) emit(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)

	if d.Severity == Error {
		s.errorCount++
	}
}

// HasErrors reports whether any Error-severity diagnostic has been emitted.
func (s *Sink) HasErrors() bool { return s.errorCount > 0 }

// All returns every diagnostic emitted so far, in emission order.
func (s *Sink) All() []Diagnostic { return s.diagnostics }

// Render formats every diagnostic emitted so far as human-readable text
// against the given source file, wrapping the rendered source snippet to
// the detected terminal width (see RenderWidth).
func Render(file *source.File, diagnostics []Diagnostic) string {
	var b strings.Builder

	width := RenderWidth()

	for _, d := range diagnostics {
		fmt.Fprintf(&b, "%s: %s\n", d.Severity, d.Message)

		for _, l := range d.Labels {
			line := file.FindFirstEnclosingLine(l.Span)
			text := line.String()

			kind := "-->"
			if l.Secondary {
				kind = "..."
			}

			fmt.Fprintf(&b, "  %s %s:%d: %s\n", kind, file.Filename(), line.Number(), l.Message)

			for len(text) > width {
				fmt.Fprintf(&b, "      %s\n", text[:width])
				text = text[width:]
			}

			fmt.Fprintf(&b, "      %s\n", text)
		}

		for _, n := range d.Notes {
			fmt.Fprintf(&b, "  note: %s\n", n)
		}
	}

	return b.String()
}
