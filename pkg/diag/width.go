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

package diag

import (
	"os"

	"golang.org/x/term"
)

// defaultRenderWidth is used whenever stdout is not a real terminal (e.g.
// output is piped to a file or another process).
const defaultRenderWidth = 100

// RenderWidth returns how wide rendered source snippets should be wrapped:
// the real terminal width when stdout is a TTY, or defaultRenderWidth
// otherwise. Mirrors the teacher's use of golang.org/x/term for terminal
// geometry (pkg/util/termio), scoped here to the one thing the diagnostics
// renderer actually needs.
func RenderWidth() int {
	fd := int(os.Stdout.Fd())

	if !term.IsTerminal(fd) {
		return defaultRenderWidth
	}

	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultRenderWidth
	}

	return w
}
