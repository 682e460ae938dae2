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
package invariant

import (
	"strings"
	"testing"
)

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, got none", want)
		}

		if msg, ok := r.(string); !ok || !strings.Contains(msg, want) {
			t.Fatalf("expected panic containing %q, got %v", want, r)
		}
	}()

	fn()
}

func TestCheck_PassesSilently(t *testing.T) {
	Check(true, "should not fire")
}

func TestCheck_PanicsWithFormattedMessage(t *testing.T) {
	mustPanic(t, "bad thing: 42", func() {
		Check(false, "bad thing: %d", 42)
	})
}

func TestEqual_PassesWhenEqual(t *testing.T) {
	Equal(3, 3, "widget count")
}

func TestEqual_PanicsWhenDifferent(t *testing.T) {
	mustPanic(t, "widget count: expected 3, got 4", func() {
		Equal(3, 4, "widget count")
	})
}

func TestUnreachable_AlwaysPanics(t *testing.T) {
	mustPanic(t, "unexpected op 7", func() {
		Unreachable("unexpected op %d", 7)
	})
}
