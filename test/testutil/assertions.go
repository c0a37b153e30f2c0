// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"bufio"
	"strings"
	"testing"
)

// AssertMetricLine checks that a Prometheus text exposition contains line
// exactly, ignoring HELP/TYPE comments.
func AssertMetricLine(t *testing.T, exposition, line string) {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(exposition))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == line {
			return
		}
	}
	t.Errorf("Expected metrics to contain line %q, got:\n%s", line, exposition)
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}
