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

package aggregate

import (
	"github.com/sirseerhq/sirseer-jira-exporter/internal/jira"
)

// OthersLabel is the bucket for issues without an attributable company.
const OthersLabel = "others"

// Summary is the result of aggregating one fetch.
type Summary struct {
	Counts map[string]int
	// Issues is the number of issues considered.
	Issues int
	// Malformed counts issues whose company field could not be decoded.
	// Those issues are attributed to OthersLabel.
	Malformed int
}

// ByCompany groups issues by the company entries under fieldID.
func ByCompany(issues []jira.Issue, fieldID string) map[string]int {
	return Summarize(issues, fieldID).Counts
}

// Summarize is ByCompany with bookkeeping about the input.
func Summarize(issues []jira.Issue, fieldID string) Summary {
	s := Summary{Counts: make(map[string]int), Issues: len(issues)}

	for _, issue := range issues {
		companies, present, err := issue.Companies(fieldID)
		if err != nil {
			s.Malformed++
			s.Counts[OthersLabel]++
			continue
		}
		if !present || len(companies) == 0 {
			s.Counts[OthersLabel]++
			continue
		}

		for _, c := range companies {
			if c.Name == "" {
				s.Counts[OthersLabel]++
				continue
			}
			s.Counts[c.Name]++
		}
	}

	return s
}

// Total sums all buckets. It equals the issue count only when no issue
// lists more than one company.
func (s Summary) Total() int {
	var n int
	for _, c := range s.Counts {
		n += c
	}
	return n
}
