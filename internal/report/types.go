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

// Package report describes what a single poll cycle did. A Report records
// the query window, counts published, pagination statistics and any error,
// giving an audit trail for each cycle and the payload of the /status
// endpoint.
package report

import (
	"time"
)

// Cycle results.
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

// Report is the record of one poll cycle.
type Report struct {
	ExporterVersion string `json:"exporter_version"`
	CycleID         string `json:"cycle_id"`
	Window          Window `json:"window"`
	JQL             string `json:"jql"`

	Total           int            `json:"total"`
	IssuesFetched   int            `json:"issues_fetched"`
	ByCompany       map[string]int `json:"by_company"`
	StaleCompanies  []string       `json:"stale_companies,omitempty"`
	MalformedIssues int            `json:"malformed_issues,omitempty"`

	Pages    int `json:"pages"`
	APICalls int `json:"api_calls"`

	// Partial is set when a request failed and pagination stopped early.
	Partial    bool   `json:"partial"`
	FetchError string `json:"fetch_error,omitempty"`
	// Interrupted is the error behind FetchError, kept for callers that
	// classify it.
	Interrupted error `json:"-"`
	// Error is the unexpected failure that ended the cycle, if any.
	Error string `json:"error,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
}

// Window is the created-date range a cycle queried, as YYYY-MM-DD.
type Window struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result classifies the cycle for the cycles_total metric.
func (r *Report) Result() string {
	switch {
	case r.Error != "":
		return ResultFailed
	case r.Partial:
		return ResultPartial
	default:
		return ResultSuccess
	}
}
