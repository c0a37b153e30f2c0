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

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Tracker collects statistics during a cycle and produces its Report.
// Create one at the start of each cycle.
type Tracker struct {
	now       func() time.Time
	cycleID   string
	startTime time.Time

	window   Window
	jql      string
	total    int
	fetched  int
	counts   map[string]int
	stale    []string
	bad      int
	pages    int
	apiCalls int
	fetchErr error
}

// New creates a Tracker stamped with now() and a fresh cycle ID.
// A nil now uses time.Now.
func New(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now:       now,
		cycleID:   uuid.NewString(),
		startTime: now(),
	}
}

// CycleID returns the identifier the Report will carry.
func (t *Tracker) CycleID() string {
	return t.cycleID
}

// SetQuery records the window and JQL of the cycle.
func (t *Tracker) SetQuery(from, to, jql string) {
	t.window = Window{From: from, To: to}
	t.jql = jql
}

// RecordRequests adds the pages received and the requests made by one fetch.
// interrupted is the error that stopped it early, if any.
func (t *Tracker) RecordRequests(pages, requests int, interrupted error) {
	t.pages += pages
	t.apiCalls += requests
	if interrupted != nil && t.fetchErr == nil {
		t.fetchErr = interrupted
	}
}

// RecordTotal records the total count published.
func (t *Tracker) RecordTotal(total int) {
	t.total = total
}

// RecordCompanies records the per-company counts published and how many
// issues were fetched to compute them.
func (t *Tracker) RecordCompanies(fetched int, counts map[string]int, malformed int) {
	t.fetched = fetched
	t.counts = counts
	t.bad = malformed
}

// RecordStale records companies whose gauges were retained but not refreshed.
func (t *Tracker) RecordStale(companies []string) {
	t.stale = companies
}

// Finish builds the Report. cycleErr is the unexpected failure that ended
// the cycle, or nil.
func (t *Tracker) Finish(version string, cycleErr error) *Report {
	completedAt := t.now()

	r := &Report{
		ExporterVersion: version,
		CycleID:         t.cycleID,
		Window:          t.window,
		JQL:             t.jql,
		Total:           t.total,
		IssuesFetched:   t.fetched,
		ByCompany:       t.counts,
		StaleCompanies:  t.stale,
		MalformedIssues: t.bad,
		Pages:           t.pages,
		APICalls:        t.apiCalls,
		Partial:         t.fetchErr != nil,
		StartedAt:       t.startTime,
		CompletedAt:     completedAt,
		Duration:        completedAt.Sub(t.startTime).String(),
	}
	if r.ByCompany == nil {
		r.ByCompany = map[string]int{}
	}
	if t.fetchErr != nil {
		r.FetchError = t.fetchErr.Error()
		r.Interrupted = t.fetchErr
	}
	if cycleErr != nil {
		r.Error = cycleErr.Error()
	}
	return r
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Save writes r to path as indented JSON. The file is written to a
// temporary name first and renamed, so readers never see a partial report.
func Save(r *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := WriteJSON(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to save report file: %w", err)
	}

	return nil
}
