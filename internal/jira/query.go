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

package jira

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the calendar-date format used in JQL date clauses.
const DateLayout = "2006-01-02"

// DateWindow is an inclusive range of calendar dates on the created field.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// DayWindow returns [today, today+1 day] in now's location.
func DayWindow(now time.Time) DateWindow {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateWindow{From: from, To: from.AddDate(0, 0, 1)}
}

// Validate checks From <= To.
func (w DateWindow) Validate() error {
	if w.To.Before(w.From) {
		return fmt.Errorf("date window ends (%s) before it starts (%s)",
			w.To.Format(DateLayout), w.From.Format(DateLayout))
	}
	return nil
}

// Contains reports whether t falls on a calendar date inside the window.
func (w DateWindow) Contains(t time.Time) bool {
	day := t.In(w.From.Location()).Format(DateLayout)
	return day >= w.From.Format(DateLayout) && day <= w.To.Format(DateLayout)
}

func (w DateWindow) String() string {
	return w.From.Format(DateLayout) + ".." + w.To.Format(DateLayout)
}

// Filter selects the project and issue type a search is restricted to.
type Filter struct {
	Project   string
	IssueType string
}

// BuildJQL constructs the search expression for filter within window:
//
//	project = HD AND issuetype = Bug AND created >= "2024-05-01" AND created <= "2024-05-02"
//
// Values that are not plain identifiers are quoted.
func BuildJQL(filter Filter, window DateWindow) string {
	parts := []string{
		"project = " + jqlValue(filter.Project),
		"issuetype = " + jqlValue(filter.IssueType),
		fmt.Sprintf("created >= %q", window.From.Format(DateLayout)),
		fmt.Sprintf("created <= %q", window.To.Format(DateLayout)),
	}
	return strings.Join(parts, " AND ")
}

// NewSearchRequest returns a request for the first page of jql.
func NewSearchRequest(jql string, pageSize int, fields ...string) SearchRequest {
	return SearchRequest{
		JQL:        jql,
		StartAt:    0,
		MaxResults: pageSize,
		Fields:     fields,
	}
}

func jqlValue(v string) string {
	if v != "" && strings.IndexFunc(v, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	}) < 0 {
		return v
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}
