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
	"fmt"
)

// CompanyField is the custom field id the builders use by default.
const CompanyField = "customfield_10002"

// IssueBuilder provides a fluent API for creating test issues in the raw
// JSON shape Jira returns.
type IssueBuilder struct {
	id      string
	key     string
	fields  map[string]interface{}
	fieldID string
}

// NewIssueBuilder creates a builder for issue HD-<number>.
func NewIssueBuilder(number int) *IssueBuilder {
	return &IssueBuilder{
		id:      fmt.Sprintf("%d", 10000+number),
		key:     fmt.Sprintf("HD-%d", number),
		fields:  map[string]interface{}{},
		fieldID: CompanyField,
	}
}

// InField sets the custom field id subsequent company calls write to.
func (b *IssueBuilder) InField(fieldID string) *IssueBuilder {
	b.fieldID = fieldID
	return b
}

// WithCompanies sets the company field to entries with the given names.
func (b *IssueBuilder) WithCompanies(names ...string) *IssueBuilder {
	entries := make([]interface{}, 0, len(names))
	for _, name := range names {
		entries = append(entries, map[string]interface{}{"name": name})
	}
	b.fields[b.fieldID] = entries
	return b
}

// WithNamelessCompany appends an entry that has no name.
func (b *IssueBuilder) WithNamelessCompany() *IssueBuilder {
	entries, _ := b.fields[b.fieldID].([]interface{})
	b.fields[b.fieldID] = append(entries, map[string]interface{}{"id": "42"})
	return b
}

// WithNullCompany sets the company field to JSON null.
func (b *IssueBuilder) WithNullCompany() *IssueBuilder {
	b.fields[b.fieldID] = nil
	return b
}

// Build returns the issue as a JSON-ready map.
func (b *IssueBuilder) Build() map[string]interface{} {
	return map[string]interface{}{
		"id":     b.id,
		"key":    b.key,
		"fields": b.fields,
	}
}

// GenerateIssues builds n issues numbered from 1, each attributed to company
// when it is non-empty.
func GenerateIssues(n int, company string) []map[string]interface{} {
	issues := make([]map[string]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		b := NewIssueBuilder(i)
		if company != "" {
			b.WithCompanies(company)
		}
		issues = append(issues, b.Build())
	}
	return issues
}
