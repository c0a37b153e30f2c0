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
	"context"
	"encoding/json"
	"fmt"
	"sync"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
)

// MockSearcher is an in-memory Searcher for testing. It pages through Issues
// the way Jira does, capping each page at PageCap.
type MockSearcher struct {
	mu sync.Mutex

	// Issues to page through
	Issues []Issue

	// PageCap is the largest page the mock serves, mirroring the server-side
	// maxResults limit. Zero means no cap.
	PageCap int

	// Total overrides the reported total when non-negative.
	Total int

	// Errors maps a 1-based request number to the error it returns.
	Errors map[int]error

	// Track calls for verification
	Calls []SearchRequest
}

// NewMockSearcher creates a mock serving issues with no page cap.
func NewMockSearcher(issues []Issue) *MockSearcher {
	return &MockSearcher{Issues: issues, Total: -1, Errors: map[int]error{}}
}

// Search implements the Searcher interface
func (m *MockSearcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err, ok := m.Errors[len(m.Calls)]; ok {
		return nil, err
	}

	size := req.MaxResults
	if m.PageCap > 0 && size > m.PageCap {
		size = m.PageCap
	}

	total := len(m.Issues)
	if m.Total >= 0 {
		total = m.Total
	}

	start := req.StartAt
	if start > len(m.Issues) {
		start = len(m.Issues)
	}
	end := start + size
	if end > len(m.Issues) {
		end = len(m.Issues)
	}

	page := make([]Issue, end-start)
	copy(page, m.Issues[start:end])

	return &SearchResponse{
		Total:      total,
		StartAt:    req.StartAt,
		MaxResults: size,
		Issues:     page,
	}, nil
}

// CallCount returns the number of Search calls made so far.
func (m *MockSearcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockSearcherOption allows configuring the mock searcher
type MockSearcherOption func(*MockSearcher)

// WithPageCap caps every page at n issues.
func WithPageCap(n int) MockSearcherOption {
	return func(m *MockSearcher) {
		m.PageCap = n
	}
}

// WithTotal makes the mock report total regardless of the issues it holds.
func WithTotal(total int) MockSearcherOption {
	return func(m *MockSearcher) {
		m.Total = total
	}
}

// WithErrorOnCall makes the n-th request (1-based) fail with err.
func WithErrorOnCall(n int, err error) MockSearcherOption {
	return func(m *MockSearcher) {
		m.Errors[n] = err
	}
}

// WithNetworkFailureOnCall makes the n-th request fail like a dropped connection.
func WithNetworkFailureOnCall(n int) MockSearcherOption {
	return WithErrorOnCall(n, fmt.Errorf("connection reset by peer: %w", relayerrors.ErrNetworkFailure))
}

// NewMockSearcherWithOptions creates a mock searcher with options
func NewMockSearcherWithOptions(issues []Issue, opts ...MockSearcherOption) *MockSearcher {
	mock := NewMockSearcher(issues)
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}

// NewTestIssue builds an issue whose company field lists names. An empty
// name produces an entry without a name; no names produces an issue without
// the field at all.
func NewTestIssue(key, fieldID string, names ...string) Issue {
	issue := Issue{Key: key, Fields: map[string]json.RawMessage{}}
	if len(names) == 0 {
		return issue
	}

	entries := make([]map[string]string, 0, len(names))
	for _, name := range names {
		entry := map[string]string{}
		if name != "" {
			entry["name"] = name
		}
		entries = append(entries, entry)
	}
	raw, _ := json.Marshal(entries)
	issue.Fields[fieldID] = raw
	return issue
}

// NewTestIssues builds n issues without a company field.
func NewTestIssues(n int) []Issue {
	issues := make([]Issue, n)
	for i := range issues {
		issues[i] = Issue{Key: fmt.Sprintf("HD-%d", i+1), Fields: map[string]json.RawMessage{}}
	}
	return issues
}
