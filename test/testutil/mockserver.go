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

// Package testutil provides common test helpers for sirseer-jira-exporter
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// SearchBody is the decoded body of a search request received by the mock.
type SearchBody struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

// SearchServer is an httptest server speaking the Jira search API.
// It pages through Issues the way Jira does and records every request.
type SearchServer struct {
	*httptest.Server

	mu        sync.Mutex
	issues    []map[string]interface{}
	pageCap   int
	failOn    map[int]int
	malformed map[int]bool
	dropped   map[int]bool
	username  string
	token     string
	requests  []SearchBody
}

// SearchServerOption configures a SearchServer.
type SearchServerOption func(*SearchServer)

// WithPageCap limits every page to n issues, like Jira's maxResults cap.
func WithPageCap(n int) SearchServerOption {
	return func(s *SearchServer) { s.pageCap = n }
}

// WithFailureOn makes the n-th request (1-based) answer with status.
func WithFailureOn(n, status int) SearchServerOption {
	return func(s *SearchServer) { s.failOn[n] = status }
}

// WithMalformedOn makes the n-th request (1-based) answer with invalid JSON.
func WithMalformedOn(n int) SearchServerOption {
	return func(s *SearchServer) { s.malformed[n] = true }
}

// WithDropOn makes the n-th request (1-based) send its headers and part of
// the body, then close the connection.
func WithDropOn(n int) SearchServerOption {
	return func(s *SearchServer) { s.dropped[n] = true }
}

// WithBasicAuth makes the server reject requests without these credentials.
func WithBasicAuth(username, token string) SearchServerOption {
	return func(s *SearchServer) {
		s.username = username
		s.token = token
	}
}

// NewSearchServer starts a mock Jira serving issues at /rest/api/2/search.
// The server is closed when the test ends.
func NewSearchServer(t *testing.T, issues []map[string]interface{}, opts ...SearchServerOption) *SearchServer {
	t.Helper()

	s := &SearchServer{
		issues:    issues,
		failOn:    map[int]int{},
		malformed: map[int]bool{},
		dropped:   map[int]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

func (s *SearchServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/rest/api/2/search" || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessages":["not found"]}`))
		return
	}

	var body SearchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, body)
	n := len(s.requests)
	status, fail := s.failOn[n]
	malformed := s.malformed[n]
	dropped := s.dropped[n]
	s.mu.Unlock()

	if s.username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.username || pass != s.token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errorMessages":["Basic authentication failed"]}`))
			return
		}
	}

	if fail {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(http.StatusText(status)))
		return
	}

	if dropped {
		s.dropMidBody(w, body)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if malformed {
		_, _ = w.Write([]byte(`{"total": 3, "issues": [`))
		return
	}

	_ = json.NewEncoder(w).Encode(GenerateSearchResponse(s.issues, body.StartAt, body.MaxResults, s.pageCap))
}

// dropMidBody writes a response whose Content-Length promises the full page,
// sends only half of it, and closes the connection.
func (s *SearchServer) dropMidBody(w http.ResponseWriter, body SearchBody) {
	page, err := json.Marshal(GenerateSearchResponse(s.issues, body.StartAt, body.MaxResults, s.pageCap))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	conn, buf, err := hj.Hijack()
	if err != nil {
		return
	}
	defer conn.Close()

	_, _ = fmt.Fprintf(buf, "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n", len(page))
	_, _ = buf.Write(page[:len(page)/2])
	_ = buf.Flush()
}

// RequestCount returns the number of search requests received.
func (s *SearchServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of the search bodies received so far.
func (s *SearchServer) Requests() []SearchBody {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SearchBody, len(s.requests))
	copy(out, s.requests)
	return out
}

// GenerateSearchResponse slices issues into the page selected by startAt and
// maxResults, applying pageCap when positive.
func GenerateSearchResponse(issues []map[string]interface{}, startAt, maxResults, pageCap int) map[string]interface{} {
	size := maxResults
	if pageCap > 0 && size > pageCap {
		size = pageCap
	}

	start := startAt
	if start > len(issues) {
		start = len(issues)
	}
	end := start + size
	if end > len(issues) {
		end = len(issues)
	}

	page := make([]interface{}, 0, end-start)
	for _, issue := range issues[start:end] {
		page = append(page, issue)
	}

	return map[string]interface{}{
		"total":      len(issues),
		"startAt":    startAt,
		"maxResults": size,
		"issues":     page,
	}
}

// NewErrorServer creates a mock server that always returns the specified status.
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
	t.Cleanup(server.Close)
	return server
}
