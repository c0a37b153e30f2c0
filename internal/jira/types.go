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
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
)

// SearchRequest is the JSON body of a Jira search call.
// Only StartAt changes between the pages of a single fetch.
type SearchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

// SearchResponse is one page of search results.
// MaxResults is the page size the server actually applied, which may be
// lower than the one requested.
type SearchResponse struct {
	Total      int     `json:"total"`
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Issues     []Issue `json:"issues"`
}

// Issue is a search hit. Fields are kept raw; callers decode the ones they need.
type Issue struct {
	ID     string                     `json:"id,omitempty"`
	Key    string                     `json:"key,omitempty"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// Company is one entry of the multi-valued company custom field.
type Company struct {
	Name string `json:"name"`
}

// Companies decodes the company entries stored under fieldID.
// present is false when the field is missing or null. A field that holds a
// single object instead of a list is treated as a one-entry list.
func (i Issue) Companies(fieldID string) (companies []Company, present bool, err error) {
	raw, ok := i.Fields[fieldID]
	if !ok {
		return nil, false, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false, nil
	}

	if raw[0] == '{' {
		var single Company
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, true, fmt.Errorf("issue %s field %s: %w", i.Key, fieldID, err)
		}
		return []Company{single}, true, nil
	}

	if err := json.Unmarshal(raw, &companies); err != nil {
		return nil, true, fmt.Errorf("issue %s field %s: %w", i.Key, fieldID, err)
	}
	return companies, true, nil
}

// StatusError reports a non-success HTTP status from Jira.
// It unwraps to the sentinel matching the status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("jira returned status %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("jira returned status %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Unwrap maps the status code onto a sentinel error.
func (e *StatusError) Unwrap() error {
	switch {
	case e.IsAuthError():
		return relayerrors.ErrInvalidCredentials
	case e.IsNotFoundError():
		return relayerrors.ErrNotFound
	case e.IsRateLimitError():
		return relayerrors.ErrRateLimit
	default:
		return relayerrors.ErrUnexpectedStatus
	}
}

// IsAuthError reports whether Jira rejected the credentials.
func (e *StatusError) IsAuthError() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// IsNotFoundError reports whether the endpoint does not exist.
func (e *StatusError) IsNotFoundError() bool {
	return e.Code == http.StatusNotFound
}

// IsRateLimitError reports whether Jira throttled the request.
func (e *StatusError) IsRateLimitError() bool {
	return e.Code == http.StatusTooManyRequests
}
