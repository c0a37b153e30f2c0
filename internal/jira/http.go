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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/jiraerror"
)

// SearchPath is the REST v2 search endpoint, relative to the base URL.
const SearchPath = "/rest/api/2/search"

// maxErrorBody bounds how much of an error response is kept in a StatusError.
const maxErrorBody = 512

// maxResponseBody bounds a single search page.
const maxResponseBody = 32 << 20

// ErrResponseTooLarge is returned when a search page exceeds maxResponseBody.
var ErrResponseTooLarge = errors.New("jira search response exceeds size limit")

// HTTPClient implements Searcher against the Jira REST API.
type HTTPClient struct {
	endpoint  string
	http      *http.Client
	inspector jiraerror.Inspector
	maxBody   int64
}

// NewHTTPClient creates a client for the Jira instance at baseURL using basic
// auth with username and API token. Every request is bounded by timeout.
func NewHTTPClient(baseURL, username, token string, timeout time.Duration) *HTTPClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		endpoint: strings.TrimRight(baseURL, "/") + SearchPath,
		http: &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				username: username,
				token:    token,
				base:     transport,
			},
		},
		inspector: jiraerror.NewErrorChainInspector(jiraerror.NewInspector()),
		maxBody:   maxResponseBody,
	}
}

// Search posts req to the search endpoint and decodes one page.
func (c *HTTPClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	// The body is read in full before decoding so a dropped connection is a
	// transport failure, not a malformed response.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, readError(req.StartAt, err)
	}
	if int64(len(raw)) > c.maxBody {
		return nil, fmt.Errorf("page at startAt=%d: %w", req.StartAt, ErrResponseTooLarge)
	}

	var page SearchResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode search response at startAt=%d: %w: %w",
			req.StartAt, relayerrors.ErrDecode, err)
	}

	return &page, nil
}

// mapError attaches the sentinel matching a transport failure.
func (c *HTTPClient) mapError(err error) error {
	if sentinel := jiraerror.Sentinel(c.inspector, err); sentinel != nil {
		return fmt.Errorf("jira search request failed: %w: %w", sentinel, err)
	}
	return fmt.Errorf("jira search request failed: %w", err)
}

// readError wraps a failure while reading a response body. The status line
// has already succeeded, so any read failure is a network failure.
func readError(startAt int, err error) error {
	return fmt.Errorf("failed to read search response at startAt=%d: %w: %w",
		startAt, relayerrors.ErrNetworkFailure, err)
}
