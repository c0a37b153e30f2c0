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
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
)

// DefaultPageSize is used when a request does not set MaxResults.
const DefaultPageSize = 100

// countFields keeps the total-count request as small as possible.
var countFields = []string{"id", "key"}

// FetchResult is what a fetch gathered before it finished or was interrupted.
type FetchResult struct {
	Issues []Issue
	// Total is the match count the server reported on the last page received.
	Total int
	// Pages is the number of pages received; Requests includes the failed one.
	Pages    int
	Requests int
	// Interrupted holds the transport or status error that stopped pagination.
	Interrupted error
}

// Partial reports whether pagination stopped before the last page.
func (r *FetchResult) Partial() bool {
	return r.Interrupted != nil
}

// Fetcher drives paginated searches against a Searcher.
//
// Failures are at-most-once: a transport or status error on any page is
// logged, pagination stops, and the issues already gathered are returned
// without an error. Only a malformed response is reported as an error.
type Fetcher struct {
	searcher Searcher
	log      zerolog.Logger
}

// NewFetcher creates a Fetcher over searcher.
func NewFetcher(searcher Searcher, log zerolog.Logger) *Fetcher {
	return &Fetcher{searcher: searcher, log: log}
}

// FetchAll retrieves every issue matching req, starting from offset 0.
// After each page the offset advances by the page size the server applied,
// and fetching ends once offset + page size reaches the reported total.
func (f *Fetcher) FetchAll(ctx context.Context, req SearchRequest) (*FetchResult, error) {
	req.StartAt = 0
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultPageSize
	}

	result := &FetchResult{}

	for {
		result.Requests++
		page, err := f.searcher.Search(ctx, req)
		if err != nil {
			if errors.Is(err, relayerrors.ErrDecode) {
				return result, fmt.Errorf("page at startAt=%d: %w", req.StartAt, err)
			}
			f.log.Error().
				Err(err).
				Int("start_at", req.StartAt).
				Int("issues_so_far", len(result.Issues)).
				Msg("Search request failed, stopping pagination")
			result.Interrupted = err
			return result, nil
		}

		result.Pages++
		result.Total = page.Total
		result.Issues = append(result.Issues, page.Issues...)

		step := page.MaxResults
		if step <= 0 {
			step = len(page.Issues)
		}

		f.log.Debug().
			Int("start_at", req.StartAt).
			Int("page_size", step).
			Int("returned", len(page.Issues)).
			Int("total", page.Total).
			Msg("Fetched search page")

		if len(page.Issues) == 0 || req.StartAt+step >= page.Total {
			return result, nil
		}

		req.StartAt += step
	}
}

// CountTotal runs a single search for jql and returns the total the server
// reports. The total is accurate even when it exceeds maxResults; issues in
// the response are discarded. A failed request yields a zero total.
func (f *Fetcher) CountTotal(ctx context.Context, jql string, maxResults int) (*FetchResult, error) {
	req := NewSearchRequest(jql, maxResults, countFields...)
	result := &FetchResult{Requests: 1}

	page, err := f.searcher.Search(ctx, req)
	if err != nil {
		if errors.Is(err, relayerrors.ErrDecode) {
			return result, fmt.Errorf("total count: %w", err)
		}
		f.log.Error().Err(err).Msg("Total count request failed")
		result.Interrupted = err
		return result, nil
	}

	result.Pages = 1
	result.Total = page.Total

	return result, nil
}
