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

// Package jira provides the Jira REST search client and the paginated fetcher
// that drives it.
//
// The package is organized around the Searcher interface, the single
// "search(query) -> page" contract everything else depends on:
//   - HTTPClient implements Searcher against POST /rest/api/2/search with basic auth
//   - MockSearcher implements Searcher in memory for tests
//   - Fetcher walks the pages of a search and tolerates a failing page by
//     returning what it already has
//
// Query construction lives in query.go: a DateWindow plus a Filter become a
// JQL expression, which NewSearchRequest wraps into the request body.
//
// Example usage:
//
//	client := jira.NewHTTPClient(cfg.Jira.BaseURL, cfg.Jira.Username, cfg.Jira.APIToken, cfg.Jira.Timeout)
//	fetcher := jira.NewFetcher(client, log)
//	jql := jira.BuildJQL(jira.Filter{Project: "HD", IssueType: "Bug"}, jira.DayWindow(time.Now()))
//	result, err := fetcher.FetchAll(ctx, jira.NewSearchRequest(jql, 100, "customfield_10002"))
package jira
