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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidCredentials indicates Jira rejected the username/API token pair.
	// Maps to exit code 2.
	ErrInvalidCredentials = errors.New("invalid jira credentials")

	// ErrNotFound indicates the search endpoint or project does not exist.
	// Maps to exit code 2.
	ErrNotFound = errors.New("jira resource not found")

	// ErrRateLimit indicates Jira throttled the request.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("jira rate limit exceeded")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrUnexpectedStatus indicates Jira answered with a non-success status
	// that has no more specific sentinel.
	ErrUnexpectedStatus = errors.New("unexpected jira response status")

	// ErrDecode indicates a response body could not be parsed.
	// Treated as an unexpected failure of the whole cycle.
	ErrDecode = errors.New("malformed jira response")

	// ErrInvalidConfig indicates the loaded configuration failed validation.
	// Maps to exit code 2.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMetricsBind indicates the metrics endpoint could not listen on its address.
	// Maps to exit code 4.
	ErrMetricsBind = errors.New("metrics endpoint failed to bind")
)
