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

import "context"

// Searcher defines the interface for running one page of a Jira search.
// This abstraction allows for easy testing and potential future implementations
// (e.g., the v3 endpoint or a cached client).
type Searcher interface {
	// Search executes req and returns the page it selects. Implementations
	// return an error wrapping ErrDecode when the body cannot be parsed, a
	// *StatusError for non-success responses, and a transport error otherwise.
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}
