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

// Package poller runs the export cycle on a fixed interval.
//
// A cycle queries Jira for the bug total, publishes it, fetches the matching
// issues page by page, aggregates them by company and publishes those counts.
// The Scheduler starts the next cycle only after the previous one returned and
// the interval elapsed, so cycles never overlap. Cycle errors and panics are
// logged and counted; the loop ends only when its context is cancelled.
package poller
