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

// Package main implements the sirseer-jira-exporter command-line interface.
// The exporter polls Jira for open bugs and publishes the counts as
// Prometheus gauges, both in total and broken down by the company custom
// field.
//
// The CLI supports:
//   - A long-running serve mode that polls on an interval and serves /metrics
//   - A single-shot once mode that runs one cycle and prints its report
//   - Configuration via YAML file, environment variables, .env and flags
//   - Exit codes suitable for scripting
//
// Usage:
//
//	sirseer-jira-exporter serve [flags]
//	sirseer-jira-exporter once [flags]
//
// Example:
//
//	export USERNAME=bot@example.com API_TOKEN=...
//	sirseer-jira-exporter serve --interval 60 --listen :8000
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication, authorization or configuration error
//   - 3: Network error
//   - 4: Metrics endpoint could not bind its address
package main
