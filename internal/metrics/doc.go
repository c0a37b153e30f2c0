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

// Package metrics publishes bug counts as Prometheus gauges and serves them
// over HTTP.
//
// Gauges are last-write-wins. A company seen once keeps its series for the
// lifetime of the process, holding the last value published for it, even when
// later cycles no longer report it. Publisher tracks which companies are stale
// in that sense so the condition is visible without dropping data.
package metrics
