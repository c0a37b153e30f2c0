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

// Package aggregate turns a list of issues into per-company bug counts.
//
// Every issue contributes to at least one bucket. An issue without a
// company, or with a null or empty company list, counts once under
// OthersLabel. An issue listing several companies counts once per entry, so
// the per-company sum can exceed the number of issues.
package aggregate
