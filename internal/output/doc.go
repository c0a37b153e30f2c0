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

// Package output appends cycle reports to a Newline Delimited JSON log.
//
// Each line is one complete JSON object, so the log can be tailed, grepped
// or loaded with jq while the exporter keeps appending to it. Records are
// written as soon as they arrive and files are synced after every record.
//
// Example usage:
//
//	w, err := output.NewAppendWriter("cycles.ndjson")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Write(rep); err != nil {
//	    log.Warn().Err(err).Msg("Failed to record cycle report")
//	}
package output
