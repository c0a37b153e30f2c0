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

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer writes NDJSON records to an io.Writer or file.
// It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	encoder   *json.Encoder
	count     int
	syncFunc  func() error
	closeFunc func() error
}

// NewWriter creates a writer over w. The caller owns w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		encoder: json.NewEncoder(w),
	}
}

// NewAppendWriter opens filename for appending, creating it if needed.
// Records from earlier runs are kept.
func NewAppendWriter(filename string) (*Writer, error) {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report log: %w", err)
	}

	return &Writer{
		encoder:   json.NewEncoder(file),
		syncFunc:  file.Sync,
		closeFunc: file.Close,
	}, nil
}

// Write encodes record as one line and, for files, syncs it to disk.
func (w *Writer) Write(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.count++

	if w.syncFunc != nil {
		if err := w.syncFunc(); err != nil {
			return fmt.Errorf("failed to sync record: %w", err)
		}
	}
	return nil
}

// Count returns the number of records written by this Writer.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the file opened by NewAppendWriter. It is a no-op for
// writers created with NewWriter.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		err := w.closeFunc()
		w.closeFunc = nil
		w.syncFunc = nil
		return err
	}
	return nil
}
