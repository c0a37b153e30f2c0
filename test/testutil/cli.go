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

package testutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"
)

// cliTimeout bounds a single exporter invocation.
const cliTimeout = 30 * time.Second

var exporterBinary = struct {
	once sync.Once
	path string
	err  error
	log  []byte
}{}

// CLIRun is the outcome of one exporter invocation.
type CLIRun struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// BuildBinary compiles cmd/exporter into a temporary directory. The build
// happens once per test binary; later calls reuse the result.
func BuildBinary(t *testing.T) string {
	t.Helper()

	b := &exporterBinary
	b.once.Do(func() {
		root, err := moduleRoot()
		if err != nil {
			b.err = err
			return
		}
		out, err := os.MkdirTemp("", "jira-exporter-bin")
		if err != nil {
			b.err = err
			return
		}
		b.path = filepath.Join(out, "jira-exporter")

		build := exec.Command("go", "build", "-o", b.path, "./cmd/exporter")
		build.Dir = root
		b.log, b.err = build.CombinedOutput()
	})

	if b.err != nil {
		t.Fatalf("building exporter: %v\n%s", b.err, b.log)
	}
	return b.path
}

// RunCLI runs the exporter with args in dir. The child sees only PATH, a
// HOME pointing at dir, and env, so Jira settings from the developer's shell
// never reach it.
func RunCLI(t *testing.T, dir string, args []string, env map[string]string) CLIRun {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, BuildBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = isolatedEnv(dir, env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	run := CLIRun{}
	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		run.ExitCode = exitErr.ExitCode()
	default:
		t.Fatalf("exporter %v did not run: %v", args, err)
	}

	run.Stdout = stdout.String()
	run.Stderr = stderr.String()
	return run
}

// AssertExitCode fails the test when run exited with anything but want.
func AssertExitCode(t *testing.T, run CLIRun, want int) {
	t.Helper()
	if run.ExitCode != want {
		t.Errorf("exit code = %d, want %d\nstderr:\n%s", run.ExitCode, want, run.Stderr)
	}
}

func isolatedEnv(home string, extra map[string]string) []string {
	env := []string{"PATH=" + os.Getenv("PATH"), "HOME=" + home}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// moduleRoot is two directories above this file.
func moduleRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("cannot locate testutil source")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		return "", err
	}
	return root, nil
}
