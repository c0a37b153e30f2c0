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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
	"github.com/sirseerhq/sirseer-jira-exporter/pkg/version"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "sirseer-jira-exporter",
		Short: "Export Jira bug counts as Prometheus metrics",
		Long: `SirSeer Jira Exporter polls the Jira search API for open bugs and exposes
the total and a per-company breakdown as Prometheus gauges.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	opts.bind(rootCmd)

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newOnceCommand(opts))

	return rootCmd
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, relayerrors.ErrMetricsBind) {
		return 4
	}

	if errors.Is(err, relayerrors.ErrInvalidCredentials) ||
		errors.Is(err, relayerrors.ErrNotFound) ||
		errors.Is(err, relayerrors.ErrRateLimit) ||
		errors.Is(err, relayerrors.ErrInvalidConfig) {
		return 2 // Authentication/authorization/configuration errors
	}

	if errors.Is(err, relayerrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
