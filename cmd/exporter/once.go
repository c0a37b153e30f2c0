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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/config"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/logger"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/poller"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/report"
)

func newOnceCommand(global *globalOptions) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single cycle and print its report",
		Long: `Run a single export cycle against Jira and print the cycle report as JSON.

No metrics endpoint is started. The report lists the total, the per-company
counts and pagination statistics. The command fails when the cycle could
not complete, with the exit code of the underlying failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load(cmd.Flags())
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg, outputFile, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&outputFile, "output", "", "Output file path (default: stdout)")

	return cmd
}

// runOnce runs one cycle and writes its report to outputFile, or to stdout
// when outputFile is empty. The report is written even when the cycle fails.
func runOnce(ctx context.Context, cfg *config.Config, outputFile string, stdout io.Writer) error {
	log := logger.WithComponent("exporter")

	exp, err := newExporter(cfg, poller.RealClock(), log)
	if err != nil {
		return err
	}

	rep, cycleErr := exp.cycle.RunCycle(ctx)

	if outputFile == "" {
		err = report.WriteJSON(stdout, rep)
	} else {
		err = report.Save(rep, outputFile)
		if err == nil {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", outputFile)
		}
	}

	switch {
	case cycleErr != nil:
		return cycleErr
	case rep.Interrupted != nil:
		return fmt.Errorf("cycle incomplete: %w", rep.Interrupted)
	default:
		return err
	}
}
