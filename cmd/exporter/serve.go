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
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/config"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/logger"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/metrics"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/output"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/poller"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/report"
	"github.com/sirseerhq/sirseer-jira-exporter/pkg/version"
)

const shutdownTimeout = 5 * time.Second

// serveOptions are the serve-only flags.
type serveOptions struct {
	interval  int
	listen    string
	reportLog string

	// ready, when set, receives the bound metrics address.
	ready chan<- string
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll Jira on an interval and serve Prometheus metrics",
		Long: `Poll Jira on an interval and serve the results on /metrics.

A cycle runs immediately, then again each time the interval has passed since
the previous cycle finished. Failed cycles are logged and do not stop the
exporter; it runs until interrupted.

Endpoints:
  /metrics  Prometheus exposition
  /healthz  liveness probe
  /status   JSON report of the last cycle`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.load(cmd.Flags())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				cfg.Poll.IntervalSeconds = opts.interval
			}
			if cmd.Flags().Changed("listen") {
				cfg.Metrics.ListenAddr = opts.listen
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, opts)
		},
	}

	cmd.Flags().IntVar(&opts.interval, "interval", 0, "Seconds to wait between cycles (overrides TIME_FOR_NEXT_REQUEST)")
	cmd.Flags().StringVar(&opts.listen, "listen", "", "Metrics listen address (overrides METRICS_ADDR)")
	cmd.Flags().StringVar(&opts.reportLog, "report-log", "", "Append every cycle report to this NDJSON file")

	return cmd
}

// statusPayload is served at /status.
type statusPayload struct {
	State      string           `json:"state"`
	WindowMode string           `json:"window_mode"`
	Cycles     int              `json:"cycles"`
	Failed     int              `json:"failed_cycles"`
	LastCycle  *report.Report   `json:"last_cycle"`
	Published  metrics.Snapshot `json:"published"`
}

// runServe binds the metrics endpoint, then polls until ctx is cancelled.
// A bind failure is returned before any cycle runs.
func runServe(ctx context.Context, cfg *config.Config, opts *serveOptions) error {
	log := logger.WithComponent("exporter")

	exp, err := newExporter(cfg, poller.RealClock(), log)
	if err != nil {
		return err
	}

	schedOpts := []poller.Option{
		poller.WithLogger(logger.WithComponent("scheduler")),
		poller.WithObserver(exp.sink),
	}
	if opts.reportLog != "" {
		reportLog, err := output.NewAppendWriter(opts.reportLog)
		if err != nil {
			return err
		}
		defer reportLog.Close()
		schedOpts = append(schedOpts, poller.WithReportHook(appendReport(reportLog, log)))
	}

	scheduler := poller.NewScheduler(exp.cycle, cfg.Poll.Interval(), schedOpts...)

	status := func() interface{} {
		last := scheduler.LastReport()
		if last == nil {
			return nil
		}
		cycles, failed := scheduler.Counts()
		return statusPayload{
			State:      scheduler.State().String(),
			WindowMode: exp.windows.Mode(),
			Cycles:     cycles,
			Failed:     failed,
			LastCycle:  last,
			Published:  exp.publisher.Snapshot(),
		}
	}

	srv, err := metrics.Listen(cfg.Metrics.ListenAddr, exp.registry, status, logger.WithComponent("http"))
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	if opts.ready != nil {
		opts.ready <- srv.Addr()
	}

	log.Info().
		Str("version", version.Version).
		Str("jira", cfg.Jira.BaseURL).
		Str("project", cfg.Jira.Project).
		Str("window_mode", cfg.Poll.WindowMode).
		Msg("Exporter started")

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Run(pollCtx)
		close(schedulerDone)
	}()

	var runErr error
	select {
	case <-schedulerDone:
	case err := <-serveErr:
		// The endpoint died underneath a running exporter; stop polling too.
		runErr = err
		stopPolling()
		<-schedulerDone
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Err(err).Msg("Metrics server shutdown")
	}

	log.Info().Msg("Exporter stopped")
	return runErr
}

// appendReport returns a report hook that writes every cycle report to w.
// Write failures are logged and never stop the scheduler.
func appendReport(w output.RecordWriter, log zerolog.Logger) func(*report.Report) {
	return func(r *report.Report) {
		if err := w.Write(r); err != nil {
			log.Warn().Err(err).Str("cycle_id", r.CycleID).Msg("Failed to append cycle report")
		}
	}
}
