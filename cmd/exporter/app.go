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
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/config"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/jira"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/logger"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/metrics"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/poller"
)

// globalOptions are the flags shared by every subcommand. Flags take
// precedence over the environment and the config file, but only when set.
type globalOptions struct {
	configPath string
	logLevel   string
	windowMode string
	pageSize   int
}

func (o *globalOptions) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "Path to a YAML config file (default: .sirseer-exporter.yaml or ~/.sirseer/exporter.yaml)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&o.windowMode, "window-mode", "", "Date window mode: fixed or per_cycle")
	flags.IntVar(&o.pageSize, "page-size", 0, "Issues requested per search page (1-1000)")
}

// load builds the effective configuration and initializes logging.
func (o *globalOptions) load(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("window-mode") {
		cfg.Poll.WindowMode = o.windowMode
	}
	if flags.Changed("page-size") {
		cfg.Jira.PageSize = o.pageSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// exporter is the wired set of components a cycle needs.
type exporter struct {
	cfg       *config.Config
	registry  *prometheus.Registry
	sink      *metrics.PrometheusSink
	publisher *metrics.Publisher
	cycle     *poller.Cycle
	windows   *poller.WindowProvider
}

func newExporter(cfg *config.Config, clock poller.Clock, log zerolog.Logger) (*exporter, error) {
	registry := metrics.NewRegistry()
	sink, err := metrics.NewPrometheusSink(registry)
	if err != nil {
		return nil, err
	}

	windows, err := poller.NewWindowProvider(cfg.Poll.WindowMode, clock, log.With().Str("component", "window").Logger())
	if err != nil {
		return nil, err
	}

	client := jira.NewHTTPClient(cfg.Jira.BaseURL, cfg.Jira.Username, cfg.Jira.APIToken, cfg.Jira.Timeout)
	fetcher := jira.NewFetcher(client, log.With().Str("component", "fetcher").Logger())
	publisher := metrics.NewPublisher(sink)

	return &exporter{
		cfg:       cfg,
		registry:  registry,
		sink:      sink,
		publisher: publisher,
		windows:   windows,
		cycle:     poller.NewCycle(cfg.Jira, fetcher, publisher, windows, clock, log.With().Str("component", "cycle").Logger()),
	}, nil
}
