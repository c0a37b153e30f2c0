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

// Package config types define the configuration structures used throughout
// sirseer-jira-exporter. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import (
	"time"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/logger"
)

// Window modes control when the search date window is computed.
const (
	// WindowModeFixed computes the window once at process start.
	WindowModeFixed = "fixed"
	// WindowModePerCycle recomputes the window at the start of every cycle.
	WindowModePerCycle = "per_cycle"
)

// MaxPageSize is the hard per-request cap Jira enforces on maxResults.
const MaxPageSize = 1000

// Config represents the complete configuration for sirseer-jira-exporter.
// It is built once at startup and passed by pointer to each component;
// nothing mutates it afterwards.
type Config struct {
	Jira    JiraConfig    `yaml:"jira"`
	Poll    PollConfig    `yaml:"poll"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     logger.Config `yaml:"log"`
}

// JiraConfig contains the Jira endpoint, credentials and the search filter
// used to select issues.
type JiraConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`

	Project      string `yaml:"project"`
	IssueType    string `yaml:"issue_type"`
	CompanyField string `yaml:"company_field"`

	// PageSize is the maxResults requested per page while enumerating issues.
	PageSize int `yaml:"page_size"`
	// CountMaxResults is the maxResults used by the single total-count request.
	CountMaxResults int `yaml:"count_max_results"`
	// Timeout bounds every outbound HTTP request.
	Timeout time.Duration `yaml:"timeout"`
}

// PollConfig controls the scheduler.
type PollConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	WindowMode      string `yaml:"window_mode"`
}

// Interval returns the wait between the end of one cycle and the start of the next.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// MetricsConfig controls the exposition endpoint.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns a Config with the defaults the exporter has always
// shipped with: the HD project, Bug issues, the company custom field and a
// sixty second poll interval.
func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			BaseURL:         "https://mluvii.atlassian.net",
			Project:         "HD",
			IssueType:       "Bug",
			CompanyField:    "customfield_10002",
			PageSize:        100,
			CountMaxResults: 1000,
			Timeout:         30 * time.Second,
		},
		Poll: PollConfig{
			IntervalSeconds: 60,
			WindowMode:      WindowModeFixed,
		},
		Metrics: MetricsConfig{
			ListenAddr: ":8000",
		},
		Log: logger.DefaultConfig(),
	}
}
