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

// Package config provides configuration management for sirseer-jira-exporter
// with support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags (applied by the CLI after loading)
//  2. Environment variables (a .env file in the working directory is read first)
//  3. Configuration file
//  4. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/logger"
)

// DotEnvFile is the optional file of KEY=value pairs loaded before reading
// environment variables. Variables already set in the environment win.
const DotEnvFile = ".env"

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .sirseer-exporter.yaml (current directory)
//   - .sirseer-exporter.yml (current directory)
//   - ~/.sirseer/exporter.yaml
//   - ~/.sirseer/exporter.yml
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".sirseer-exporter.yaml",
			".sirseer-exporter.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "exporter.yaml"),
			filepath.Join(os.Getenv("HOME"), ".sirseer", "exporter.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Jira.BaseURL = strings.TrimRight(cfg.Jira.BaseURL, "/")

	return cfg, nil
}

// loadDotEnv reads path into the process environment when it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("JIRA_URL"); v != "" {
		cfg.Jira.BaseURL = v
	}
	if v := firstEnv("JIRA_USERNAME", "USERNAME"); v != "" {
		cfg.Jira.Username = v
	}
	if v := firstEnv("JIRA_API_TOKEN", "API_TOKEN"); v != "" {
		cfg.Jira.APIToken = v
	}
	if v := os.Getenv("JIRA_PROJECT"); v != "" {
		cfg.Jira.Project = v
	}
	if v := os.Getenv("JIRA_ISSUE_TYPE"); v != "" {
		cfg.Jira.IssueType = v
	}
	if v := os.Getenv("JIRA_COMPANY_FIELD"); v != "" {
		cfg.Jira.CompanyField = v
	}
	if v := os.Getenv("JIRA_PAGE_SIZE"); v != "" {
		size, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("JIRA_PAGE_SIZE: %w", err)
		}
		cfg.Jira.PageSize = size
	}
	if v := os.Getenv("JIRA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JIRA_TIMEOUT: %w", err)
		}
		cfg.Jira.Timeout = d
	}

	if v := os.Getenv("TIME_FOR_NEXT_REQUEST"); v != "" {
		seconds, err := parsePositiveInt(v)
		if err != nil {
			return fmt.Errorf("TIME_FOR_NEXT_REQUEST: %w", err)
		}
		cfg.Poll.IntervalSeconds = seconds
	}
	if v := os.Getenv("WINDOW_MODE"); v != "" {
		cfg.Poll.WindowMode = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Log.Output = v
	}
	if v := os.Getenv("LOG_TIME_FORMAT"); v != "" {
		cfg.Log.TimeFormat = v
	}
	if v := os.Getenv("LOG_CONSOLE"); v != "" {
		cfg.Log.Console = parseBool(v)
	}

	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// Validate checks if the configuration contains valid values. Credentials are
// required because every search is authenticated; everything else must be
// in range for the Jira API.
func (c *Config) Validate() error {
	if c.Jira.BaseURL == "" {
		return fmt.Errorf("jira base URL cannot be empty: %w", relayerrors.ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Jira.BaseURL, "http://") && !strings.HasPrefix(c.Jira.BaseURL, "https://") {
		return fmt.Errorf("jira base URL %q must start with http:// or https://: %w", c.Jira.BaseURL, relayerrors.ErrInvalidConfig)
	}
	if c.Jira.Username == "" || c.Jira.APIToken == "" {
		return fmt.Errorf("jira credentials not found. Set USERNAME and API_TOKEN: %w", relayerrors.ErrInvalidConfig)
	}
	if c.Jira.Project == "" || c.Jira.IssueType == "" {
		return fmt.Errorf("jira project and issue type cannot be empty: %w", relayerrors.ErrInvalidConfig)
	}
	if c.Jira.CompanyField == "" {
		return fmt.Errorf("jira company field cannot be empty: %w", relayerrors.ErrInvalidConfig)
	}
	if c.Jira.PageSize <= 0 || c.Jira.PageSize > MaxPageSize {
		return fmt.Errorf("page size %d outside 1..%d: %w", c.Jira.PageSize, MaxPageSize, relayerrors.ErrInvalidConfig)
	}
	if c.Jira.CountMaxResults <= 0 || c.Jira.CountMaxResults > MaxPageSize {
		return fmt.Errorf("count max results %d outside 1..%d: %w", c.Jira.CountMaxResults, MaxPageSize, relayerrors.ErrInvalidConfig)
	}
	if c.Jira.Timeout <= 0 {
		return fmt.Errorf("jira timeout must be positive, got: %s: %w", c.Jira.Timeout, relayerrors.ErrInvalidConfig)
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %d: %w", c.Poll.IntervalSeconds, relayerrors.ErrInvalidConfig)
	}
	if c.Poll.WindowMode != WindowModeFixed && c.Poll.WindowMode != WindowModePerCycle {
		return fmt.Errorf("unknown window mode %q (want %s or %s): %w",
			c.Poll.WindowMode, WindowModeFixed, WindowModePerCycle, relayerrors.ErrInvalidConfig)
	}
	if c.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics listen address cannot be empty: %w", relayerrors.ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", err, relayerrors.ErrInvalidConfig)
	}
	return nil
}
