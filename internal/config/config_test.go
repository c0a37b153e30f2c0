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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
)

var envKeys = []string{
	"JIRA_URL", "JIRA_USERNAME", "USERNAME", "JIRA_API_TOKEN", "API_TOKEN",
	"JIRA_PROJECT", "JIRA_ISSUE_TYPE", "JIRA_COMPANY_FIELD", "JIRA_PAGE_SIZE",
	"JIRA_TIMEOUT", "TIME_FOR_NEXT_REQUEST", "WINDOW_MODE", "METRICS_ADDR",
	"LOG_LEVEL", "LOG_OUTPUT", "LOG_TIME_FORMAT", "LOG_CONSOLE",
}

// isolate clears every variable the loader reads and moves the test into an
// empty working directory and HOME so no stray config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Jira.BaseURL != "https://mluvii.atlassian.net" {
		t.Errorf("BaseURL = %s, want https://mluvii.atlassian.net", cfg.Jira.BaseURL)
	}
	if cfg.Jira.Project != "HD" || cfg.Jira.IssueType != "Bug" {
		t.Errorf("filter = %s/%s, want HD/Bug", cfg.Jira.Project, cfg.Jira.IssueType)
	}
	if cfg.Jira.CompanyField != "customfield_10002" {
		t.Errorf("CompanyField = %s, want customfield_10002", cfg.Jira.CompanyField)
	}
	if cfg.Jira.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.Jira.PageSize)
	}
	if cfg.Jira.CountMaxResults != 1000 {
		t.Errorf("CountMaxResults = %d, want 1000", cfg.Jira.CountMaxResults)
	}
	if cfg.Poll.Interval() != 60*time.Second {
		t.Errorf("Interval = %s, want 60s", cfg.Poll.Interval())
	}
	if cfg.Poll.WindowMode != WindowModeFixed {
		t.Errorf("WindowMode = %s, want %s", cfg.Poll.WindowMode, WindowModeFixed)
	}
	if cfg.Metrics.ListenAddr != ":8000" {
		t.Errorf("ListenAddr = %s, want :8000", cfg.Metrics.ListenAddr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := isolate(t)
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
jira:
  base_url: https://jira.example.com/
  username: bot@example.com
  api_token: file-token
  project: OPS
  company_field: customfield_20000
  page_size: 50
  timeout: 5s

poll:
  interval_seconds: 120
  window_mode: per_cycle

metrics:
  listen_addr: 127.0.0.1:9100

log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Jira.BaseURL != "https://jira.example.com" {
		t.Errorf("BaseURL = %s, want trailing slash trimmed", cfg.Jira.BaseURL)
	}
	if cfg.Jira.Project != "OPS" {
		t.Errorf("Project = %s, want OPS", cfg.Jira.Project)
	}
	if cfg.Jira.IssueType != "Bug" {
		t.Errorf("IssueType = %s, want default Bug", cfg.Jira.IssueType)
	}
	if cfg.Jira.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.Jira.PageSize)
	}
	if cfg.Jira.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.Jira.Timeout)
	}
	if cfg.Poll.IntervalSeconds != 120 {
		t.Errorf("IntervalSeconds = %d, want 120", cfg.Poll.IntervalSeconds)
	}
	if cfg.Poll.WindowMode != WindowModePerCycle {
		t.Errorf("WindowMode = %s, want per_cycle", cfg.Poll.WindowMode)
	}
	if cfg.Metrics.ListenAddr != "127.0.0.1:9100" {
		t.Errorf("ListenAddr = %s, want 127.0.0.1:9100", cfg.Metrics.ListenAddr)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tmpDir := isolate(t)
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("jira:\n  project: FILE\n"), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("JIRA_URL", "https://env.example.com")
	t.Setenv("USERNAME", "env-user")
	t.Setenv("API_TOKEN", "env-token")
	t.Setenv("JIRA_PROJECT", "ENV")
	t.Setenv("TIME_FOR_NEXT_REQUEST", "15")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("METRICS_ADDR", ":9999")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Jira.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %s, want https://env.example.com", cfg.Jira.BaseURL)
	}
	if cfg.Jira.Username != "env-user" || cfg.Jira.APIToken != "env-token" {
		t.Errorf("credentials = %s/%s, want env-user/env-token", cfg.Jira.Username, cfg.Jira.APIToken)
	}
	if cfg.Jira.Project != "ENV" {
		t.Errorf("Project = %s, env must win over file", cfg.Jira.Project)
	}
	if cfg.Poll.IntervalSeconds != 15 {
		t.Errorf("IntervalSeconds = %d, want 15", cfg.Poll.IntervalSeconds)
	}
	if cfg.Metrics.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %s, want :9999", cfg.Metrics.ListenAddr)
	}
	if cfg.Log.Level != "WARNING" {
		t.Errorf("Log.Level = %s, want WARNING", cfg.Log.Level)
	}
}

func TestPrefixedCredentialsWin(t *testing.T) {
	isolate(t)
	t.Setenv("USERNAME", "shell-user")
	t.Setenv("JIRA_USERNAME", "jira-user")
	t.Setenv("API_TOKEN", "plain")
	t.Setenv("JIRA_API_TOKEN", "prefixed")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Jira.Username != "jira-user" || cfg.Jira.APIToken != "prefixed" {
		t.Errorf("credentials = %s/%s, want jira-user/prefixed", cfg.Jira.Username, cfg.Jira.APIToken)
	}
}

func TestDotEnvFile(t *testing.T) {
	dir := isolate(t)
	content := "USERNAME=dotenv-user\nAPI_TOKEN=dotenv-token\nTIME_FOR_NEXT_REQUEST=30\n"
	if err := os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	// godotenv.Load only sets variables that are unset; isolate() set them empty.
	for _, key := range []string{"USERNAME", "API_TOKEN", "TIME_FOR_NEXT_REQUEST"} {
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for _, key := range []string{"USERNAME", "API_TOKEN", "TIME_FOR_NEXT_REQUEST"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Jira.Username != "dotenv-user" {
		t.Errorf("Username = %s, want dotenv-user", cfg.Jira.Username)
	}
	if cfg.Poll.IntervalSeconds != 30 {
		t.Errorf("IntervalSeconds = %d, want 30", cfg.Poll.IntervalSeconds)
	}
}

func TestDefaultConfigLocation(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".sirseer-exporter.yaml"), []byte("jira:\n  issue_type: Incident\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Jira.IssueType != "Incident" {
		t.Errorf("IssueType = %s, want Incident", cfg.Jira.IssueType)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{
			name:    "missing explicit file",
			file:    "missing.yaml",
			wantErr: "failed to load config file",
		},
		{
			name:    "invalid interval",
			env:     map[string]string{"TIME_FOR_NEXT_REQUEST": "soon"},
			wantErr: "TIME_FOR_NEXT_REQUEST",
		},
		{
			name:    "non-positive page size",
			env:     map[string]string{"JIRA_PAGE_SIZE": "0"},
			wantErr: "JIRA_PAGE_SIZE",
		},
		{
			name:    "bad timeout",
			env:     map[string]string{"JIRA_TIMEOUT": "thirty"},
			wantErr: "JIRA_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(dir, tt.file)
			}
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Jira.Username = "bot"
		cfg.Jira.APIToken = "token"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.Jira.BaseURL = "" }, wantErr: true},
		{name: "base url without scheme", mutate: func(c *Config) { c.Jira.BaseURL = "jira.example.com" }, wantErr: true},
		{name: "missing token", mutate: func(c *Config) { c.Jira.APIToken = "" }, wantErr: true},
		{name: "missing username", mutate: func(c *Config) { c.Jira.Username = "" }, wantErr: true},
		{name: "empty project", mutate: func(c *Config) { c.Jira.Project = "" }, wantErr: true},
		{name: "empty company field", mutate: func(c *Config) { c.Jira.CompanyField = "" }, wantErr: true},
		{name: "page size over cap", mutate: func(c *Config) { c.Jira.PageSize = MaxPageSize + 1 }, wantErr: true},
		{name: "page size at cap", mutate: func(c *Config) { c.Jira.PageSize = MaxPageSize }},
		{name: "zero count cap", mutate: func(c *Config) { c.Jira.CountMaxResults = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Jira.Timeout = 0 }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.Poll.IntervalSeconds = 0 }, wantErr: true},
		{name: "unknown window mode", mutate: func(c *Config) { c.Poll.WindowMode = "hourly" }, wantErr: true},
		{name: "empty listen addr", mutate: func(c *Config) { c.Metrics.ListenAddr = "" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "chatty" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, relayerrors.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want wrapping ErrInvalidConfig", err)
			}
		})
	}
}
