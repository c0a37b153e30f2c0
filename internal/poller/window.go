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

package poller

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/config"
	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/jira"
)

// WindowProvider hands out the created-date window each cycle queries.
//
// In fixed mode the window is computed once, when the provider is created,
// and never moves. Once the calendar date passes the window's start a
// warning is logged, once per day, so the stale window is visible.
// In per_cycle mode every call returns the window for the current day.
type WindowProvider struct {
	mode  string
	clock Clock
	log   zerolog.Logger

	mu         sync.Mutex
	fixed      jira.DateWindow
	lastWarned string
}

// NewWindowProvider creates a provider for mode.
func NewWindowProvider(mode string, clock Clock, log zerolog.Logger) (*WindowProvider, error) {
	switch mode {
	case config.WindowModeFixed, config.WindowModePerCycle:
	default:
		return nil, fmt.Errorf("%w: unknown window mode %q", relayerrors.ErrInvalidConfig, mode)
	}

	return &WindowProvider{
		mode:  mode,
		clock: clock,
		log:   log,
		fixed: jira.DayWindow(clock.Now()),
	}, nil
}

// Mode returns the configured window mode.
func (p *WindowProvider) Mode() string {
	return p.mode
}

// Window returns the window for the cycle starting now.
func (p *WindowProvider) Window() jira.DateWindow {
	now := p.clock.Now()
	if p.mode == config.WindowModePerCycle {
		return jira.DayWindow(now)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	today := now.In(p.fixed.From.Location()).Format(jira.DateLayout)
	if today > p.fixed.From.Format(jira.DateLayout) && today != p.lastWarned {
		p.lastWarned = today
		p.log.Warn().
			Str("window", p.fixed.String()).
			Str("today", today).
			Bool("covers_today", p.fixed.Contains(now)).
			Msg("Query window was fixed at startup and the date has moved past its start; set window mode to per_cycle to follow the calendar")
	}

	return p.fixed
}
