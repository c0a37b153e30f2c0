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
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/jiraerror"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/report"
	"github.com/sirseerhq/sirseer-jira-exporter/pkg/version"
)

// State is the scheduler's position in its loop.
type State int

const (
	// StateIdle means the scheduler is waiting for the next cycle.
	StateIdle State = iota
	// StateRunning means a cycle is in progress.
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Scheduler runs a Runner repeatedly.
type Scheduler struct {
	runner    Runner
	interval  time.Duration
	clock     Clock
	log       zerolog.Logger
	observer  CycleObserver
	onReport  func(*report.Report)
	inspector jiraerror.Inspector

	mu     sync.Mutex
	state  State
	last   *report.Report
	cycles int
	failed int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the scheduler's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithObserver reports every cycle's result to o.
func WithObserver(o CycleObserver) Option {
	return func(s *Scheduler) { s.observer = o }
}

// WithReportHook calls fn with every cycle's report, from the scheduler's
// goroutine.
func WithReportHook(fn func(*report.Report)) Option {
	return func(s *Scheduler) { s.onReport = fn }
}

// NewScheduler creates a scheduler running runner every interval.
func NewScheduler(runner Runner, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:    runner,
		interval:  interval,
		clock:     RealClock(),
		log:       zerolog.Nop(),
		inspector: jiraerror.NewErrorChainInspector(jiraerror.NewInspector()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes a cycle immediately and then one more each time interval has
// passed since the previous cycle returned. It returns when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("Scheduler started")

	for {
		s.runCycle(ctx)

		if ctx.Err() != nil {
			s.log.Info().Msg("Scheduler stopped")
			return
		}

		select {
		case <-ctx.Done():
			s.log.Info().Msg("Scheduler stopped")
			return
		case <-s.clock.After(s.interval):
		}
	}
}

// State returns whether a cycle is in progress.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport returns the report of the most recent cycle, or nil.
func (s *Scheduler) LastReport() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Counts returns the number of cycles run and how many of them failed.
func (s *Scheduler) Counts() (cycles, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles, s.failed
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.setState(StateRunning)
	defer s.setState(StateIdle)

	rep, err := s.safeRun(ctx)
	if rep == nil {
		rep = report.New(s.clock.Now).Finish(version.Version, err)
	}

	if err != nil {
		s.logCycleError(err, rep)
	}

	// Observers run before the report becomes visible through LastReport.
	if s.observer != nil {
		s.observer.ObserveCycle(rep.Result(), rep.CompletedAt)
	}
	if s.onReport != nil {
		s.onReport(rep)
	}

	s.mu.Lock()
	s.last = rep
	s.cycles++
	if err != nil {
		s.failed++
	}
	s.mu.Unlock()
}

// safeRun turns a panic inside the runner into an error.
func (s *Scheduler) safeRun(ctx context.Context) (rep *report.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Cycle panicked")
			rep = nil
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	return s.runner.RunCycle(ctx)
}

func (s *Scheduler) logCycleError(err error, rep *report.Report) {
	event := s.log.Error().Err(err).Str("cycle_id", rep.CycleID)

	switch {
	case s.inspector.IsAuthError(err):
		event = event.Str("kind", "auth")
	case s.inspector.IsRateLimitError(err):
		event = event.Str("kind", "rate_limit")
	case s.inspector.IsNetworkError(err):
		event = event.Str("kind", "network")
	}

	event.Msg("Cycle failed; next cycle runs after the interval")
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
