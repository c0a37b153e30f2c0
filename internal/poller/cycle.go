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

	"github.com/rs/zerolog"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/aggregate"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/config"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/jira"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/metrics"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/report"
	"github.com/sirseerhq/sirseer-jira-exporter/pkg/version"
)

// Cycle is the export cycle. It implements Runner.
type Cycle struct {
	fetcher   *jira.Fetcher
	publisher *metrics.Publisher
	windows   *WindowProvider
	cfg       config.JiraConfig
	clock     Clock
	log       zerolog.Logger
}

// NewCycle wires a cycle from its parts.
func NewCycle(cfg config.JiraConfig, fetcher *jira.Fetcher, publisher *metrics.Publisher, windows *WindowProvider, clock Clock, log zerolog.Logger) *Cycle {
	return &Cycle{
		fetcher:   fetcher,
		publisher: publisher,
		windows:   windows,
		cfg:       cfg,
		clock:     clock,
		log:       log,
	}
}

// RunCycle counts, publishes, fetches, aggregates and publishes again, in
// that order. The total is published before the company fetch starts, so
// a failure later in the cycle leaves the new total next to the previous
// company counts.
//
// Request failures do not fail the cycle: they end pagination and are
// reported as a partial cycle. The returned error is set only for
// unexpected failures such as a malformed response or a rejected publish.
// The report is returned in both cases.
func (c *Cycle) RunCycle(ctx context.Context) (*report.Report, error) {
	tracker := report.New(c.clock.Now)
	log := c.log.With().Str("cycle_id", tracker.CycleID()).Logger()

	window := c.windows.Window()
	jql := jira.BuildJQL(jira.Filter{Project: c.cfg.Project, IssueType: c.cfg.IssueType}, window)
	tracker.SetQuery(window.From.Format(jira.DateLayout), window.To.Format(jira.DateLayout), jql)

	log.Debug().Str("jql", jql).Msg("Starting cycle")

	fail := func(err error) (*report.Report, error) {
		return tracker.Finish(version.Version, err), err
	}

	if err := window.Validate(); err != nil {
		return fail(fmt.Errorf("invalid query window: %w", err))
	}

	count, err := c.fetcher.CountTotal(ctx, jql, c.cfg.CountMaxResults)
	tracker.RecordRequests(count.Pages, count.Requests, count.Interrupted)
	if err != nil {
		return fail(fmt.Errorf("count bugs: %w", err))
	}

	if err := c.publisher.PublishTotal(count.Total); err != nil {
		return fail(err)
	}
	tracker.RecordTotal(count.Total)

	fetched, err := c.fetcher.FetchAll(ctx, jira.NewSearchRequest(jql, c.cfg.PageSize, c.cfg.CompanyField))
	tracker.RecordRequests(fetched.Pages, fetched.Requests, fetched.Interrupted)
	if err != nil {
		return fail(fmt.Errorf("fetch bugs by company: %w", err))
	}

	summary := aggregate.Summarize(fetched.Issues, c.cfg.CompanyField)
	if summary.Malformed > 0 {
		log.Warn().
			Int("issues", summary.Malformed).
			Str("field", c.cfg.CompanyField).
			Msg("Company field could not be decoded, counted as others")
	}

	if err := c.publisher.PublishByCompany(summary.Counts); err != nil {
		return fail(err)
	}
	tracker.RecordCompanies(len(fetched.Issues), summary.Counts, summary.Malformed)
	tracker.RecordStale(c.publisher.Stale())

	rep := tracker.Finish(version.Version, nil)

	log.Info().
		Int("total", rep.Total).
		Int("issues_fetched", rep.IssuesFetched).
		Int("companies", len(rep.ByCompany)).
		Int("api_calls", rep.APICalls).
		Bool("partial", rep.Partial).
		Str("duration", rep.Duration).
		Msg("Cycle complete")

	return rep, nil
}
