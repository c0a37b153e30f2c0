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

package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Publisher writes cycle results into a Sink and remembers what it wrote.
type Publisher struct {
	sink Sink

	mu        sync.Mutex
	total     int
	cycle     uint64
	companies map[string]companyState
}

type companyState struct {
	count    int
	lastSeen uint64
}

// Snapshot is a copy of the values a Publisher last wrote.
type Snapshot struct {
	Total     int            `json:"total"`
	Companies map[string]int `json:"companies"`
	Stale     []string       `json:"stale,omitempty"`
}

// NewPublisher creates a Publisher writing to sink.
func NewPublisher(sink Sink) *Publisher {
	return &Publisher{
		sink:      sink,
		companies: make(map[string]companyState),
	}
}

// PublishTotal sets jira_bugs_count.
func (p *Publisher) PublishTotal(total int) error {
	if err := p.sink.Set(MetricBugsCount, nil, float64(total)); err != nil {
		return fmt.Errorf("failed to publish total: %w", err)
	}

	p.mu.Lock()
	p.total = total
	p.mu.Unlock()
	return nil
}

// PublishByCompany sets one jira_bugs_by_company series per entry in counts.
// Companies absent from counts keep their previous value. Every entry is
// attempted; the returned error joins the individual failures.
func (p *Publisher) PublishByCompany(counts map[string]int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cycle++

	var errs []error
	for _, company := range sortedKeys(counts) {
		count := counts[company]
		if err := p.sink.Set(MetricBugsByCompany, map[string]string{LabelCompany: company}, float64(count)); err != nil {
			errs = append(errs, fmt.Errorf("company %q: %w", company, err))
			continue
		}
		p.companies[company] = companyState{count: count, lastSeen: p.cycle}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to publish company counts: %w", errors.Join(errs...))
	}
	return nil
}

// Publish sets the total and then the per-company counts.
func (p *Publisher) Publish(total int, counts map[string]int) error {
	if err := p.PublishTotal(total); err != nil {
		return err
	}
	return p.PublishByCompany(counts)
}

// Stale lists, sorted, the companies whose series were not refreshed by the
// most recent PublishByCompany.
func (p *Publisher) Stale() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.staleLocked()
}

func (p *Publisher) staleLocked() []string {
	var stale []string
	for company, st := range p.companies {
		if st.lastSeen < p.cycle {
			stale = append(stale, company)
		}
	}
	sort.Strings(stale)
	return stale
}

// Snapshot returns the values currently exposed.
func (p *Publisher) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	companies := make(map[string]int, len(p.companies))
	for company, st := range p.companies {
		companies[company] = st.count
	}
	return Snapshot{
		Total:     p.total,
		Companies: companies,
		Stale:     p.staleLocked(),
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
