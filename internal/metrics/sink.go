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

//go:generate mockgen -destination=mock_sink.go -package=metrics github.com/sirseerhq/sirseer-jira-exporter/internal/metrics Sink

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sirseerhq/sirseer-jira-exporter/internal/report"
)

// Exported metric names and labels.
const (
	MetricBugsCount     = "jira_bugs_count"
	MetricBugsByCompany = "jira_bugs_by_company"
	LabelCompany        = "company"

	metricCycles      = "jira_exporter_cycles_total"
	metricLastSuccess = "jira_exporter_last_success_timestamp_seconds"
)

// ErrUnknownMetric is returned by a Sink asked to set a metric it does not own.
var ErrUnknownMetric = errors.New("unknown metric")

// Sink stores gauge values.
type Sink interface {
	// Set records value for the series name{labels}.
	Set(name string, labels map[string]string, value float64) error
}

// PrometheusSink is a Sink backed by gauges on a prometheus.Registry.
type PrometheusSink struct {
	total       prometheus.Gauge
	byCompany   *prometheus.GaugeVec
	cycles      *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

// NewPrometheusSink creates the exporter's collectors and registers them on reg.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricBugsCount,
			Help: "Total number of open bugs",
		}),
		byCompany: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricBugsByCompany,
			Help: "Number of open bugs by company",
		}, []string{LabelCompany}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricCycles,
			Help: "Poll cycles run, by result",
		}, []string{"result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricLastSuccess,
			Help: "Unix time of the last cycle that completed without error",
		}),
	}

	for _, c := range []prometheus.Collector{s.total, s.byCompany, s.cycles, s.lastSuccess} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	// Pre-create result series so rates are defined from the first scrape.
	for _, r := range []string{report.ResultSuccess, report.ResultPartial, report.ResultFailed} {
		s.cycles.WithLabelValues(r)
	}

	return s, nil
}

// Set implements Sink.
func (s *PrometheusSink) Set(name string, labels map[string]string, value float64) error {
	switch name {
	case MetricBugsCount:
		if len(labels) != 0 {
			return fmt.Errorf("%s takes no labels, got %v", name, labels)
		}
		s.total.Set(value)
	case MetricBugsByCompany:
		company, ok := labels[LabelCompany]
		if !ok || len(labels) != 1 {
			return fmt.Errorf("%s requires exactly the %q label, got %v", name, LabelCompany, labels)
		}
		s.byCompany.WithLabelValues(company).Set(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	return nil
}

// ObserveCycle counts a finished cycle by its report.Result and, on
// success, stamps its time.
func (s *PrometheusSink) ObserveCycle(result string, at time.Time) {
	s.cycles.WithLabelValues(result).Inc()
	if result == report.ResultSuccess {
		s.lastSuccess.Set(float64(at.Unix()))
	}
}
