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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
)

// StatusFunc returns the value served at /status, or nil before the first
// cycle has finished.
type StatusFunc func() interface{}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors in addition to whatever the caller registers.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Server exposes /metrics, /healthz and /status.
type Server struct {
	listener net.Listener
	srv      *http.Server
	log      zerolog.Logger
}

// Listen binds addr and prepares the HTTP handlers. Binding happens here, not
// in Serve, so a busy port is reported before any polling starts.
func Listen(addr string, gatherer prometheus.Gatherer, status StatusFunc, log zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", relayerrors.ErrMetricsBind, addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: promErrorLogger{log: log},
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/status", statusHandler(status, log))

	return &Server{
		listener: ln,
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}, nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks serving requests until Shutdown is called.
func (s *Server) Serve() error {
	s.log.Info().Str("addr", s.Addr()).Msg("Serving metrics")
	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight scrapes until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func statusHandler(status StatusFunc, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var v interface{}
		if status != nil {
			v = status()
		}
		if v == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no cycle completed yet"}` + "\n"))
			return
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			log.Warn().Err(err).Msg("Failed to encode status")
		}
	}
}

// promErrorLogger adapts zerolog to promhttp's Println-style logger.
type promErrorLogger struct {
	log zerolog.Logger
}

func (l promErrorLogger) Println(v ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(v...))
}
