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
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
	"github.com/sirseerhq/sirseer-jira-exporter/internal/logger"
	"github.com/sirseerhq/sirseer-jira-exporter/test/testutil"
)

func startServer(t *testing.T, gatherer prometheus.Gatherer, status StatusFunc) string {
	t.Helper()

	srv, err := Listen("127.0.0.1:0", gatherer, status, logger.NewTestLogger())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	})

	return "http://" + srv.Addr()
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServerExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	p := NewPublisher(sink)
	require.NoError(t, p.Publish(3, map[string]int{"Acme": 2, "others": 1}))

	base := startServer(t, reg, nil)

	code, body := get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	testutil.AssertMetricLine(t, body, "jira_bugs_count 3")
	testutil.AssertMetricLine(t, body, `jira_bugs_by_company{company="Acme"} 2`)
	testutil.AssertMetricLine(t, body, `jira_bugs_by_company{company="others"} 1`)
	testutil.AssertContainsString(t, body, "go_goroutines")

	code, body = get(t, base+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)
}

func TestServerStatus(t *testing.T) {
	var (
		mu      sync.Mutex
		current interface{}
	)
	base := startServer(t, prometheus.NewRegistry(), func() interface{} {
		mu.Lock()
		defer mu.Unlock()
		return current
	})

	code, body := get(t, base+"/status")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	testutil.AssertContainsString(t, body, "no cycle completed yet")

	mu.Lock()
	current = Snapshot{Total: 2, Companies: map[string]int{"Acme": 2}}
	mu.Unlock()
	code, body = get(t, base+"/status")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"total":2,"companies":{"Acme":2}}`, body)
}

func TestListenBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = Listen(ln.Addr().String(), prometheus.NewRegistry(), nil, logger.NewTestLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrMetricsBind)
}
