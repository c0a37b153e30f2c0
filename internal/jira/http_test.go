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

package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relayerrors "github.com/sirseerhq/sirseer-jira-exporter/internal/errors"
	"github.com/sirseerhq/sirseer-jira-exporter/pkg/version"
	"github.com/sirseerhq/sirseer-jira-exporter/test/testutil"
)

func TestHTTPClientSearch(t *testing.T) {
	issues := []map[string]interface{}{
		testutil.NewIssueBuilder(1).WithCompanies("Acme").Build(),
		testutil.NewIssueBuilder(2).WithCompanies("Acme", "Globex").Build(),
		testutil.NewIssueBuilder(3).Build(),
	}
	server := testutil.NewSearchServer(t, issues, testutil.WithBasicAuth("bot@example.com", "secret"))

	client := NewHTTPClient(server.URL+"/", "bot@example.com", "secret", 5*time.Second)
	req := NewSearchRequest("project = HD", 2, testutil.CompanyField)

	page, err := client.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.MaxResults)
	require.Len(t, page.Issues, 2)
	assert.Equal(t, "HD-1", page.Issues[0].Key)

	companies, present, err := page.Issues[1].Companies(testutil.CompanyField)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, []Company{{Name: "Acme"}, {Name: "Globex"}}, companies)

	recorded := server.Requests()
	require.Len(t, recorded, 1)
	assert.Equal(t, "project = HD", recorded[0].JQL)
	assert.Equal(t, 2, recorded[0].MaxResults)
	assert.Equal(t, []string{testutil.CompanyField}, recorded[0].Fields)
}

func TestHTTPClientHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, SearchPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"total":0,"startAt":0,"maxResults":50,"issues":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "user", "token", time.Second)
	_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 50))
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, version.UserAgent(), got.Get("User-Agent"))
	assert.True(t, strings.HasPrefix(got.Get("Authorization"), "Basic "))
}

func TestHTTPClientStatusErrors(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, relayerrors.ErrInvalidCredentials},
		{http.StatusForbidden, relayerrors.ErrInvalidCredentials},
		{http.StatusNotFound, relayerrors.ErrNotFound},
		{http.StatusTooManyRequests, relayerrors.ErrRateLimit},
		{http.StatusInternalServerError, relayerrors.ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := testutil.NewErrorServer(t, tt.status)
			client := NewHTTPClient(server.URL, "user", "token", time.Second)

			_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 10))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.Code)
		})
	}
}

func TestHTTPClientWrongCredentials(t *testing.T) {
	server := testutil.NewSearchServer(t, testutil.GenerateIssues(1, ""), testutil.WithBasicAuth("user", "right"))
	client := NewHTTPClient(server.URL, "user", "wrong", time.Second)

	_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 10))
	assert.ErrorIs(t, err, relayerrors.ErrInvalidCredentials)
}

func TestHTTPClientMalformedResponse(t *testing.T) {
	server := testutil.NewSearchServer(t, testutil.GenerateIssues(3, ""), testutil.WithMalformedOn(1))
	client := NewHTTPClient(server.URL, "user", "token", time.Second)

	_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrDecode)
}

func TestHTTPClientNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewHTTPClient(url, "user", "token", time.Second)
	_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrNetworkFailure)
}

func TestHTTPClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewHTTPClient(server.URL, "user", "token", 50*time.Millisecond)
	_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrNetworkFailure)
}

func TestFetcherAgainstServer(t *testing.T) {
	server := testutil.NewSearchServer(t, testutil.GenerateIssues(250, "Acme"),
		testutil.WithPageCap(100), testutil.WithFailureOn(2, http.StatusBadGateway))
	client := NewHTTPClient(server.URL, "user", "token", time.Second)
	f := newTestFetcher(client)

	result, err := f.FetchAll(context.Background(), NewSearchRequest("project = HD", 100, testutil.CompanyField))
	require.NoError(t, err)
	assert.Len(t, result.Issues, 100)
	assert.True(t, result.Partial())
	assert.Equal(t, 2, server.RequestCount())
}

func TestHTTPClientConnectionDroppedMidBody(t *testing.T) {
	server := testutil.NewSearchServer(t, testutil.GenerateIssues(4, "Acme"), testutil.WithDropOn(2))
	client := NewHTTPClient(server.URL, "user", "token", time.Second)

	_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 2))
	require.NoError(t, err)

	req := NewSearchRequest("project = HD", 2)
	req.StartAt = 2
	_, err = client.Search(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, relayerrors.ErrNetworkFailure)
	assert.NotErrorIs(t, err, relayerrors.ErrDecode)
}

func TestFetcherConnectionDroppedMidBody(t *testing.T) {
	server := testutil.NewSearchServer(t, testutil.GenerateIssues(4, "Acme"), testutil.WithDropOn(2))
	client := NewHTTPClient(server.URL, "user", "token", time.Second)
	f := newTestFetcher(client)

	result, err := f.FetchAll(context.Background(), NewSearchRequest("project = HD", 2, testutil.CompanyField))
	require.NoError(t, err)
	require.NotNil(t, result.Interrupted)
	assert.ErrorIs(t, result.Interrupted, relayerrors.ErrNetworkFailure)
	assert.Len(t, result.Issues, 2)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 2, result.Requests)
}

func TestHTTPClientTimeoutDuringBody(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"total":10,"startAt":0,"maxResults":5,"issues":[`))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewHTTPClient(server.URL, "user", "token", 100*time.Millisecond)
	f := newTestFetcher(client)

	result, err := f.FetchAll(context.Background(), NewSearchRequest("project = HD", 5))
	require.NoError(t, err)
	require.NotNil(t, result.Interrupted)
	assert.ErrorIs(t, result.Interrupted, relayerrors.ErrNetworkFailure)
	assert.NotErrorIs(t, result.Interrupted, relayerrors.ErrDecode)
	assert.Empty(t, result.Issues)
}

func TestHTTPClientResponseTooLarge(t *testing.T) {
	server := testutil.NewSearchServer(t, testutil.GenerateIssues(3, "Acme"))
	client := NewHTTPClient(server.URL, "user", "token", time.Second)
	client.maxBody = 16

	_, err := client.Search(context.Background(), NewSearchRequest("project = HD", 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseTooLarge)
	assert.NotErrorIs(t, err, relayerrors.ErrDecode)

	result, err := newTestFetcher(client).FetchAll(context.Background(), NewSearchRequest("project = HD", 10))
	require.NoError(t, err)
	assert.ErrorIs(t, result.Interrupted, ErrResponseTooLarge)
}
