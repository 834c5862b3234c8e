package queryapi_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spantree/spantree/internal/queryapi"
	"github.com/spantree/spantree/pkg/spanstore"
)

// discardLogger drops all request logging during tests.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestServer builds a server over a three-span store.
func newTestServer() *httptest.Server {
	store := spanstore.New()
	store.Add(spanstore.Span{Start: 10, End: 20, ID: 1})
	store.Add(spanstore.Span{Start: 15, End: 25, ID: 2})
	store.Add(spanstore.Span{Start: 30, End: 40, ID: 3})

	return httptest.NewServer(queryapi.NewServer(store, discardLogger).Handler())
}

// getSpans fetches url and decodes the span array response.
func getSpans(t *testing.T, url string) []spanstore.Span {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec,noctx // test URL from httptest
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var spans []spanstore.Span
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&spans))

	return spans
}

// TestOverlapEndpoint verifies /overlap returns matching spans.
func TestOverlapEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	defer server.Close()

	spans := getSpans(t, server.URL+"/overlap?low=12&high=18")
	require.Len(t, spans, 2)
	assert.Equal(t, uint32(1), spans[0].ID)
	assert.Equal(t, uint32(2), spans[1].ID)
}

// TestOverlapEndpoint_NoMatches verifies an empty array, not null.
func TestOverlapEndpoint_NoMatches(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/overlap?low=50&high=60") //nolint:gosec,noctx // test URL
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}

// TestPointEndpoint verifies /point returns containing spans.
func TestPointEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	defer server.Close()

	spans := getSpans(t, server.URL+"/point?at=30")
	require.Len(t, spans, 1)
	assert.Equal(t, uint32(3), spans[0].ID)
}

// TestBadRequests verifies parameter validation replies 400.
func TestBadRequests(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	defer server.Close()

	for _, path := range []string{
		"/overlap",
		"/overlap?low=1",
		"/overlap?low=abc&high=2",
		"/overlap?low=20&high=10",
		"/point",
		"/point?at=-1",
	} {
		resp, err := http.Get(server.URL + path) //nolint:gosec,noctx // test URL
		require.NoError(t, err)

		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "path %s", path)
	}
}

// TestHealthz verifies the liveness probe.
func TestHealthz(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz") //nolint:gosec,noctx // test URL
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

// TestMetricsEndpoint verifies queries show up in the scrape output.
func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	defer server.Close()

	// Serve one query so the counter exists.
	getSpans(t, server.URL+"/point?at=12")

	resp, err := http.Get(server.URL + "/metrics") //nolint:gosec,noctx // test URL
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "spantree_queries_total")
	assert.Contains(t, string(body), `endpoint="point"`)
}
