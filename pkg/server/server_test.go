package server

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pumpstation/pumpstation/pkg/station"
	"github.com/pumpstation/pumpstation/pkg/storage/storagemock"
	"github.com/pumpstation/pumpstation/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(db *storagemock.MockDatabase) *Server {
	return &Server{
		storage:    db,
		stations:   station.NewMap(16),
		serverName: "test-rev",
	}
}

func exampleConfig(t *testing.T) types.Config {
	t.Helper()
	cfg, err := types.LoadConfig("../../examples/station.yaml")
	require.NoError(t, err)
	return cfg
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp["error"]
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&storagemock.MockDatabase{})
	rr := httptest.NewRecorder()
	srv.setupHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.Equal(t, "test-rev", rr.Header().Get("Server"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Empty(t, rr.Header().Get("Cache-Control"))
}

func TestGzip(t *testing.T) {
	srv := newTestServer(&storagemock.MockDatabase{})
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", jsonBody(t, exampleConfig(t)))
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	srv.setupHandler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	var report types.Report
	require.NoError(t, json.NewDecoder(zr).Decode(&report))
	assert.Equal(t, "9.93", report.TotalCostRounded)
}

func TestWriteJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSONError(rr, "bad thing", http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "bad thing", decodeError(t, rr))
}
