package noaa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStationID = "USC00018809"
	testReport    = "Station Name: TUSKEGEE\nTemperature-Related Normals\n"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestClient_FetchStation_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/station/USC00018809.normals.txt", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, testReport)
	}))
	defer srv.Close()

	c := testClient(srv.URL + "/station/")
	body, err := c.FetchStation(context.Background(), testStationID)
	require.NoError(t, err)
	assert.Equal(t, testReport, string(body))
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FetchRequests.WithLabelValues("success")), 0)
}

func TestClient_FetchStation_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchStation(context.Background(), testStationID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStationNotFound))
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FetchRequests.WithLabelValues("not_found")), 0)
}

func TestClient_FetchStation_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchStation(context.Background(), testStationID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "maintenance")
	assert.False(t, errors.Is(err, domain.ErrStationNotFound))
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FetchRequests.WithLabelValues("error")), 0)
}

func TestClient_FetchStation_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, testReport)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL)
	_, err := c.FetchStation(ctx, testStationID)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
