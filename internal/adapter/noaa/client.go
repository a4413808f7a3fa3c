package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
)

// maxReportSize caps a downloaded report. Real station files are well under
// 200 KiB.
const maxReportSize = 4 << 20

// Client implements domain.StationFetcher against the NCEI station products
// directory.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an NCEI station report client. baseURL is the directory
// that holds the "<id>.normals.txt" files.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchStation downloads the raw normals report for a station ID.
func (c *Client) FetchStation(ctx context.Context, stationID string) ([]byte, error) {
	start := time.Now()
	body, err := c.doRequest(ctx, stationID)
	c.metrics.FetchAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrStationNotFound):
		c.metrics.FetchRequests.WithLabelValues("not_found").Inc()
	case err != nil:
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
	default:
		c.metrics.FetchRequests.WithLabelValues("success").Inc()
		c.logger.Debug("station report fetched", "station_id", stationID, "bytes", len(body))
	}
	return body, err
}

func (c *Client) doRequest(ctx context.Context, stationID string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(domain.ReportFileName(stationID)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch station %s: %w", stationID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch station %s: %w", stationID, domain.ErrStationNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ncei error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read station %s: %w", stationID, err)
	}
	if len(body) > maxReportSize {
		return nil, fmt.Errorf("station %s report exceeds %d bytes", stationID, maxReportSize)
	}
	return body, nil
}
