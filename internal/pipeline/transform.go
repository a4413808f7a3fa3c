package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/normals"
)

// ErrEmptyReport is returned for a message without report text when no
// fetcher is configured to download it.
var ErrEmptyReport = errors.New("empty station report and fetching is disabled")

// NormalsTransformer implements Transformer by parsing the station report
// carried in each message, optionally downloading reports for messages that
// only name the station.
type NormalsTransformer struct {
	fetcher domain.StationFetcher
	logger  *slog.Logger
}

// NewTransformer creates a NormalsTransformer. Pass a nil fetcher to disable
// on-demand downloads.
func NewTransformer(fetcher domain.StationFetcher, logger *slog.Logger) *NormalsTransformer {
	return &NormalsTransformer{
		fetcher: fetcher,
		logger:  logger,
	}
}

func (t *NormalsTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.StationReport, error) {
	if len(raw.Value) == 0 {
		body, err := t.fetch(ctx, raw)
		if err != nil {
			return domain.StationReport{}, err
		}
		raw.Value = body
	}

	report, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.StationReport{}, err
	}

	report = domain.EnrichStationReport(report)
	t.logger.Debug("station report parsed",
		"station_id", report.ID,
		"categories", report.Categories,
		"series", report.SeriesCount,
	)
	return report, nil
}

func (t *NormalsTransformer) fetch(ctx context.Context, raw domain.RawEvent) ([]byte, error) {
	if t.fetcher == nil {
		return nil, ErrEmptyReport
	}
	id, ok := domain.StationIDFromName(string(raw.Key))
	if !ok {
		return nil, fmt.Errorf("fetch %q: %w", raw.Key, domain.ErrMissingStationID)
	}
	body, err := t.fetcher.FetchStation(ctx, id)
	if err != nil {
		return nil, &FetchError{StationID: id, Err: err}
	}
	return body, nil
}

// FetchError reports a failed download of a station report.
type FetchError struct {
	StationID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch station %s: %v", e.StationID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// errorReason maps a transform error to the parse_errors_total reason label.
func errorReason(err error) string {
	var fetchErr *FetchError
	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.Is(err, ErrEmptyReport):
		return "empty"
	case errors.Is(err, domain.ErrMissingStationID):
		return "missing_station_id"
	case errors.Is(err, normals.ErrFrequencyWithoutCategory):
		return "frequency_without_category"
	case errors.Is(err, normals.ErrDataWithoutVariable):
		return "data_without_variable"
	case errors.Is(err, normals.ErrUnknownMonth):
		return "unknown_month"
	case errors.Is(err, normals.ErrNonNumericToken):
		return "non_numeric"
	default:
		return "other"
	}
}
