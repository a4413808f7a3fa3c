package domain

import (
	"context"
	"errors"
)

// ErrStationNotFound is returned by a StationFetcher when the source has no
// report for the requested station.
var ErrStationNotFound = errors.New("station report not found")

// StationFetcher retrieves the raw text of a station's normals report.
type StationFetcher interface {
	FetchStation(ctx context.Context, stationID string) ([]byte, error)
}
