package domain

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/couchcryptid/climate-normals-etl/internal/normals"
)

// ErrMissingStationID is returned when neither the message key nor the
// report metadata identifies the station.
var ErrMissingStationID = errors.New("station id not found in key or metadata")

// stationIDRe matches an 11-character GHCN-Daily station identifier,
// e.g. "USC00018809".
var stationIDRe = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}$`)

// reportSuffix is the file name suffix of NCEI station normals products.
const reportSuffix = ".normals.txt"

// metadataIDKeys lists the metadata fields that carry the station ID, in
// order of preference.
var metadataIDKeys = []string{"GHCN Daily ID", "GHCN ID"}

// StationIDFromName extracts the station ID from a file name, URL path, or
// bare ID: "products/station/USC00018809.normals.txt" -> "USC00018809".
func StationIDFromName(name string) (string, bool) {
	name = path.Base(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, reportSuffix)
	name = strings.TrimSuffix(name, ".txt")
	name = strings.ToUpper(name)
	if !stationIDRe.MatchString(name) {
		return "", false
	}
	return name, true
}

// ReportFileName returns the NCEI file name for a station ID.
func ReportFileName(stationID string) string {
	return stationID + reportSuffix
}

// ParseRawEvent parses a RawEvent's value as a station normals report.
// Parse failures wrap the *normals.LineError describing the offending line.
func ParseRawEvent(raw RawEvent) (StationReport, error) {
	station, err := normals.Parse(bytes.NewReader(raw.Value))
	if err != nil {
		return StationReport{}, fmt.Errorf("parse station report %q: %w", raw.Key, err)
	}

	source := string(raw.Key)
	id, ok := StationIDFromName(source)
	if !ok {
		id, ok = stationIDFromMetadata(station.Metadata)
	}
	if !ok {
		return StationReport{}, fmt.Errorf("parse station report %q: %w", raw.Key, ErrMissingStationID)
	}

	return StationReport{
		ID:         id,
		Source:     source,
		Metadata:   station.Metadata,
		Normals:    station.Normals,
		RawPayload: raw.Value,
	}, nil
}

func stationIDFromMetadata(meta normals.Metadata) (string, bool) {
	for _, key := range metadataIDKeys {
		if id, ok := StationIDFromName(meta[key]); ok {
			return id, true
		}
	}
	return "", false
}

// EnrichStationReport fills the derived fields of a parsed report: the
// station name, summary counts, and the processing timestamp.
func EnrichStationReport(report StationReport) StationReport {
	report.Name = report.Metadata["Station Name"]
	report.Categories = len(report.Normals)
	report.SeriesCount = countSeries(report.Normals)
	report.ProcessedAt = clock.Now()
	return report
}

func countSeries(tree normals.Tree) int {
	n := 0
	for _, freqs := range tree {
		for _, vars := range freqs {
			n += len(vars)
		}
	}
	return n
}
