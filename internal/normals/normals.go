package normals

import (
	"encoding/json"
	"fmt"
)

// Frequency names that carry data rows.
const (
	Monthly = "Monthly"
	Daily   = "Daily"
)

// Metadata holds station header fields such as "Station Name" or "GHCN ID".
type Metadata map[string]string

// Series is the value array of one variable. Monthly series hold one value
// per month; daily series hold twelve month slots of up to 31 values each,
// nil until a row for that month has been parsed.
type Series struct {
	Monthly []int
	Daily   [][]int
}

// IsDaily reports whether s is a daily series.
func (s Series) IsDaily() bool {
	return s.Daily != nil
}

// MarshalJSON encodes the series as a bare array: [v, ...] for monthly
// series and [[v, ...], ...] for daily ones. Empty month slots encode as [].
func (s Series) MarshalJSON() ([]byte, error) {
	if !s.IsDaily() {
		if s.Monthly == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(s.Monthly)
	}
	months := make([][]int, len(s.Daily))
	for i, m := range s.Daily {
		if m == nil {
			m = []int{}
		}
		months[i] = m
	}
	return json.Marshal(months)
}

// UnmarshalJSON accepts either array shape produced by MarshalJSON.
func (s *Series) UnmarshalJSON(data []byte) error {
	var monthly []int
	if err := json.Unmarshal(data, &monthly); err == nil {
		*s = Series{Monthly: monthly}
		return nil
	}
	var daily [][]int
	if err := json.Unmarshal(data, &daily); err != nil {
		return fmt.Errorf("decode series: %w", err)
	}
	if len(daily) != len(months) {
		return fmt.Errorf("decode series: daily series has %d months", len(daily))
	}
	*s = Series{Daily: daily}
	return nil
}

// Variables maps a variable name (e.g. "mly-tmax-normal") to its series.
type Variables map[string]Series

// Frequencies maps a frequency name (e.g. "Monthly") to its variables.
type Frequencies map[string]Variables

// Tree maps a category name (e.g. "Temperature-Related") to its frequencies.
type Tree map[string]Frequencies

// Station is the result of parsing one station report.
type Station struct {
	Metadata Metadata `json:"meta"`
	Normals  Tree     `json:"normals"`
}

func newStation() *Station {
	return &Station{
		Metadata: make(Metadata),
		Normals:  make(Tree),
	}
}

// Series looks up a single variable, e.g.
// Series("Temperature-Related", "Daily", "dly-tmax-normal").
func (s *Station) Series(category, frequency, variable string) (Series, bool) {
	series, ok := s.Normals[category][frequency][variable]
	return series, ok
}

// Name returns the "Station Name" metadata field.
func (s *Station) Name() string {
	return s.Metadata["Station Name"]
}
