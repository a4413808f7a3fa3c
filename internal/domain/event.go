package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/normals"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// StationReport is the parsed form of one station's normals file.
type StationReport struct {
	ID       string           `json:"id"`
	Name     string           `json:"name,omitempty"`
	Source   string           `json:"source,omitempty"` // message key or file name
	Metadata normals.Metadata `json:"meta"`
	Normals  normals.Tree     `json:"normals"`

	// Summary counts.
	Categories  int `json:"categories"`
	SeriesCount int `json:"series_count"`

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}
