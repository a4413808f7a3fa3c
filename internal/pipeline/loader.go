package pipeline

import (
	"context"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
)

// MultiLoader fans a batch out to several loaders in order. The first
// failure aborts the batch; loaders must tolerate replays because the whole
// batch is retried.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, reports []domain.StationReport) error {
	for _, l := range m {
		if err := l.LoadBatch(ctx, reports); err != nil {
			return err
		}
	}
	return nil
}
