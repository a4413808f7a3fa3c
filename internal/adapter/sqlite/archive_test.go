package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/normals"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStationID = "USC00018809"

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func fixtureReport(t *testing.T) domain.StationReport {
	t.Helper()
	data, err := os.ReadFile("../../normals/testdata/USC00018809.normals.txt")
	require.NoError(t, err)

	report, err := domain.ParseRawEvent(domain.RawEvent{Key: []byte("USC00018809.normals.txt"), Value: data})
	require.NoError(t, err)
	report = domain.EnrichStationReport(report)
	report.ProcessedAt = time.Date(2026, time.October, 16, 6, 0, 0, 0, time.UTC)
	return report
}

func TestArchive_RoundTrip(t *testing.T) {
	a := openTestArchive(t)
	want := fixtureReport(t)

	require.NoError(t, a.LoadBatch(context.Background(), []domain.StationReport{want}))

	got, err := a.Station(context.Background(), testStationID)
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "TUSKEGEE", got.Name)
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.Metadata, got.Metadata)
	assert.Equal(t, want.SeriesCount, got.SeriesCount)
	assert.True(t, want.ProcessedAt.Equal(got.ProcessedAt))
	if diff := cmp.Diff(want.Normals, got.Normals); diff != "" {
		t.Errorf("normals mismatch (-want +got):\n%s", diff)
	}

	daily, ok := got.Normals["Temperature-Related"][normals.Daily]["dly-tmax-normal"]
	require.True(t, ok)
	assert.Nil(t, daily.Daily[0])
	assert.Len(t, daily.Daily[1], 28)
}

func TestArchive_ReplayReplacesSeries(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	report := fixtureReport(t)
	require.NoError(t, a.LoadBatch(ctx, []domain.StationReport{report}))

	trimmed := report
	trimmed.Normals = normals.Tree{
		"Temperature-Related": normals.Frequencies{
			normals.Monthly: normals.Variables{
				"mly-tmax-normal": {Monthly: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
			},
		},
	}
	require.NoError(t, a.LoadBatch(ctx, []domain.StationReport{trimmed}))

	got, err := a.Station(ctx, testStationID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeriesCount)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		got.Normals["Temperature-Related"][normals.Monthly]["mly-tmax-normal"].Monthly)
}

func TestArchive_StationNotFound(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.Station(context.Background(), "USW00094728")
	require.ErrorIs(t, err, domain.ErrStationNotFound)
}

func TestArchive_EmptyBatch(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.LoadBatch(context.Background(), nil))
}

func TestArchive_CancelledContext(t *testing.T) {
	a := openTestArchive(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.LoadBatch(ctx, []domain.StationReport{fixtureReport(t)})
	require.Error(t, err)

	_, err = a.Station(context.Background(), testStationID)
	require.ErrorIs(t, err, domain.ErrStationNotFound)
}
