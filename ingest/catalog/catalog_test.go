package catalog

import (
	"context"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

func slice(series string, instance int, win bulkprocess.Window) bulkprocess.SliceRecord {
	return bulkprocess.SliceRecord{
		SeriesID:          series,
		SeriesDescription: "desc " + series,
		FilePath:          series + ".dcm",
		InstanceNumber:    instance,
		StudyDate:         "20200115",
		Window:            win,
		Image:             image.NewGray(image.Rect(0, 0, 4, 3)),
	}
}

func TestReplaceIsWholesale(t *testing.T) {
	ctx := context.Background()
	cat, err := Open(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	require.NoError(t, err)
	defer cat.Close()

	folder, err := cat.Folder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", folder)

	first := bulkprocess.SeriesMap{
		"A": {slice("A", 1, bulkprocess.Window{Center: 40, Width: 400}), slice("A", 2, bulkprocess.Window{Center: 40, Width: 400})},
		"B": {slice("B", 1, bulkprocess.UnsetWindow)},
	}
	require.NoError(t, cat.Replace(ctx, "/first", first))

	series, err := cat.Series(ctx)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, SeriesRow{SeriesID: "A", Label: "desc A", SliceCount: 2}, series[0])

	slices, err := cat.Slices(ctx, "A")
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, 1, slices[1].Position)
	assert.Equal(t, 3, slices[0].Rows)
	assert.Equal(t, 4, slices[0].Cols)
	assert.Equal(t, int64(40), slices[0].WindowCenter.Int64)
	assert.True(t, slices[0].StudyDate.Valid)

	b, err := cat.Slices(ctx, "B")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.False(t, b[0].WindowCenter.Valid)
	assert.False(t, b[0].WindowWidth.Valid)

	second := bulkprocess.SeriesMap{
		"C": {slice("C", 1, bulkprocess.UnsetWindow)},
	}
	require.NoError(t, cat.Replace(ctx, "/second", second))

	series, err = cat.Series(ctx)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "C", series[0].SeriesID)

	slices, err = cat.Slices(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, slices)

	folder, err = cat.Folder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/second", folder)
}

func TestNewSliceRow(t *testing.T) {
	s := slice("A", 3, bulkprocess.UnsetWindow)
	s.StudyDate = "unknown"
	s.Image = nil

	row := NewSliceRow(s, 5)

	assert.Equal(t, 5, row.Position)
	assert.Equal(t, 3, row.InstanceNumber)
	assert.Equal(t, 0, row.Rows)
	assert.False(t, row.StudyDate.Valid)
	assert.False(t, row.WindowCenter.Valid)
}
