package bqsink

import (
	"context"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

func TestBatches(t *testing.T) {
	rows := make([]bulkprocess.ManifestRow, 1201)
	for i := range rows {
		rows[i].Position = i
	}

	batches := Batches(rows, 500)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 500)
	assert.Len(t, batches[1], 500)
	assert.Len(t, batches[2], 201)
	assert.Equal(t, 1200, batches[2][200].Position)

	assert.Empty(t, Batches(nil, 500))
	assert.Len(t, Batches(rows[:3], 0), 3)
}

func TestManifestSchema(t *testing.T) {
	schema, err := bigquery.InferSchema(bulkprocess.ManifestRow{})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, field := range schema {
		names[field.Name] = true
	}
	for _, want := range []string{"series_id", "position", "file", "image_z", "window"} {
		assert.True(t, names[want], "schema is missing %s", want)
	}
}

func TestConnectRequiresTable(t *testing.T) {
	_, err := Connect(context.Background(), "project", "", "table")
	assert.Error(t, err)
}
