// Package bqsink loads series manifests into BigQuery.
package bqsink

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

// insertBatch bounds the rows per streaming insert request.
const insertBatch = 500

type WrappedBigQuery struct {
	Context  context.Context
	Client   *bigquery.Client
	Project  string
	Database string
	Table    string
}

// Connect opens a client for project. Close the client when done.
func Connect(ctx context.Context, project, database, table string) (*WrappedBigQuery, error) {
	if project == "" || database == "" || table == "" {
		return nil, fmt.Errorf("project, dataset and table are all required (got %q, %q, %q)", project, database, table)
	}

	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &WrappedBigQuery{
		Context:  ctx,
		Client:   client,
		Project:  project,
		Database: database,
		Table:    table,
	}, nil
}

func (w *WrappedBigQuery) Close() error {
	return w.Client.Close()
}

// Put streams rows into the table, creating it from the ManifestRow schema if
// it does not exist yet.
func (w *WrappedBigQuery) Put(rows []bulkprocess.ManifestRow) error {
	table := w.Client.Dataset(w.Database).Table(w.Table)

	if _, err := table.Metadata(w.Context); err != nil {
		schema, err := bigquery.InferSchema(bulkprocess.ManifestRow{})
		if err != nil {
			return pfx.Err(err)
		}
		if err := table.Create(w.Context, &bigquery.TableMetadata{Schema: schema}); err != nil {
			return pfx.Err(err)
		}
	}

	inserter := table.Inserter()
	for _, batch := range Batches(rows, insertBatch) {
		if err := inserter.Put(w.Context, batch); err != nil {
			return pfx.Err(err)
		}
	}

	return nil
}

// Batches splits rows into consecutive groups of at most size rows.
func Batches(rows []bulkprocess.ManifestRow, size int) [][]bulkprocess.ManifestRow {
	if size < 1 {
		size = 1
	}
	out := make([][]bulkprocess.ManifestRow, 0, len(rows)/size+1)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

// SeriesCount is one row of SeriesCounts.
type SeriesCount struct {
	SeriesID string `bigquery:"series_id"`
	Slices   int64  `bigquery:"slices"`
}

// SeriesCounts reads back how many slices each series has in the table,
// optionally restricted to one patient.
func (w *WrappedBigQuery) SeriesCounts(patientID string) (map[string]int64, error) {
	query := w.Client.Query(fmt.Sprintf("SELECT series_id, COUNT(*) AS slices\nFROM `%s.%s.%s`\nWHERE @patient_id = '' OR patient_id = @patient_id\nGROUP BY series_id\nORDER BY series_id", w.Project, w.Database, w.Table))

	query.QueryConfig.Parameters = append(query.QueryConfig.Parameters, []bigquery.QueryParameter{
		{Name: "patient_id", Value: patientID},
	}...)

	itr, err := query.Read(w.Context)
	if err != nil {
		return nil, pfx.Err(fmt.Sprint(err.Error(), query.Parameters))
	}

	out := make(map[string]int64)
	for {
		var r SeriesCount
		err := itr.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(err)
		}
		out[r.SeriesID] = r.Slices
	}

	return out, nil
}
