// Package catalog keeps a SQLite index of the series found in the last scanned
// folder, so that tools can list series without decoding pixels again.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/guregu/null.v3"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	folder TEXT NOT NULL,
	scanned_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS series (
	series_id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	slice_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS slice (
	series_id TEXT NOT NULL REFERENCES series(series_id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	file TEXT NOT NULL,
	instance_number INTEGER NOT NULL,
	slice_location REAL NOT NULL,
	pixel_rows INTEGER NOT NULL,
	pixel_cols INTEGER NOT NULL,
	study_date DATETIME,
	window_center INTEGER,
	window_width INTEGER,
	PRIMARY KEY (series_id, position)
);
`

// SeriesRow is one indexed series.
type SeriesRow struct {
	SeriesID   string `db:"series_id"`
	Label      string `db:"label"`
	SliceCount int    `db:"slice_count"`
}

// SliceRow is one indexed slice. The window columns are null when the slice
// was copied through without windowing (8-bit data).
type SliceRow struct {
	SeriesID       string    `db:"series_id"`
	Position       int       `db:"position"`
	File           string    `db:"file"`
	InstanceNumber int       `db:"instance_number"`
	SliceLocation  float64   `db:"slice_location"`
	Rows           int       `db:"pixel_rows"`
	Cols           int       `db:"pixel_cols"`
	StudyDate      null.Time `db:"study_date"`
	WindowCenter   null.Int  `db:"window_center"`
	WindowWidth    null.Int  `db:"window_width"`
}

type Catalog struct {
	db *sqlx.DB
}

// Open creates or opens the catalog at path.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, pfx.Err(err)
		}
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pfx.Err(fmt.Sprint("apply schema: ", err.Error()))
	}

	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Replace discards the previous index and stores m as the content of folder,
// all in one transaction.
func (c *Catalog) Replace(ctx context.Context, folder string, m bulkprocess.SeriesMap) (err error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return pfx.Err(err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM slice`, `DELETE FROM series`, `DELETE FROM scan`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return pfx.Err(err)
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO scan (id, folder, scanned_at) VALUES (1, ?, ?)`, folder, time.Now().UTC()); err != nil {
		return pfx.Err(err)
	}

	for _, label := range m.Labels() {
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO series (series_id, label, slice_count) VALUES (:series_id, :label, :slice_count)`,
			SeriesRow{SeriesID: label.ID, Label: label.Label, SliceCount: label.Count}); err != nil {
			return pfx.Err(err)
		}

		for i, s := range m[label.ID] {
			if _, err = tx.NamedExecContext(ctx, `INSERT INTO slice
				(series_id, position, file, instance_number, slice_location, pixel_rows, pixel_cols, study_date, window_center, window_width)
				VALUES
				(:series_id, :position, :file, :instance_number, :slice_location, :pixel_rows, :pixel_cols, :study_date, :window_center, :window_width)`,
				NewSliceRow(s, i)); err != nil {
				return pfx.Err(err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// NewSliceRow flattens the slice at position in its series.
func NewSliceRow(s bulkprocess.SliceRecord, position int) SliceRow {
	row := SliceRow{
		SeriesID:       s.SeriesID,
		Position:       position,
		File:           s.FilePath,
		InstanceNumber: s.InstanceNumber,
		SliceLocation:  s.SliceLocation,
	}
	if s.Image != nil {
		row.Rows = s.Image.Bounds().Dy()
		row.Cols = s.Image.Bounds().Dx()
	}
	if s.Window.IsSet() {
		row.WindowCenter = null.IntFrom(int64(s.Window.Center))
		row.WindowWidth = null.IntFrom(int64(s.Window.Width))
	}
	if parsed, ok := bulkprocess.ParseDicomDate(s.StudyDate); ok {
		row.StudyDate = null.TimeFrom(parsed)
	}
	return row
}

// Folder returns the folder of the last Replace, or "" if the catalog is empty.
func (c *Catalog) Folder(ctx context.Context) (string, error) {
	var folders []string
	if err := c.db.SelectContext(ctx, &folders, `SELECT folder FROM scan WHERE id = 1`); err != nil {
		return "", pfx.Err(err)
	}
	if len(folders) == 0 {
		return "", nil
	}
	return folders[0], nil
}

// Series lists the indexed series ordered by id.
func (c *Catalog) Series(ctx context.Context) ([]SeriesRow, error) {
	out := []SeriesRow{}
	if err := c.db.SelectContext(ctx, &out, `SELECT series_id, label, slice_count FROM series ORDER BY series_id`); err != nil {
		return nil, pfx.Err(err)
	}
	return out, nil
}

// Slices lists one series in display order.
func (c *Catalog) Slices(ctx context.Context, seriesID string) ([]SliceRow, error) {
	out := []SliceRow{}
	err := c.db.SelectContext(ctx, &out, `SELECT series_id, position, file, instance_number, slice_location, pixel_rows, pixel_cols, study_date, window_center, window_width
		FROM slice WHERE series_id = ? ORDER BY position`, seriesID)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return out, nil
}
