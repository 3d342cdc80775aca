package bulkprocess

import (
	"fmt"
	"strings"
	"time"
)

// ManifestRow is one slice of a series, in display order, flattened for TSV
// output and for loading into databases.
type ManifestRow struct {
	SeriesID          string  `bigquery:"series_id"`
	SeriesDescription string  `bigquery:"series_description"`
	Position          int     `bigquery:"position"`
	SeriesCount       int     `bigquery:"series_count"`
	File              string  `bigquery:"file"`
	PatientID         string  `bigquery:"patient_id"`
	Modality          string  `bigquery:"modality"`
	StudyDate         string  `bigquery:"study_date"`
	InstanceNumber    int     `bigquery:"instance_number"`
	Rows              int     `bigquery:"rows"`
	Cols              int     `bigquery:"cols"`
	PixelSpacingRow   float64 `bigquery:"pixel_spacing_row"`
	PixelSpacingCol   float64 `bigquery:"pixel_spacing_col"`
	SliceThickness    float64 `bigquery:"slice_thickness"`
	ImageX            float64 `bigquery:"image_x"`
	ImageY            float64 `bigquery:"image_y"`
	ImageZ            float64 `bigquery:"image_z"`
	SliceLocation     float64 `bigquery:"slice_location"`
	Window            string  `bigquery:"window"`
}

// ParsedDate interprets StudyDate.
func (r ManifestRow) ParsedDate() (time.Time, error) {
	res, ok := ParseDicomDate(r.StudyDate)
	if !ok {
		return time.Time{}, fmt.Errorf("could not parse study date %q", r.StudyDate)
	}
	return res, nil
}

// ManifestHeader names the TSV columns written by TSV.
func ManifestHeader() string {
	return strings.Join([]string{
		"series_id",
		"series_description",
		"position",
		"series_count",
		"file",
		"patient_id",
		"modality",
		"study_date",
		"instance_number",
		"rows",
		"cols",
		"pixel_spacing_row",
		"pixel_spacing_col",
		"slice_thickness",
		"image_x",
		"image_y",
		"image_z",
		"slice_location",
		"window",
	}, "\t")
}

// TSV renders the row. Unparsable study dates are emitted as found.
func (r ManifestRow) TSV() string {
	date := r.StudyDate
	if parsed, err := r.ParsedDate(); err == nil {
		date = parsed.Format("2006-01-02")
	}

	return fmt.Sprintf("%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%.4f\t%.4f\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t%s",
		r.SeriesID, r.SeriesDescription, r.Position, r.SeriesCount, r.File,
		r.PatientID, r.Modality, date, r.InstanceNumber, r.Rows, r.Cols,
		r.PixelSpacingRow, r.PixelSpacingCol, r.SliceThickness,
		r.ImageX, r.ImageY, r.ImageZ, r.SliceLocation, r.Window)
}

// NewManifestRow flattens one slice found at position within a series of count
// slices.
func NewManifestRow(s SliceRecord, position, count int) ManifestRow {
	row := ManifestRow{
		SeriesID:          s.SeriesID,
		SeriesDescription: s.SeriesDescription,
		Position:          position,
		SeriesCount:       count,
		File:              s.FilePath,
		PatientID:         s.PatientID,
		Modality:          s.Modality,
		StudyDate:         s.StudyDate,
		InstanceNumber:    s.InstanceNumber,
		PixelSpacingRow:   s.PixelSpacing[0],
		PixelSpacingCol:   s.PixelSpacing[1],
		SliceThickness:    s.SliceThickness,
		ImageX:            s.Position[0],
		ImageY:            s.Position[1],
		ImageZ:            s.Position[2],
		SliceLocation:     s.SliceLocation,
		Window:            s.Window.String(),
	}
	if s.Image != nil {
		row.Rows = s.Image.Bounds().Dy()
		row.Cols = s.Image.Bounds().Dx()
	}
	return row
}

// ManifestRows lists every slice of m, series by series in label order, each
// series in display order.
func ManifestRows(m SeriesMap) []ManifestRow {
	out := make([]ManifestRow, 0, m.Total())
	for _, label := range m.Labels() {
		stack := m[label.ID]
		for i, s := range stack {
			out = append(out, NewManifestRow(s, i, len(stack)))
		}
	}
	return out
}
