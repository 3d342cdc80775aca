package bulkprocess

import (
	"image"
)

// SliceRecord holds one decoded file: the display grid plus the subset of the
// metadata which we need to group, order and describe slices. It is built once
// per file read and not modified afterwards.
type SliceRecord struct {
	Image    *image.Gray
	FilePath string

	// SeriesID groups slices into a volume. Records with an empty SeriesID are
	// never placed in a series.
	SeriesID          string
	SeriesDescription string

	// InstanceNumber is 0 when the file does not declare one.
	InstanceNumber int

	// PixelSpacing is (row, column) in mm.
	PixelSpacing   [2]float64
	SliceThickness float64
	Position       [3]float64
	RowCosines     [3]float64
	ColumnCosines  [3]float64

	// SliceLocation orders slices whose instance numbers are unusable. It is
	// the z component of Position.
	SliceLocation float64

	// Window is the window/level actually applied when Image was rendered.
	Window Window

	PatientName     string
	PatientID       string
	StudyDate       string
	Modality        string
	AcquisitionTime string
	TriggerTime     float64
}

// NewSliceRecord decodes buf with win and pulls identity and geometry out of
// ds. Missing or malformed fields fall back to zero values.
func NewSliceRecord(path string, ds Dataset, buf PixelBuffer, win Window) SliceRecord {
	img, used := DecodePixels(buf, win)

	out := SliceRecord{
		Image:    img,
		FilePath: path,
		Window:   used,

		SeriesID:          ReadString(ds, SeriesInstanceUID),
		SeriesDescription: ReadString(ds, SeriesDescription),
		InstanceNumber:    int(ReadNumber(ds, InstanceNumber)),

		PixelSpacing: [2]float64{
			ReadNumberAt(ds, PixelSpacing, 0),
			ReadNumberAt(ds, PixelSpacing, 1),
		},
		SliceThickness: ReadNumber(ds, SliceThickness),

		PatientName:     ReadString(ds, PatientName),
		PatientID:       ReadString(ds, PatientID),
		StudyDate:       ReadString(ds, StudyDate),
		Modality:        ReadString(ds, Modality),
		AcquisitionTime: ReadString(ds, AcquisitionTime),
		TriggerTime:     ReadNumber(ds, TriggerTime),
	}

	for i := 0; i < 3; i++ {
		out.Position[i] = ReadNumberAt(ds, ImagePositionPatient, i)
		out.RowCosines[i] = ReadNumberAt(ds, ImageOrientationPatient, i)
		out.ColumnCosines[i] = ReadNumberAt(ds, ImageOrientationPatient, i+3)
	}

	out.SliceLocation = out.Position[2]

	return out
}

// Label is what a series picker shows for the series this slice heads.
func (s SliceRecord) Label() string {
	if s.SeriesDescription != "" {
		return s.SeriesDescription
	}
	return s.SeriesID
}
