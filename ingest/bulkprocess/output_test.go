package bulkprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSliceRecord(t *testing.T) {
	ds := fakeDataset{
		SeriesInstanceUID:       "1.2.840.1 ",
		SeriesDescription:       "CINE_segmented_SAX_b1",
		InstanceNumber:          "7",
		PixelSpacing:            `1.5\1.25`,
		SliceThickness:          "8",
		ImagePositionPatient:    `-120.5\-90\42.25`,
		ImageOrientationPatient: `1\0\0\0\1\0`,
		PatientID:               "1234567",
		StudyDate:               "20200115",
		Modality:                "MR",
		TriggerTime:             "32.5",
	}
	buf := PixelBuffer{Width: 2, Height: 3, BitsAllocated: 16, SamplesPerPixel: 1, Samples: []int{0, 1, 2, 3, 4, 5}}

	rec := NewSliceRecord("/data/x.dcm", ds, buf, UnsetWindow)

	assert.Equal(t, "1.2.840.1", rec.SeriesID)
	assert.Equal(t, "CINE_segmented_SAX_b1", rec.Label())
	assert.Equal(t, 7, rec.InstanceNumber)
	assert.Equal(t, [2]float64{1.5, 1.25}, rec.PixelSpacing)
	assert.Equal(t, [3]float64{-120.5, -90, 42.25}, rec.Position)
	assert.Equal(t, [3]float64{1, 0, 0}, rec.RowCosines)
	assert.Equal(t, [3]float64{0, 1, 0}, rec.ColumnCosines)
	assert.Equal(t, 42.25, rec.SliceLocation)
	assert.Equal(t, 32.5, rec.TriggerTime)
	assert.Equal(t, Window{Center: 2, Width: 5}, rec.Window)
	require.NotNil(t, rec.Image)
	assert.Equal(t, 2, rec.Image.Bounds().Dx())
	assert.Equal(t, 3, rec.Image.Bounds().Dy())
}

func TestNewSliceRecordDefaults(t *testing.T) {
	rec := NewSliceRecord("x", fakeDataset{}, PixelBuffer{}, UnsetWindow)

	assert.Equal(t, "", rec.SeriesID)
	assert.Equal(t, 0, rec.InstanceNumber)
	assert.Equal(t, 0.0, rec.SliceLocation)
	assert.Equal(t, "", rec.Label())
}

func TestManifestRows(t *testing.T) {
	m := SeriesMap{
		"B": {
			{SeriesID: "B", FilePath: "b1", InstanceNumber: 1, StudyDate: "20200115", Window: Window{40, 400}},
		},
		"A": {
			{SeriesID: "A", FilePath: "a1", StudyDate: "garbage", Window: UnsetWindow},
			{SeriesID: "A", FilePath: "a2", Window: UnsetWindow},
		},
	}

	rows := ManifestRows(m)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a1", "a2", "b1"}, []string{rows[0].File, rows[1].File, rows[2].File})
	assert.Equal(t, 1, rows[1].Position)
	assert.Equal(t, 2, rows[1].SeriesCount)

	header := strings.Split(ManifestHeader(), "\t")
	for _, row := range rows {
		assert.Len(t, strings.Split(row.TSV(), "\t"), len(header))
	}

	b := strings.Split(rows[2].TSV(), "\t")
	assert.Equal(t, "2020-01-15", b[7])
	assert.Equal(t, "40,400", b[18])

	a := strings.Split(rows[0].TSV(), "\t")
	assert.Equal(t, "garbage", a[7])
	assert.Equal(t, "auto", a[18])
}

func TestKnownTags(t *testing.T) {
	tags := KnownTags()
	require.NotEmpty(t, tags)
	for i := 1; i < len(tags); i++ {
		assert.True(t, tags[i-1].Tag.Less(tags[i].Tag), "%v before %v", tags[i-1].Tag, tags[i].Tag)
	}

	assert.Equal(t, "Series Instance UID", TagName(SeriesInstanceUID))
	assert.Equal(t, "", TagName(Tag{Group: 0x0029, Element: 0x1010}))
	assert.Equal(t, "(0020,000e)", SeriesInstanceUID.String())
	assert.Equal(t, "(0020,1041)", SliceLocation.String())
}
