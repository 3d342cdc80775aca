// Package dicomio adapts github.com/suyashkumar/dicom to the Parser, Dataset
// and Dictionary boundaries of bulkprocess.
package dicomio

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

var (
	ErrNoPixelData = errors.New("no pixel data")
	ErrNoFrames    = errors.New("pixel data has no frames")
)

// Parser reads plain DICOM files and files inside zip archives (see
// bulkprocess.ArchivePath).
type Parser struct{}

var _ bulkprocess.Parser = Parser{}

func (p Parser) Parse(path string) (bulkprocess.Dataset, bulkprocess.PixelBuffer, error) {
	parsed, err := parse(path)
	if err != nil {
		return nil, bulkprocess.PixelBuffer{}, err
	}

	buf, err := pixelBuffer(parsed)
	if err != nil {
		return nil, bulkprocess.PixelBuffer{}, fmt.Errorf("%s: %w", path, err)
	}

	return NewDataset(parsed), buf, nil
}

func (p Parser) ReadDataset(path string) (bulkprocess.Dataset, error) {
	parsed, err := parse(path, dicom.SkipPixelData())
	if err != nil {
		return nil, err
	}
	return NewDataset(parsed), nil
}

func parse(path string, opts ...dicom.ParseOption) (dicom.Dataset, error) {
	zipPath, entry, inArchive := bulkprocess.SplitArchivePath(path)
	if !inArchive {
		ds, err := dicom.ParseFile(path, nil, opts...)
		if err != nil {
			return dicom.Dataset{}, fmt.Errorf("Error reading %s: %w", path, err)
		}
		return ds, nil
	}

	dcm, err := readArchiveEntry(zipPath, entry)
	if err != nil {
		return dicom.Dataset{}, err
	}

	ds, err := dicom.Parse(bytes.NewReader(dcm), int64(len(dcm)), nil, opts...)
	if err != nil {
		return dicom.Dataset{}, fmt.Errorf("Error reading %s: %w", path, err)
	}
	return ds, nil
}

func readArchiveEntry(zipPath, entry string) ([]byte, error) {
	rc, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	for _, v := range rc.File {
		if v.Name != entry {
			continue
		}

		f, err := v.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return io.ReadAll(f)
	}

	return nil, fmt.Errorf("%s not found in %s", entry, zipPath)
}

// pixelBuffer takes the first frame of the PixelData element. Encapsulated
// (compressed) frames come back without samples, which bulkprocess decodes to
// a blank grid.
func pixelBuffer(ds dicom.Dataset) (bulkprocess.PixelBuffer, error) {
	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return bulkprocess.PixelBuffer{}, ErrNoPixelData
	}

	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return bulkprocess.PixelBuffer{}, ErrNoPixelData
	}
	if len(info.Frames) == 0 {
		return bulkprocess.PixelBuffer{}, ErrNoFrames
	}

	out := bulkprocess.PixelBuffer{
		Width:           firstInt(ds, tag.Columns),
		Height:          firstInt(ds, tag.Rows),
		BitsAllocated:   firstInt(ds, tag.BitsAllocated),
		SamplesPerPixel: firstInt(ds, tag.SamplesPerPixel),
	}

	if info.IsEncapsulated {
		return out, nil
	}

	fr := info.Frames[0]
	native, err := fr.GetNativeFrame()
	if err != nil {
		return out, nil
	}

	out.Width = native.Cols
	out.Height = native.Rows
	if out.BitsAllocated == 0 {
		out.BitsAllocated = native.BitsPerSample
	}
	if out.SamplesPerPixel == 0 && len(native.Data) > 0 {
		out.SamplesPerPixel = len(native.Data[0])
	}

	out.Samples = make([]int, 0, len(native.Data)*out.SamplesPerPixel)
	for _, px := range native.Data {
		out.Samples = append(out.Samples, px...)
	}

	return out, nil
}

func firstInt(ds dicom.Dataset, t tag.Tag) int {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem.Value == nil {
		return 0
	}

	switch v := elem.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0]
		}
	case []string:
		if len(v) > 0 {
			n, err := strconv.Atoi(strings.TrimSpace(v[0]))
			if err == nil {
				return n
			}
		}
	}
	return 0
}
