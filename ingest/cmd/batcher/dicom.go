package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

// Exporter renders single DICOM files to image files in Out.
type Exporter struct {
	Parser bulkprocess.Parser
	Window bulkprocess.Window
	Crop   bulkprocess.Selection
	PNG    bool
	Out    string
}

// Render decodes the first frame of path and crops it to e.Crop.
func (e Exporter) Render(path string) (*image.Gray, error) {
	ds, buf, err := e.Parser.Parse(path)
	if err != nil {
		return nil, err
	}

	rec := bulkprocess.NewSliceRecord(path, ds, buf, e.Window)

	r := e.Crop.Rect(rec.Image.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("%s: %s lies outside the %dx%d image", path, e.Crop, rec.Image.Bounds().Dx(), rec.Image.Bounds().Dy())
	}

	return rec.Image.SubImage(r).(*image.Gray), nil
}

// Export renders path and writes it to Out, returning the written file.
func (e Exporter) Export(path string) (string, error) {
	img, err := e.Render(path)
	if err != nil {
		return "", err
	}

	name := outputName(path)
	if e.PNG {
		name += ".png"
	} else {
		name += ".jpg"
	}
	extractedPath := filepath.Join(e.Out, name)

	f, err := os.OpenFile(extractedPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if e.PNG {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	}
	if err != nil {
		return "", err
	}

	return extractedPath, f.Close()
}

// outputName flattens a possibly archived path into one file name, so members
// of different archives do not collide.
func outputName(path string) string {
	if zipPath, entry, ok := bulkprocess.SplitArchivePath(path); ok {
		zipBase := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
		return zipBase + "_" + strings.ReplaceAll(entry, "/", "_")
	}
	return filepath.Base(path)
}
