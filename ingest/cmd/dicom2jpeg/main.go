package main

import (
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
	"github.com/broadinstitute/seriesviewer/ingest/dicomio"
)

// See 'manifester' for a process that walks a whole folder of series

var (
	printMetadata = flag.Bool("print-metadata", false, "Print every tag of the file")
	filter        = flag.String("filter", "", "With -print-metadata, only print tags whose name, value or VR contains this text")
	window        = flag.String("window", "", "Window as center,width. Leave empty to fit each frame's own range")
	outDir        = flag.String("out", ".", "Directory where the rendered image is written")
	asPNG         = flag.Bool("png", false, "Write PNG instead of JPEG")
	verbose       = flag.Bool("verbose", false, "Dump the decoded slice record")
)

func main() {
	// Update usage docs
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n%s <dicom file> [flags]\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()
	if len(flag.Args()) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	win, err := bulkprocess.ParseWindow(*window)
	if err != nil {
		log.Fatalln(err)
	}

	parser := dicomio.Parser{}
	ds, buf, err := parser.Parse(path)
	if err != nil {
		log.Fatalf("Error reading %s: %v\n", path, err)
	}

	rec := bulkprocess.NewSliceRecord(path, ds, buf, win)
	if !buf.Supported() {
		log.Printf("Warning: %s uses an encoding that cannot be displayed (%d bits, %d samples per pixel); writing a blank image\n",
			path, buf.BitsAllocated, buf.SamplesPerPixel)
	}

	if *verbose {
		record := rec
		record.Image = nil
		spew.Fdump(os.Stderr, record)
	}

	if *printMetadata {
		entries := bulkprocess.FilterEntries(bulkprocess.Enumerate(ds, dicomio.Dictionary{}), *filter)
		for _, e := range entries {
			fmt.Printf("%s: VR %s: %s\n", e.Label(), e.VR, e.Value)
		}
		log.Printf("This is image %d of series %q. Window %s.", rec.InstanceNumber, rec.Label(), rec.Window)
		log.Printf("Patient position: %.2f %.2f %.2f\n", rec.Position[0], rec.Position[1], rec.Position[2])
	}

	name, err := writeImage(rec.Image, path)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("%s written\n", name)
}

func writeImage(img image.Image, source string) (string, error) {
	base := filepath.Base(source)
	if _, entry, ok := bulkprocess.SplitArchivePath(source); ok {
		base = filepath.Base(entry)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	ext := ".jpg"
	if *asPNG {
		ext = ".png"
	}
	name := filepath.Join(*outDir, base+ext)

	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if *asPNG {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	}
	if err != nil {
		return "", err
	}

	return name, f.Close()
}
