package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
	"github.com/broadinstitute/seriesviewer/ingest/dicomio"
)

var FileColumn = -1

func main() {
	// Consumes a batch list with one DICOM path per row, e.g. the output of
	// manifester. Archive members are addressed as archive.zip!member.

	// Renders every requested slice to an image in a folder, and emits an
	// updated batch file with the image path appended to each row.

	var batchPath, outPath, delimiter, window, roi string
	var makePNG bool

	flag.StringVar(&batchPath, "batch", "", "File whose rows each name one DICOM file (a 'file' header column, or any column ending in .dcm or holding a .zip! path).")
	flag.StringVar(&outPath, "out", "", "Folder for the rendered images. Defaults to a fresh folder in the temp directory.")
	flag.StringVar(&delimiter, "delimiter", "\t", "Field delimiter for your batch file, if not a tab")
	flag.StringVar(&window, "window", "", "Window as center,width. Empty fits each frame.")
	flag.StringVar(&roi, "roi", "", "Crop every image to a rectangle. Pass 4 comma-sep values: x,y,width,height")
	flag.BoolVar(&makePNG, "png", false, "Write PNG instead of JPEG")

	flag.Parse()

	win, err := bulkprocess.ParseWindow(window)
	if err != nil {
		log.Fatalln(err)
	}

	sel, err := ParseSelection(roi)
	if err != nil {
		log.Fatalln(err)
	}

	comma, err := ParseDelimiter(delimiter)
	if err != nil {
		log.Fatalln(err)
	}

	// Setup the output folder
	if outPath == "" {
		outPath = filepath.Join(os.TempDir(), RandOrthoglyphs(15))
	}
	if err := os.MkdirAll(outPath, os.ModePerm); err != nil {
		log.Fatalln(err)
	}

	log.Println("Writing requested images to:", outPath)

	f, err := os.Open(batchPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1

	log.Println("Delimiter is", strconv.QuoteRune(r.Comma))

	updatedBatchPath := filepath.Join(outPath, filepath.Base(batchPath))
	updatedBatchFile, err := os.OpenFile(updatedBatchPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		log.Fatalln("Couldn't create the updated batch file:", err.Error())
	}
	defer updatedBatchFile.Close()

	exporter := Exporter{
		Parser: dicomio.Parser{},
		Window: win,
		Crop:   sel,
		PNG:    makePNG,
		Out:    outPath,
	}

	requestCount := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}

		if requestCount == 0 {
			FileColumn = detectFileColumn(record)
			if FileColumn == -1 {
				log.Fatalln("File column could not be detected")
			}
			log.Println("Zero-based file field is", FileColumn, "E.g.:", record[FileColumn])

			if record[FileColumn] == "file" {
				// Header row
				requestCount++
				if err := AppendOpenFile(updatedBatchFile, append(record, "image"), r.Comma); err != nil {
					log.Fatalln(err)
				}
				continue
			}
		}
		requestCount++

		if FileColumn >= len(record) {
			log.Fatalf("Row %d has %d columns, expected at least %d\n", requestCount, len(record), FileColumn+1)
		}

		extractedPath, err := exporter.Export(record[FileColumn])
		if err != nil {
			log.Fatalln(err)
		}

		if err := AppendOpenFile(updatedBatchFile, append(record, extractedPath), r.Comma); err != nil {
			log.Fatalln(err)
		}

		// By emitting the output path, we facilitate making this into a
		// pipe-able tool.
		fmt.Println(extractedPath)
	}
}

// detectFileColumn finds the column naming the DICOM file, either by header
// or by the look of the first row's values.
func detectFileColumn(record []string) int {
	for i, v := range record {
		if v == "file" {
			return i
		}
	}
	for i, v := range record {
		if strings.Contains(strings.ToLower(v), ".zip"+bulkprocess.ArchiveSeparator) {
			return i
		}
	}
	for i, v := range record {
		lower := strings.ToLower(v)
		if strings.HasSuffix(lower, ".dcm") || strings.HasSuffix(lower, ".dicom") {
			return i
		}
	}
	return -1
}

func AppendOpenFile(file *os.File, line []string, delimiter rune) error {
	b := strings.Builder{}

	elems := len(line)
	for i, v := range line {
		b.WriteString(v)

		if i < elems-1 {
			// Prevent naked tab at the end
			b.WriteRune(delimiter)
		}
	}
	b.WriteByte('\n')

	_, err := file.WriteString(b.String())

	return err
}
