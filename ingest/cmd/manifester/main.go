package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/broadinstitute/seriesviewer/ingest/bqsink"
	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
	"github.com/broadinstitute/seriesviewer/ingest/catalog"
	"github.com/broadinstitute/seriesviewer/ingest/config"
	"github.com/broadinstitute/seriesviewer/ingest/dicomio"
)

func main() {
	// Makes one combined manifest of every series in a folder
	// Emits to stdout

	var (
		path        string
		configPath  string
		window      string
		concurrency int
		sqlitePath  string
		bqProject   string
		bqDataset   string
		bqTable     string
		verbose     bool
	)

	flag.StringVar(&path, "path", "", "Folder holding the DICOM files (and .zip archives of them). Overrides the config file.")
	flag.StringVar(&configPath, "config", "", "Optional HCL settings file")
	flag.StringVar(&window, "window", "", "Window as center,width. Overrides the config file. Empty fits each frame.")
	flag.IntVar(&concurrency, "concurrency", 0, "Files decoded at once. Overrides the config file.")
	flag.StringVar(&sqlitePath, "sqlite", "", "If set, also record the series in this SQLite catalog")
	flag.StringVar(&bqProject, "bq-project", "", "If set with -bq-dataset and -bq-table, also load the manifest into BigQuery")
	flag.StringVar(&bqDataset, "bq-dataset", "", "BigQuery dataset")
	flag.StringVar(&bqTable, "bq-table", "", "BigQuery table")
	flag.BoolVar(&verbose, "verbose", false, "Log files that were skipped")

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if path != "" {
		cfg.Folder = path
	}
	if cfg.Folder == "" {
		cfg.Folder = "./"
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if verbose {
		cfg.Verbose = true
	}

	org := cfg.Organizer(dicomio.Parser{})
	if window != "" {
		if org.Window, err = bulkprocess.ParseWindow(window); err != nil {
			log.Fatalln(err)
		}
	}

	series, err := bulkprocess.LoadSeries(cfg.Folder, cfg.ScanOptions(), org)
	if errors.Is(err, bulkprocess.ErrNoUsableFiles) {
		log.Fatalln("No usable DICOM files were found in", cfg.Folder)
	} else if err != nil {
		log.Fatalln(err)
	}

	rows := bulkprocess.ManifestRows(series)

	fmt.Println(bulkprocess.ManifestHeader())
	for _, row := range rows {
		fmt.Println(row.TSV())
	}

	ctx := context.Background()

	if sqlitePath != "" {
		if err := saveCatalog(ctx, sqlitePath, cfg.Folder, series); err != nil {
			log.Fatalln(err)
		}
		log.Printf("Recorded %d series in %s\n", len(series), sqlitePath)
	}

	if bqProject != "" || bqDataset != "" || bqTable != "" {
		if err := saveBigQuery(ctx, bqProject, bqDataset, bqTable, rows); err != nil {
			log.Fatalln(err)
		}
		log.Printf("Loaded %d rows into %s.%s.%s\n", len(rows), bqProject, bqDataset, bqTable)
	}
}

func saveCatalog(ctx context.Context, path, folder string, series bulkprocess.SeriesMap) error {
	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	return cat.Replace(ctx, folder, series)
}

func saveBigQuery(ctx context.Context, project, dataset, table string, rows []bulkprocess.ManifestRow) error {
	bq, err := bqsink.Connect(ctx, project, dataset, table)
	if err != nil {
		return err
	}
	defer bq.Close()

	if err := bq.Put(rows); err != nil {
		return err
	}

	// Read back what the table now holds, restricted to the patient when the
	// folder held only one
	patientID := ""
	for i, row := range rows {
		if i == 0 {
			patientID = row.PatientID
		} else if row.PatientID != patientID {
			patientID = ""
			break
		}
	}

	counts, err := bq.SeriesCounts(patientID)
	if err != nil {
		return err
	}
	for id, n := range counts {
		log.Printf("%s now holds %d slices for series %s\n", table, n, id)
	}

	return nil
}
