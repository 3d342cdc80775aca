package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
	"github.com/broadinstitute/seriesviewer/ingest/catalog"
	"github.com/broadinstitute/seriesviewer/ingest/config"
	"github.com/broadinstitute/seriesviewer/ingest/dicomio"
	"github.com/broadinstitute/seriesviewer/ingest/viewer"
)

func main() {
	var (
		configPath string
		folder     string
		listen     string
		window     string
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "", "Optional HCL settings file")
	flag.StringVar(&folder, "folder", "", "Folder of DICOM files to open. Overrides the config file.")
	flag.StringVar(&listen, "listen", "", "Address to serve on. Overrides the config file.")
	flag.StringVar(&window, "window", "", "Window as center,width. Overrides the config file. Empty fits each frame.")
	flag.BoolVar(&verbose, "verbose", false, "Log skipped files and every request")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n%s -folder <dir> [flags]\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if folder != "" {
		cfg.Folder = folder
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if verbose {
		cfg.Verbose = true
	}

	parser := dicomio.Parser{}
	org := cfg.Organizer(parser)
	if window != "" {
		if org.Window, err = bulkprocess.ParseWindow(window); err != nil {
			log.Fatalln(err)
		}
	}

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Folder == "" && cfg.Catalog != "" {
		cfg.Folder = lastFolder(cfg.Catalog)
	}

	opts := viewer.Options{
		Folder:     cfg.Folder,
		Scan:       cfg.ScanOptions(),
		Organizer:  org,
		Dictionary: dicomio.Dictionary{},
	}
	if cfg.Catalog != "" {
		catalogPath := cfg.Catalog
		opts.OnReload = func(folder string, m bulkprocess.SeriesMap) error {
			return index(catalogPath, folder, m)
		}
	}
	srv := viewer.New(opts)

	// Without a folder the viewer starts in the empty state and waits for
	// POST /reload.
	if cfg.Folder != "" {
		if err := srv.Reload(); err != nil {
			log.Println("Could not load", cfg.Folder+":", err)
		}
	}

	var middleware []gin.HandlerFunc
	if cfg.Verbose {
		middleware = append(middleware, gin.Logger())
	}
	router := srv.Router(middleware...)

	log.Println("Serving on", cfg.Listen)
	if err := router.Run(cfg.Listen); err != nil {
		log.Fatalln(err)
	}
}

func index(path, folder string, series bulkprocess.SeriesMap) error {
	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.Replace(context.Background(), folder, series); err != nil {
		return err
	}
	log.Printf("Recorded %d series in %s\n", len(series), path)
	return nil
}

// lastFolder reopens the folder recorded by the previous run, if any.
func lastFolder(path string) string {
	cat, err := catalog.Open(path)
	if err != nil {
		log.Println("Could not open catalog:", err)
		return ""
	}
	defer cat.Close()

	folder, err := cat.Folder(context.Background())
	if err != nil {
		log.Println("Could not read catalog:", err)
		return ""
	}
	if folder != "" {
		log.Println("Reopening", folder)
	}
	return folder
}
