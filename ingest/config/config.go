// Package config loads the optional HCL settings file shared by the tools.
//
// Example:
//
//	folder      = "~/data/mri/series1"
//	patterns    = ["*.dcm", "*.dicom", "*"]
//	archives    = true
//	concurrency = 4
//	listen      = ":8080"
//	catalog     = "~/.seriesviewer/catalog.db"
//
//	window {
//	  center = 40
//	  width  = 400
//	}
package config

import (
	"fmt"
	"runtime"

	"github.com/carbocation/genomisc"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/broadinstitute/seriesviewer/ingest/bulkprocess"
)

type WindowBlock struct {
	Center int `hcl:"center"`
	Width  int `hcl:"width"`
}

type Config struct {
	Folder      string       `hcl:"folder,optional"`
	Patterns    []string     `hcl:"patterns,optional"`
	Archives    *bool        `hcl:"archives,optional"`
	Concurrency int          `hcl:"concurrency,optional"`
	Listen      string       `hcl:"listen,optional"`
	Catalog     string       `hcl:"catalog,optional"`
	Verbose     bool         `hcl:"verbose,optional"`
	Window      *WindowBlock `hcl:"window,block"`
}

// Default is used when no settings file is given.
func Default() Config {
	archives := true
	return Config{
		Patterns:    append([]string{}, bulkprocess.DefaultPatterns...),
		Archives:    &archives,
		Concurrency: runtime.NumCPU(),
		Listen:      ":8080",
	}
}

// Load reads path and fills unset values from Default. An empty path returns
// Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var fromFile Config
	if err := hclsimple.DecodeFile(expandHome(path), nil, &fromFile); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	if fromFile.Folder != "" {
		cfg.Folder = fromFile.Folder
	}
	if len(fromFile.Patterns) > 0 {
		cfg.Patterns = fromFile.Patterns
	}
	if fromFile.Archives != nil {
		cfg.Archives = fromFile.Archives
	}
	if fromFile.Concurrency > 0 {
		cfg.Concurrency = fromFile.Concurrency
	}
	if fromFile.Listen != "" {
		cfg.Listen = fromFile.Listen
	}
	if fromFile.Catalog != "" {
		cfg.Catalog = fromFile.Catalog
	}
	cfg.Verbose = fromFile.Verbose
	cfg.Window = fromFile.Window

	cfg.Folder = expandHome(cfg.Folder)
	cfg.Catalog = expandHome(cfg.Catalog)

	return cfg, nil
}

func expandHome(path string) string {
	if len(path) < 2 {
		return path
	}
	return genomisc.ExpandHome(path)
}

// WindowSetting is the configured window, or UnsetWindow to auto-fit.
func (c Config) WindowSetting() bulkprocess.Window {
	if c.Window == nil {
		return bulkprocess.UnsetWindow
	}
	return bulkprocess.Window{Center: c.Window.Center, Width: c.Window.Width}
}

func (c Config) ScanOptions() bulkprocess.ScanOptions {
	opts := bulkprocess.ScanOptions{Patterns: c.Patterns, ExpandArchives: true}
	if c.Archives != nil {
		opts.ExpandArchives = *c.Archives
	}
	return opts
}

func (c Config) Organizer(parser bulkprocess.Parser) bulkprocess.Organizer {
	return bulkprocess.Organizer{
		Parser:      parser,
		Window:      c.WindowSetting(),
		Concurrency: c.Concurrency,
		Verbose:     c.Verbose,
	}
}
