/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration of the extraction pipeline. Covers input and output locations, the
layout text scope, OCR and translation settings, caching and concurrency.
*/

package pipeline

import (
	"fmt"
	"runtime"
	"time"

	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/deepintent-ccs/DeepIntent/pkg/layout"
	"github.com/deepintent-ccs/DeepIntent/pkg/ocr"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
)

// Progress levels understood by LogObserver
const (
	LogLevelSilent   = 0
	LogLevelProgress = 1
	LogLevelVerbose  = 2
)

// Config holds the pipeline configuration
type Config struct {
	RecordsPath string `json:"records_path"` // CSV, zipped CSV or JSONL records
	AppsDir     string `json:"apps_dir"`     // Directory of decoded apps
	OutputPath  string `json:"output_path"`  // JSONL results file
	ReportDir   string `json:"report_dir"`   // Summary report directory, empty to skip
	LogLevel    int    `json:"log_level"`    // 0 silent, 1 progress, 2 verbose

	LayoutScope string `json:"layout_scope"` // "parent" or "total"
	MaxDepth    int    `json:"max_depth"`    // Descriptor nesting cap
	Seed        int64  `json:"seed"`         // Seed for random descriptors, 0 for time based

	OCREnabled    bool    `json:"ocr_enabled"`
	OCRWidth      int     `json:"ocr_width"`
	OCRHeight     int     `json:"ocr_height"`
	OCRPadding    float64 `json:"ocr_padding"`
	OCRCache      bool    `json:"ocr_cache"`
	TesseractPath string  `json:"tesseract_path"`

	Translate        bool   `json:"translate"`
	TranslateCache   bool   `json:"translate_cache"`
	TranslateCommand string `json:"translate_command"` // Command line reading text on stdin

	Normalize bool `json:"normalize"` // NFKC and whitespace folding of all texts
	Workers   int  `json:"workers"`

	CacheBackend string        `json:"cache_backend"` // memory, ttl, leveldb or none
	CacheDir     string        `json:"cache_dir"`     // leveldb directory
	CacheTTL     time.Duration `json:"cache_ttl"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	o := ocr.DefaultConfig()
	return &Config{
		OutputPath:     "results.jsonl",
		LogLevel:       LogLevelProgress,
		LayoutScope:    string(layout.ScopeParent),
		MaxDepth:       resources.DefaultMaxDepth,
		OCREnabled:     true,
		OCRWidth:       o.Width,
		OCRHeight:      o.Height,
		OCRPadding:     o.Padding,
		OCRCache:       true,
		TesseractPath:  "tesseract",
		Translate:      true,
		TranslateCache: true,
		Normalize:      true,
		Workers:        runtime.NumCPU(),
		CacheBackend:   string(cache.BackendMemory),
		CacheTTL:       cache.DefaultTTL,
	}
}

// Validate checks the Config for invalid values. Out of range log levels and
// unknown layout scopes fall back to their defaults.
func (c *Config) Validate() error {
	if c.AppsDir == "" {
		return fmt.Errorf("apps_dir must not be empty")
	}
	if c.LogLevel < LogLevelSilent || c.LogLevel > LogLevelVerbose {
		c.LogLevel = LogLevelSilent
	}
	c.LayoutScope = string(layout.ParseScope(c.LayoutScope))
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.OCREnabled {
		if c.OCRWidth <= 0 || c.OCRHeight <= 0 {
			return fmt.Errorf("ocr size must be positive")
		}
		if c.OCRPadding < 0 || c.OCRPadding >= 1 {
			return fmt.Errorf("ocr_padding must be in [0, 1)")
		}
	}
	backend, err := cache.ParseBackend(c.CacheBackend)
	if err != nil {
		return err
	}
	if backend == cache.BackendLevelDB && c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required by the leveldb cache")
	}
	return nil
}

func (c *Config) ocrConfig() ocr.Config {
	o := ocr.DefaultConfig()
	o.Width = c.OCRWidth
	o.Height = c.OCRHeight
	o.Padding = c.OCRPadding
	return o
}
