/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the iconctx commands. Provides configuration loading,
logging setup and the translation of viper settings into a pipeline configuration.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/deepintent-ccs/DeepIntent/pkg/logging"
	"github.com/deepintent-ccs/DeepIntent/pkg/pipeline"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ICONCTX_APPS_DIR
const EnvPrefix = "ICONCTX"

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the logging system from the log_* settings
func SetupLogging() (*logging.Logger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = logging.LevelForProgress(viper.GetInt("log_level"))
	cfg.Format = logging.LogFormat(viper.GetString("log_format"))
	cfg.OutputDir = viper.GetString("log_dir")
	cfg.MaxFiles = viper.GetInt("log_max_files")
	cfg.MaxSize = viper.GetInt64("log_max_size")
	cfg.Colors = !viper.GetBool("no_color")

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// PipelineConfig builds the pipeline configuration from viper settings
func PipelineConfig() *pipeline.Config {
	cfg := pipeline.DefaultConfig()

	cfg.RecordsPath = viper.GetString("records")
	cfg.AppsDir = viper.GetString("apps_dir")
	cfg.OutputPath = viper.GetString("output")
	cfg.ReportDir = viper.GetString("report_dir")
	cfg.LogLevel = viper.GetInt("log_level")

	cfg.LayoutScope = viper.GetString("layout_scope")
	cfg.MaxDepth = viper.GetInt("max_depth")
	cfg.Seed = viper.GetInt64("seed")

	cfg.OCREnabled = viper.GetBool("ocr.enabled")
	cfg.OCRWidth = viper.GetInt("ocr.width")
	cfg.OCRHeight = viper.GetInt("ocr.height")
	cfg.OCRPadding = viper.GetFloat64("ocr.padding")
	cfg.OCRCache = viper.GetBool("ocr.cache")
	cfg.TesseractPath = viper.GetString("ocr.tesseract")

	cfg.Translate = viper.GetBool("translate.enabled")
	cfg.TranslateCache = viper.GetBool("translate.cache")
	cfg.TranslateCommand = viper.GetString("translate.command")

	cfg.Normalize = viper.GetBool("normalize")
	if workers := viper.GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}

	cfg.CacheBackend = viper.GetString("cache.backend")
	cfg.CacheDir = viper.GetString("cache.dir")
	if ttl := viper.GetDuration("cache.ttl"); ttl > 0 {
		cfg.CacheTTL = ttl
	}
	return cfg
}

// resolverOptions returns the resolver options shared by the single icon commands
func resolverOptions() []resources.Option {
	opts := []resources.Option{resources.WithMaxDepth(viper.GetInt("max_depth"))}
	if seed := viper.GetInt64("seed"); seed != 0 {
		opts = append(opts, resources.WithSeed(seed))
	}
	return opts
}

// prepare runs LoadConfig and SetupLogging
func prepare() (*logging.Logger, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return SetupLogging()
}
