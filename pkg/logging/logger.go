/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging setup for iconctx. Provides structured logrus logging to the console and a
timestamped log file, with text, JSON and custom formats and cleanup of old log files.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/deepintent-ccs/DeepIntent/pkg/pipeline"
	"github.com/deepintent-ccs/DeepIntent/pkg/records"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelFatal   LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// filePrefix names every log file written by NewLogger
const filePrefix = "iconctx_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // Empty for console only
	MaxFiles  int       `json:"max_files"`
	MaxSize   int64     `json:"max_size"` // in bytes
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    bool      `json:"colors"`
	Console   io.Writer `json:"-"` // Defaults to stdout
}

// DefaultLoggerConfig returns the console and ./logs configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		OutputDir: "./logs",
		MaxFiles:  10,
		MaxSize:   100 * 1024 * 1024, // 100MB
		Timestamp: true,
		Caller:    false,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" {
		if c.MaxFiles <= 0 {
			return fmt.Errorf("max_files must be positive")
		}
		if c.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive")
		}
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelFatal:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// LevelForProgress maps a progress level (0 silent, 1 progress, 2 verbose) to a log level
func LevelForProgress(level int) LogLevel {
	switch {
	case level >= pipeline.LogLevelVerbose:
		return LogLevelDebug
	case level == pipeline.LogLevelProgress:
		return LogLevelInfo
	default:
		return LogLevelWarning
	}
}

// Logger wraps a logrus logger and its log file
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)
	l.logger.SetFormatter(l.formatter())

	console := l.config.Console
	if console == nil {
		console = os.Stdout
	}
	l.logger.SetOutput(console)

	return l.setupFileOutput(console)
}

func (l *Logger) formatter() logrus.Formatter {
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}
	switch l.config.Format {
	case LogFormatJSON:
		return &logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: prettyCaller,
		}
	case LogFormatText:
		return &logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: prettyCaller,
		}
	default:
		return &RecordFormatter{CustomFormatter: CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		}}
	}
}

// setupFileOutput adds a timestamped log file next to the console output
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := l.startTime.Format("2006-01-02_15-04-05")
	path := filepath.Join(l.config.OutputDir, fmt.Sprintf("%s%s.log", filePrefix, timestamp))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   path,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("Logging initialized")
	return nil
}

// LogRecord logs the outcome of one record
func (l *Logger) LogRecord(res *pipeline.Result) {
	fields := logrus.Fields{
		"app":      res.Record.App,
		"image":    res.Record.Image,
		"layout":   res.Record.Layout,
		"path":     res.ImagePath,
		"bucket":   res.Bucket,
		"language": res.Language,
		"texts":    len(res.Texts.Layout) + len(res.Texts.Embedded) + len(res.Texts.Resource),
		"duration": res.Duration,
	}
	if res.Failed() {
		l.logger.WithFields(fields).WithError(res.Err).Warn("Record failed")
		return
	}
	l.logger.WithFields(fields).Info("Record processed")
}

// LogResolution logs the ranked candidate groups of a drawable lookup
func (l *Logger) LogResolution(rec records.Record, groups []resources.RankedGroup, issues []resources.DescriptorIssue) {
	for _, g := range groups {
		l.logger.WithFields(logrus.Fields{
			"app":    rec.App,
			"image":  rec.Image,
			"bucket": g.Bucket.String(),
			"paths":  g.Paths,
		}).Debug("Candidate group")
	}
	for _, issue := range issues {
		l.logger.WithFields(logrus.Fields{
			"app":   rec.App,
			"path":  issue.Path,
			"depth": issue.Depth,
		}).WithError(issue.Err).Warn("Descriptor skipped")
	}
}

// LogStats logs batch statistics
func (l *Logger) LogStats(stats *pipeline.Stats) {
	l.logger.WithFields(logrus.Fields{
		"records":       stats.Records,
		"completed":     stats.Completed,
		"failed":        stats.Failed,
		"icons_found":   stats.IconsFound,
		"found_ratio":   stats.FoundRatio(),
		"layout_hits":   stats.LayoutHits,
		"embedded_hits": stats.EmbeddedHits,
		"issues":        stats.Issues,
		"uptime":        time.Since(l.startTime),
	}).Info("Statistics update")
}

// FilePath returns the log file, empty when logging to the console only
func (l *Logger) FilePath() string {
	return l.filePath
}

// Close closes the log file, archives it when oversized and removes old ones
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		l.fileHandle.Close()
	}
	if l.config.OutputDir == "" {
		return nil
	}
	manager := NewLogManager(l.config.OutputDir, l.config.MaxFiles, l.config.MaxSize, true)
	if err := manager.RotateLogs(); err != nil {
		return fmt.Errorf("failed to rotate log files: %w", err)
	}
	if err := manager.CleanupOldLogs(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}
