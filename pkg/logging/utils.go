/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file management. Rotates oversized log files into gzip archives, enforces the
retention count and reports statistics about the log directory.
*/

package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type logFile struct {
	path    string
	size    int64
	modTime time.Time
}

// logFiles lists the iconctx log files of dir, rotated archives included
func logFiles(dir string) ([]logFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.log*"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}
	files := make([]logFile, 0, len(paths))
	for _, p := range paths {
		stat, err := os.Stat(p)
		if err != nil {
			continue
		}
		files = append(files, logFile{path: p, size: stat.Size(), modTime: stat.ModTime()})
	}
	return files, nil
}

// LogManager applies rotation and retention to a log directory
type LogManager struct {
	logDir   string
	maxFiles int
	maxSize  int64
	compress bool
}

// NewLogManager creates a new log manager
func NewLogManager(logDir string, maxFiles int, maxSize int64, compress bool) *LogManager {
	return &LogManager{
		logDir:   logDir,
		maxFiles: maxFiles,
		maxSize:  maxSize,
		compress: compress,
	}
}

// RotateLogs renames log files larger than the size limit, compressing them if enabled
func (lm *LogManager) RotateLogs() error {
	files, err := logFiles(lm.logDir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !strings.HasSuffix(f.path, ".log") || f.size < lm.maxSize {
			continue
		}
		if err := lm.rotateFile(f.path); err != nil {
			return fmt.Errorf("failed to rotate file %s: %w", f.path, err)
		}
	}
	return nil
}

func (lm *LogManager) rotateFile(path string) error {
	rotated := fmt.Sprintf("%s.%s", path, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.Rename(path, rotated); err != nil {
		return err
	}
	if lm.compress {
		return compressFile(rotated)
	}
	return nil
}

// compressFile replaces path with path.gz
func compressFile(path string) error {
	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	compressed, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer compressed.Close()

	gz := gzip.NewWriter(compressed)
	if _, err := io.Copy(gz, source); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	source.Close()
	return os.Remove(path)
}

// CleanupOldLogs removes the oldest files beyond the retention count
func (lm *LogManager) CleanupOldLogs() error {
	files, err := logFiles(lm.logDir)
	if err != nil {
		return err
	}
	if len(files) <= lm.maxFiles {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})
	for _, f := range files[:len(files)-lm.maxFiles] {
		if err := os.Remove(f.path); err != nil {
			return fmt.Errorf("failed to remove file %s: %w", f.path, err)
		}
	}
	return nil
}

// FileStats holds statistics about log files
type FileStats struct {
	TotalFiles        int       `json:"total_files"`
	TotalSize         int64     `json:"total_size"`
	CompressedFiles   int       `json:"compressed_files"`
	UncompressedFiles int       `json:"uncompressed_files"`
	OldestFile        time.Time `json:"oldest_file"`
	NewestFile        time.Time `json:"newest_file"`
}

// GetLogStats returns statistics about log files
func (lm *LogManager) GetLogStats() (*FileStats, error) {
	files, err := logFiles(lm.logDir)
	if err != nil {
		return nil, err
	}

	stats := &FileStats{TotalFiles: len(files)}
	for _, f := range files {
		stats.TotalSize += f.size
		if stats.OldestFile.IsZero() || f.modTime.Before(stats.OldestFile) {
			stats.OldestFile = f.modTime
		}
		if f.modTime.After(stats.NewestFile) {
			stats.NewestFile = f.modTime
		}
		if strings.HasSuffix(f.path, ".gz") {
			stats.CompressedFiles++
		} else {
			stats.UncompressedFiles++
		}
	}
	return stats, nil
}
