/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: observer.go
Description: Observer interface and the logging observer used for progress reporting. Level 0 is
silent, level 1 logs progress roughly every five percent of a phase and level 2 logs every record.
*/

package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Phase names a stage of a run
type Phase string

const (
	PhaseResolve  Phase = "resolve"
	PhaseLanguage Phase = "language"
	PhaseText     Phase = "text"
)

// Observer is notified while a run progresses. Record callbacks are made from
// worker goroutines and must be safe for concurrent use.
type Observer interface {
	// PhaseStarted is called before the first record of a phase.
	PhaseStarted(phase Phase, total int)
	// RecordStarted is called when a worker picks up a record.
	RecordStarted(phase Phase, index int, res *Result)
	// RecordFinished is called when a worker is done with a record.
	RecordFinished(phase Phase, index int, res *Result)
	// PhaseFinished is called once every record of a phase is done.
	PhaseFinished(phase Phase, stats *Stats)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) PhaseStarted(Phase, int)            {}
func (NopObserver) RecordStarted(Phase, int, *Result)  {}
func (NopObserver) RecordFinished(Phase, int, *Result) {}
func (NopObserver) PhaseFinished(Phase, *Stats)        {}

// progressSteps is the number of progress lines per phase at level 1
const progressSteps = 20

// LogObserver logs run events
type LogObserver struct {
	logger *logrus.Logger
	level  int

	mu    sync.Mutex
	total int
	pivot int
	done  int64
}

// NewLogObserver creates a LogObserver logging at the given progress level
func NewLogObserver(logger *logrus.Logger, level int) *LogObserver {
	return &LogObserver{logger: logger, level: level}
}

// PhaseStarted resets the progress counter
func (o *LogObserver) PhaseStarted(phase Phase, total int) {
	o.mu.Lock()
	o.total = total
	o.pivot = total / progressSteps
	if o.pivot == 0 {
		o.pivot = 1
	}
	o.mu.Unlock()
	atomic.StoreInt64(&o.done, 0)

	if o.level >= LogLevelProgress {
		o.logger.WithFields(logrus.Fields{
			"phase":   phase,
			"records": total,
		}).Info("Phase started")
	}
}

// RecordStarted logs the record at level 2
func (o *LogObserver) RecordStarted(phase Phase, index int, res *Result) {
	if o.level < LogLevelVerbose {
		return
	}
	o.logger.WithFields(logrus.Fields{
		"phase":  phase,
		"index":  index,
		"app":    res.Record.App,
		"image":  res.Record.Image,
		"layout": res.Record.Layout,
	}).Debug("Record started")
}

// RecordFinished logs every record at level 2 and periodic progress at level 1
func (o *LogObserver) RecordFinished(phase Phase, index int, res *Result) {
	done := atomic.AddInt64(&o.done, 1)

	switch {
	case o.level >= LogLevelVerbose:
		entry := o.logger.WithFields(logrus.Fields{
			"phase":    phase,
			"index":    index,
			"app":      res.Record.App,
			"image":    res.Record.Image,
			"path":     res.ImagePath,
			"layout":   len(res.Texts.Layout),
			"embedded": len(res.Texts.Embedded),
			"resource": len(res.Texts.Resource),
		})
		if res.Failed() {
			entry.WithField("error", res.Err).Warn("Record failed")
			return
		}
		entry.Info("Record finished")

	case o.level == LogLevelProgress:
		o.mu.Lock()
		total, pivot := o.total, o.pivot
		o.mu.Unlock()
		if done%int64(pivot) == 0 || done == int64(total) {
			o.logger.WithFields(logrus.Fields{
				"phase": phase,
				"done":  done,
				"total": total,
			}).Info("Progress")
		}
	}
}

// PhaseFinished logs a phase summary
func (o *LogObserver) PhaseFinished(phase Phase, stats *Stats) {
	if o.level < LogLevelProgress {
		return
	}
	o.logger.WithFields(logrus.Fields{
		"phase":       phase,
		"records":     stats.Records,
		"failed":      atomic.LoadInt64(&stats.Failed),
		"icons_found": atomic.LoadInt64(&stats.IconsFound),
		"layout_hits": atomic.LoadInt64(&stats.LayoutHits),
	}).Info("Phase finished")
}
