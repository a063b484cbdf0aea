/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Result types for contextual text extraction. A Result carries the chosen icon of a
record, how it was reached and the three kinds of text found around it. Stats aggregates a batch.
*/

package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/deepintent-ccs/DeepIntent/pkg/imaging"
	"github.com/deepintent-ccs/DeepIntent/pkg/records"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
)

// TextTriple holds the texts of one icon grouped by origin
type TextTriple struct {
	Layout   []string `json:"layout"`   // Texts of the widgets around the icon
	Embedded []string `json:"embedded"` // Texts recognized inside the icon
	Resource []string `json:"resource"` // Words of the resource name
}

// Result is the outcome of one record
type Result struct {
	ID          string                   `json:"id"`                    // Unique identifier of the result
	Record      records.Record           `json:"record"`                // Input record
	Image       *imaging.CompressedImage `json:"image,omitempty"`       // Chosen icon, nil when nothing decoded
	ImagePath   string                   `json:"image_path,omitempty"`  // Chosen file relative to the app root
	Bucket      string                   `json:"bucket,omitempty"`      // Rank bucket of the chosen file
	Trace       resources.LookupTrace    `json:"trace,omitempty"`       // Lookup path to the chosen file
	Fingerprint string                   `json:"fingerprint,omitempty"` // Perceptual hash of the icon
	Language    string                   `json:"language"`              // Default language of the app
	Texts       TextTriple               `json:"texts"`                 // Extracted texts
	Issues      []string                 `json:"issues,omitempty"`      // Descriptors skipped during resolution
	Error       string                   `json:"error,omitempty"`       // Failure message
	Duration    time.Duration            `json:"duration"`              // Time spent on the record
	Err         error                    `json:"-"`
}

// Failed reports whether the record could not be processed
func (r *Result) Failed() bool {
	return r.Err != nil
}

func (r *Result) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Batch is the outcome of one run
type Batch struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Results   []*Result `json:"-"`
	Stats     *Stats    `json:"stats"`
}

// Duration returns the wall time of the run
func (b *Batch) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Stats counts what happened during a run. Counters are updated atomically.
type Stats struct {
	Records      int64          `json:"records"`       // Records in the batch
	Completed    int64          `json:"completed"`     // Records that went through every phase
	Failed       int64          `json:"failed"`        // Records with an invalid app root
	IconsFound   int64          `json:"icons_found"`   // Records with a decoded icon
	LayoutHits   int64          `json:"layout_hits"`   // Records with at least one layout text
	EmbeddedHits int64          `json:"embedded_hits"` // Records with at least one embedded text
	Issues       int64          `json:"issues"`        // Descriptors skipped during resolution
	Apps         int            `json:"apps"`          // Distinct apps in the batch
	Buckets      map[string]int `json:"buckets"`       // Chosen icons per rank bucket
	Languages    map[string]int `json:"languages"`     // Apps per default language
}

func newStats(records int) *Stats {
	return &Stats{
		Records:   int64(records),
		Buckets:   make(map[string]int),
		Languages: make(map[string]int),
	}
}

// IncrementCompleted atomically increments the completed counter
func (s *Stats) IncrementCompleted() {
	atomic.AddInt64(&s.Completed, 1)
}

// IncrementFailed atomically increments the failure counter
func (s *Stats) IncrementFailed() {
	atomic.AddInt64(&s.Failed, 1)
}

// IncrementIconsFound atomically increments the icon counter
func (s *Stats) IncrementIconsFound() {
	atomic.AddInt64(&s.IconsFound, 1)
}

// IncrementLayoutHits atomically increments the layout counter
func (s *Stats) IncrementLayoutHits() {
	atomic.AddInt64(&s.LayoutHits, 1)
}

// IncrementEmbeddedHits atomically increments the embedded text counter
func (s *Stats) IncrementEmbeddedHits() {
	atomic.AddInt64(&s.EmbeddedHits, 1)
}

// AddIssues atomically adds n skipped descriptors
func (s *Stats) AddIssues(n int) {
	atomic.AddInt64(&s.Issues, int64(n))
}

// FoundRatio is the share of records with a decoded icon
func (s *Stats) FoundRatio() float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.IconsFound)) / float64(s.Records)
}
