/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary.go
Description: Batch summary reports. Writes a machine readable summary.json and a static
summary.html with record counts, the icon found ratio, the rank bucket histogram of chosen
icons, per language app counts and the list of failed records.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/deepintent-ccs/DeepIntent/pkg/pipeline"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Summary file names
const (
	SummaryJSON = "summary.json"
	SummaryHTML = "summary.html"
)

// Summary contains the data of a batch report
type Summary struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	BatchID     string          `json:"batch_id"`
	Duration    time.Duration   `json:"duration"`
	Stats       *pipeline.Stats `json:"stats"`
	FoundRatio  float64         `json:"found_ratio"`
	Buckets     []Count         `json:"buckets"`
	Languages   []Count         `json:"languages"`
	Failures    []Failure       `json:"failures"`
	Missing     []string        `json:"missing"`     // Records without a decodable icon
	ImageBytes  int64           `json:"image_bytes"` // Raw pixel bytes of all chosen icons
}

// Count is one histogram bar
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Failure is a record that could not be processed
type Failure struct {
	Record string `json:"record"`
	Error  string `json:"error"`
}

// NewSummary builds the summary of batch
func NewSummary(batch *pipeline.Batch) *Summary {
	s := &Summary{
		Title:       "Icon context extraction",
		GeneratedAt: time.Now(),
		BatchID:     batch.ID,
		Duration:    batch.Duration(),
		Stats:       batch.Stats,
		FoundRatio:  batch.Stats.FoundRatio(),
		Buckets:     bucketCounts(batch.Stats.Buckets),
		Languages:   sortedCounts(batch.Stats.Languages),
		Failures:    []Failure{},
		Missing:     []string{},
	}
	for _, res := range batch.Results {
		switch {
		case res.Failed():
			s.Failures = append(s.Failures, Failure{Record: res.Record.Key(), Error: res.Error})
		case res.Image == nil:
			s.Missing = append(s.Missing, res.Record.Key())
		default:
			s.ImageBytes += int64(len(res.Image.Bytes))
		}
	}
	return s
}

// bucketCounts orders buckets by rank
func bucketCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for name, n := range m {
		counts = append(counts, Count{Name: name, Count: n})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		bi, bj := resources.ParseBucket(counts[i].Name), resources.ParseBucket(counts[j].Name)
		if bi != bj {
			return bi.Less(bj)
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}

// sortedCounts orders by count, then name
func sortedCounts(m map[string]int) []Count {
	counts := make([]Count, 0, len(m))
	for name, n := range m {
		counts = append(counts, Count{Name: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}

// SummaryGenerator writes summary reports
type SummaryGenerator struct {
	outputDir string
	logger    *logrus.Logger
	templates *template.Template
}

// NewSummaryGenerator creates a generator writing into outputDir
func NewSummaryGenerator(outputDir string, logger *logrus.Logger) *SummaryGenerator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	funcs := template.FuncMap{
		"comma":   func(n int64) string { return humanize.Comma(n) },
		"percent": func(f float64) string { return humanize.FormatFloat("#,###.#", f*100) + "%" },
		"bytes":   func(n int64) string { return humanize.Bytes(uint64(n)) },
		"ago":     humanize.Time,
	}
	return &SummaryGenerator{
		outputDir: outputDir,
		logger:    logger,
		templates: template.Must(template.New("summary").Funcs(funcs).Parse(summaryTemplate)),
	}
}

// Generate writes summary.json and summary.html for batch
func (g *SummaryGenerator) Generate(batch *pipeline.Batch) (*Summary, error) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := NewSummary(batch)
	if err := g.writeJSON(summary); err != nil {
		return nil, err
	}
	if err := g.writeHTML(summary); err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"dir":         g.outputDir,
		"records":     summary.Stats.Records,
		"found_ratio": summary.FoundRatio,
	}).Info("Summary report generated")
	return summary, nil
}

func (g *SummaryGenerator) writeJSON(summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.outputDir, SummaryJSON), data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func (g *SummaryGenerator) writeHTML(summary *Summary) error {
	file, err := os.Create(filepath.Join(g.outputDir, SummaryHTML))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := g.templates.Execute(file, summary); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// WriteSummary writes the summary files of batch into dir
func WriteSummary(dir string, batch *pipeline.Batch) (*Summary, error) {
	return NewSummaryGenerator(dir, nil).Generate(batch)
}
