/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extract.go
Description: Extract command. Loads the records produced by program analysis, runs them through
the extraction pipeline and writes JSON lines results plus an optional summary report.
*/

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deepintent-ccs/DeepIntent/pkg/logging"
	"github.com/deepintent-ccs/DeepIntent/pkg/pipeline"
	"github.com/deepintent-ccs/DeepIntent/pkg/records"
	"github.com/deepintent-ccs/DeepIntent/pkg/reporting"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunExtract executes a full extraction batch
func RunExtract(cmd *cobra.Command, args []string) error {
	logger, err := prepare()
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.GetLogger()

	config := PipelineConfig()
	if config.RecordsPath == "" {
		return fmt.Errorf("--records is required")
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if viper.GetBool("dry_run") {
		return performDryRun(config)
	}

	recs, err := records.Load(config.RecordsPath)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	log.WithFields(logrus.Fields{
		"records": len(recs),
		"path":    config.RecordsPath,
	}).Info("Records loaded")

	extractor, err := pipeline.NewExtractor(config, log)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}
	defer extractor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Warn("Received shutdown signal, stopping extraction")
			cancel()
		case <-ctx.Done():
		}
	}()

	batch, runErr := extractor.Run(ctx, recs)
	if batch == nil {
		return fmt.Errorf("extraction failed: %w", runErr)
	}

	if err := reporting.WriteResults(config.OutputPath, batch); err != nil {
		return err
	}
	if config.ReportDir != "" {
		if _, err := reporting.NewSummaryGenerator(config.ReportDir, log).Generate(batch); err != nil {
			return err
		}
	}
	logOutcomes(logger, batch.Results, config.LogLevel)
	logger.LogStats(batch.Stats)

	printFinalStats(batch, config)
	if runErr != nil {
		return fmt.Errorf("extraction interrupted: %w", runErr)
	}
	return nil
}

// logOutcomes writes the final outcome of every record at verbose level and of the
// failed ones otherwise. It returns the number of records logged.
func logOutcomes(logger *logging.Logger, results []*pipeline.Result, level int) int {
	if level == pipeline.LogLevelSilent {
		return 0
	}
	logged := 0
	for _, res := range results {
		if level >= pipeline.LogLevelVerbose || res.Failed() {
			logger.LogRecord(res)
			logged++
		}
	}
	return logged
}

// performDryRun prints the effective configuration without touching any app
func performDryRun(config *pipeline.Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	fmt.Println("🧪 Dry run, effective configuration:")
	fmt.Println(string(data))
	return nil
}

func printFinalStats(batch *pipeline.Batch, config *pipeline.Config) {
	s := batch.Stats
	fmt.Println()
	fmt.Println("📊 Extraction summary")
	fmt.Println("=====================")
	fmt.Printf("Batch:          %s\n", batch.ID)
	fmt.Printf("Records:        %s\n", humanize.Comma(s.Records))
	fmt.Printf("Icons found:    %s (%.1f%%)\n", humanize.Comma(s.IconsFound), s.FoundRatio()*100)
	fmt.Printf("Layout texts:   %s\n", humanize.Comma(s.LayoutHits))
	fmt.Printf("Embedded texts: %s\n", humanize.Comma(s.EmbeddedHits))
	fmt.Printf("Failed:         %s\n", humanize.Comma(s.Failed))
	fmt.Printf("Duration:       %s\n", batch.Duration())
	fmt.Printf("Results:        %s\n", config.OutputPath)
	if config.ReportDir != "" {
		fmt.Printf("Report:         %s\n", config.ReportDir)
	}
}
