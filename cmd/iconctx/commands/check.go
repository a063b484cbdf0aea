/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Self-check command. Validates the apps directory, the records file, the OCR and
translation engines and the output locations before a long extraction run, and prints a
resource inventory for the requested apps.
*/

package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/deepintent-ccs/DeepIntent/pkg/logging"
	"github.com/deepintent-ccs/DeepIntent/pkg/ocr"
	"github.com/deepintent-ccs/DeepIntent/pkg/pipeline"
	"github.com/deepintent-ccs/DeepIntent/pkg/records"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/deepintent-ccs/DeepIntent/pkg/translate"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// PerformSelfCheck validates the environment of an extraction run. Apps named in
// args get a resource inventory.
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	logger, err := prepare()
	if err != nil {
		return err
	}
	defer logger.Close()

	fmt.Println("🔍 iconctx - System Self-Check")
	fmt.Println("==============================")
	fmt.Println()

	config := PipelineConfig()
	checks := []struct {
		name     string
		function func(*pipeline.Config) error
	}{
		{"Configuration", checkConfiguration},
		{"Apps Directory", checkAppsDir},
		{"Records", checkRecords},
		{"OCR Engine", checkOCR},
		{"Translation Engine", checkTranslation},
		{"Output Location", checkOutput},
	}

	passed := 0
	for _, check := range checks {
		fmt.Printf("🔍 %s... ", check.name)
		if err := check.function(config); err != nil {
			fmt.Printf("❌ FAILED: %v\n", err)
		} else {
			fmt.Println("✅ PASSED")
			passed++
		}
	}

	for _, name := range args {
		printInventory(config.AppsDir, name)
	}
	if dir := viper.GetString("log_dir"); dir != "" {
		if err := printLogStats(dir); err != nil {
			fmt.Printf("   ❌ %v\n", err)
		}
	}

	fmt.Println()
	fmt.Printf("📊 Results: %d/%d checks passed\n", passed, len(checks))
	if passed != len(checks) {
		return fmt.Errorf("%d/%d checks failed", len(checks)-passed, len(checks))
	}
	fmt.Println("✨ All checks passed! Ready for extraction.")
	return nil
}

func checkConfiguration(config *pipeline.Config) error {
	return config.Validate()
}

func checkAppsDir(config *pipeline.Config) error {
	entries, err := os.ReadDir(config.AppsDir)
	if err != nil {
		return fmt.Errorf("cannot read apps directory: %w", err)
	}
	apps := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := resources.OpenApp(config.AppsDir, entry.Name()); err == nil {
			apps++
		}
	}
	if apps == 0 {
		return fmt.Errorf("no decoded app with a res directory in %s", config.AppsDir)
	}
	return nil
}

func checkRecords(config *pipeline.Config) error {
	if config.RecordsPath == "" {
		return fmt.Errorf("records path not configured")
	}
	recs, err := records.Load(config.RecordsPath)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("no records in %s", config.RecordsPath)
	}
	return nil
}

func checkOCR(config *pipeline.Config) error {
	if !config.OCREnabled {
		return nil
	}
	if !ocr.NewTesseractRecognizer(config.TesseractPath).Available() {
		return fmt.Errorf("tesseract binary %q not found", config.TesseractPath)
	}
	return nil
}

func checkTranslation(config *pipeline.Config) error {
	if !config.Translate {
		return nil
	}
	// Without a command the extractor logs a warning and skips translation.
	if config.TranslateCommand == "" {
		return nil
	}
	translator, err := translate.NewCommandTranslator(config.TranslateCommand)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(translator.Command); err != nil {
		return fmt.Errorf("translation command %q not found", translator.Command)
	}
	return nil
}

func checkOutput(config *pipeline.Config) error {
	dir := filepath.Dir(config.OutputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".iconctx_check_*")
	if err != nil {
		return fmt.Errorf("cannot write to %s: %w", dir, err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// printLogStats summarizes the log files kept in dir
func printLogStats(dir string) error {
	stats, err := logging.NewLogManager(dir, 0, 0, false).GetLogStats()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("🗂  Logs in %s\n", dir)
	fmt.Printf("   Files:         %d (%d compressed)\n", stats.TotalFiles, stats.CompressedFiles)
	fmt.Printf("   Size:          %s\n", humanize.Bytes(uint64(stats.TotalSize)))
	if stats.TotalFiles > 0 {
		fmt.Printf("   Newest:        %s\n", humanize.Time(stats.NewestFile))
	}
	return nil
}

func printInventory(appsDir, name string) {
	fmt.Println()
	fmt.Printf("📦 %s\n", name)
	app, err := resources.OpenApp(appsDir, name)
	if err != nil {
		fmt.Printf("   ❌ %v\n", err)
		return
	}
	inv, err := app.Inventory()
	if err != nil {
		fmt.Printf("   ❌ %v\n", err)
		return
	}
	fmt.Printf("   Package:       %s\n", inv.Manifest.Package)
	fmt.Printf("   Permissions:   %d\n", len(inv.Manifest.Permissions))
	fmt.Printf("   Drawables:     %d (%d xml)\n", inv.Drawables, inv.Descriptors)
	fmt.Printf("   Layouts:       %d\n", inv.Layouts)
	fmt.Printf("   String tables: %d\n", inv.StringTables)
}
