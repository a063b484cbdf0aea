/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for iconctx. Extracts the contextual texts around the icons
that program analysis found in decoded Android apps: layout texts, embedded OCR texts and
resource name words, with per-app language detection and optional translation.
*/

package main

import (
	"fmt"
	"os"

	"github.com/deepintent-ccs/DeepIntent/cmd/iconctx/commands"
	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/deepintent-ccs/DeepIntent/pkg/layout"
	"github.com/deepintent-ccs/DeepIntent/pkg/ocr"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBinding maps a viper key to a command flag
type flagBinding struct {
	key  string
	flag string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "iconctx",
		Short: "iconctx - Contextual text extraction for app icons",
		Long: `iconctx resolves the drawables referenced by an app's code to concrete bitmaps,
collects the texts of the layouts they appear in, recognizes the text embedded in the
images and splits resource names into words. Results are written as JSON lines ready
for icon intention models.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file path")
	flags.Int("log-level", 1, "Progress level (0 silent, 1 progress, 2 every record)")
	flags.String("log-format", "custom", "Log format (text, json, custom)")
	flags.String("log-dir", "./logs", "Log output directory (empty disables log files)")
	flags.Int("log-max-files", 10, "Maximum number of log files to keep")
	flags.Int64("log-max-size", 100*1024*1024, "Maximum log file size in bytes")
	flags.Bool("no-color", false, "Disable colored console output")

	// Resolution flags shared by every command
	flags.String("apps", "", "Directory holding the decoded apps")
	flags.Int("max-depth", resources.DefaultMaxDepth, "Maximum drawable descriptor nesting depth")
	flags.Int64("seed", 0, "Seed for candidate selection (0 = random)")
	flags.String("scope", string(layout.ScopeParent), "Layout text scope (parent, total)")

	bind(flags.Lookup, []flagBinding{
		{"config", "config"},
		{"log_level", "log-level"},
		{"log_format", "log-format"},
		{"log_dir", "log-dir"},
		{"log_max_files", "log-max-files"},
		{"log_max_size", "log-max-size"},
		{"no_color", "no-color"},
		{"apps_dir", "apps"},
		{"max_depth", "max-depth"},
		{"seed", "seed"},
		{"layout_scope", "scope"},
	})

	// Extract command
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract contextual texts for a batch of records",
		Long: `Load the records emitted by program analysis, resolve every icon to a bitmap,
detect the language of each app and extract layout, embedded and resource texts.
Results keep the order of the records file.`,
		Args: cobra.NoArgs,
		RunE: commands.RunExtract,
	}
	extractBindings := addExtractFlags(extractCmd)
	extractCmd.Flags().Bool("dry-run", false, "Validate configuration and exit without extracting")
	extractBindings = append(extractBindings, flagBinding{"dry_run", "dry-run"})
	extractCmd.PreRun = func(cmd *cobra.Command, args []string) {
		bind(cmd.Flags().Lookup, extractBindings)
	}

	// Resolve command
	resolveCmd := &cobra.Command{
		Use:   "resolve <app> <image>",
		Short: "Show the ranked candidates and the chosen bitmap of one drawable",
		Long: `Walk the drawable folders and descriptors of an app for one image name, print
the candidate groups in priority order and the bitmap that extraction would choose.`,
		Args: cobra.ExactArgs(2),
		RunE: commands.RunResolve,
	}

	// Layout command
	layoutCmd := &cobra.Command{
		Use:   "layout <app> <image> <layout>",
		Short: "Print the layout texts around one icon",
		Args:  cobra.ExactArgs(3),
		RunE:  commands.RunLayout,
	}

	// Split command
	splitCmd := &cobra.Command{
		Use:   "split <name>...",
		Short: "Split resource identifiers into words",
		Args:  cobra.MinimumNArgs(1),
		RunE:  commands.RunSplit,
	}

	// Check command
	checkCmd := &cobra.Command{
		Use:   "check [app]...",
		Short: "Perform built-in self-checks before an extraction run",
		Long: `Validate the configuration, the apps directory, the records file, the OCR and
translation engines and the output location. Named apps get a resource inventory.
Useful for CI/CD integration.`,
		RunE: commands.PerformSelfCheck,
	}
	checkBindings := addExtractFlags(checkCmd)
	checkCmd.PreRun = func(cmd *cobra.Command, args []string) {
		bind(cmd.Flags().Lookup, checkBindings)
	}

	rootCmd.AddCommand(extractCmd, resolveCmd, layoutCmd, splitCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addExtractFlags registers the pipeline flags on cmd. Binding happens in PreRun so
// that extract and check can share viper keys.
func addExtractFlags(cmd *cobra.Command) []flagBinding {
	o := ocr.DefaultConfig()
	f := cmd.Flags()

	f.String("records", "", "Records file produced by program analysis")
	f.String("output", "results.jsonl", "JSON lines results file")
	f.String("report-dir", "", "Directory for the JSON and HTML summary (empty disables)")
	f.Int("workers", 0, "Number of parallel workers (0 = auto-detect)")

	f.Bool("ocr", true, "Recognize embedded texts")
	f.Int("ocr-width", o.Width, "OCR canvas width")
	f.Int("ocr-height", o.Height, "OCR canvas height")
	f.Float64("ocr-padding", o.Padding, "OCR canvas padding ratio")
	f.Bool("ocr-cache", true, "Cache OCR results by image fingerprint")
	f.String("tesseract", "tesseract", "Path to the tesseract binary")

	f.Bool("translate", true, "Translate non-English texts")
	f.Bool("translate-cache", true, "Cache translations")
	f.String("translate-cmd", "", "Translation command reading stdin, e.g. \"trans -b :en\"")
	f.Bool("normalize", true, "Normalize extracted texts")

	f.String("cache", string(cache.BackendMemory), "Cache backend (memory, ttl, leveldb, none)")
	f.String("cache-dir", "", "Directory for the leveldb cache")
	f.Duration("cache-ttl", cache.DefaultTTL, "Entry lifetime for the ttl cache")

	return []flagBinding{
		{"records", "records"},
		{"output", "output"},
		{"report_dir", "report-dir"},
		{"workers", "workers"},
		{"ocr.enabled", "ocr"},
		{"ocr.width", "ocr-width"},
		{"ocr.height", "ocr-height"},
		{"ocr.padding", "ocr-padding"},
		{"ocr.cache", "ocr-cache"},
		{"ocr.tesseract", "tesseract"},
		{"translate.enabled", "translate"},
		{"translate.cache", "translate-cache"},
		{"translate.command", "translate-cmd"},
		{"normalize", "normalize"},
		{"cache.backend", "cache"},
		{"cache.dir", "cache-dir"},
		{"cache.ttl", "cache-ttl"},
	}
}

func bind(lookup func(string) *pflag.Flag, bindings []flagBinding) {
	for _, b := range bindings {
		viper.BindPFlag(b.key, lookup(b.flag))
	}
}
