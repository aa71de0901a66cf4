package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/ppiankov/crisisverify/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchFormat  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many reports from a file in parallel",
	Long: `Batch verifies reports concurrently and prints the resulting feed:
- Read reports from the input file, one "type | location | description" per line
- Blank lines and lines starting with # are skipped, duplicates are dropped
- Reports for the same location are throttled by the rate limiter
- Print the feed once every report has a verdict

Example:
  crisisverify batch reports.txt
  crisisverify batch reports.txt --concurrency 8 --format json
  crisisverify batch reports.txt --refs ./data.yaml --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: processing.workers)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "feed output format: table or json (default: output.format)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig(func(c *model.Config) {
		if concurrency > 0 {
			c.Processing.Workers = concurrency
		}
		if batchFormat != "" {
			c.Output.Format = batchFormat
		}
	})
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Output.Verbose)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  CrisisVerify Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  References:   %s\n", cfg.Reference.Source)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Processing.Workers)
	fmt.Fprintf(os.Stderr, "  Delay:        %v\n", cfg.Processing.Delay)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(ctx, cfg, logger)
	reportLoad(os.Stderr, p, cfg)

	fmt.Fprintf(os.Stderr, "⚙️  Verifying with %d workers...\n", cfg.Processing.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := p.BatchFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	counts := map[string]int{}
	failureCount := 0

	for _, result := range results {
		label := result.Submission.Type + " at " + result.Submission.Location
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, result.Error)
			continue
		}

		counts[string(result.Verdict.Status)]++
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", statusGlyph(result.Verdict.Status), label, result.Verdict.Reason)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d reports\n", len(results))
	fmt.Fprintf(os.Stderr, "  Verified:   %d\n", counts["verified"])
	fmt.Fprintf(os.Stderr, "  Scam:       %d\n", counts["scam"])
	fmt.Fprintf(os.Stderr, "  Pending:    %d\n", counts["pending"])
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	return p.RenderFeed(os.Stdout, cfg.Output.Format)
}
