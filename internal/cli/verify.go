package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/ppiankov/crisisverify/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	queryText     string
	queryLocation string
	verifyJSON    bool
	noDelay       bool
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a single report against the reference data",
	Long: `Verify compares one report with every trusted reference report and prints
the verdict: verified, scam, or pending (flagged for manual review).

The verdict is delivered after the configured processing delay.

Example:
  crisisverify verify --text "Severe flooding" --location "Sector 4"
  crisisverify verify -t "free bus tickets" -l "Central Station" --refs https://example.org/refs.json
  crisisverify verify -t "chemical leak" -l "Industrial Park" --json`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&queryText, "text", "t", "", "report description")
	verifyCmd.Flags().StringVarP(&queryLocation, "location", "l", "", "report location")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the verdict with its scoring breakdown as JSON")
	verifyCmd.Flags().BoolVar(&noDelay, "no-delay", false, "skip the processing delay")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 30*time.Second, "overall timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *model.Config) {
		if noDelay {
			c.Processing.Delay = 0
		}
	})
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Output.Verbose)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	p := pipeline.NewPipeline(ctx, cfg, logger)
	reportLoad(os.Stderr, p, cfg)

	q := model.Query{Text: queryText, Location: queryLocation}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Analyzing report (%v)...\n", cfg.Processing.Delay)
	}

	verdict, err := p.Verify(ctx, q)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if verifyJSON {
		eval := p.Evaluate(q)
		eval.Verdict = verdict

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(eval)
	}

	printVerdict(verdict)
	return nil
}

// reportLoad tells the user where reference data came from, or why there is none
func reportLoad(w io.Writer, p *pipeline.Pipeline, cfg *model.Config) {
	if err := p.LoadError(); err != nil {
		fmt.Fprintf(w, "⚠️  Reference data unavailable: %v\n", err)
		fmt.Fprintf(w, "   Continuing without it; every report will be flagged for manual review.\n\n")
		return
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(w, "✓ Loaded %d reference reports from %s\n", p.Store().Len(), cfg.Reference.Source)
	}
}

func printVerdict(v model.Verdict) {
	fmt.Printf("%s %s (%d%% confidence)\n", statusGlyph(v.Status), v.Status, int(v.Confidence*100+0.5))
	fmt.Printf("  %s\n", v.Reason)
}

func statusGlyph(s model.Status) string {
	switch s {
	case model.StatusVerified:
		return "✓"
	case model.StatusScam:
		return "✗"
	default:
		return "?"
	}
}
