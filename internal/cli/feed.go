package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/crisisverify/internal/feed"
	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/ppiankov/crisisverify/internal/pipeline"
	"github.com/ppiankov/crisisverify/internal/worker"
	"github.com/spf13/cobra"
)

var (
	feedReports []string
	feedFormat  string
	feedNoSeed  bool
	feedTimeout time.Duration
)

// feedCmd represents the feed command
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Submit reports to the incident feed and show it",
	Long: `Feed starts from the official seed post, submits each --report as a new
post and prints the feed once every verification has finished.

New posts appear at the top as "Analyzing..." and switch to their verdict
when verification completes. Submissions over the per-location rate limit
are rejected.

Example:
  crisisverify feed --report "Flood | Sector 4 | Severe flooding near the school"
  crisisverify feed -r "Scam | Central Station | free bus tickets" -r "Fire | Harbor | smoke" --format json`,
	Args: cobra.NoArgs,
	RunE: runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().StringArrayVarP(&feedReports, "report", "r", nil, `report to submit as "type | location | description" (repeatable)`)
	feedCmd.Flags().StringVar(&feedFormat, "format", "", "output format: table or json (default: output.format)")
	feedCmd.Flags().BoolVar(&feedNoSeed, "no-seed", false, "start from an empty feed")
	feedCmd.Flags().DurationVar(&feedTimeout, "timeout", time.Minute, "overall timeout")
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *model.Config) {
		if feedFormat != "" {
			c.Output.Format = feedFormat
		}
	})
	if err != nil {
		return err
	}

	subs, err := worker.ParseSubmissions(strings.NewReader(strings.Join(feedReports, "\n")))
	if err != nil {
		return fmt.Errorf("parse reports: %w", err)
	}

	logger := newLogger(cfg.Output.Verbose)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
	defer cancel()

	p := pipeline.NewPipeline(ctx, cfg, logger)
	reportLoad(os.Stderr, p, cfg)

	if !feedNoSeed {
		p.Feed().Seed()
	}

	submitReports(ctx, os.Stderr, p, subs, cfg.Output.Verbose)
	p.Feed().Wait()

	return p.RenderFeed(os.Stdout, cfg.Output.Format)
}

// submitReports submits each report to the feed, printing rejections and, when verbose, the pending posts
func submitReports(ctx context.Context, w io.Writer, p *pipeline.Pipeline, subs []model.Submission, verbose bool) {
	for _, sub := range subs {
		post, err := p.Submit(ctx, sub)
		switch {
		case errors.Is(err, feed.ErrThrottled):
			fmt.Fprintf(w, "⚠️  %s at %s: rejected, too many reports for this location\n", sub.Type, sub.Location)
		case err != nil:
			fmt.Fprintf(w, "✗ %s at %s: %v\n", sub.Type, sub.Location, err)
		case verbose:
			fmt.Fprintf(w, "⚙️  %s: %s\n", post.Title, post.Reason)
		}
	}
}
