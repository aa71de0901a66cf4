package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/ppiankov/crisisverify/internal/reference"
	"github.com/spf13/cobra"
)

var refsTimeout time.Duration

// refsCmd represents the refs command
var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Load and list the trusted reference reports",
	Long: `Refs loads the reference data (file or URL) and lists every report in it.
Use it to check that a reference document parses before verifying against it.

Example:
  crisisverify refs
  crisisverify refs --refs https://example.org/trusted.json`,
	Args: cobra.NoArgs,
	RunE: runRefs,
}

func init() {
	rootCmd.AddCommand(refsCmd)

	refsCmd.Flags().DurationVar(&refsTimeout, "timeout", 30*time.Second, "load timeout")
}

func runRefs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Output.Verbose)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), refsTimeout)
	defer cancel()

	// Unlike verify, a broken reference document is an error here
	store, err := reference.NewLoader(cfg.Reference, logger).Load(ctx, cfg.Reference.Source)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ %d reference reports from %s (fingerprint %s)\n\n", store.Len(), store.Source(), store.Fingerprint())

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Event", "Location", "Status", "Confidence", "Details")

	for _, r := range store.Reports() {
		if err := table.Append([]string{
			r.ID,
			r.Event,
			r.Location,
			string(r.GroundTruth),
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			r.Details,
		}); err != nil {
			return fmt.Errorf("render report %s: %w", r.ID, err)
		}
	}

	return table.Render()
}
