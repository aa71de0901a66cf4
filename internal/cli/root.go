package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "crisisverify v0.1.0"

var (
	cfgFile string
	verbose bool
	refs    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crisisverify",
	Short: "CrisisVerify - check crisis reports against trusted reference data",
	Long: `CrisisVerify checks user-submitted crisis reports against a set of trusted
reference reports and classifies each one as verified, a potential scam,
or pending manual review.

Matching is lexical: a report is compared word by word with every reference
report, and the best match above the threshold decides the verdict. Reports
that match nothing well enough are flagged for a human to look at.

CrisisVerify supports reviewers. It does not replace them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for CrisisVerify.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.crisisverify/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&refs, "refs", "", "reference data file, URL, or - for stdin (overrides reference.source)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.crisisverify")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CRISISVERIFY_* (reference.source -> CRISISVERIFY_REFERENCE_SOURCE)
	viper.SetEnvPrefix("CRISISVERIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and files can override it
func setDefaults(cfg *model.Config) {
	viper.SetDefault("reference.source", cfg.Reference.Source)
	viper.SetDefault("reference.timeout", cfg.Reference.Timeout)
	viper.SetDefault("reference.user_agent", cfg.Reference.UserAgent)
	viper.SetDefault("reference.max_bytes", cfg.Reference.MaxBytes)
	viper.SetDefault("reference.respect_robots", cfg.Reference.RespectRobots)
	viper.SetDefault("reference.http_proxy", cfg.Reference.HTTPProxy)
	viper.SetDefault("reference.https_proxy", cfg.Reference.HTTPSProxy)
	viper.SetDefault("reference.no_proxy", cfg.Reference.NoProxy)
	viper.SetDefault("processing.delay", cfg.Processing.Delay)
	viper.SetDefault("processing.workers", cfg.Processing.Workers)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.ttl", cfg.Cache.TTL)
	viper.SetDefault("cache.disk", cfg.Cache.Disk)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	viper.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.format", cfg.Output.Format)
}

// loadConfig resolves the effective configuration (flags > env > file > defaults).
// Command flag overrides are applied before validation.
func loadConfig(overrides ...func(*model.Config)) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if refs != "" {
		cfg.Reference.Source = refs
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger returns a console logger on stderr; debug output only when verbose
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
