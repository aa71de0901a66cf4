package model

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Config is the complete CrisisVerify configuration
type Config struct {
	Reference    ReferenceConfig    `yaml:"reference" mapstructure:"reference"`
	Processing   ProcessingConfig   `yaml:"processing" mapstructure:"processing"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ReferenceConfig controls where trusted reference data is loaded from
type ReferenceConfig struct {
	Source        string        `yaml:"source" mapstructure:"source"`                 // File path or http(s) URL
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`               // Remote fetch timeout
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`         // Remote fetch User-Agent
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`           // Max document size
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"` // Check robots.txt before remote fetch
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ProcessingConfig controls verification scheduling
type ProcessingConfig struct {
	Delay   time.Duration `yaml:"delay" mapstructure:"delay"`     // Simulated analysis latency per verification
	Workers int           `yaml:"workers" mapstructure:"workers"` // Concurrent verifications in batch mode
}

// CacheConfig controls verdict memoization
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Disk    bool          `yaml:"disk" mapstructure:"disk"` // Add a disk layer behind memory
	Dir     string        `yaml:"dir" mapstructure:"dir"`
}

// RateLimitingConfig throttles feed submissions per location
type RateLimitingConfig struct {
	RequestsPerSecond float64                 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int                     `yaml:"burst_size" mapstructure:"burst_size"`
	Locations         map[string]LocationRate `yaml:"locations,omitempty" mapstructure:"locations"` // Per-location overrides
}

// LocationRate overrides the submission rate for one location
type LocationRate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // table or json
}

// DefaultUserAgent is sent when fetching remote reference data
const DefaultUserAgent = "CrisisVerify/0.1 (+https://github.com/ppiankov/crisisverify)"

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Reference: ReferenceConfig{
			Source:        "data.json",
			Timeout:       10 * time.Second,
			UserAgent:     DefaultUserAgent,
			MaxBytes:      1 << 20,
			RespectRobots: true,
		},
		Processing: ProcessingConfig{
			Delay:   1500 * time.Millisecond,
			Workers: runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
			Disk:    false,
			Dir:     ".crisisverify-cache",
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose: false,
			Format:  "table",
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Reference.Source == "" {
		errs = append(errs, errors.New("reference.source is required"))
	}
	if c.Reference.Timeout <= 0 {
		errs = append(errs, errors.New("reference.timeout must be positive"))
	}
	if c.Reference.MaxBytes <= 0 {
		errs = append(errs, errors.New("reference.max_bytes must be positive"))
	}
	if c.Processing.Delay < 0 {
		errs = append(errs, errors.New("processing.delay must not be negative"))
	}
	if c.Processing.Workers < 1 {
		errs = append(errs, errors.New("processing.workers must be at least 1"))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive when cache is enabled"))
	}
	if c.Cache.Disk && c.Cache.Dir == "" {
		errs = append(errs, errors.New("cache.dir is required when cache.disk is set"))
	}
	if c.RateLimiting.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("rate_limiting.requests_per_second must be positive"))
	}
	for location, override := range c.RateLimiting.Locations {
		if override.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limiting.locations.%s.requests_per_second must be positive", location))
		}
	}
	switch c.Output.Format {
	case "table", "json":
	default:
		errs = append(errs, fmt.Errorf("output.format must be 'table' or 'json', got '%s'", c.Output.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
