package model

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.Delay != 1500*time.Millisecond {
		t.Errorf("expected 1.5s delay, got %v", cfg.Processing.Delay)
	}
	if cfg.Reference.Source != "data.json" {
		t.Errorf("expected data.json source, got %s", cfg.Reference.Source)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Disk {
		t.Errorf("expected memory-only cache by default, got %+v", cfg.Cache)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}, wantErr: false},
		{name: "zero delay allowed", modify: func(c *Config) { c.Processing.Delay = 0 }, wantErr: false},
		{name: "negative delay", modify: func(c *Config) { c.Processing.Delay = -time.Second }, wantErr: true},
		{name: "no workers", modify: func(c *Config) { c.Processing.Workers = 0 }, wantErr: true},
		{name: "empty source", modify: func(c *Config) { c.Reference.Source = "" }, wantErr: true},
		{name: "disk cache without dir", modify: func(c *Config) { c.Cache.Disk = true; c.Cache.Dir = "" }, wantErr: true},
		{name: "zero rate", modify: func(c *Config) { c.RateLimiting.RequestsPerSecond = 0 }, wantErr: true},
		{name: "location override", modify: func(c *Config) {
			c.RateLimiting.Locations = map[string]LocationRate{"sector 4": {RequestsPerSecond: 0.5, BurstSize: 1}}
		}, wantErr: false},
		{name: "location override without rate", modify: func(c *Config) {
			c.RateLimiting.Locations = map[string]LocationRate{"sector 4": {BurstSize: 1}}
		}, wantErr: true},
		{name: "unknown format", modify: func(c *Config) { c.Output.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseGroundTruth(t *testing.T) {
	tests := []struct {
		raw   string
		want  GroundTruth
		valid bool
	}{
		{"confirmed", GroundTruthConfirmed, true},
		{"FALSE", GroundTruthFalse, true},
		{" scam ", GroundTruthScam, true},
		{"rumour", GroundTruth("rumour"), false},
		{"", GroundTruth(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseGroundTruth(tt.raw)
		if got != tt.want || ok != tt.valid {
			t.Errorf("ParseGroundTruth(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.valid)
		}
	}
}

func TestReferenceReport_Content(t *testing.T) {
	r := ReferenceReport{Event: "Flooding", Location: "Sector 4", Details: "Water levels DANGEROUS"}
	if got := r.Content(); got != "flooding sector 4 water levels dangerous" {
		t.Errorf("unexpected content: %q", got)
	}
}
