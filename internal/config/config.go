// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads ipsift settings from a YAML file, the environment
// and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"ipsift/internal/classify"
	"ipsift/internal/core"
	"ipsift/internal/extract"
	"ipsift/internal/headers"
	"ipsift/internal/observability"
	"ipsift/internal/validators/ipaddress"
)

// Report formats understood by the CLI.
var ReportFormats = []string{"text", "json", "yaml"}

// Config represents the application configuration
type Config struct {
	TargetPort string `yaml:"target_port" env:"IPSIFT_TARGET_PORT"`
	Workers    int    `yaml:"workers" env:"IPSIFT_WORKERS"`

	// Regions replace the built-in list when present.
	Regions []RegionConfig `yaml:"regions"`

	// Extra header synonyms per role
	Headers struct {
		Port    []string `yaml:"port"`
		Address []string `yaml:"address"`
		Region  []string `yaml:"region"`
	} `yaml:"headers"`

	Fallback struct {
		Enabled      bool     `yaml:"enabled" env:"IPSIFT_FALLBACK"`
		ExcludePorts []string `yaml:"exclude_ports"`
	} `yaml:"fallback"`

	Filters struct {
		ExcludeCIDRs []string `yaml:"exclude_cidrs" env:"IPSIFT_EXCLUDE_CIDRS"`
	} `yaml:"filters"`

	Output struct {
		All       string `yaml:"all" env:"IPSIFT_OUTPUT"`
		Dir       string `yaml:"dir" env:"IPSIFT_OUTPUT_DIR"`
		SkipEmpty bool   `yaml:"skip_empty" env:"IPSIFT_SKIP_EMPTY"`
	} `yaml:"output"`

	Logging struct {
		Level  string `yaml:"level" env:"IPSIFT_LOG_LEVEL"`
		Format string `yaml:"format" env:"IPSIFT_LOG_FORMAT"`
	} `yaml:"logging"`

	Report struct {
		Format  string `yaml:"format" env:"IPSIFT_REPORT_FORMAT"`
		NoColor bool   `yaml:"no_color" env:"NO_COLOR"`
	} `yaml:"report"`
}

// RegionConfig describes one region.
type RegionConfig struct {
	Tag          string   `yaml:"tag"`
	FilePatterns []string `yaml:"file_patterns"`
	Tokens       []string `yaml:"tokens"`
	// Output is the region's file name, relative to output.dir.
	Output string `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		TargetPort: extract.DefaultTargetPort,
		Workers:    1,
	}
	for _, r := range classify.DefaultRegions() {
		cfg.Regions = append(cfg.Regions, RegionConfig{
			Tag:          string(r.Tag),
			FilePatterns: r.FilePatterns,
			Tokens:       r.Tokens,
			Output:       strings.ToLower(string(r.Tag)) + ".txt",
		})
	}
	cfg.Fallback.Enabled = true
	cfg.Fallback.ExcludePorts = append([]string(nil), extract.DefaultExcludePorts...)
	cfg.Output.All = "ip.txt"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = observability.FormatText
	cfg.Report.Format = "text"
	return cfg
}

// LoadConfig loads configuration from the specified file path. Defaults are
// applied first, then the file, then environment overrides. An empty path
// skips the file.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(filepath.Clean(configPath))
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads configFile, or the first file FindConfigFile
// discovers, or only defaults and environment when there is none.
func LoadConfigOrDefault(configFile string) (*Config, string, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}
	cfg, err := LoadConfig(configPath)
	return cfg, configPath, err
}

// FindConfigFile looks for a configuration file in standard locations:
// the working directory, $IPSIFT_CONFIG_DIR, then the XDG config directory.
func FindConfigFile() string {
	for _, name := range []string{"ipsift.yaml", "ipsift.yml", ".ipsift.yaml", ".ipsift.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if dir := os.Getenv("IPSIFT_CONFIG_DIR"); dir != "" {
		if p := filepath.Join(dir, "config.yaml"); fileExists(p) {
			return p
		}
	}

	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdg = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		if p := filepath.Join(xdg, "ipsift", name); fileExists(p) {
			return p
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ValidateConfig reports every problem in cfg at once.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	var errs []string

	if err := extract.ValidatePort(cfg.TargetPort); err != nil {
		errs = append(errs, fmt.Sprintf("target_port: %v", err))
	}
	if cfg.Workers < 1 {
		errs = append(errs, fmt.Sprintf("workers (%d) must be positive", cfg.Workers))
	}

	seen := make(map[string]bool)
	for i, r := range cfg.Regions {
		tag := strings.ToUpper(strings.TrimSpace(r.Tag))
		switch {
		case tag == "":
			errs = append(errs, fmt.Sprintf("regions[%d]: tag is required", i))
		case seen[tag]:
			errs = append(errs, fmt.Sprintf("regions[%d]: duplicate tag %s", i, tag))
		}
		seen[tag] = true
		for _, p := range r.FilePatterns {
			if _, err := regexp.Compile(p); err != nil {
				errs = append(errs, fmt.Sprintf("regions[%d]: file pattern %q: %v", i, p, err))
			}
		}
		if len(r.FilePatterns) == 0 && len(r.Tokens) == 0 {
			errs = append(errs, fmt.Sprintf("regions[%d]: needs file_patterns or tokens", i))
		}
	}

	for _, p := range cfg.Fallback.ExcludePorts {
		if err := extract.ValidatePort(strings.TrimSpace(p)); err != nil {
			errs = append(errs, fmt.Sprintf("fallback.exclude_ports: %v", err))
		}
	}
	if _, err := ipaddress.NewRangeFilter(cfg.Filters.ExcludeCIDRs); err != nil {
		errs = append(errs, fmt.Sprintf("filters.exclude_cidrs: %v", err))
	}

	if err := observability.ValidateLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("logging.level: %v", err))
	}
	if err := observability.ValidateFormat(cfg.Logging.Format); err != nil {
		errs = append(errs, fmt.Sprintf("logging.format: %v", err))
	}
	if !validReportFormat(cfg.Report.Format) {
		errs = append(errs, fmt.Sprintf("report.format (%q) must be one of: %s",
			cfg.Report.Format, strings.Join(ReportFormats, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validReportFormat(f string) bool {
	for _, v := range ReportFormats {
		if strings.EqualFold(f, v) {
			return true
		}
	}
	return false
}

// ClassifyRegions converts the configured regions.
func (c *Config) ClassifyRegions() []classify.Region {
	out := make([]classify.Region, 0, len(c.Regions))
	for _, r := range c.Regions {
		out = append(out, classify.Region{
			Tag:          classify.RegionTag(strings.ToUpper(strings.TrimSpace(r.Tag))),
			FilePatterns: r.FilePatterns,
			Tokens:       r.Tokens,
		})
	}
	return out
}

// RegionOutputs maps each region tag to its configured output name.
func (c *Config) RegionOutputs() map[classify.RegionTag]string {
	out := make(map[classify.RegionTag]string, len(c.Regions))
	for _, r := range c.Regions {
		if r.Output != "" {
			out[classify.RegionTag(strings.ToUpper(strings.TrimSpace(r.Tag)))] = r.Output
		}
	}
	return out
}

// ExtractOptions converts the configuration into pipeline options.
func (c *Config) ExtractOptions() core.Options {
	opts := core.Options{
		TargetPort:      c.TargetPort,
		Regions:         c.ClassifyRegions(),
		DisableFallback: !c.Fallback.Enabled,
		ExcludePorts:    c.Fallback.ExcludePorts,
		ExcludeRanges:   c.Filters.ExcludeCIDRs,
		Workers:         c.Workers,
		HeaderSynonyms: map[headers.Role][]string{
			headers.RolePort:    c.Headers.Port,
			headers.RoleAddress: c.Headers.Address,
			headers.RoleRegion:  c.Headers.Region,
		},
	}
	if opts.ExcludePorts == nil {
		opts.ExcludePorts = []string{}
	}
	return opts
}
