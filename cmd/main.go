// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"ipsift/internal/config"
	"ipsift/internal/core"
	"ipsift/internal/help"
	"ipsift/internal/observability"
	"ipsift/internal/version"

	"ipsift/internal/formatters"
	_ "ipsift/internal/formatters/json"
	_ "ipsift/internal/formatters/text"
	_ "ipsift/internal/formatters/yaml"
)

// Exit codes
const (
	exitOK          = 0
	exitUsage       = 1
	exitWriteFailed = 2
)

// stringList collects a repeatable flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// configFlags holds command line flag values
type configFlags struct {
	configFile  string
	port        string
	output      string
	outputDir   string
	regions     stringList
	workers     int
	noFallback  bool
	skipEmpty   bool
	format      string
	verbose     bool
	noColor     bool
	quiet       bool
	debug       bool
	showVersion bool
	showHelp    bool

	// set records the flags given on the command line
	set map[string]bool
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *configFlags) {
	f := &configFlags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("ipsift", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&f.port, "port", "", "Target port records must carry (default: 443)")
	fs.StringVar(&f.output, "output", "", "File receiving every address (default: ip.txt)")
	fs.StringVar(&f.outputDir, "output-dir", "", "Directory for the output files")
	fs.Var(&f.regions, "region", "Region bucket to write; repeatable or comma separated (default: all)")
	fs.IntVar(&f.workers, "workers", 0, "Files loaded concurrently (default: 1)")
	fs.BoolVar(&f.noFallback, "no-fallback", false, "Disable the free-text line scanner")
	fs.BoolVar(&f.skipEmpty, "skip-empty", false, "Do not write output files that would be empty")
	fs.StringVar(&f.format, "format", "", "Run report format: text, json, yaml (default: text)")
	fs.BoolVar(&f.verbose, "verbose", false, "List every address in the run report")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.quiet, "quiet", false, "Suppress the run report")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	fs.BoolVar(&f.showHelp, "help", false, "Show help information")
	return fs, f
}

// applyFlags overrides cfg with the flags given on the command line
func applyFlags(cfg *config.Config, f *configFlags) {
	if f.set["port"] {
		cfg.TargetPort = strings.TrimSpace(f.port)
	}
	if f.set["output"] {
		cfg.Output.All = f.output
	}
	if f.set["output-dir"] {
		cfg.Output.Dir = f.outputDir
	}
	if f.set["workers"] {
		cfg.Workers = f.workers
	}
	if f.set["no-fallback"] {
		cfg.Fallback.Enabled = !f.noFallback
	}
	if f.set["skip-empty"] {
		cfg.Output.SkipEmpty = f.skipEmpty
	}
	if f.set["format"] {
		cfg.Report.Format = strings.ToLower(f.format)
	}
	if f.set["no-color"] {
		cfg.Report.NoColor = f.noColor
	}
	if f.debug {
		cfg.Logging.Level = "debug"
	}
}

// showHelp prints the general help, or the topic named by the first
// argument.
func showHelp(stdout io.Writer, cfg *config.Config, args []string) int {
	noColor := cfg.Report.NoColor || !isTerminal(stdout)
	if noColor {
		color.NoColor = true
	}
	opts := cfg.ExtractOptions()
	h := help.NewSystem(stdout, noColor, opts.Regions, core.BuildRuleTable(opts.HeaderSynonyms))
	if len(args) > 0 {
		if !h.ShowTopic(args[0]) {
			return exitUsage
		}
		return exitOK
	}
	h.ShowGeneralHelp()
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flagSet, flags := newFlagSet(stderr)
	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "Usage: ipsift [options] <file|directory|glob>...")
		fmt.Fprintln(stderr, "Run 'ipsift -help' for details.")
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	flagSet.Visit(func(fl *flag.Flag) { flags.set[fl.Name] = true })

	if flags.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}

	// A missing .env is fine; variables already set win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "Error: reading .env: %v\n", err)
		return exitUsage
	}

	cfg, configPath, err := config.LoadConfigOrDefault(flags.configFile)
	if flags.showHelp {
		// help stays reachable when the configuration is broken
		if err == nil {
			applyFlags(cfg, flags)
			err = config.ValidateConfig(cfg)
		}
		if err != nil {
			cfg = config.Default()
			applyFlags(cfg, flags)
		}
		return showHelp(stdout, cfg, flagSet.Args())
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	applyFlags(cfg, flags)
	if err := config.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	noColor := cfg.Report.NoColor || !isTerminal(stdout)
	if noColor {
		color.NoColor = true
	}

	opts := cfg.ExtractOptions()

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return exitUsage
	}

	runID := uuid.New().String()
	logger := observability.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format).With("run_id", runID)
	if configPath != "" {
		logger.Debug("configuration loaded", "path", configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := core.ExpandInputs(flagSet.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	opts.RegionFilter = core.ParseRegionFilter(flags.regions)
	opts.Logger = logger

	started := time.Now()
	logger.Info("extraction started", "files", len(files), "port", opts.TargetPort, "workers", opts.Workers)

	result, err := core.Extract(ctx, files, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	dest := core.DestinationsIn(cfg.Output.Dir, cfg.Output.All, cfg.RegionOutputs(), result.Regions())
	dest.SkipEmpty = cfg.Output.SkipEmpty
	outcomes := core.WriteResults(ctx, result, dest)
	logOutcomes(logger, outcomes)

	if !flags.quiet {
		report := &formatters.Report{
			RunID:      runID,
			Version:    version.Short(),
			TargetPort: opts.TargetPort,
			Started:    started,
			Duration:   time.Since(started),
			Result:     result,
			Writes:     outcomes,
		}
		out, err := formatters.Export(cfg.Report.Format, report, formatters.FormatterOptions{
			NoColor: noColor,
			Verbose: flags.verbose,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		} else {
			fmt.Fprint(stdout, out)
		}
	}

	if core.HasFailures(outcomes) {
		return exitWriteFailed
	}
	return exitOK
}

func logOutcomes(logger *slog.Logger, outcomes []core.WriteOutcome) {
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			logger.Error("write failed", "bucket", o.Bucket, "path", o.Path, "error", o.Err)
		case o.Skipped:
			logger.Info("output skipped", "bucket", o.Bucket, "path", o.Path)
		default:
			logger.Info("output written", "bucket", o.Bucket, "path", o.Path, "count", o.Count)
		}
	}
}

// isTerminal checks if w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
