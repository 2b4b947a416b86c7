// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/codec"
	"github.com/bureau-foundation/stubgen/lib/config"
	"github.com/bureau-foundation/stubgen/lib/keydata"
	"github.com/bureau-foundation/stubgen/lib/namepool"
	"github.com/bureau-foundation/stubgen/lib/stubbuild"
	"github.com/bureau-foundation/stubgen/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return fmt.Errorf("subcommand required")
	}

	subcommand := args[0]
	switch subcommand {
	case "generate":
		return runGenerate(args[1:], stdout, stderr)
	case "dictionary":
		return runDictionary(args[1:], stderr)
	case "keydata":
		return runKeyData(args[1:], stderr)
	case "report":
		return runReport(args[1:], stdout, stderr)
	case "version", "--version":
		return runVersion(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage: stubgen <subcommand> [flags]

Subcommands:
  generate    Run the full stub generation pipeline
  dictionary  Write the identifier dictionary only
  keydata     Embed signing keys as generated source
  report      Print a build report
  version     Print version information (--verbose for toolchain details)

Run 'stubgen <subcommand> --help' for subcommand flags.
`)
}

// parseFlags parses args into flagSet. Returns done=true when help was
// requested and printed.
func parseFlags(flagSet *pflag.FlagSet, args []string, stderr io.Writer) (done bool, err error) {
	flagSet.SetOutput(stderr)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", name, err)
	}
	return level, nil
}

func runGenerate(args []string, stdout, stderr io.Writer) error {
	var configPath, reportPath, logLevel string
	var seed int64

	flagSet := pflag.NewFlagSet("stubgen generate", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to stubgen.yaml (default: $STUBGEN_CONFIG)")
	flagSet.Int64Var(&seed, "seed", 0, "deterministic seed, overriding the config file (0 selects secure randomness)")
	flagSet.StringVar(&reportPath, "report", "", "write the CBOR build report here, overriding outputs.report")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	if done, err := parseFlags(flagSet, args, stderr); done || err != nil {
		return err
	}
	if flagSet.NArg() != 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))
	}
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagSet.Changed("seed") {
		cfg.Seed = seed
	}
	if reportPath != "" {
		cfg.Outputs.Report = reportPath
	}

	logger := newLogger(stderr, level).With("command", "generate")
	build, err := stubbuild.New(cfg, logger)
	if err != nil {
		return err
	}
	report, err := build.Run()
	if err != nil {
		logger.Error("stub generation failed",
			"stage", string(builderr.StageOf(err)),
			"kind", string(builderr.KindOf(err)),
		)
		return err
	}

	fmt.Fprintf(stdout, "generated %d artifacts (%d components, %d proxies, %d fragments)\n",
		len(report.Artifacts), report.Components, report.Proxies, report.Fragments)
	return nil
}

func runDictionary(args []string, stderr io.Writer) error {
	var outPath, logLevel string
	var seed int64

	flagSet := pflag.NewFlagSet("stubgen dictionary", pflag.ContinueOnError)
	flagSet.StringVar(&outPath, "out", "", "dictionary output path (required)")
	flagSet.Int64Var(&seed, "seed", 0, "deterministic seed (0 selects secure randomness)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	if done, err := parseFlags(flagSet, args, stderr); done || err != nil {
		return err
	}
	if outPath == "" {
		return fmt.Errorf("--out is required")
	}
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, level).With("command", "dictionary")

	pool := namepool.Generate(namepool.NewSource(seed))
	if err := pool.WriteDictionaryFile(outPath); err != nil {
		return builderr.InStage(builderr.StageIdentifierPool, err)
	}
	logger.Info("dictionary written", "path", outPath, "deterministic", seed != 0)
	return nil
}

func runKeyData(args []string, stderr io.Writer) error {
	var keysDir, outDir, pkg string

	flagSet := pflag.NewFlagSet("stubgen keydata", pflag.ContinueOnError)
	flagSet.StringVar(&keysDir, "keys", "", "directory holding the signing keys (required)")
	flagSet.StringVar(&outDir, "out", "", "source root to write KeyData.java under (required)")
	flagSet.StringVar(&pkg, "package", config.Default().Package, "stub runtime base package")
	if done, err := parseFlags(flagSet, args, stderr); done || err != nil {
		return err
	}
	if keysDir == "" || outDir == "" {
		return fmt.Errorf("--keys and --out are required")
	}

	path, err := keydata.Build(keysDir, outDir, pkg)
	if err != nil {
		return builderr.InStage(builderr.StageKeyData, err)
	}
	newLogger(stderr, slog.LevelInfo).Info("signing keys embedded", "command", "keydata", "path", path)
	return nil
}

func runVersion(args []string, stdout, stderr io.Writer) error {
	var verbose bool

	flagSet := pflag.NewFlagSet("stubgen version", pflag.ContinueOnError)
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "also print the Go toolchain and platform")
	if done, err := parseFlags(flagSet, args, stderr); done || err != nil {
		return err
	}
	version.Print(stdout, "stubgen", verbose)
	return nil
}

func runReport(args []string, stdout, stderr io.Writer) error {
	var diagnose bool

	flagSet := pflag.NewFlagSet("stubgen report", pflag.ContinueOnError)
	flagSet.BoolVar(&diagnose, "diagnose", false, "print CBOR diagnostic notation instead of a summary")
	if done, err := parseFlags(flagSet, args, stderr); done || err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("usage: stubgen report [--diagnose] PATH")
	}
	path := flagSet.Arg(0)

	if diagnose {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading build report: %w", err)
		}
		notation, err := codec.Diagnose(data)
		if err != nil {
			return fmt.Errorf("decoding build report %s: %w", path, err)
		}
		fmt.Fprintln(stdout, notation)
		return nil
	}

	report, err := stubbuild.ReadReport(path)
	if err != nil {
		return err
	}
	printReport(stdout, report)
	return nil
}

func printReport(w io.Writer, report *stubbuild.Report) {
	fmt.Fprintf(w, "version:       %s\n", report.Version)
	if report.Deterministic {
		fmt.Fprintf(w, "seed:          %d\n", report.Seed)
	} else {
		fmt.Fprintf(w, "seed:          none (not reproducible)\n")
	}
	fmt.Fprintf(w, "stages:        %s\n", strings.Join(report.Stages, ", "))
	fmt.Fprintf(w, "components:    %d (%d proxies, %d fragments)\n",
		report.Components, report.Proxies, report.Fragments)
	if report.Compression != "" {
		fmt.Fprintf(w, "compression:   %s\n", report.Compression)
	}
	fmt.Fprintf(w, "artifacts:\n")
	for _, artifact := range report.Artifacts {
		fmt.Fprintf(w, "  %-16s  %8d  %s\n", shortDigest(artifact.Digest), artifact.Size, artifact.Path)
	}
}

// shortDigest abbreviates a hex digest for display. Reports written by
// other tools may carry shorter or empty digests.
func shortDigest(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
