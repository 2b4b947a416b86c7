// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stubbuild

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/stubgen/lib/atomicfile"
	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/component"
	"github.com/bureau-foundation/stubgen/lib/config"
	"github.com/bureau-foundation/stubgen/lib/keydata"
	"github.com/bureau-foundation/stubgen/lib/namepool"
	"github.com/bureau-foundation/stubgen/lib/obfuscate"
	"github.com/bureau-foundation/stubgen/lib/vault"
	"github.com/bureau-foundation/stubgen/lib/version"
)

// Build is one pipeline invocation. It is single-use: Run may be
// called once.
type Build struct {
	config *config.Config
	logger *slog.Logger
	codec  vault.Codec
	source *namepool.Source
	pool   *namepool.Pool

	report    *Report
	artifacts []string
	ran       bool

	// undo holds, in stage order, the actions that take back what each
	// completed step wrote.
	undo []func() error
}

// New validates cfg and prepares a build. The randomness source is
// created here from cfg.Seed; nothing is read or written until Run.
func New(cfg *config.Config, logger *slog.Logger) (*Build, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	codec, err := vault.ParseCodec(cfg.Resources.Compression)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	source := namepool.NewSource(cfg.Seed)
	return &Build{
		config: cfg,
		logger: logger,
		codec:  codec,
		source: source,
		report: &Report{
			Version:       version.Short(),
			Seed:          source.Seed(),
			Deterministic: source.Deterministic(),
		},
	}, nil
}

// Run executes every configured stage in order and returns the report.
// The report is also written to outputs.report when configured. When
// any step fails, everything earlier steps wrote is removed again and
// the resource accessor is restored, so a failed run leaves no partly
// obfuscated output behind.
func (b *Build) Run() (*Report, error) {
	if b.ran {
		return nil, builderr.Internal("build already ran")
	}
	b.ran = true

	report, err := b.run()
	if err != nil {
		b.rollback()
		return nil, err
	}
	return report, nil
}

// rollback runs the undo actions newest first. Failures are logged;
// the stage error is what the caller reports.
func (b *Build) rollback() {
	for index := len(b.undo) - 1; index >= 0; index-- {
		if err := b.undo[index](); err != nil {
			b.logger.Error("rolling back failed build", "error", err)
		}
	}
	b.undo = nil
}

// removeOnFailure registers path (a file or directory) for removal if
// a later step fails.
func (b *Build) removeOnFailure(path string) {
	b.undo = append(b.undo, func() error {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		return nil
	})
}

func (b *Build) run() (*Report, error) {
	if !b.report.Deterministic {
		b.logger.Warn("no seed configured, build is not reproducible")
	}

	if err := b.runIdentifierPool(); err != nil {
		return nil, builderr.InStage(builderr.StageIdentifierPool, err)
	}
	if err := b.runObfuscator(); err != nil {
		return nil, builderr.InStage(builderr.StageComponentObfuscator, err)
	}
	if b.config.Inputs.Resources != "" {
		if err := b.runVault(); err != nil {
			return nil, builderr.InStage(builderr.StageResourceVault, err)
		}
	} else {
		b.logger.Info("no resource bundle configured, skipping resource vault")
	}
	if b.config.Inputs.SigningKeys != "" {
		if err := b.runKeyData(); err != nil {
			return nil, builderr.InStage(builderr.StageKeyData, err)
		}
	}

	for _, path := range b.artifacts {
		artifact, err := describeArtifact(b.config.Root, path)
		if err != nil {
			return nil, builderr.Internal("describing artifacts: %w", err)
		}
		b.report.Artifacts = append(b.report.Artifacts, artifact)
	}

	if b.config.Outputs.Report != "" {
		if err := WriteReport(b.config.Outputs.Report, b.report); err != nil {
			return nil, builderr.Internal("%w", err)
		}
		b.logger.Info("build report written", "path", b.config.Outputs.Report)
	}

	b.logger.Info("stub generation complete",
		"stages", len(b.report.Stages),
		"artifacts", len(b.report.Artifacts),
	)
	return b.report, nil
}

func (b *Build) stageLogger(stage builderr.Stage) *slog.Logger {
	b.report.Stages = append(b.report.Stages, string(stage))
	return b.logger.With("stage", string(stage))
}

func (b *Build) runIdentifierPool() error {
	logger := b.stageLogger(builderr.StageIdentifierPool)

	b.pool = namepool.Generate(b.source)
	if err := b.pool.WriteDictionaryFile(b.config.Outputs.Dictionary); err != nil {
		return builderr.Internal("%w", err)
	}
	b.removeOnFailure(b.config.Outputs.Dictionary)
	b.artifacts = append(b.artifacts, b.config.Outputs.Dictionary)

	logger.Info("identifier pool generated",
		"tier1", len(b.pool.Tier(1)),
		"tier2", len(b.pool.Tier(2)),
		"tier3", len(b.pool.Tier(3)),
		"dictionary", b.config.Outputs.Dictionary,
	)
	return nil
}

func (b *Build) runObfuscator() error {
	logger := b.stageLogger(builderr.StageComponentObfuscator)

	table := component.Default()
	if path := b.config.Inputs.Components; path != "" {
		loaded, err := component.ReadFile(path)
		if err != nil {
			return err
		}
		table = loaded
	}
	templates, err := obfuscate.LoadTemplates(b.config.Inputs.ManifestTemplate, b.config.Inputs.MappingTemplate)
	if err != nil {
		return err
	}

	working, err := b.pool.Claim()
	if err != nil {
		return builderr.Internal("%w", err)
	}
	result, err := obfuscate.Generate(working, b.source, table, templates, obfuscate.Options{Package: b.config.Package})
	if err != nil {
		return err
	}

	written, err := result.Write(b.config.Outputs.Stubs)
	if err != nil {
		return builderr.Internal("writing stub sources: %w", err)
	}
	b.removeOnFailure(b.config.Outputs.Stubs)
	if err := writeManifest(b.config.Outputs.Manifest, result.Manifest); err != nil {
		return builderr.Internal("%w", err)
	}
	b.removeOnFailure(b.config.Outputs.Manifest)
	b.artifacts = append(b.artifacts, written...)
	b.artifacts = append(b.artifacts, b.config.Outputs.Manifest)

	b.report.Components = len(result.Entries)
	b.report.Proxies = len(result.Proxies)
	b.report.Fragments = len(result.Fragments)

	logger.Info("components obfuscated",
		"components", len(result.Entries),
		"proxies", len(result.Proxies),
		"fragments", len(result.Fragments),
		"working_pool_remaining", working.Remaining(),
	)
	return nil
}

func writeManifest(path, manifest string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := atomicfile.Write(path, []byte(manifest), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func (b *Build) runVault() error {
	logger := b.stageLogger(builderr.StageResourceVault)

	output, err := vault.Build(vault.Options{
		BundlePath:   b.config.Inputs.Resources,
		AccessorPath: b.config.AccessorPath(),
		OutputDir:    b.config.Outputs.Resources,
		Package:      b.config.Package,
		Codec:        b.codec,
		Random:       b.source,
	})
	if err != nil {
		return err
	}
	b.undo = append(b.undo, output.Revert)
	b.artifacts = append(b.artifacts, output.Paths()...)
	b.report.Compression = b.codec.String()

	logger.Info("resource bundle sealed",
		"bundle_bytes", output.BundleSize,
		"ciphertext_bytes", len(output.Material.Ciphertext),
		"compression", b.codec.String(),
	)
	return nil
}

func (b *Build) runKeyData() error {
	logger := b.stageLogger(builderr.StageKeyData)

	path, err := keydata.Build(b.config.Inputs.SigningKeys, b.config.Outputs.KeyData, b.config.Package)
	if err != nil {
		return err
	}
	b.removeOnFailure(path)
	b.artifacts = append(b.artifacts, path)

	logger.Info("signing keys embedded", "path", path)
	return nil
}
