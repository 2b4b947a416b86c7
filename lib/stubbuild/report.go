// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stubbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/stubgen/lib/atomicfile"
	"github.com/bureau-foundation/stubgen/lib/binhash"
	"github.com/bureau-foundation/stubgen/lib/codec"
)

// Report summarizes one successful run.
type Report struct {
	// Version is the stubgen version that produced the build.
	Version string `cbor:"version"`

	// Seed is the configured seed; 0 when the build used the secure
	// random source.
	Seed int64 `cbor:"seed"`

	// Deterministic reports whether the run is reproducible from Seed.
	Deterministic bool `cbor:"deterministic"`

	// Stages lists the stages that ran, in order.
	Stages []string `cbor:"stages"`

	// Components, Proxies, and Fragments count the obfuscator's
	// mapping entries, synthesized proxies, and manifest fragments.
	Components int `cbor:"components"`
	Proxies    int `cbor:"proxies"`
	Fragments  int `cbor:"fragments"`

	// Compression is the vault codec, empty when the vault did not run.
	Compression string `cbor:"compression,omitempty"`

	// Artifacts lists every written file in write order.
	Artifacts []Artifact `cbor:"artifacts"`
}

// Artifact is one written file.
type Artifact struct {
	// Path is slash-separated and relative to the configured root
	// when the file lies beneath it.
	Path   string `cbor:"path"`
	Size   int64  `cbor:"size"`
	Digest string `cbor:"digest"`
}

// Artifact returns the record for path, or false.
func (r *Report) Artifact(path string) (Artifact, bool) {
	for _, artifact := range r.Artifacts {
		if artifact.Path == path {
			return artifact, true
		}
	}
	return Artifact{}, false
}

// describeArtifact hashes path and records it relative to root.
func describeArtifact(root, path string) (Artifact, error) {
	digest, size, err := binhash.HashFile(path)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Path:   displayPath(root, path),
		Size:   size,
		Digest: binhash.FormatDigest(digest),
	}, nil
}

// displayPath makes path relative to root when it lies beneath it, so
// reports from different checkouts compare equal.
func displayPath(root, path string) string {
	if root != "" {
		relative, err := filepath.Rel(root, path)
		if err == nil && relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(relative)
		}
	}
	return filepath.ToSlash(path)
}

// WriteReport atomically writes report to path as CBOR.
func WriteReport(path string, report *Report) error {
	data, err := codec.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding build report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := atomicfile.Write(path, data, 0o644); err != nil {
		return fmt.Errorf("writing build report: %w", err)
	}
	return nil
}

// ReadReport reads a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build report: %w", err)
	}
	var report Report
	if err := codec.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decoding build report %s: %w", path, err)
	}
	return &report, nil
}
