// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault packs the compiled resource bundle into generated
// source.
//
// The bundle is compressed ([Codec]) and then encrypted with
// AES-256-CBC under a key and IV drawn from the build's randomness
// source ([Seal]). The key, IV, and ciphertext are emitted as the
// key(), iv(), and res() byte methods of a Bytes class ([Render]).
// Compression always precedes encryption: ciphertext does not
// compress.
//
// [Build] also renames the generated resource accessor (R.java) to the
// identifier the name pool reserves for it, so the accessor cannot
// collide with any component alias.
//
// Everything is computed in memory and round-tripped through [Open]
// before the first byte is written; a failed build leaves the output
// directory untouched.
package vault

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/stubgen/lib/atomicfile"
	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/javasrc"
	"github.com/bureau-foundation/stubgen/lib/namepool"
)

// ClassName is the simple name of the emitted vault class.
const ClassName = "Bytes"

// Render returns the source of the vault class in pkg.
func Render(material *Material, pkg string) []byte {
	file := javasrc.NewFile(pkg)
	file.OpenClass(ClassName)
	file.ByteMethod("key", material.Key)
	file.ByteMethod("iv", material.IV)
	file.ByteMethod("res", material.Ciphertext)
	file.CloseClass()
	return file.Bytes()
}

// Options configures Build.
type Options struct {
	// BundlePath is the compiled resource bundle to encrypt.
	BundlePath string

	// AccessorPath is the generated R.java. It is replaced by A.java
	// in the same directory.
	AccessorPath string

	// OutputDir is the source root Bytes.java is written under, in
	// the directory of Package.
	OutputDir string

	// Package is the Java package of the Bytes class.
	Package string

	// Codec compresses the bundle before encryption.
	Codec Codec

	// Random supplies the key and IV.
	Random io.Reader
}

// Output describes what Build wrote.
type Output struct {
	Material     *Material
	AccessorPath string
	BytesPath    string
	BundleSize   int

	// Accessor is the original R.java source and SourceAccessorPath the
	// path Build removed it from, so a caller can restore it.
	Accessor           []byte
	SourceAccessorPath string
}

// Paths returns the written files.
func (o *Output) Paths() []string {
	return []string{o.AccessorPath, o.BytesPath}
}

// Revert undoes a successful Build: it restores R.java and removes
// A.java and Bytes.java.
func (o *Output) Revert() error {
	if err := atomicfile.Write(o.SourceAccessorPath, o.Accessor, 0o644); err != nil {
		return fmt.Errorf("restoring resource accessor: %w", err)
	}
	var errs []error
	for _, path := range o.Paths() {
		if path == o.SourceAccessorPath {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// Build seals the bundle, renames the accessor, and writes A.java and
// Bytes.java. R.java is removed only after both files are in place.
func Build(options Options) (*Output, error) {
	if !javasrc.ValidPackage(options.Package) {
		return nil, builderr.MissingInput("invalid vault package %q", options.Package)
	}
	if options.Random == nil {
		return nil, builderr.CryptoInit("no randomness source")
	}

	bundle, err := os.ReadFile(options.BundlePath)
	if err != nil {
		return nil, builderr.MissingInput("reading resource bundle: %w", err)
	}
	accessor, err := os.ReadFile(options.AccessorPath)
	if err != nil {
		return nil, builderr.MissingInput("reading resource accessor: %w", err)
	}

	renamed, err := RenameAccessor(accessor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", options.AccessorPath, err)
	}

	material, err := Seal(bundle, options.Random, options.Codec)
	if err != nil {
		return nil, err
	}
	opened, err := Open(material, options.Codec)
	if err != nil {
		return nil, builderr.Internal("vault self-check: %w", err)
	}
	if !bytes.Equal(opened, bundle) {
		return nil, builderr.Internal("vault self-check: opened bundle differs from input (%d bytes, want %d)",
			len(opened), len(bundle))
	}

	output := &Output{
		Material:     material,
		AccessorPath: filepath.Join(filepath.Dir(options.AccessorPath), namepool.ReservedIdentifier+".java"),
		BytesPath: filepath.Join(options.OutputDir,
			filepath.FromSlash(javasrc.PackageDir(options.Package)), ClassName+".java"),
		BundleSize:         len(bundle),
		Accessor:           accessor,
		SourceAccessorPath: options.AccessorPath,
	}

	var batch atomicfile.Batch
	batch.Add(output.AccessorPath, renamed, 0o644)
	batch.Add(output.BytesPath, Render(material, options.Package), 0o644)
	if err := batch.Commit(); err != nil {
		return nil, builderr.Internal("writing vault sources: %w", err)
	}

	if err := os.Remove(options.AccessorPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, builderr.Internal("removing renamed accessor: %w", err)
	}
	return output, nil
}
