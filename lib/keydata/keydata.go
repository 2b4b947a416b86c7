// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keydata embeds the build's signing keys in generated source
// so the stub runtime can re-sign packages it produces. Each key file
// becomes a byte method of the KeyData class in the "signing"
// subpackage of the stub package.
package keydata

import (
	"os"
	"path/filepath"

	"github.com/bureau-foundation/stubgen/lib/atomicfile"
	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/javasrc"
)

// ClassName is the simple name of the emitted class.
const ClassName = "KeyData"

// Subpackage is appended to the stub package to form the package of
// the emitted class.
const Subpackage = "signing"

// Key maps one file in the keys directory to a method of the emitted
// class.
type Key struct {
	File   string
	Method string
}

// Keys lists the embedded files in emission order.
var Keys = []Key{
	{File: "testkey.x509.pem", Method: "testCert"},
	{File: "testkey.pk8", Method: "testKey"},
	{File: "verity.x509.pem", Method: "verityCert"},
	{File: "verity.pk8", Method: "verityKey"},
}

// Read loads every key file from directory, keyed by method name.
func Read(directory string) (map[string][]byte, error) {
	contents := make(map[string][]byte, len(Keys))
	for _, key := range Keys {
		data, err := os.ReadFile(filepath.Join(directory, key.File))
		if err != nil {
			return nil, builderr.MissingInput("reading signing key: %w", err)
		}
		contents[key.Method] = data
	}
	return contents, nil
}

// Render returns the KeyData source for pkg, the stub package.
func Render(pkg string, contents map[string][]byte) ([]byte, error) {
	file := javasrc.NewFile(pkg + "." + Subpackage)
	file.OpenClass(ClassName)
	for _, key := range Keys {
		data, ok := contents[key.Method]
		if !ok {
			return nil, builderr.MissingInput("no content for %s (%s)", key.Method, key.File)
		}
		file.ByteMethod(key.Method, data)
	}
	file.CloseClass()
	return file.Bytes(), nil
}

// SourcePath returns where KeyData.java lives under outputDir.
func SourcePath(outputDir, pkg string) string {
	return filepath.Join(outputDir, filepath.FromSlash(javasrc.SourcePath(pkg+"."+Subpackage+"."+ClassName)))
}

// Build reads the keys in keysDir and writes KeyData.java under
// outputDir. Returns the written path.
func Build(keysDir, outputDir, pkg string) (string, error) {
	if !javasrc.ValidPackage(pkg) {
		return "", builderr.MissingInput("invalid key data package %q", pkg)
	}
	contents, err := Read(keysDir)
	if err != nil {
		return "", err
	}
	source, err := Render(pkg, contents)
	if err != nil {
		return "", err
	}

	path := SourcePath(outputDir, pkg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", builderr.Internal("creating key data directory: %w", err)
	}
	if err := atomicfile.Write(path, source, 0o644); err != nil {
		return "", builderr.Internal("%w", err)
	}
	return path, nil
}
