// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/javasrc"
	"github.com/bureau-foundation/stubgen/lib/namepool"
	"github.com/bureau-foundation/stubgen/lib/testutil"
)

const testPackage = "com.example.app"

const accessorSource = `package com.example.app;

public final class R {
    public static final class string {
        public static final int app_name = 0x7f010000;
    }
    public static final class id {
        public static final int root = 0x7f020000;
    }
}
`

var allCodecs = []Codec{CodecGzip, CodecZstd, CodecLZ4}

func TestCodecStringRoundTrip(t *testing.T) {
	for _, codec := range allCodecs {
		parsed, err := ParseCodec(codec.String())
		if err != nil {
			t.Errorf("ParseCodec(%q): %v", codec.String(), err)
			continue
		}
		if parsed != codec {
			t.Errorf("ParseCodec(%q) = %v, want %v", codec.String(), parsed, codec)
		}
	}

	if codec, err := ParseCodec(""); err != nil || codec != CodecGzip {
		t.Errorf("ParseCodec(\"\") = %v, %v; want gzip", codec, err)
	}
	if _, err := ParseCodec("brotli"); err == nil {
		t.Error("ParseCodec(\"brotli\") should fail")
	}
	if got := Codec(99).String(); got != "unknown(99)" {
		t.Errorf("Codec(99).String() = %q, want %q", got, "unknown(99)")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 4096, 1_048_593}

	for _, codec := range allCodecs {
		for _, size := range sizes {
			t.Run(fmt.Sprintf("%s/%d", codec, size), func(t *testing.T) {
				blob := testutil.Blob(size, uint64(size)+1)
				material, err := Seal(blob, namepool.NewSource(7), codec)
				if err != nil {
					t.Fatalf("Seal(%d bytes): %v", size, err)
				}
				if len(material.Key) != KeySize || len(material.IV) != IVSize {
					t.Fatalf("key/IV lengths = %d/%d, want %d/%d",
						len(material.Key), len(material.IV), KeySize, IVSize)
				}
				if len(material.Ciphertext) == 0 || len(material.Ciphertext)%IVSize != 0 {
					t.Fatalf("ciphertext length %d is not a positive block multiple", len(material.Ciphertext))
				}

				opened, err := Open(material, codec)
				if err != nil {
					t.Fatalf("Open(%d bytes): %v", size, err)
				}
				if !bytes.Equal(opened, blob) {
					t.Fatalf("Open returned %d bytes differing from the %d byte input", len(opened), size)
				}
			})
		}
	}
}

func TestSealCompressesBeforeEncrypting(t *testing.T) {
	// Highly repetitive input: if compression ran first the
	// ciphertext is far smaller than the input.
	blob := bytes.Repeat([]byte("resources.arsc "), 1<<14)
	for _, codec := range allCodecs {
		material, err := Seal(blob, namepool.NewSource(3), codec)
		if err != nil {
			t.Fatalf("Seal(%s): %v", codec, err)
		}
		if len(material.Ciphertext) >= len(blob)/4 {
			t.Errorf("%s: ciphertext is %d bytes for a %d byte repetitive input",
				codec, len(material.Ciphertext), len(blob))
		}
	}
}

func TestSealDeterministicForSeed(t *testing.T) {
	blob := testutil.Blob(10_000, 9)

	first, err := Seal(blob, namepool.NewSource(42), CodecGzip)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	second, err := Seal(blob, namepool.NewSource(42), CodecGzip)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !bytes.Equal(Render(first, testPackage), Render(second, testPackage)) {
		t.Error("same seed produced different vault sources")
	}

	other, err := Seal(blob, namepool.NewSource(43), CodecGzip)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Equal(first.Key, other.Key) {
		t.Error("different seeds produced the same key")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestSealRandomnessFailure(t *testing.T) {
	_, err := Seal([]byte("bundle"), failingReader{}, CodecGzip)
	if err == nil {
		t.Fatal("Seal should fail without randomness")
	}
	if kind := builderr.KindOf(err); kind != builderr.KindCryptoInit {
		t.Errorf("KindOf = %q, want %q", kind, builderr.KindCryptoInit)
	}
}

func TestOpenRejectsMalformedMaterial(t *testing.T) {
	material, err := Seal([]byte("bundle"), namepool.NewSource(1), CodecGzip)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Material)
	}{
		{"short key", func(m *Material) { m.Key = m.Key[:16] }},
		{"short IV", func(m *Material) { m.IV = m.IV[:8] }},
		{"empty ciphertext", func(m *Material) { m.Ciphertext = nil }},
		{"partial block", func(m *Material) { m.Ciphertext = m.Ciphertext[:len(m.Ciphertext)-1] }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			modified := &Material{
				Key:        slices.Clone(material.Key),
				IV:         slices.Clone(material.IV),
				Ciphertext: slices.Clone(material.Ciphertext),
			}
			test.modify(modified)
			if _, err := Open(modified, CodecGzip); err == nil {
				t.Error("Open should fail")
			}
		})
	}
}

func TestPadding(t *testing.T) {
	for _, size := range []int{0, 1, 15, 16, 17, 32} {
		data := bytes.Repeat([]byte{0xee}, size)
		padded := pad(data, 16)
		if len(padded)%16 != 0 || len(padded) <= size {
			t.Errorf("pad(%d bytes) = %d bytes", size, len(padded))
			continue
		}
		unpadded, err := unpad(padded, 16)
		if err != nil {
			t.Errorf("unpad(pad(%d bytes)): %v", size, err)
			continue
		}
		if !bytes.Equal(unpadded, data) {
			t.Errorf("unpad(pad(%d bytes)) changed the data", size)
		}
	}

	invalid := [][]byte{
		{},
		append(bytes.Repeat([]byte{1}, 15), 0),
		append(bytes.Repeat([]byte{1}, 15), 17),
		append(bytes.Repeat([]byte{1}, 14), 3, 2),
	}
	for _, data := range invalid {
		if _, err := unpad(data, 16); err == nil {
			t.Errorf("unpad(%v) should fail", data)
		}
	}
}

func TestRenameAccessor(t *testing.T) {
	renamed, err := RenameAccessor([]byte(accessorSource))
	if err != nil {
		t.Fatalf("RenameAccessor: %v", err)
	}
	want := strings.Replace(accessorSource, "public final class R {", "public final class A {", 1)
	if string(renamed) != want {
		t.Errorf("RenameAccessor =\n%s\nwant\n%s", renamed, want)
	}
}

func TestRenameAccessorOnlyDeclaration(t *testing.T) {
	source := "package p;\n// see class Resources\npublic class R extends Object {\n  static R self;\n  class Rx {}\n}\n"
	renamed, err := RenameAccessor([]byte(source))
	if err != nil {
		t.Fatalf("RenameAccessor: %v", err)
	}
	want := "package p;\n// see class Resources\npublic class A extends Object {\n  static R self;\n  class Rx {}\n}\n"
	if string(renamed) != want {
		t.Errorf("RenameAccessor =\n%s\nwant\n%s", renamed, want)
	}
}

func TestRenameAccessorWithoutDeclaration(t *testing.T) {
	_, err := RenameAccessor([]byte("package p;\npublic final class Resources {}\n"))
	if kind := builderr.KindOf(err); kind != builderr.KindMissingInput {
		t.Errorf("KindOf = %q, want %q (err: %v)", kind, builderr.KindMissingInput, err)
	}
}

var byteMethodPattern = regexp.MustCompile(`byte\[\] (\w+)\(\) \{\nbyte\[\] buf = \{([^}]*)\};`)

// parseVault extracts the three byte methods from an emitted vault
// class.
func parseVault(t *testing.T, source string) *Material {
	t.Helper()
	methods := make(map[string][]byte)
	for _, match := range byteMethodPattern.FindAllStringSubmatch(source, -1) {
		data, err := javasrc.ParseByteLiterals(match[2])
		if err != nil {
			t.Fatalf("method %s: %v", match[1], err)
		}
		methods[match[1]] = data
	}
	for _, name := range []string{"key", "iv", "res"} {
		if _, ok := methods[name]; !ok {
			t.Fatalf("vault source has no %s() method:\n%.400s", name, source)
		}
	}
	return &Material{Key: methods["key"], IV: methods["iv"], Ciphertext: methods["res"]}
}

func TestRenderEmitsRecoverableMaterial(t *testing.T) {
	blob := testutil.Blob(4096, 5)
	material, err := Seal(blob, namepool.NewSource(11), CodecZstd)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	source := string(Render(material, testPackage))

	if !strings.HasPrefix(source, "package com.example.app;\n") {
		t.Errorf("source does not start with the package clause:\n%.80s", source)
	}
	if !strings.Contains(source, "public final class Bytes {") {
		t.Error("source does not declare class Bytes")
	}
	if strings.Contains(source, "(byte)(-") {
		t.Error("byte literals must be written in 0..255")
	}

	opened, err := Open(parseVault(t, source), CodecZstd)
	if err != nil {
		t.Fatalf("Open(parsed source): %v", err)
	}
	if !bytes.Equal(opened, blob) {
		t.Error("material parsed back from the source does not open to the input")
	}
}

// vaultFixture lays out a bundle and an accessor as the outer build
// leaves them and returns Build options pointing at them.
func vaultFixture(t *testing.T, seed int64, bundle []byte) Options {
	t.Helper()
	directory := t.TempDir()
	bundlePath := filepath.Join(directory, "resources.ap_")
	testutil.WriteFile(t, directory, "resources.ap_", string(bundle))
	accessorPath := testutil.WriteFile(t, directory, "gen/com/example/app/R.java", accessorSource)
	return Options{
		BundlePath:   bundlePath,
		AccessorPath: accessorPath,
		OutputDir:    filepath.Join(directory, "gen"),
		Package:      testPackage,
		Codec:        CodecGzip,
		Random:       namepool.NewSource(seed),
	}
}

func TestBuild(t *testing.T) {
	bundle := testutil.Blob(70_000, 21)
	options := vaultFixture(t, 5, bundle)

	output, err := Build(options)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	files := testutil.ListFiles(t, options.OutputDir)
	want := []string{"com/example/app/A.java", "com/example/app/Bytes.java"}
	if !slices.Equal(files, want) {
		t.Errorf("output files = %v, want %v", files, want)
	}
	if output.BundleSize != len(bundle) {
		t.Errorf("BundleSize = %d, want %d", output.BundleSize, len(bundle))
	}

	accessor := testutil.ReadFile(t, output.AccessorPath)
	if !strings.Contains(accessor, "public final class A {") {
		t.Errorf("A.java does not declare class A:\n%s", accessor)
	}

	material := parseVault(t, testutil.ReadFile(t, output.BytesPath))
	opened, err := Open(material, options.Codec)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(opened, bundle) {
		t.Error("emitted vault does not open to the bundle")
	}
}

func TestOutputRevert(t *testing.T) {
	options := vaultFixture(t, 6, testutil.Blob(4_096, 2))

	output, err := Build(options)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := output.Revert(); err != nil {
		t.Fatalf("Revert: %v", err)
	}

	files := testutil.ListFiles(t, options.OutputDir)
	want := []string{"com/example/app/R.java"}
	if !slices.Equal(files, want) {
		t.Errorf("files after Revert = %v, want %v", files, want)
	}
	if accessor := testutil.ReadFile(t, options.AccessorPath); accessor != accessorSource {
		t.Errorf("restored R.java = %q, want the original source", accessor)
	}
}

func TestBuildEmptyBundle(t *testing.T) {
	for _, codec := range allCodecs {
		options := vaultFixture(t, 8, nil)
		options.Codec = codec
		output, err := Build(options)
		if err != nil {
			t.Fatalf("Build(%s): %v", codec, err)
		}
		opened, err := Open(parseVault(t, testutil.ReadFile(t, output.BytesPath)), codec)
		if err != nil {
			t.Fatalf("Open(%s): %v", codec, err)
		}
		if len(opened) != 0 {
			t.Errorf("%s: opened %d bytes, want 0", codec, len(opened))
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	bundle := testutil.Blob(20_000, 4)

	first, err := Build(vaultFixture(t, 99, bundle))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(vaultFixture(t, 99, bundle))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if testutil.ReadFile(t, first.BytesPath) != testutil.ReadFile(t, second.BytesPath) {
		t.Error("same seed produced different Bytes.java")
	}
	if testutil.ReadFile(t, first.AccessorPath) != testutil.ReadFile(t, second.AccessorPath) {
		t.Error("same seed produced different A.java")
	}
}

func TestBuildFailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		kind   builderr.Kind
	}{
		{"missing bundle", func(o *Options) { o.BundlePath += ".missing" }, builderr.KindMissingInput},
		{"missing accessor", func(o *Options) { o.AccessorPath = filepath.Join(o.OutputDir, "R.java") }, builderr.KindMissingInput},
		{"invalid package", func(o *Options) { o.Package = "com..app" }, builderr.KindMissingInput},
		{"no randomness", func(o *Options) { o.Random = failingReader{} }, builderr.KindCryptoInit},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			options := vaultFixture(t, 1, []byte("bundle"))
			test.modify(&options)

			_, err := Build(options)
			if err == nil {
				t.Fatal("Build should fail")
			}
			if kind := builderr.KindOf(err); kind != test.kind {
				t.Errorf("KindOf = %q, want %q (err: %v)", kind, test.kind, err)
			}
			files := testutil.ListFiles(t, options.OutputDir)
			if !slices.Equal(files, []string{"com/example/app/R.java"}) {
				t.Errorf("files after failure = %v, want only R.java", files)
			}
		})
	}
}
