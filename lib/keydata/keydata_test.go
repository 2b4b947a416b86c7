// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keydata

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/javasrc"
	"github.com/bureau-foundation/stubgen/lib/testutil"
)

// writeKeys fills a directory with distinct content per key file.
func writeKeys(t *testing.T) (string, map[string][]byte) {
	t.Helper()
	directory := t.TempDir()
	contents := make(map[string][]byte)
	for index, key := range Keys {
		data := testutil.Blob(100+index*37, uint64(index))
		testutil.WriteFile(t, directory, key.File, string(data))
		contents[key.Method] = data
	}
	return directory, contents
}

var methodPattern = regexp.MustCompile(`byte\[\] (\w+)\(\) \{\nbyte\[\] buf = \{([^}]*)\};`)

func TestBuild(t *testing.T) {
	keysDir, contents := writeKeys(t)
	outputDir := t.TempDir()

	path, err := Build(keysDir, outputDir, "com.example.app")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := filepath.Join(outputDir, "com", "example", "app", "signing", "KeyData.java"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	source := testutil.ReadFile(t, path)
	if !strings.HasPrefix(source, "package com.example.app.signing;\npublic final class KeyData {\n") {
		t.Errorf("unexpected header:\n%.120s", source)
	}

	matches := methodPattern.FindAllStringSubmatch(source, -1)
	if len(matches) != len(Keys) {
		t.Fatalf("found %d byte methods, want %d", len(matches), len(Keys))
	}
	for index, match := range matches {
		if match[1] != Keys[index].Method {
			t.Errorf("method %d = %s, want %s", index, match[1], Keys[index].Method)
		}
		data, err := javasrc.ParseByteLiterals(match[2])
		if err != nil {
			t.Fatalf("%s: %v", match[1], err)
		}
		if !bytes.Equal(data, contents[match[1]]) {
			t.Errorf("%s() does not reproduce %s", match[1], Keys[index].File)
		}
	}
}

func TestBuildMissingKey(t *testing.T) {
	keysDir, _ := writeKeys(t)
	if err := os.Remove(filepath.Join(keysDir, "verity.pk8")); err != nil {
		t.Fatal(err)
	}
	outputDir := t.TempDir()

	_, err := Build(keysDir, outputDir, "com.example.app")
	if kind := builderr.KindOf(err); kind != builderr.KindMissingInput {
		t.Errorf("KindOf = %q, want %q (err: %v)", kind, builderr.KindMissingInput, err)
	}
	if files := testutil.ListFiles(t, outputDir); len(files) != 0 {
		t.Errorf("files after failure = %v, want none", files)
	}
}

func TestRenderMissingContent(t *testing.T) {
	_, err := Render("com.example.app", map[string][]byte{"testCert": {1}})
	if kind := builderr.KindOf(err); kind != builderr.KindMissingInput {
		t.Errorf("KindOf = %q, want %q", kind, builderr.KindMissingInput)
	}
}
