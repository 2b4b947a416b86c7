// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// WriteFile writes content to directory/relative, creating parent
// directories. Returns the full path.
//
//	path := testutil.WriteFile(t, t.TempDir(), "com/example/app/R.java", source)
func WriteFile(t testing.TB, directory, relative, content string) string {
	t.Helper()
	path := filepath.Join(directory, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// ListFiles returns the sorted, slash-separated paths of all regular
// files under directory, relative to it. A missing directory yields an
// empty list.
func ListFiles(t testing.TB, directory string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == directory {
				return filepath.SkipDir
			}
			return err
		}
		if entry.Type().IsRegular() {
			relative, err := filepath.Rel(directory, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(relative))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("listing %s: %v", directory, err)
	}
	slices.Sort(files)
	return files
}

// Blob returns size bytes of deterministic pseudo-random data with some
// repetition mixed in, so compressors have something to work with.
func Blob(size int, seed uint64) []byte {
	generator := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]byte, size)
	for index := range data {
		if index >= 64 && generator.IntN(4) == 0 {
			data[index] = data[index-64]
			continue
		}
		data[index] = byte(generator.UintN(256))
	}
	return data
}
