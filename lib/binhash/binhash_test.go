// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"os"
	"path/filepath"
	"testing"
)

// emptyDigest is the published BLAKE3 digest of the empty input.
const emptyDigest = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"

func TestHashFile(t *testing.T) {
	content := []byte("package com.example.app;\n")
	path := filepath.Join(t.TempDir(), "Mapping.java")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, size, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := Sum(content); got != want {
		t.Errorf("HashFile = %x, want %x", got, want)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
}

func TestHashFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, size, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if got.String() != emptyDigest {
		t.Errorf("HashFile(empty) = %s, want %s", got, emptyDigest)
	}
	if size != 0 {
		t.Errorf("size = %d, want 0", size)
	}
}

func TestHashFileNonexistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")
	if _, _, err := HashFile(path); err == nil {
		t.Fatal("HashFile should fail for nonexistent file")
	}
}

func TestHashFileLarge(t *testing.T) {
	// Ensure streaming works for files larger than typical buffers.
	content := make([]byte, 256*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "resources.ap_")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, _, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := Sum(content); got != want {
		t.Errorf("HashFile(large) = %x, want %x", got, want)
	}
}

func TestHashFileDifferentContent(t *testing.T) {
	directory := t.TempDir()

	path1 := filepath.Join(directory, "file1")
	if err := os.WriteFile(path1, []byte("content A"), 0644); err != nil {
		t.Fatalf("WriteFile file1: %v", err)
	}
	path2 := filepath.Join(directory, "file2")
	if err := os.WriteFile(path2, []byte("content B"), 0644); err != nil {
		t.Fatalf("WriteFile file2: %v", err)
	}

	hash1, _, err := HashFile(path1)
	if err != nil {
		t.Fatalf("HashFile(file1): %v", err)
	}
	hash2, _, err := HashFile(path2)
	if err != nil {
		t.Fatalf("HashFile(file2): %v", err)
	}
	if hash1 == hash2 {
		t.Error("different files should produce different hashes")
	}
}

func TestFormatDigest(t *testing.T) {
	formatted := FormatDigest(Sum([]byte("test")))
	if length := len(formatted); length != 64 {
		t.Errorf("FormatDigest length = %d, want 64", length)
	}
}

func TestParseDigestRoundTrip(t *testing.T) {
	original := Sum([]byte("round-trip"))

	parsed, err := ParseDigest(FormatDigest(original))
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed != original {
		t.Errorf("ParseDigest round-trip failed: %x != %x", parsed, original)
	}
}

func TestParseDigestInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"},
		{"too short", "abcd"},
		{"too long", "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789aa"},
		{"empty", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseDigest(test.input); err == nil {
				t.Errorf("ParseDigest(%q) should fail", test.input)
			}
		})
	}
}
