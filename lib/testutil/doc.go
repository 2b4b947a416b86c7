// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for stubgen packages.
//
// [WriteFile] creates a fixture file (and its parent directories) under
// a test directory. [ReadFile] reads a generated artifact back as a
// string. [ListFiles] returns the slash-separated relative paths of
// every regular file under a directory, sorted, so tests can assert
// the exact artifact set a stage produced. [Blob] returns
// deterministic pseudo-random bytes for round-trip tests.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no stubgen-internal dependencies.
package testutil
