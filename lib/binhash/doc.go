// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content hashing for generated
// artifacts.
//
// The build report records a digest of every file a run writes, so
// two seeded builds can be compared without diffing their outputs.
//
//   - [HashFile] -- streams a file through BLAKE3, returning a
//     [Digest] with constant memory usage regardless of file size
//   - [FormatDigest] -- converts a [Digest] to its canonical
//     hex-encoded string representation
//   - [ParseDigest] -- parses a hex-encoded digest string back to a
//     [Digest], validating length and encoding
package binhash
