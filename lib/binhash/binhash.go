// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// DigestSize is the length of a digest in bytes.
const DigestSize = 32

// Digest is a BLAKE3-256 content digest.
type Digest [DigestSize]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string { return FormatDigest(d) }

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// HashFile computes the BLAKE3 digest of the file at path. The file is
// streamed through the hash function in chunks (via io.Copy) to keep
// memory usage constant regardless of file size.
func HashFile(path string) (Digest, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, size, nil
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the format used in the build report and log output.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a hex-encoded digest string. Returns an error if
// the string is not a valid 64-character hex encoding of 32 bytes.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != DigestSize {
		return digest, fmt.Errorf("hash digest is %d bytes, want %d", len(decoded), DigestSize)
	}
	copy(digest[:], decoded)
	return digest, nil
}
