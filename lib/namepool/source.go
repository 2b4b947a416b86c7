// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package namepool

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// seedDomainKey keys the BLAKE3 hasher that expands a deterministic
// seed into a byte stream. Changing it changes every seeded build.
var seedDomainKey = [32]byte{
	's', 't', 'u', 'b', 'g', 'e', 'n', '.', 'r', 'a', 'n', 'd', 'o', 'm', '.', 'v',
	'1', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Source is the single randomness source of a build. Identifier
// permutations, manifest fragment order, and vault key material all
// read from it, in that order.
type Source struct {
	reader io.Reader
	seed   int64
}

// NewSource returns a Source for seed. Seed 0 selects crypto/rand;
// any other value selects a reproducible stream.
func NewSource(seed int64) *Source {
	if seed == 0 {
		return &Source{reader: rand.Reader}
	}

	hasher, err := blake3.NewKeyed(seedDomainKey[:])
	if err != nil {
		panic("namepool: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], uint64(seed))
	hasher.Write(seedBytes[:])

	return &Source{reader: hasher.Digest(), seed: seed}
}

// Seed returns the seed the Source was created with (0 for crypto/rand).
func (s *Source) Seed() int64 { return s.seed }

// Deterministic reports whether the Source replays the same stream on
// every run.
func (s *Source) Deterministic() bool { return s.seed != 0 }

// Read fills p from the stream.
func (s *Source) Read(p []byte) (int, error) {
	return io.ReadFull(s.reader, p)
}

// Intn returns a uniform integer in [0, n). Panics if n <= 0 or the
// underlying reader fails; a build cannot continue without randomness.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("namepool: Intn(%d)", n))
	}
	bound := uint64(n)
	// Largest multiple of bound representable in a uint64; values at
	// or above it are rejected so every residue is equally likely.
	limit := ^uint64(0) - (^uint64(0) % bound)
	var buffer [8]byte
	for {
		if _, err := s.Read(buffer[:]); err != nil {
			panic("namepool: reading randomness: " + err.Error())
		}
		value := binary.LittleEndian.Uint64(buffer[:])
		if value < limit {
			return int(value % bound)
		}
	}
}

// Shuffle permutes values in place (Fisher-Yates).
func Shuffle[T any](source *Source, values []T) {
	for i := len(values) - 1; i > 0; i-- {
		j := source.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}
