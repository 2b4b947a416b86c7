// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package namepool

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/stubgen/lib/atomicfile"
	"github.com/bureau-foundation/stubgen/lib/builderr"
)

const (
	letters       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanumerics = letters + "0123456789"

	// The reserved letter is excluded from tier 1 in both cases.
	reservedLower = 'a'
	reservedUpper = 'A'

	// ReservedIdentifier is the length-1 identifier never handed out
	// as an alias segment. The resource vault renames the generated
	// resource accessor to it.
	ReservedIdentifier = "A"

	// workingPrefix is how many tier-2 and tier-3 identifiers join
	// tier 1 in the working pool.
	workingPrefix = 10
)

// Tier sizes, fixed by the alphabets.
const (
	Tier1Size = len(letters) - 2
	Tier2Size = len(letters) * len(alphanumerics)
	Tier3Size = len(letters) * len(alphanumerics) * len(alphanumerics)
)

// ErrClaimed is returned by Claim when the pool's working set has
// already been handed out.
var ErrClaimed = errors.New("identifier pool already claimed")

// Pool holds the three permuted identifier tiers of one build.
type Pool struct {
	source  *Source
	tiers   [3][]string
	claimed bool
}

// Generate enumerates and permutes the three identifier tiers. Tiers
// are shuffled in order 1, 2, 3 from source.
func Generate(source *Source) *Pool {
	tier1 := make([]string, 0, Tier1Size)
	tier2 := make([]string, 0, Tier2Size)
	tier3 := make([]string, 0, Tier3Size)

	for _, first := range letters {
		if first != reservedLower && first != reservedUpper {
			tier1 = append(tier1, string(first))
		}
		for _, second := range alphanumerics {
			tier2 = append(tier2, string([]rune{first, second}))
			for _, third := range alphanumerics {
				tier3 = append(tier3, string([]rune{first, second, third}))
			}
		}
	}

	Shuffle(source, tier1)
	Shuffle(source, tier2)
	Shuffle(source, tier3)

	return &Pool{source: source, tiers: [3][]string{tier1, tier2, tier3}}
}

// Tier returns the permuted identifiers of length n (1, 2, or 3). The
// returned slice is shared with the pool and must not be modified.
func (p *Pool) Tier(n int) []string {
	if n < 1 || n > 3 {
		panic(fmt.Sprintf("namepool: no tier %d", n))
	}
	return p.tiers[n-1]
}

// Source returns the randomness source the pool was generated from.
// Later stages continue drawing from it so a seeded build replays
// end to end.
func (p *Pool) Source() *Source { return p.source }

// WriteDictionary writes every identifier, one per line: tier 1, then
// tier 2, then tier 3, each in permuted order.
func (p *Pool) WriteDictionary(writer io.Writer) error {
	buffered := bufio.NewWriter(writer)
	for _, tier := range p.tiers {
		for _, identifier := range tier {
			buffered.WriteString(identifier)
			buffered.WriteByte('\n')
		}
	}
	return buffered.Flush()
}

// WriteDictionaryFile atomically writes the dictionary to path,
// creating its directory and replacing any existing file.
func (p *Pool) WriteDictionaryFile(path string) error {
	var buffer bytes.Buffer
	if err := p.WriteDictionary(&buffer); err != nil {
		return fmt.Errorf("formatting dictionary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dictionary directory: %w", err)
	}
	if err := atomicfile.Write(path, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}
	return nil
}

// Claim builds the working pool aliases are drawn from: all of tier 1
// plus the first ten identifiers of tiers 2 and 3, re-permuted.
// Identifiers that are reserved words of the generated source language
// are dropped so no alias segment is an illegal package or class name.
//
// The working pool can be claimed once per Pool.
func (p *Pool) Claim() (*Working, error) {
	if p.claimed {
		return nil, ErrClaimed
	}
	p.claimed = true

	candidates := make([]string, 0, Tier1Size+2*workingPrefix)
	candidates = append(candidates, p.tiers[0]...)
	candidates = append(candidates, p.tiers[1][:workingPrefix]...)
	candidates = append(candidates, p.tiers[2][:workingPrefix]...)

	names := candidates[:0]
	for _, name := range candidates {
		if !isReservedWord(name) {
			names = append(names, name)
		}
	}
	Shuffle(p.source, names)

	return &Working{names: names}, nil
}

// Working is the single-consumer working pool of one build.
type Working struct {
	names []string
	next  int
}

// NewWorking returns a Working pool over names, drawn in order. Used
// by tests and by callers that supply their own identifier list.
func NewWorking(names []string) *Working {
	return &Working{names: append([]string(nil), names...)}
}

// Next draws the next unused identifier.
func (w *Working) Next() (string, error) {
	if w.next >= len(w.names) {
		return "", builderr.PoolExhaustion("working pool of %d identifiers is exhausted", len(w.names))
	}
	name := w.names[w.next]
	w.next++
	return name, nil
}

// Remaining returns how many identifiers are left.
func (w *Working) Remaining() int { return len(w.names) - w.next }

// Size returns the total number of identifiers in the working pool.
func (w *Working) Size() int { return len(w.names) }

// reservedWords are the Java keywords (and the restricted type name
// "var") short enough to appear in the working pool. Comparison is on the lower-cased identifier because the
// first alias segment is lower-cased after drawing.
var reservedWords = map[string]bool{
	"do": true, "if": true, "for": true, "int": true, "new": true,
	"try": true, "var": true,
}

func isReservedWord(name string) bool {
	return reservedWords[strings.ToLower(name[:1])+name[1:]] || reservedWords[name]
}
