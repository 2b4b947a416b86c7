// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package namepool generates the short identifiers the rest of stubgen
// draws aliases from.
//
// [Generate] enumerates every identifier of length 1, 2, and 3 over
// fixed alphabets and permutes each length tier independently. Length-1
// identifiers are letters only and never include the reserved letter
// (both cases), which is held back for the renamed resource accessor
// ([ReservedIdentifier]). Length-2 and length-3 identifiers are a
// letter followed by letters or digits. The concatenation of the three
// tiers is the obfuscation dictionary ([Pool.WriteDictionary]).
//
// A [Pool] is an owned, single-consumer object: [Pool.Claim] hands out
// the one [Working] pool aliases are drawn from, and a second claim
// fails. Draws never repeat because [Working.Next] advances a cursor
// through a permutation; running out is a pool_exhaustion error.
//
// All randomness comes from a [Source]. A zero seed selects
// crypto/rand. A nonzero seed selects a BLAKE3 extendable-output stream
// derived from the seed, so every permutation (and every key derived
// downstream from the same Source) is reproducible.
package namepool
