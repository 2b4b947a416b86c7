// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package stubbuild runs the stub generation pipeline for one build.
//
// A [Build] owns the randomness source and the identifier pool of one
// invocation. [Build.Run] executes the stages strictly in order:
//
//  1. identifier pool: generate the permuted tiers, write the dictionary
//  2. component obfuscator: assign aliases, write proxies, the mapping
//     table, and the manifest
//  3. resource vault (when inputs.resources is set): rename the
//     accessor, seal the bundle, write the vault class
//  4. key data (when inputs.signing_keys is set): embed signing keys
//
// Every failure is fatal. The returned error names the stage and the
// failure kind (see lib/builderr). On success Run returns a [Report]
// listing every written artifact with its BLAKE3 digest, optionally
// persisted as deterministic CBOR.
package stubbuild
