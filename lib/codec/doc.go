// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides stubgen's CBOR encoding configuration, used
// for the build report.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Same logical data always produces identical bytes, so two seeded
// builds over the same inputs write byte-identical reports.
//
//	data, err := codec.Marshal(report)
//	err = codec.Unmarshal(data, &report)
//
// Types implementing encoding.TextMarshaler (component categories,
// codecs) are written as CBOR text strings.
package codec
