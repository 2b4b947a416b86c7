// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package builderr classifies stubgen failures. Every failure is fatal
// to the whole run, so the classification exists for the operator
// reading the build log: each error names the stage that failed and
// the kind of failure, ahead of the underlying detail.
//
// Construct errors with the kind-specific constructors
// ([PoolExhaustion], [MissingInput], [TemplateMismatch],
// [CryptoInit], [Internal]) and attribute the stage at the stage
// boundary with [InStage].
package builderr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a build failure.
type Kind string

const (
	// KindPoolExhaustion indicates that fewer distinct identifiers
	// remain than the component table needs.
	KindPoolExhaustion Kind = "pool_exhaustion"

	// KindMissingInput indicates a required template, table entry,
	// or input file is absent or unreadable.
	KindMissingInput Kind = "missing_input"

	// KindTemplateMismatch indicates a template's slots do not match
	// the values supplied for substitution.
	KindTemplateMismatch Kind = "template_mismatch"

	// KindCryptoInit indicates key, IV, or cipher construction failed.
	KindCryptoInit Kind = "crypto_init"

	// KindInternal covers everything else: failed writes, failed
	// self-checks, bugs.
	KindInternal Kind = "internal"
)

// Stage names one step of the generation pipeline.
type Stage string

const (
	StageIdentifierPool      Stage = "identifier-pool"
	StageComponentObfuscator Stage = "component-obfuscator"
	StageResourceVault       Stage = "resource-vault"
	StageKeyData             Stage = "key-data"
)

// Error is a classified build failure. It wraps the underlying error so
// errors.Is and errors.As see through it.
type Error struct {
	Stage Stage
	Kind  Kind
	Err   error

	// detail replaces Err's message in Error when set. InStage uses it
	// so a kind carried inside a wrapped chain is printed once.
	detail string
}

// Error formats as "<stage>: <kind>: <detail>", omitting the stage
// when it has not been attributed yet.
func (e *Error) Error() string {
	detail := e.detail
	if detail == "" {
		detail = e.Err.Error()
	}
	if e.Stage == "" {
		return fmt.Sprintf("%s: %s", e.Kind, detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, detail)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// PoolExhaustion creates a pool exhaustion error.
func PoolExhaustion(format string, args ...any) *Error {
	return newError(KindPoolExhaustion, format, args...)
}

// MissingInput creates a missing input error.
func MissingInput(format string, args ...any) *Error {
	return newError(KindMissingInput, format, args...)
}

// TemplateMismatch creates a template mismatch error.
func TemplateMismatch(format string, args ...any) *Error {
	return newError(KindTemplateMismatch, format, args...)
}

// CryptoInit creates a crypto initialization error.
func CryptoInit(format string, args ...any) *Error {
	return newError(KindCryptoInit, format, args...)
}

// Internal creates an internal error.
func Internal(format string, args ...any) *Error {
	return newError(KindInternal, format, args...)
}

// InStage attributes err to stage. A classified error anywhere in the
// chain keeps its kind and gains the stage (unless it already has
// one); an unclassified error becomes KindInternal. Returns nil for a
// nil err.
func InStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if !errors.As(err, &classified) {
		return &Error{Stage: stage, Kind: KindInternal, Err: err}
	}
	if classified.Stage != "" {
		return err
	}
	if err == error(classified) {
		return &Error{Stage: stage, Kind: classified.Kind, Err: classified.Err}
	}
	return &Error{
		Stage:  stage,
		Kind:   classified.Kind,
		Err:    err,
		detail: stripKind(err.Error(), classified),
	}
}

// stripKind removes the "<kind>: " prefix a wrapped classified error
// contributes to an outer message, so that
// fmt.Errorf("loading table: %w", MissingInput("x")) staged reads
// "<stage>: missing_input: loading table: x".
func stripKind(message string, classified *Error) string {
	inner := classified.Error()
	if strings.HasSuffix(message, inner) {
		return strings.TrimSuffix(message, inner) + classified.Err.Error()
	}
	return message
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindInternal
}

// StageOf returns the stage of the first classified error in err's
// chain, or "" when none has been attributed.
func StageOf(err error) Stage {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Stage
	}
	return ""
}
