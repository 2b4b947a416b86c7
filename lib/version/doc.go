// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version identifies the stubgen binary that produced a set of
// generated sources.
//
// The build graph that compiles stubgen stamps it with -ldflags -X:
//
//	go build -ldflags "\
//	    -X github.com/bureau-foundation/stubgen/lib/version.Version=$(git describe --tags) \
//	    -X github.com/bureau-foundation/stubgen/lib/version.GitCommit=$(git rev-parse --short HEAD) \
//	    -X github.com/bureau-foundation/stubgen/lib/version.GitDirty=$(test -z "$(git status --porcelain)" || echo true) \
//	    -X github.com/bureau-foundation/stubgen/lib/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/stubgen
//
// Unstamped builds (go run, go test) report "0.1.0-dev" and "unknown".
//
// [Short] is what a build report records, so two reports can be
// compared for the generator that wrote them. It carries a "-dirty"
// marker when stubgen was built from an uncommitted tree: such a
// generator cannot be rebuilt from its version alone, and seeded output
// is only reproducible with the same generator. [Print] backs the
// version subcommand.
package version
