// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"runtime"
)

// Stamped at build time; see the package documentation.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

func dirtySuffix() string {
	if GitDirty == "true" {
		return "-dirty"
	}
	return ""
}

// Info returns "<version> (<commit>[-dirty], <build time>)".
func Info() string {
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirtySuffix(), BuildTime)
}

// Short returns the version recorded in build reports.
func Short() string {
	return Version + dirtySuffix()
}

// Print writes "<binary> <Info>" to w. With verbose it also writes the
// Go toolchain and platform the binary was built for.
func Print(w io.Writer, binary string, verbose bool) {
	fmt.Fprintf(w, "%s %s\n", binary, Info())
	if verbose {
		fmt.Fprintf(w, "  go:       %s\n", runtime.Version())
		fmt.Fprintf(w, "  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}
}
