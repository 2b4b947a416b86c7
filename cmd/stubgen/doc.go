// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// stubgen generates the obfuscated stub sources of an Android stub
// application. It is one step of a larger build graph: the build runs
// it after resource compilation and before compiling the stub sources.
//
// Subcommands:
//
//	stubgen generate [--config PATH] [--seed N] [--report PATH]
//	stubgen dictionary --out PATH [--seed N]
//	stubgen keydata --keys DIR --out DIR [--package P]
//	stubgen report [--diagnose] PATH
//	stubgen version
//
// generate runs the whole pipeline described by the configuration file
// (STUBGEN_CONFIG or --config). A nonzero seed makes every output
// reproducible; without one, keys and aliases come from the system's
// secure random source.
package main
