// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the stubgen build configuration.
//
// Configuration is loaded from a single YAML file specified by either
// the STUBGEN_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks and no automatic file
// search: the outer build graph names the file, so every run is
// reproducible from its inputs.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${STUBGEN_ROOT} (the root field), and ${VAR:-default}
// patterns are expanded. Relative paths are then resolved against the
// root, and a relative root against the directory of the file.
//
// Key exports:
//
//   - [Config] -- master struct with Inputs, Outputs, Resources
//   - [Default] -- returns a Config with the default layout
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
