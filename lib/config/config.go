// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/stubgen/lib/javasrc"
)

// Config is the build configuration for one stubgen invocation.
type Config struct {
	// Seed makes every random choice reproducible. 0 selects the
	// system's secure random source.
	Seed int64 `yaml:"seed"`

	// Package is the base Java package of the stub runtime. Stub
	// classes, the mapping table, and the vault class live under it.
	Package string `yaml:"package"`

	// Root is the base directory relative paths resolve against.
	Root string `yaml:"root"`

	// Inputs names the files stubgen reads.
	Inputs InputsConfig `yaml:"inputs"`

	// Outputs names the files and directories stubgen writes.
	Outputs OutputsConfig `yaml:"outputs"`

	// Resources configures the resource vault.
	Resources ResourcesConfig `yaml:"resources"`
}

// InputsConfig names the files stubgen reads. Empty template and
// component paths select the built-in defaults.
type InputsConfig struct {
	// Components is the component table (.yaml, .yml, .json, or .jsonc).
	Components string `yaml:"components"`

	// ManifestTemplate is the packaging manifest template.
	ManifestTemplate string `yaml:"manifest_template"`

	// MappingTemplate is the mapping table source template.
	MappingTemplate string `yaml:"mapping_template"`

	// Resources is the compiled resource bundle. The vault step is
	// skipped when empty.
	Resources string `yaml:"resources"`

	// Accessor is the generated resource accessor (R.java).
	// Default: <outputs.resources>/<package dir>/R.java
	Accessor string `yaml:"accessor"`

	// SigningKeys is the directory holding the signing keys. The key
	// data step is skipped when empty.
	SigningKeys string `yaml:"signing_keys"`
}

// OutputsConfig names what stubgen writes.
type OutputsConfig struct {
	// Dictionary receives every identifier of the pool, one per line.
	Dictionary string `yaml:"dictionary"`

	// Stubs is the source root for proxy classes and the mapping
	// table. It is cleared on every run.
	Stubs string `yaml:"stubs"`

	// Manifest receives the rendered packaging manifest.
	Manifest string `yaml:"manifest"`

	// Resources is the source root holding the resource accessor;
	// the vault writes A.java and Bytes.java here.
	Resources string `yaml:"resources"`

	// KeyData is the source root for the KeyData class.
	KeyData string `yaml:"keydata"`

	// Report receives the CBOR build report. No report when empty.
	Report string `yaml:"report"`
}

// ResourcesConfig configures the resource vault.
type ResourcesConfig struct {
	// Compression is applied before encryption: gzip, zstd, or lz4.
	// Default: gzip
	Compression string `yaml:"compression"`
}

// Compression names accepted by resources.compression.
var Compressions = []string{"gzip", "zstd", "lz4"}

// Default returns the default configuration. Outputs land under
// build/generated/stubgen in the root.
func Default() *Config {
	generated := "${STUBGEN_ROOT}/build/generated/stubgen"
	return &Config{
		Package: "com.example.app",
		Root:    ".",
		Outputs: OutputsConfig{
			Dictionary: generated + "/dictionary.txt",
			Stubs:      generated + "/stubs",
			Manifest:   generated + "/AndroidManifest.xml",
			Resources:  generated + "/resources",
			KeyData:    generated + "/keydata",
		},
		Resources: ResourcesConfig{
			Compression: "gzip",
		},
	}
}

// Load loads configuration from the STUBGEN_CONFIG environment
// variable. There is no fallback: if it is not set, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv("STUBGEN_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("STUBGEN_CONFIG environment variable not set; " +
			"set it to the path of your stubgen.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merged over
// Default. A relative root is taken relative to the file's directory.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()
	cfg.resolvePaths(filepath.Dir(path))

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// pathFields returns pointers to every path-valued field except Root.
func (c *Config) pathFields() []*string {
	return []*string{
		&c.Inputs.Components,
		&c.Inputs.ManifestTemplate,
		&c.Inputs.MappingTemplate,
		&c.Inputs.Resources,
		&c.Inputs.Accessor,
		&c.Inputs.SigningKeys,
		&c.Outputs.Dictionary,
		&c.Outputs.Stubs,
		&c.Outputs.Manifest,
		&c.Outputs.Resources,
		&c.Outputs.KeyData,
		&c.Outputs.Report,
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"STUBGEN_ROOT": c.Root,
		"HOME":         os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["STUBGEN_ROOT"] = c.Root // Update for dependent paths.

	for _, field := range c.pathFields() {
		*field = expandVars(*field, vars)
	}
}

// resolvePaths makes Root absolute (relative to base) and every other
// non-empty relative path relative to Root.
func (c *Config) resolvePaths(base string) {
	if c.Root == "" {
		return
	}
	if !filepath.IsAbs(c.Root) {
		c.Root = filepath.Join(base, c.Root)
	}
	c.Root = filepath.Clean(c.Root)

	for _, field := range c.pathFields() {
		if *field != "" && !filepath.IsAbs(*field) {
			*field = filepath.Join(c.Root, *field)
		}
	}
}

// Resolve applies variable expansion and path resolution to a config
// built in code rather than loaded from a file. Relative roots resolve
// against the working directory.
func (c *Config) Resolve() {
	c.expandVariables()
	c.resolvePaths(".")
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// AccessorPath returns the resource accessor to rename: inputs.accessor
// when set, otherwise R.java in the package directory under
// outputs.resources.
func (c *Config) AccessorPath() string {
	if c.Inputs.Accessor != "" {
		return c.Inputs.Accessor
	}
	return filepath.Join(c.Outputs.Resources, filepath.FromSlash(javasrc.PackageDir(c.Package)), "R.java")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !javasrc.ValidPackage(c.Package) {
		errs = append(errs, fmt.Errorf("package %q is not a valid dotted Java package name", c.Package))
	}

	if c.Root == "" {
		errs = append(errs, fmt.Errorf("root is required"))
	}

	required := []struct {
		name  string
		value string
	}{
		{"outputs.dictionary", c.Outputs.Dictionary},
		{"outputs.stubs", c.Outputs.Stubs},
		{"outputs.manifest", c.Outputs.Manifest},
	}
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field.name))
		}
	}

	if c.Inputs.Resources != "" && c.Outputs.Resources == "" {
		errs = append(errs, fmt.Errorf("outputs.resources is required when inputs.resources is set"))
	}
	if c.Inputs.SigningKeys != "" && c.Outputs.KeyData == "" {
		errs = append(errs, fmt.Errorf("outputs.keydata is required when inputs.signing_keys is set"))
	}

	if !slices.Contains(Compressions, c.Resources.Compression) {
		errs = append(errs, fmt.Errorf("resources.compression must be one of: %v", Compressions))
	}

	// The stubs directory is cleared on every run; nothing else may
	// live inside it, inputs included.
	if c.Outputs.Stubs != "" {
		for _, other := range []struct {
			name  string
			value string
		}{
			{"inputs.components", c.Inputs.Components},
			{"inputs.manifest_template", c.Inputs.ManifestTemplate},
			{"inputs.mapping_template", c.Inputs.MappingTemplate},
			{"inputs.resources", c.Inputs.Resources},
			{"inputs.accessor", c.Inputs.Accessor},
			{"inputs.signing_keys", c.Inputs.SigningKeys},
			{"outputs.resources", c.Outputs.Resources},
			{"outputs.keydata", c.Outputs.KeyData},
			{"outputs.manifest", c.Outputs.Manifest},
			{"outputs.dictionary", c.Outputs.Dictionary},
			{"outputs.report", c.Outputs.Report},
		} {
			if other.value != "" && within(other.value, c.Outputs.Stubs) {
				errs = append(errs, fmt.Errorf("%s (%s) must not be inside outputs.stubs (%s), which is cleared on every run",
					other.name, other.value, c.Outputs.Stubs))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// within reports whether path is directory or lies beneath it.
func within(path, directory string) bool {
	relative, err := filepath.Rel(filepath.Clean(directory), filepath.Clean(path))
	if err != nil {
		return false
	}
	return relative == "." || (relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator)))
}
