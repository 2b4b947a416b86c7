// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package component defines the table of sensitive entry points that
// stubgen hides behind random aliases.
//
// A [Table] is fixed input written by the build author, either the
// built-in table ([Default]) or a YAML or JSONC file ([ReadFile]). Each
// [Spec] names the real class, an optional stub [Category], and an
// optional manifest fragment whose single {{alias}} slot receives the
// component's alias.
package component

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/slottemplate"
)

// AliasSlot is the one slot a manifest fragment may carry.
const AliasSlot = "alias"

// Spec describes one sensitive entry point.
type Spec struct {
	// Real is the fully qualified name of the real class.
	Real string `yaml:"real" json:"real"`

	// Category selects the stub backing the alias. CategoryNone for
	// components only reached through the mapping table.
	Category Category `yaml:"category,omitempty" json:"category,omitempty"`

	// Fragment is the manifest snippet declaring the component, with
	// {{alias}} where the alias goes. Empty for components that have
	// no manifest entry of their own.
	Fragment string `yaml:"fragment,omitempty" json:"fragment,omitempty"`
}

// FragmentTemplate parses the fragment. Returns nil when the spec has
// no fragment.
func (s Spec) FragmentTemplate() *slottemplate.Template {
	if strings.TrimSpace(s.Fragment) == "" {
		return nil
	}
	return slottemplate.Parse(s.Real, s.Fragment)
}

// Table is the ordered component table. Order is significant: aliases
// are allocated in table order.
type Table []Spec

// document is the on-disk shape of a table file.
type document struct {
	Components Table `yaml:"components" json:"components"`
}

// Format selects the table file syntax.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSONC Format = "jsonc"
)

// FormatForPath picks the syntax from a file extension: .json and
// .jsonc are JSONC, everything else YAML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSONC
	default:
		return FormatYAML
	}
}

// Parse decodes and validates a table.
func Parse(data []byte, format Format) (Table, error) {
	var parsed document
	switch format {
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
			return nil, builderr.MissingInput("parsing component table: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, builderr.MissingInput("parsing component table: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown component table format %q", format)
	}

	if err := parsed.Components.Validate(); err != nil {
		return nil, err
	}
	return parsed.Components, nil
}

// ReadFile reads and validates a table file.
func ReadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, builderr.MissingInput("reading component table: %w", err)
	}
	table, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

//go:embed components.yaml
var defaultTable []byte

// Default returns the built-in table.
func Default() Table {
	table, err := Parse(defaultTable, FormatYAML)
	if err != nil {
		panic("component: built-in table is invalid: " + err.Error())
	}
	return table
}

// Validate checks the table: every spec has a unique real name, every
// fragment carries exactly the alias slot, and exactly one spec holds
// each of the manifest's reserved roles (factory delegate and
// application delegate).
func (t Table) Validate() error {
	if len(t) == 0 {
		return builderr.MissingInput("component table is empty")
	}

	seen := make(map[string]int, len(t))
	roles := map[Category]int{}
	for index, spec := range t {
		if strings.TrimSpace(spec.Real) == "" {
			return builderr.MissingInput("component %d has no real name", index)
		}
		if previous, ok := seen[spec.Real]; ok {
			return builderr.MissingInput("component %d duplicates %q (first declared at %d)", index, spec.Real, previous)
		}
		seen[spec.Real] = index

		if fragment := spec.FragmentTemplate(); fragment != nil {
			if err := fragment.Require(AliasSlot); err != nil {
				return fmt.Errorf("component %q fragment: %w", spec.Real, err)
			}
			if count := fragment.Occurrences(AliasSlot); count != 1 {
				return builderr.TemplateMismatch("component %q fragment has %d alias slots, want 1", spec.Real, count)
			}
		}

		if spec.Category == CategoryFactoryDelegate || spec.Category == CategoryApplicationDelegate {
			roles[spec.Category]++
		}
	}

	for _, role := range []Category{CategoryFactoryDelegate, CategoryApplicationDelegate} {
		if roles[role] != 1 {
			return builderr.MissingInput("component table has %d %s components, want exactly 1", roles[role], role)
		}
	}
	return nil
}

// IndexOf returns the index of the first spec with the given category,
// or -1.
func (t Table) IndexOf(category Category) int {
	for index, spec := range t {
		if spec.Category == category {
			return index
		}
	}
	return -1
}

// FragmentCount returns how many specs carry a manifest fragment.
func (t Table) FragmentCount() int {
	count := 0
	for _, spec := range t {
		if spec.FragmentTemplate() != nil {
			count++
		}
	}
	return count
}
