// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscate

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/slottemplate"
)

// Manifest template slots: the aliases of the two reserved roles and
// the block of component fragments.
const (
	SlotFactory     = "factory"
	SlotApplication = "application"
	SlotComponents  = "components"
)

// Mapping template slots: the block of mapping statements, and
// optionally the stub package the class is declared in.
const (
	SlotMappings = "mappings"
	SlotPackage  = "package"
)

var (
	//go:embed templates/AndroidManifest.xml
	defaultManifest string

	//go:embed templates/Mapping.java
	defaultMapping string
)

// Templates holds the two documents the obfuscator renders.
type Templates struct {
	Manifest *slottemplate.Template
	Mapping  *slottemplate.Template
}

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() *Templates {
	templates := &Templates{
		Manifest: slottemplate.Parse("AndroidManifest.xml", defaultManifest),
		Mapping:  slottemplate.Parse("Mapping.java", defaultMapping),
	}
	if err := templates.Validate(); err != nil {
		panic("obfuscate: built-in templates are invalid: " + err.Error())
	}
	return templates
}

// LoadTemplates reads the templates from disk. An empty path selects
// the built-in template for that document.
func LoadTemplates(manifestPath, mappingPath string) (*Templates, error) {
	templates := DefaultTemplates()

	if manifestPath != "" {
		text, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil, builderr.MissingInput("reading manifest template: %w", err)
		}
		templates.Manifest = slottemplate.Parse(manifestPath, string(text))
	}
	if mappingPath != "" {
		text, err := os.ReadFile(mappingPath)
		if err != nil {
			return nil, builderr.MissingInput("reading mapping template: %w", err)
		}
		templates.Mapping = slottemplate.Parse(mappingPath, string(text))
	}

	if err := templates.Validate(); err != nil {
		return nil, err
	}
	return templates, nil
}

// Validate checks each template carries exactly its expected slots.
func (t *Templates) Validate() error {
	if t.Manifest == nil || t.Mapping == nil {
		return builderr.MissingInput("manifest and mapping templates are both required")
	}
	if err := t.Manifest.Require(SlotFactory, SlotApplication, SlotComponents); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := t.Mapping.Require(t.mappingSlots()...); err != nil {
		return fmt.Errorf("mapping: %w", err)
	}
	return nil
}

// mappingSlots returns the slots the mapping template must carry: the
// statement block, plus the package when the template declares it
// through a slot rather than literally.
func (t *Templates) mappingSlots() []string {
	if t.Mapping.Occurrences(SlotPackage) > 0 {
		return []string{SlotMappings, SlotPackage}
	}
	return []string{SlotMappings}
}
