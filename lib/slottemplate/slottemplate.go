// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package slottemplate renders text templates with named slots.
//
// A slot is written {{name}} (whitespace inside the braces is
// allowed). Everything else, including build-system placeholders such
// as ${applicationId}, passes through untouched. Rendering is strict:
// every slot needs a value and every value needs a slot, so a template
// that drifts from its caller fails loudly with a template_mismatch
// error instead of emitting a half-substituted document.
package slottemplate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/bureau-foundation/stubgen/lib/builderr"
)

var slotPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// segment is either literal text or a slot reference.
type segment struct {
	text string
	slot string
}

// Template is a parsed slot template.
type Template struct {
	name     string
	segments []segment
	slots    []string
}

// Parse parses text as a template. The name appears in error messages.
func Parse(name, text string) *Template {
	template := &Template{name: name}

	position := 0
	for _, match := range slotPattern.FindAllStringSubmatchIndex(text, -1) {
		if match[0] > position {
			template.segments = append(template.segments, segment{text: text[position:match[0]]})
		}
		slot := text[match[2]:match[3]]
		template.segments = append(template.segments, segment{slot: slot})
		if !slices.Contains(template.slots, slot) {
			template.slots = append(template.slots, slot)
		}
		position = match[1]
	}
	if position < len(text) {
		template.segments = append(template.segments, segment{text: text[position:]})
	}

	return template
}

// Name returns the name the template was parsed with.
func (t *Template) Name() string { return t.name }

// Slots returns the distinct slot names in order of first appearance.
func (t *Template) Slots() []string { return slices.Clone(t.slots) }

// Occurrences returns how many times slot appears.
func (t *Template) Occurrences(slot string) int {
	count := 0
	for _, segment := range t.segments {
		if segment.slot == slot {
			count++
		}
	}
	return count
}

// Require checks that the template's slot set is exactly slots.
func (t *Template) Require(slots ...string) error {
	var missing, unexpected []string
	for _, slot := range slots {
		if !slices.Contains(t.slots, slot) {
			missing = append(missing, slot)
		}
	}
	for _, slot := range t.slots {
		if !slices.Contains(slots, slot) {
			unexpected = append(unexpected, slot)
		}
	}
	return t.mismatch(missing, unexpected)
}

// Render substitutes values into the template. Fails when a slot has
// no value or a value names no slot.
func (t *Template) Render(values map[string]string) (string, error) {
	var missing, unexpected []string
	for _, slot := range t.slots {
		if _, ok := values[slot]; !ok {
			missing = append(missing, slot)
		}
	}
	for key := range values {
		if !slices.Contains(t.slots, key) {
			unexpected = append(unexpected, key)
		}
	}
	slices.Sort(unexpected)
	if err := t.mismatch(missing, unexpected); err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, segment := range t.segments {
		if segment.slot != "" {
			builder.WriteString(values[segment.slot])
		} else {
			builder.WriteString(segment.text)
		}
	}
	return builder.String(), nil
}

func (t *Template) mismatch(missing, unexpected []string) error {
	switch {
	case len(missing) > 0 && len(unexpected) > 0:
		return builderr.TemplateMismatch("template %s: missing slots %s, unexpected values %s",
			t.name, quoteList(missing), quoteList(unexpected))
	case len(missing) > 0:
		return builderr.TemplateMismatch("template %s: missing slots %s", t.name, quoteList(missing))
	case len(unexpected) > 0:
		return builderr.TemplateMismatch("template %s: no slot for %s", t.name, quoteList(unexpected))
	}
	return nil
}

// HasPlaceholders reports whether text still contains slot syntax.
// Rendered documents should never do.
func HasPlaceholders(text string) bool {
	return slotPattern.MatchString(text)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = fmt.Sprintf("%q", value)
	}
	return strings.Join(quoted, ", ")
}
