// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slottemplate

import (
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/stubgen/lib/builderr"
)

func TestParse_Slots(t *testing.T) {
	template := Parse("manifest", `<app factory="{{factory}}" name="{{ application }}">{{components}}</app><x n="{{factory}}"/>`)

	want := []string{"factory", "application", "components"}
	if got := template.Slots(); !slices.Equal(got, want) {
		t.Errorf("Slots() = %v, want %v", got, want)
	}
	if got := template.Occurrences("factory"); got != 2 {
		t.Errorf("Occurrences(factory) = %d, want 2", got)
	}
}

func TestRender(t *testing.T) {
	template := Parse("fragment", `<provider android:name="{{alias}}" android:authorities="${applicationId}.provider" />`)

	rendered, err := template.Render(map[string]string{"alias": "x.Yz"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := `<provider android:name="x.Yz" android:authorities="${applicationId}.provider" />`
	if rendered != want {
		t.Errorf("Render() = %q, want %q", rendered, want)
	}
}

func TestRender_RepeatedSlot(t *testing.T) {
	template := Parse("t", "{{a}}-{{a}}")
	rendered, err := template.Render(map[string]string{"a": "q"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rendered != "q-q" {
		t.Errorf("Render() = %q, want %q", rendered, "q-q")
	}
}

func TestRender_Mismatch(t *testing.T) {
	template := Parse("mapping", "class Mapping {\n{{mappings}}\n}")

	tests := []struct {
		name    string
		values  map[string]string
		message string
	}{
		{
			name:    "missing value",
			values:  map[string]string{},
			message: `missing slots "mappings"`,
		},
		{
			name:    "unexpected value",
			values:  map[string]string{"mappings": "", "extra": "x"},
			message: `no slot for "extra"`,
		},
		{
			name:    "both",
			values:  map[string]string{"other": "x"},
			message: `missing slots "mappings", unexpected values "other"`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := template.Render(test.values)
			if err == nil {
				t.Fatal("Render should fail")
			}
			if builderr.KindOf(err) != builderr.KindTemplateMismatch {
				t.Errorf("KindOf = %q, want template_mismatch", builderr.KindOf(err))
			}
			if !strings.Contains(err.Error(), test.message) {
				t.Errorf("error %q does not mention %q", err, test.message)
			}
		})
	}
}

func TestRequire(t *testing.T) {
	template := Parse("fragment", `<activity android:name="{{alias}}" />`)
	if err := template.Require("alias"); err != nil {
		t.Errorf("Require(alias): %v", err)
	}
	if err := template.Require("alias", "other"); err == nil {
		t.Error("Require(alias, other) should fail")
	}
	if err := Parse("empty", "<activity />").Require("alias"); err == nil {
		t.Error("Require on a template with no slots should fail")
	}
}

func TestRender_NoSlots(t *testing.T) {
	rendered, err := Parse("plain", "no slots here").Render(nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rendered != "no slots here" {
		t.Errorf("Render() = %q", rendered)
	}
}

func TestHasPlaceholders(t *testing.T) {
	if !HasPlaceholders("a {{ b }} c") {
		t.Error("HasPlaceholders should find {{ b }}")
	}
	if HasPlaceholders("a ${b} c {not a slot}") {
		t.Error("HasPlaceholders should ignore ${b} and single braces")
	}
}
