// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package component

import "fmt"

// Category is the stub category of a component: which runtime stub
// backs it once its real class is hidden behind an alias.
type Category uint8

const (
	// CategoryNone marks a component with no stub. It still receives
	// an alias and a mapping entry.
	CategoryNone Category = iota
	CategoryFactoryDelegate
	CategoryApplicationDelegate
	CategoryContentProvider
	CategoryBroadcastReceiver
	CategoryLauncherActivity
	CategoryPlainActivity
	CategoryPlainService
	CategorySystemJobService
)

var categoryNames = [...]string{
	CategoryNone:                "",
	CategoryFactoryDelegate:     "factory-delegate",
	CategoryApplicationDelegate: "application-delegate",
	CategoryContentProvider:     "content-provider",
	CategoryBroadcastReceiver:   "broadcast-receiver",
	CategoryLauncherActivity:    "launcher-activity",
	CategoryPlainActivity:       "plain-activity",
	CategoryPlainService:        "plain-service",
	CategorySystemJobService:    "system-job-service",
}

// stubClasses are the runtime classes, relative to the stub base
// package, that back each category.
var stubClasses = [...]string{
	CategoryNone:                "",
	CategoryFactoryDelegate:     "DelegateComponentFactory",
	CategoryApplicationDelegate: "DelegateApplication",
	CategoryContentProvider:     "FileProvider",
	CategoryBroadcastReceiver:   "dummy.DummyReceiver",
	CategoryLauncherActivity:    "DownloadActivity",
	CategoryPlainActivity:       "dummy.DummyActivity",
	CategoryPlainService:        "dummy.DummyService",
	CategorySystemJobService:    "dummy.DummyJobService",
}

// String returns the category's configuration name ("" for none).
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("unknown(%d)", c)
}

// ParseCategory parses a configuration name. The empty string parses
// as CategoryNone.
func ParseCategory(name string) (Category, error) {
	for category, candidate := range categoryNames {
		if candidate == name {
			return Category(category), nil
		}
	}
	return CategoryNone, fmt.Errorf("unknown stub category %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("unknown stub category %d", c)
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IsDelegate reports whether the category is one of the delegate
// kinds. Delegate components get a synthesized proxy class.
func (c Category) IsDelegate() bool {
	return c == CategoryFactoryDelegate || c == CategoryApplicationDelegate
}

// StubClass returns the stub runtime class backing the category,
// relative to the stub base package ("" for CategoryNone).
func (c Category) StubClass() string {
	if int(c) < len(stubClasses) {
		return stubClasses[c]
	}
	return ""
}
