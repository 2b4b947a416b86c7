// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"regexp"

	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/namepool"
)

// AccessorName is the simple name of the generated resource accessor
// before renaming.
const AccessorName = "R"

// accessorDeclaration matches the accessor's class declaration token.
// Nested classes (R.string, R.id, ...) are declared with their own
// names and never match.
var accessorDeclaration = regexp.MustCompile(`\bclass\s+` + AccessorName + `\b`)

// RenameAccessor rewrites the first "class R" declaration in source to
// declare the reserved identifier instead. Only the declaration token
// changes; qualified self-references inside the file are left as they
// are.
func RenameAccessor(source []byte) ([]byte, error) {
	location := accessorDeclaration.FindIndex(source)
	if location == nil {
		return nil, builderr.MissingInput("accessor source has no \"class %s\" declaration", AccessorName)
	}
	// The name is the last byte of the match.
	nameOffset := location[1] - len(AccessorName)

	renamed := make([]byte, 0, len(source))
	renamed = append(renamed, source[:nameOffset]...)
	renamed = append(renamed, namepool.ReservedIdentifier...)
	renamed = append(renamed, source[location[1]:]...)
	return renamed, nil
}
