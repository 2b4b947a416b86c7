// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package obfuscate hides a fixed table of sensitive components behind
// random two-segment aliases.
//
// [Generate] draws two identifiers per component from a working pool,
// records the alias-to-real-name mapping, synthesizes a proxy class
// for each delegate component, and renders the packaging manifest and
// the mapping table source. Everything is computed in memory;
// [Result.Write] then replaces the stub source directory in one step.
//
// Manifest fragments are shuffled before they are joined, so the
// textual order of the manifest says nothing about how the components
// relate. The set of fragments is always exactly the set of table
// entries that carry one.
package obfuscate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bureau-foundation/stubgen/lib/atomicfile"
	"github.com/bureau-foundation/stubgen/lib/builderr"
	"github.com/bureau-foundation/stubgen/lib/component"
	"github.com/bureau-foundation/stubgen/lib/javasrc"
	"github.com/bureau-foundation/stubgen/lib/namepool"
)

// fragmentIndent is prepended to every non-blank fragment line so
// fragments sit inside the manifest's <application> element.
const fragmentIndent = "        "

// statementIndent indents mapping statements inside the mapping
// template's static initializer.
const statementIndent = "        "

// Options configures Generate.
type Options struct {
	// Package is the base package of the stub runtime. Stub classes and
	// the mapping class live under it.
	Package string
}

// Entry is one mapping table record.
type Entry struct {
	Alias    string
	Real     string
	Category component.Category
}

// Proxy is one synthesized proxy class.
type Proxy struct {
	Alias string
	// Path is the slash-separated source path relative to the stub
	// source root.
	Path   string
	Source string
}

// Result is the full output of one obfuscation run.
type Result struct {
	// Package is the stub runtime's base package.
	Package string

	// Entries holds one record per table spec, in table order.
	Entries []Entry

	// Proxies holds one class per delegate spec, in table order.
	Proxies []Proxy

	// Fragments holds the rendered manifest fragments in the shuffled
	// order they appear in Manifest.
	Fragments []string

	// Manifest is the rendered packaging manifest.
	Manifest string

	// Mapping is the rendered mapping table source.
	Mapping string
}

// Generate runs the obfuscator over table. Aliases are drawn from
// names; source shuffles the manifest fragments.
func Generate(names *namepool.Working, source *namepool.Source, table component.Table, templates *Templates, options Options) (*Result, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if err := templates.Validate(); err != nil {
		return nil, err
	}
	if !javasrc.ValidPackage(options.Package) {
		return nil, fmt.Errorf("invalid stub package %q", options.Package)
	}
	if needed := 2 * len(table); needed > names.Remaining() {
		return nil, builderr.PoolExhaustion("%d components need %d identifiers, working pool has %d",
			len(table), needed, names.Remaining())
	}

	result := &Result{Package: options.Package}
	used := make(map[string]bool, len(table))
	var statements []string

	for _, spec := range table {
		alias, err := nextAlias(names)
		if err != nil {
			return nil, err
		}
		if used[alias] {
			return nil, builderr.Internal("alias %q allocated twice", alias)
		}
		used[alias] = true

		result.Entries = append(result.Entries, Entry{Alias: alias, Real: spec.Real, Category: spec.Category})
		statements = append(statements, fmt.Sprintf("%smap.put(%s, %s);",
			statementIndent, strconv.Quote(alias), strconv.Quote(spec.Real)))

		if spec.Category != component.CategoryNone && spec.Category != component.CategoryFactoryDelegate {
			statements = append(statements, fmt.Sprintf("%sinternalMap.put(%s, %s.class);",
				statementIndent, strconv.Quote(alias), stubType(options.Package, spec.Category)))
		}

		if spec.Category.IsDelegate() {
			proxySource, err := javasrc.Proxy(alias, stubType(options.Package, spec.Category))
			if err != nil {
				return nil, builderr.Internal("synthesizing proxy for %s: %w", spec.Real, err)
			}
			result.Proxies = append(result.Proxies, Proxy{
				Alias:  alias,
				Path:   javasrc.SourcePath(alias),
				Source: proxySource,
			})
		}

		if fragment := spec.FragmentTemplate(); fragment != nil {
			rendered, err := fragment.Render(map[string]string{component.AliasSlot: alias})
			if err != nil {
				return nil, err
			}
			result.Fragments = append(result.Fragments, indent(rendered, fragmentIndent))
		}
	}

	namepool.Shuffle(source, result.Fragments)

	manifest, err := templates.Manifest.Render(map[string]string{
		SlotFactory:     result.Entries[table.IndexOf(component.CategoryFactoryDelegate)].Alias,
		SlotApplication: result.Entries[table.IndexOf(component.CategoryApplicationDelegate)].Alias,
		SlotComponents:  strings.Join(result.Fragments, "\n\n"),
	})
	if err != nil {
		return nil, err
	}
	result.Manifest = manifest

	mappingValues := map[string]string{SlotMappings: strings.Join(statements, "\n")}
	if templates.Mapping.Occurrences(SlotPackage) > 0 {
		mappingValues[SlotPackage] = options.Package
	}
	mapping, err := templates.Mapping.Render(mappingValues)
	if err != nil {
		return nil, err
	}
	result.Mapping = mapping

	return result, nil
}

// nextAlias draws two identifiers and joins them as package.Class,
// lower-casing the package segment's first character.
func nextAlias(names *namepool.Working) (string, error) {
	first, err := names.Next()
	if err != nil {
		return "", err
	}
	second, err := names.Next()
	if err != nil {
		return "", err
	}
	leading, size := utf8.DecodeRuneInString(first)
	return string(unicode.ToLower(leading)) + first[size:] + "." + second, nil
}

func stubType(pkg string, category component.Category) string {
	return pkg + "." + category.StubClass()
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for index, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[index] = prefix + line
		} else {
			lines[index] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// MappingPath returns the mapping source path relative to the stub
// source root.
func (r *Result) MappingPath() string {
	return javasrc.PackageDir(r.Package) + "/Mapping.java"
}

// Aliases returns the allocated aliases in table order.
func (r *Result) Aliases() []string {
	aliases := make([]string, len(r.Entries))
	for index, entry := range r.Entries {
		aliases[index] = entry.Alias
	}
	return aliases
}

// Write replaces stubsDir with the proxy classes and the mapping
// source. The directory is cleared first so no artifact of an earlier
// build survives; if writing fails the directory is removed again.
// Returns the paths written.
func (r *Result) Write(stubsDir string) ([]string, error) {
	if err := os.RemoveAll(stubsDir); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", stubsDir, err)
	}

	var batch atomicfile.Batch
	var written []string
	add := func(relative, source string) {
		path := filepath.Join(stubsDir, filepath.FromSlash(relative))
		batch.Add(path, []byte(source), 0o644)
		written = append(written, path)
	}
	for _, proxy := range r.Proxies {
		add(proxy.Path, proxy.Source)
	}
	add(r.MappingPath(), r.Mapping)

	if err := batch.Commit(); err != nil {
		os.RemoveAll(stubsDir)
		return nil, err
	}
	return written, nil
}
