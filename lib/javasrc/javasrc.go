// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package javasrc writes the small Java sources stubgen generates:
// proxy classes and classes exposing byte arrays as static methods.
//
// Byte arrays are written as explicit literal arrays of "(byte)(N)"
// elements with N in 0..255. The cast narrows each value into Java's
// signed byte, so every original byte survives the round trip whatever
// the consumer's byte signedness.
package javasrc

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// File accumulates one Java compilation unit.
type File struct {
	builder strings.Builder
}

// NewFile starts a compilation unit in pkg.
func NewFile(pkg string) *File {
	file := &File{}
	fmt.Fprintf(&file.builder, "package %s;\n", pkg)
	return file
}

// Line writes one line of source.
func (f *File) Line(text string) {
	f.builder.WriteString(text)
	f.builder.WriteByte('\n')
}

// OpenClass writes a public final class header.
func (f *File) OpenClass(name string) {
	fmt.Fprintf(&f.builder, "public final class %s {\n", name)
}

// CloseClass closes the class opened by OpenClass.
func (f *File) CloseClass() {
	f.Line("}")
}

// ByteMethod writes a static method returning a fresh copy of data.
func (f *File) ByteMethod(name string, data []byte) {
	fmt.Fprintf(&f.builder, "public static byte[] %s() {\n", name)
	f.builder.WriteString("byte[] buf = {")
	f.builder.WriteString(ByteLiterals(data))
	f.builder.WriteString("};\n")
	f.builder.WriteString("return buf;\n")
	f.builder.WriteString("}\n")
}

// String returns the accumulated source.
func (f *File) String() string { return f.builder.String() }

// Bytes returns the accumulated source as bytes.
func (f *File) Bytes() []byte { return []byte(f.builder.String()) }

// ByteLiterals formats data as comma-separated "(byte)(N)" elements.
func ByteLiterals(data []byte) string {
	var builder strings.Builder
	builder.Grow(len(data) * 12)
	for index, value := range data {
		if index > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString("(byte)(")
		builder.WriteString(strconv.Itoa(int(value) & 0xff))
		builder.WriteByte(')')
	}
	return builder.String()
}

// ParseByteLiterals is the inverse of ByteLiterals. It accepts
// whitespace around elements and values in -128..255.
func ParseByteLiterals(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []byte{}, nil
	}
	elements := strings.Split(text, ",")
	data := make([]byte, len(elements))
	for index, element := range elements {
		element = strings.TrimSpace(element)
		inner, ok := strings.CutPrefix(element, "(byte)(")
		if !ok || !strings.HasSuffix(inner, ")") {
			return nil, fmt.Errorf("element %d: %q is not a (byte)(N) literal", index, element)
		}
		value, err := strconv.Atoi(strings.TrimSuffix(inner, ")"))
		if err != nil || value < -128 || value > 255 {
			return nil, fmt.Errorf("element %d: %q is not a byte value", index, element)
		}
		data[index] = byte(value)
	}
	return data, nil
}

// Proxy returns the source of a proxy class: an empty public class
// named by the last segment of qualifiedName, in the package given by
// the preceding segments, extending base.
func Proxy(qualifiedName, base string) (string, error) {
	pkg, name, err := SplitName(qualifiedName)
	if err != nil {
		return "", err
	}
	file := NewFile(pkg)
	fmt.Fprintf(&file.builder, "public class %s extends %s {}\n", name, base)
	return file.String(), nil
}

// SplitName splits a qualified class name into package and simple name.
func SplitName(qualifiedName string) (pkg, name string, err error) {
	index := strings.LastIndexByte(qualifiedName, '.')
	if index <= 0 || index == len(qualifiedName)-1 {
		return "", "", fmt.Errorf("%q is not a package-qualified class name", qualifiedName)
	}
	return qualifiedName[:index], qualifiedName[index+1:], nil
}

// SourcePath returns the slash-separated path of the source file
// declaring qualifiedName, relative to a source root.
func SourcePath(qualifiedName string) string {
	return path.Join(strings.Split(qualifiedName, ".")...) + ".java"
}

// PackageDir returns the slash-separated directory of pkg relative to
// a source root.
func PackageDir(pkg string) string {
	return path.Join(strings.Split(pkg, ".")...)
}

// ValidPackage reports whether pkg is a dotted sequence of Java
// identifiers.
func ValidPackage(pkg string) bool {
	if pkg == "" {
		return false
	}
	for _, segment := range strings.Split(pkg, ".") {
		if !validIdentifier(segment) {
			return false
		}
	}
	return true
}

func validIdentifier(segment string) bool {
	if segment == "" {
		return false
	}
	for index, character := range segment {
		switch {
		case character == '_' || character == '$':
		case character >= 'a' && character <= 'z', character >= 'A' && character <= 'Z':
		case index > 0 && character >= '0' && character <= '9':
		default:
			return false
		}
	}
	return true
}
