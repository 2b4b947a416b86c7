// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the compression applied to the resource bundle
// before encryption. The runtime that opens the vault must be built
// with the matching decompressor; the codec is not recorded in the
// emitted source.
type Codec uint8

const (
	// CodecGzip is a gzip stream at the default level. The stub
	// runtime's stock stream decompressor reads it, so this is the
	// default.
	CodecGzip Codec = 0

	// CodecZstd is a single zstd frame at the default level. Better
	// ratios on large bundles; the runtime needs a zstd decoder.
	CodecZstd Codec = 1

	// CodecLZ4 is an LZ4 frame. Fastest to open; weakest ratio.
	CodecLZ4 Codec = 2
)

// String returns the configuration name of a codec.
func (codec Codec) String() string {
	switch codec {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", codec)
	}
}

// ParseCodec parses a codec from its configuration name. The empty
// string selects gzip.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "gzip":
		return CodecGzip, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("unknown resource compression %q (want gzip, zstd, or lz4)", name)
	}
}

// Compress compresses data with codec. Unlike chunk compression there
// is no incompressible fallback: the output is always a complete
// stream of the codec's format, even for empty input.
func Compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecGzip:
		return compressGzip(data)
	case CodecZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CodecLZ4:
		return compressLZ4(data)
	default:
		return nil, fmt.Errorf("unsupported resource compression: %d", codec)
	}
}

// Decompress reverses Compress.
func Decompress(compressed []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecGzip:
		reader, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", err)
		}
		defer reader.Close()
		return readAll("gzip", reader)
	case CodecZstd:
		result, err := zstdDecoder.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if result == nil {
			result = []byte{}
		}
		return result, nil
	case CodecLZ4:
		return readAll("lz4", lz4.NewReader(bytes.NewReader(compressed)))
	default:
		return nil, fmt.Errorf("unsupported resource compression: %d", codec)
	}
}

func compressGzip(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buffer, gzip.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func readAll(name string, reader io.Reader) ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, reader); err != nil {
		return nil, fmt.Errorf("%s decompress: %w", name, err)
	}
	return append([]byte{}, buffer.Bytes()...), nil
}

// zstdEncoder and zstdDecoder are shared; both are safe for
// concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic("vault: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		panic("vault: zstd decoder initialization failed: " + err.Error())
	}
}
