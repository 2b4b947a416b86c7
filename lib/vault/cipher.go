// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"

	"github.com/bureau-foundation/stubgen/lib/builderr"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// IVSize is the CBC initialization vector length in bytes (one AES
// block).
const IVSize = aes.BlockSize

// Material is the output of Seal: the fresh key and IV and the
// ciphertext of the compressed bundle. It lives only in memory until
// it is rendered into source.
type Material struct {
	Key        []byte
	IV         []byte
	Ciphertext []byte
}

// Seal compresses blob with codec, then encrypts it with AES-256-CBC
// and PKCS#7 padding under a key and IV read from random. The IV is
// read first, then the key.
func Seal(blob []byte, random io.Reader, codec Codec) (*Material, error) {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(random, iv); err != nil {
		return nil, builderr.CryptoInit("generating IV: %w", err)
	}
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(random, key); err != nil {
		return nil, builderr.CryptoInit("generating key: %w", err)
	}

	compressed, err := Compress(blob, codec)
	if err != nil {
		return nil, builderr.Internal("compressing resource bundle: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, builderr.CryptoInit("creating AES cipher: %w", err)
	}
	plaintext := pad(compressed, aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return &Material{Key: key, IV: iv, Ciphertext: ciphertext}, nil
}

// Open decrypts and decompresses material, returning the original
// bundle.
func Open(material *Material, codec Codec) ([]byte, error) {
	if len(material.Key) != KeySize {
		return nil, fmt.Errorf("key is %d bytes, want %d", len(material.Key), KeySize)
	}
	if len(material.IV) != IVSize {
		return nil, fmt.Errorf("IV is %d bytes, want %d", len(material.IV), IVSize)
	}
	if len(material.Ciphertext) == 0 || len(material.Ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a positive multiple of %d",
			len(material.Ciphertext), aes.BlockSize)
	}

	block, err := aes.NewCipher(material.Key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	plaintext := make([]byte, len(material.Ciphertext))
	cipher.NewCBCDecrypter(block, material.IV).CryptBlocks(plaintext, material.Ciphertext)

	compressed, err := unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return Decompress(compressed, codec)
}

// pad appends PKCS#7 padding. A full block of padding is added when
// data is already block-aligned, so padded output is never empty.
func pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data), len(data)+padding)
	copy(padded, data)
	return append(padded, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("invalid padding: empty plaintext")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("invalid padding: trailing byte %d", padding)
	}
	for _, value := range data[len(data)-padding:] {
		if int(value) != padding {
			return nil, fmt.Errorf("invalid padding: inconsistent padding bytes")
		}
	}
	return data[:len(data)-padding], nil
}
