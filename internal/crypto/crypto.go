// Package crypto seals short free-text fields (appeal payment references) with AES-256-CBC.
// The wire format is base64(hex(iv) || hex(ciphertext)) with PKCS#7 padding.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// KeyLength is the AES-256 key size in bytes.
	KeyLength   = 32
	ivHexLength = aes.BlockSize * 2
)

var (
	ErrInvalidKey      = fmt.Errorf("invalid key length: must be %d bytes for AES-256", KeyLength)
	ErrMalformedCipher = errors.New("malformed ciphertext")
	ErrInvalidPadding  = errors.New("invalid PKCS#7 padding")
)

func pkcs7Pad(data []byte) []byte {
	padding := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, ErrInvalidPadding
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > aes.BlockSize {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-padding], nil
}

// Encrypt seals plainText with key using a random IV.
func Encrypt(plainText string, key []byte) (string, error) {
	if len(key) != KeyLength {
		return "", ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plainText))
	cipherText := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(cipherText, padded)

	combined := hex.EncodeToString(iv) + hex.EncodeToString(cipherText)
	return base64.StdEncoding.EncodeToString([]byte(combined)), nil
}

// Decrypt opens a value produced by Encrypt.
func Decrypt(cipherTextBase64 string, key []byte) (string, error) {
	if len(key) != KeyLength {
		return "", ErrInvalidKey
	}
	decoded, err := base64.StdEncoding.DecodeString(cipherTextBase64)
	if err != nil {
		return "", fmt.Errorf("%w: not base64: %v", ErrMalformedCipher, err)
	}
	combined := string(decoded)
	if len(combined) < ivHexLength {
		return "", fmt.Errorf("%w: too short to contain IV", ErrMalformedCipher)
	}

	iv, err := hex.DecodeString(combined[:ivHexLength])
	if err != nil {
		return "", fmt.Errorf("%w: IV is not hex", ErrMalformedCipher)
	}
	cipherText, err := hex.DecodeString(combined[ivHexLength:])
	if err != nil {
		return "", fmt.Errorf("%w: body is not hex", ErrMalformedCipher)
	}
	if len(cipherText) == 0 || len(cipherText)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: body is not a multiple of the block size", ErrMalformedCipher)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}
	plain := make([]byte, len(cipherText))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, cipherText)

	unpadded, err := pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}
