package core

import (
	"fmt"
	"strings"

	"thumblytic-backend-go/internal/crypto"
)

// sealedPrefix marks values encrypted at rest, so plaintext rows written
// before a key was configured remain readable.
const sealedPrefix = "enc:v1:"

// encryptionService implements the EncryptionService interface.
// It acts as a wrapper around the package-level functions in internal/crypto.
type encryptionService struct{}

// NewEncryptionService creates a new EncryptionService instance.
func NewEncryptionService() EncryptionService {
	return &encryptionService{}
}

// Encrypt delegates the encryption task to the crypto package.
func (s *encryptionService) Encrypt(plainText string, key []byte) (string, error) {
	encryptedData, err := crypto.Encrypt(plainText, key)
	if err != nil {
		return "", fmt.Errorf("encryption_service: failed to encrypt: %w", err)
	}
	return encryptedData, nil
}

// Decrypt delegates the decryption task to the crypto package.
func (s *encryptionService) Decrypt(cipherTextBase64 string, key []byte) (string, error) {
	decryptedData, err := crypto.Decrypt(cipherTextBase64, key)
	if err != nil {
		return "", fmt.Errorf("encryption_service: failed to decrypt: %w", err)
	}
	return decryptedData, nil
}

// messageSealer encrypts free-text fields when a key is configured.
type messageSealer struct {
	enc EncryptionService
	key []byte
}

func (m messageSealer) seal(plain string) (string, error) {
	if len(m.key) == 0 || m.enc == nil {
		return plain, nil
	}
	sealed, err := m.enc.Encrypt(plain, m.key)
	if err != nil {
		return "", err
	}
	return sealedPrefix + sealed, nil
}

func (m messageSealer) open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	if len(m.key) == 0 || m.enc == nil {
		return "", fmt.Errorf("encrypted message but no key configured")
	}
	return m.enc.Decrypt(strings.TrimPrefix(stored, sealedPrefix), m.key)
}
