// Package cipher encrypts the sensitive employee fields before they are
// stored. Values are sealed with AES-256-GCM under a key derived from the
// application secret and carried as versioned base64 strings.
package cipher

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/tink/go/aead/subtle"
	"golang.org/x/crypto/argon2"
)

const (
	versionPrefix = "v1:"

	ivSize  = 12
	tagSize = 16
)

// keySalt is fixed so the same secret always yields the same key.
var keySalt = []byte("employee-records/field-cipher/v1")

var (
	ErrMissingKey = errors.New("cipher: secret key is empty")
	ErrDecryption = errors.New("cipher: decryption failed")
)

// FieldCipher is safe for concurrent use.
type FieldCipher struct {
	aead *subtle.AESGCM
}

// New derives the field key from secret.
func New(secret string) (*FieldCipher, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}
	key := deriveKey([]byte(secret))
	aead, err := subtle.NewAESGCM(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise AES-GCM: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

func deriveKey(secret []byte) []byte {
	return argon2.IDKey(secret, keySalt, 1, 64*1024, 4, 32)
}

// Encrypt seals plaintext under a fresh random IV. Encrypting the same value
// twice gives different ciphertexts.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	sealed, err := c.aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt field: %w", err)
	}
	return versionPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any malformed, truncated, tampered or foreign
// input yields an error wrapping ErrDecryption.
func (c *FieldCipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", fmt.Errorf("%w: empty ciphertext", ErrDecryption)
	}
	if !strings.HasPrefix(ciphertext, versionPrefix) {
		return "", fmt.Errorf("%w: unknown format", ErrDecryption)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, versionPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	if len(raw) < ivSize+tagSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}

	plaintext, err := c.aead.Decrypt(raw, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(plaintext), nil
}
