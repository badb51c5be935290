// Package vault encrypts tenant credential paths at rest.
//
// Values are sealed with AES-256-GCM under a single key supplied at
// construction. The stored form is the base64 encoding of the packed
// ciphertext, so it fits a TEXT column.
package vault

import (
	"encoding/base64"
	"fmt"
)

// DecryptionError is returned when a value cannot be opened, whether because
// the key is wrong or the ciphertext is malformed or tampered with.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %v", e.Err)
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

type Vault struct {
	gcm *gcmCipher
}

// New builds a Vault from a raw 32-byte key.
func New(key []byte) (*Vault, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return &Vault{gcm: gcm}, nil
}

// NewFromBase64 builds a Vault from the base64 key text held in configuration.
func NewFromBase64(encoded string) (*Vault, error) {
	key, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// DecodeKey accepts standard or URL-safe base64, padded or not.
func DecodeKey(encoded string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding,
	} {
		if key, err := enc.DecodeString(encoded); err == nil {
			if len(key) != KeySize {
				return nil, fmt.Errorf("encryption key must decode to %d bytes, got %d", KeySize, len(key))
			}
			return key, nil
		}
	}
	return nil, fmt.Errorf("encryption key is not valid base64")
}

// GenerateKey returns a fresh key in the base64 form expected by configuration.
func GenerateKey() (string, error) {
	key, err := RandomBytes(KeySize)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (v *Vault) Encrypt(plainText string) (string, error) {
	packed, err := v.gcm.seal([]byte(plainText))
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(packed), nil
}

func (v *Vault) Decrypt(cipherText string) (string, error) {
	if v == nil || v.gcm == nil {
		return "", &DecryptionError{Err: fmt.Errorf("no encryption key configured")}
	}
	packed, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", &DecryptionError{Err: err}
	}
	plain, err := v.gcm.open(packed)
	if err != nil {
		return "", &DecryptionError{Err: err}
	}
	return string(plain), nil
}

// EncryptOptional encrypts s when non-empty and returns nil otherwise.
func (v *Vault) EncryptOptional(s string) (*string, error) {
	if s == "" {
		return nil, nil
	}
	enc, err := v.Encrypt(s)
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// DecryptOptional is the inverse of EncryptOptional.
func (v *Vault) DecryptOptional(s *string) (string, error) {
	if s == nil || *s == "" {
		return "", nil
	}
	return v.Decrypt(*s)
}
