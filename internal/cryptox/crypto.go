// Package cryptox wraps password hashing, server-side secret sealing and the
// client-side passphrase encryption of note bodies.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/hkdf"
)

// PasswordCost is the bcrypt work factor for account and file passwords.
const PasswordCost = 12

// ErrDecrypt is returned by Open for tampered ciphertext or a wrong key.
var ErrDecrypt = errors.New("decryption failed")

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// ComparePassword reports whether password matches hash. The comparison
// inside bcrypt is constant-time.
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Sealer encrypts short secrets at rest with AES-256-GCM under a key derived
// from the server secret.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 32-byte key from secret via HKDF-SHA256 bound to info.
func NewSealer(secret []byte, info string) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty sealing secret", common.ErrorConfiguration)
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns the ciphertext of plaintext and the random nonce used.
func (s *Sealer) Seal(plaintext []byte) (ciphertext, nonce []byte) {
	nonce = common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nil, nonce, plaintext, nil), nonce
}

// Open reverses Seal.
func (s *Sealer) Open(ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != s.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	pt, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}
