package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	passphraseSaltSize = 16
	passphraseVersion  = "v1"
)

// DeriveKey stretches a passphrase into a 32-byte AES key with Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

func passphraseAEAD(passphrase, salt []byte) (cipher.AEAD, error) {
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptWithPassphrase seals plaintext for storage as an opaque note body:
// "v1.<salt>.<nonce>.<ciphertext>", each part base64url without padding.
// The server never sees the passphrase.
func EncryptWithPassphrase(passphrase, plaintext []byte) (string, error) {
	salt := common.GenerateRandByteArray(passphraseSaltSize)
	aead, err := passphraseAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	ct := aead.Seal(nil, nonce, plaintext, nil)

	enc := base64.RawURLEncoding
	return strings.Join([]string{passphraseVersion, enc.EncodeToString(salt), enc.EncodeToString(nonce), enc.EncodeToString(ct)}, "."), nil
}

// DecryptWithPassphrase reverses EncryptWithPassphrase. Malformed input and
// a wrong passphrase both return ErrDecrypt.
func DecryptWithPassphrase(passphrase []byte, sealed string) ([]byte, error) {
	parts := strings.Split(sealed, ".")
	if len(parts) != 4 || parts[0] != passphraseVersion {
		return nil, ErrDecrypt
	}

	enc := base64.RawURLEncoding
	salt, err1 := enc.DecodeString(parts[1])
	nonce, err2 := enc.DecodeString(parts[2])
	ct, err3 := enc.DecodeString(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, ErrDecrypt
	}

	aead, err := passphraseAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}
