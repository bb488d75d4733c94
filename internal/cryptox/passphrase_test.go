package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassphraseRoundTrip(t *testing.T) {
	sealed, err := EncryptWithPassphrase([]byte("correct horse"), []byte("meet at noon"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "v1."))
	assert.NotContains(t, sealed, "meet at noon")

	pt, err := DecryptWithPassphrase([]byte("correct horse"), sealed)
	require.NoError(t, err)
	assert.Equal(t, "meet at noon", string(pt))
}

func TestPassphrase_FreshSaltEachTime(t *testing.T) {
	a, err := EncryptWithPassphrase([]byte("pw"), []byte("same"))
	require.NoError(t, err)
	b, err := EncryptWithPassphrase([]byte("pw"), []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWithPassphrase_Failures(t *testing.T) {
	sealed, err := EncryptWithPassphrase([]byte("right"), []byte("x"))
	require.NoError(t, err)

	for name, in := range map[string]string{
		"wrong passphrase": "",
		"not sealed":       "plain text",
		"bad version":      "v9" + strings.TrimPrefix(sealed, "v1"),
		"bad base64":       "v1.!!.!!.!!",
		"short nonce":      "v1.AAAA.AA.AAAA",
	} {
		t.Run(name, func(t *testing.T) {
			input, pass := in, "right"
			if name == "wrong passphrase" {
				input, pass = sealed, "wrong"
			}
			_, err := DecryptWithPassphrase([]byte(pass), input)
			assert.ErrorIs(t, err, ErrDecrypt)
		})
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	assert.Equal(t, DeriveKey([]byte("pw"), salt), DeriveKey([]byte("pw"), salt))
	assert.Len(t, DeriveKey([]byte("pw"), salt), 32)
}
