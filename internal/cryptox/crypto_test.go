package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gursmeep404/sharden/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	require.NoError(t, err)
	k2, err := GenerateKey()
	require.NoError(t, err)

	assert.Len(t, k1, KeySize)
	assert.NotEqual(t, k1, k2)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	plaintext := []byte("attack at dawn")

	ciphertext, nonce, tag, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.Len(t, nonce, NonceSize)
	assert.Len(t, tag, TagSize)
	assert.Len(t, ciphertext, len(plaintext))

	decrypted, err := Decrypt(ciphertext, key, nonce, tag)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, nonce1, _, err := Encrypt([]byte("x"), key)
	require.NoError(t, err)
	_, nonce2, _, err := Encrypt([]byte("x"), key)
	require.NoError(t, err)

	assert.NotEqual(t, nonce1, nonce2)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, nonce, tag, err := Encrypt([]byte("payload"), key)
	require.NoError(t, err)

	ciphertext[0] ^= 0xff

	_, err = Decrypt(ciphertext, key, nonce, tag)
	assert.True(t, errors.Is(err, common.ErrIntegrity), "want ErrIntegrity, got %v", err)
}

func TestDecrypt_WrongKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, nonce, tag, err := Encrypt([]byte("payload"), key)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, other, nonce, tag)
	assert.True(t, errors.Is(err, common.ErrIntegrity), "want ErrIntegrity, got %v", err)
}

func TestDecrypt_BadNonceLength(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, err = Decrypt([]byte("ct"), key, []byte("short"), bytes.Repeat([]byte{0}, TagSize))
	assert.True(t, errors.Is(err, common.ErrIntegrity))
}

func TestBlobLayout(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	plaintext := []byte("0123456789") // 10 bytes

	ciphertext, nonce, tag, err := Encrypt(plaintext, key)
	require.NoError(t, err)

	blob := EncodeBlob(nonce, tag, ciphertext)

	// nonce(16) || tag(16) || ciphertext: 42 bytes total for a 10-byte input
	assert.Len(t, blob, NonceSize+TagSize+len(plaintext))
	assert.Equal(t, nonce, blob[:NonceSize])
	assert.Equal(t, tag, blob[NonceSize:NonceSize+TagSize])

	n2, t2, c2, err := DecodeBlob(blob)
	require.NoError(t, err)
	assert.Equal(t, nonce, n2)
	assert.Equal(t, tag, t2)
	assert.Equal(t, ciphertext, c2)
}

func TestDecodeBlob_TooShort(t *testing.T) {
	_, _, _, err := DecodeBlob(make([]byte, NonceSize+TagSize-1))
	assert.True(t, errors.Is(err, common.ErrIntegrity))
}
