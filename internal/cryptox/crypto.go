// Package cryptox implements the authenticated symmetric cipher used for
// server-managed transfers: AES-128-GCM with a 16-byte nonce and 16-byte tag.
//
// The stored blob layout is nonce || tag || ciphertext, each of fixed length
// (NonceSize, TagSize). This exact layout is part of the wire contract:
// clients fetching raw blobs parse it directly, so it must not change.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/gursmeep404/sharden/internal/common"
)

const (
	// KeySize is the AES key length in bytes (AES-128).
	KeySize = 16
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 16
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// GenerateKey returns a fresh random symmetric key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("key generation: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under key with a fresh random nonce.
// The nonce is never reused across calls under the same key.
func Encrypt(plaintext, key []byte) (ciphertext, nonce, tag []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("nonce generation: %w", err)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, nil, err
	}

	// Seal appends the tag after the ciphertext; split them back apart so
	// callers can lay the blob out as nonce || tag || ciphertext.
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	n := len(sealed) - TagSize
	return sealed[:n], nonce, sealed[n:], nil
}

// Decrypt opens ciphertext with the given key, nonce and tag. A tag that does
// not verify (tampering or wrong key) yields common.ErrIntegrity, which is
// distinguishable from generic I/O failures.
func Decrypt(ciphertext, key, nonce, tag []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, fmt.Errorf("%w: bad nonce or tag length", common.ErrIntegrity)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIntegrity, err)
	}
	return plaintext, nil
}

// EncodeBlob concatenates nonce, tag and ciphertext into the stored layout.
func EncodeBlob(nonce, tag, ciphertext []byte) []byte {
	blob := make([]byte, 0, len(nonce)+len(tag)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ciphertext...)
	return blob
}

// DecodeBlob splits a stored blob back into nonce, tag and ciphertext.
func DecodeBlob(blob []byte) (nonce, tag, ciphertext []byte, err error) {
	if len(blob) < NonceSize+TagSize {
		return nil, nil, nil, fmt.Errorf("%w: blob shorter than header", common.ErrIntegrity)
	}
	return blob[:NonceSize], blob[NonceSize : NonceSize+TagSize], blob[NonceSize+TagSize:], nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("gcm init: %w", err)
	}
	return aead, nil
}
