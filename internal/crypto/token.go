package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// TokenCipher encrypts and decrypts OAuth tokens at rest using
// XChaCha20-Poly1305. It is a pure function over its key: no state beyond
// the AEAD instance.
type TokenCipher struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

// NewTokenCipher creates a cipher from a 32-byte key.
func NewTokenCipher(key []byte) (*TokenCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("token cipher: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("token cipher: %w", err)
	}
	return &TokenCipher{aead: aead}, nil
}

// Encrypt seals the plaintext under a random nonce and returns
// base64(nonce || ciphertext). An empty plaintext encrypts to "".
func (c *TokenCipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens base64(nonce || ciphertext) and returns the plaintext, or ""
// on any failure. Callers treat an empty result as an invalid token; the
// decryption error itself is deliberately not surfaced.
func (c *TokenCipher) Decrypt(cipher string) string {
	if cipher == "" {
		return ""
	}

	raw, err := base64.StdEncoding.DecodeString(cipher)
	if err != nil {
		return ""
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return ""
	}

	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return ""
	}
	return string(plain)
}
