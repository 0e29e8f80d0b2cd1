// Package vault encrypts user-supplied provider API keys at rest.
package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/ZaguanLabs/transcache"
)

var (
	// ErrDecryption is returned for malformed ciphertexts and ciphertexts
	// sealed under a different secret. It matches transcache.ErrInvalidCredential.
	ErrDecryption = fmt.Errorf("%w: decryption failed", transcache.ErrInvalidCredential)

	// ErrNoSecret is returned by New when no secret is configured.
	ErrNoSecret = errors.New("vault secret is empty")
)

const keyInfo = "transcache credential vault v1"

// Vault seals credentials with XChaCha20-Poly1305 under a key derived from
// the configured secret with HKDF-SHA256. Safe for concurrent use.
type Vault struct {
	aead cipher.AEAD
}

var _ transcache.CredentialDecrypter = (*Vault)(nil)

// New derives the vault key from secret.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt returns URL-safe base64 of nonce||ciphertext.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(plaintext)+v.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure is ErrDecryption.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryption
	}
	if len(raw) < v.aead.NonceSize()+v.aead.Overhead() {
		return "", ErrDecryption
	}

	nonce, sealed := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plain, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryption
	}

	return string(plain), nil
}

// GenerateSecret returns a random 256-bit secret suitable for New.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
