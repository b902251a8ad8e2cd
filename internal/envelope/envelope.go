// Package envelope seals payloads for a recipient's RSA public key.
//
// A sealed envelope is
//
//	wrapped key (RSA-OAEP SHA-256, modulus size) || nonce (12) || ciphertext+tag
//
// The payload is encrypted with ChaCha20-Poly1305 under a fresh random key.
// Only the wrapped key depends on the recipient, so the envelope size is
// len(plaintext) + Overhead(pub).
package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrEnvelopeTooShort is returned when the sealed data cannot hold a
	// wrapped key, nonce and tag
	ErrEnvelopeTooShort = errors.New("envelope too short")
	// ErrUnwrapKey is returned when the private key cannot unwrap the
	// symmetric key, usually because the envelope is for someone else
	ErrUnwrapKey = errors.New("failed to unwrap envelope key")
	// ErrAuthentication is returned when the ciphertext fails authentication
	ErrAuthentication = errors.New("envelope authentication failed")
)

var oaepLabel = []byte("gifveil envelope v1")

// Overhead returns the number of bytes Seal adds for pub
func Overhead(pub *rsa.PublicKey) int {
	return pub.Size() + chacha20poly1305.NonceSize + chacha20poly1305.Overhead
}

// OverheadForBits returns the number of bytes Seal adds for a key with
// the given modulus size
func OverheadForBits(bits int) int {
	return (bits+7)/8 + chacha20poly1305.NonceSize + chacha20poly1305.Overhead
}

// Seal encrypts plaintext for the holder of the private half of pub
func Seal(plaintext []byte, pub *rsa.PublicKey) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, oaepLabel)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, Overhead(pub)+len(plaintext))
	out = append(out, wrapped...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, wrapped), nil
}

// Open decrypts and authenticates an envelope produced by Seal
func Open(sealed []byte, priv *rsa.PrivateKey) ([]byte, error) {
	keyLen := priv.Size()
	if len(sealed) < keyLen+chacha20poly1305.NonceSize+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: %d bytes", ErrEnvelopeTooShort, len(sealed))
	}

	wrapped := sealed[:keyLen]
	nonce := sealed[keyLen : keyLen+chacha20poly1305.NonceSize]
	ciphertext := sealed[keyLen+chacha20poly1305.NonceSize:]

	key, err := rsa.DecryptOAEP(sha256.New(), nil, priv, wrapped, oaepLabel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnwrapKey, err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnwrapKey, err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, wrapped)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
