// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// saltDomain separates key-derivation salts of this application from any
// other use of the same user identifier.
const saltDomain = "go-task-sync/v1:"

// PassphraseEncryptor is the default [Encryptor]. The 256-bit key is derived
// from a user passphrase with Argon2id and used with XChaCha20-Poly1305, whose
// 24-byte nonces are safe to pick at random.
type PassphraseEncryptor struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. tests vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8

	mu  sync.RWMutex
	key []byte
}

// NewEncryptor constructs an uninitialized [Encryptor] with the Argon2id
// parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//
// Call Unlock before use.
func NewEncryptor() *PassphraseEncryptor {
	return &PassphraseEncryptor{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
	}
}

// DeriveSalt returns the deterministic KDF salt for a user. Every device of
// the same user must derive the same key, so the salt cannot be random.
func DeriveSalt(userID string) []byte {
	sum := sha256.Sum256([]byte(saltDomain + userID))
	return sum[:16]
}

// Unlock derives the data key from passphrase and salt and loads it.
// Unlocking again replaces the previous key.
func (e *PassphraseEncryptor) Unlock(passphrase string, salt []byte) error {
	if passphrase == "" {
		return ErrEmptyPassphrase
	}

	key := argon2.IDKey(
		[]byte(passphrase),
		salt,
		e.argonTime,
		e.argonMemory,
		e.argonThreads,
		chacha20poly1305.KeySize,
	)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.key = key
	return nil
}

// Lock wipes the loaded key.
func (e *PassphraseEncryptor) Lock() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.key {
		e.key[i] = 0
	}
	e.key = nil
}

// IsInitialized implements [Encryptor].
func (e *PassphraseEncryptor) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.key) == chacha20poly1305.KeySize
}

// Encrypt implements [Encryptor].
func (e *PassphraseEncryptor) Encrypt(plaintext []byte) (string, string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.key) == 0 {
		return "", "", ErrNotInitialized
	}

	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return "", "", fmt.Errorf("create aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(sealed), base64.StdEncoding.EncodeToString(nonce), nil
}

// Decrypt implements [Encryptor].
func (e *PassphraseEncryptor) Decrypt(ciphertext, nonce string) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.key) == 0 {
		return nil, ErrNotInitialized
	}

	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %w", ErrInvalidEncoding, err)
	}
	rawNonce, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %w", ErrInvalidEncoding, err)
	}

	aead, err := chacha20poly1305.NewX(e.key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}
	if len(rawNonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidNonce, len(rawNonce))
	}

	// An error here almost always means a different passphrase was used on
	// the device that produced the ciphertext.
	plaintext, err := aead.Open(nil, rawNonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// Hash implements [Encryptor].
func (e *PassphraseEncryptor) Hash(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}
