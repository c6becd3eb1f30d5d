package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/encryptor_mock.go -package=mock

// Encryptor is the end-to-end encryption capability the sync engine depends
// on. It knows nothing about the network, storage or tasks: it only turns
// plaintext into an opaque (ciphertext, nonce) pair and back.
//
// The server never sees plaintext. Checksums are computed over plaintext so
// that the receiving device can verify what it decrypted.
type Encryptor interface {
	// IsInitialized reports whether a key is loaded. Encrypt and Decrypt
	// fail with ErrNotInitialized until it is.
	IsInitialized() bool

	// Encrypt seals plaintext with a fresh random nonce. Both return values
	// are Base64 (standard encoding).
	Encrypt(plaintext []byte) (ciphertext string, nonce string, err error)

	// Decrypt opens a ciphertext produced by Encrypt on any device holding
	// the same key. Returns ErrDecryptionFailed on a wrong key or tampered
	// input.
	Decrypt(ciphertext, nonce string) ([]byte, error)

	// Hash returns the hex-encoded SHA-256 checksum of plaintext.
	Hash(plaintext []byte) string
}
