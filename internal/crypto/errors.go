package crypto

import "errors"

var (
	ErrNotInitialized   = errors.New("encryptor is not initialized")
	ErrEmptyPassphrase  = errors.New("empty passphrase")
	ErrInvalidEncoding  = errors.New("invalid base64 encoding")
	ErrInvalidNonce     = errors.New("invalid nonce size")
	ErrDecryptionFailed = errors.New("decryption failed")
)
