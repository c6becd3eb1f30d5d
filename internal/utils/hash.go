package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// Hasher signs request bodies with HMAC-SHA256 under a fixed key. It is safe
// for concurrent use; hash states are recycled through a pool.
type Hasher struct {
	pool sync.Pool
}

// NewHasher returns a Hasher keyed with hashKey.
func NewHasher(hashKey string) *Hasher {
	key := []byte(hashKey)
	return &Hasher{
		pool: sync.Pool{
			New: func() any { return hmac.New(sha256.New, key) },
		},
	}
}

// Sum returns the raw HMAC of data.
func (h *Hasher) Sum(data []byte) []byte {
	mac := h.pool.Get().(hash.Hash)
	defer h.pool.Put(mac)

	mac.Reset()
	mac.Write(data)
	return mac.Sum(nil)
}

// Hex returns the HMAC of data hex-encoded, as sent in the HashSHA256
// header.
func (h *Hasher) Hex(data []byte) string {
	return hex.EncodeToString(h.Sum(data))
}

// HashString computes a hex HMAC-SHA256 of data under hashKey without a
// pool. Used for one-off verification.
func HashString(data string, hashKey string) string {
	mac := hmac.New(sha256.New, []byte(hashKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
