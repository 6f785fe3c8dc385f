package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ExtractionCache memoizes converter output by content hash. Entries are
// evicted least-recently-used once size is reached, and expire after ttl.
// A nil *ExtractionCache is valid and never hits.
type ExtractionCache struct {
	lru *expirable.LRU[string, string]
}

// NewExtractionCache returns nil when size <= 0, which disables caching.
func NewExtractionCache(size int, ttl time.Duration) *ExtractionCache {
	if size <= 0 {
		return nil
	}
	return &ExtractionCache{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (c *ExtractionCache) Get(hash string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.lru.Get(hash)
}

func (c *ExtractionCache) Add(hash, text string) {
	if c == nil {
		return
	}
	c.lru.Add(hash, text)
}

func (c *ExtractionCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// ContentHash returns the hex SHA-256 digest of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
