package summarizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/localrivet/textsummarizer/internal/textrank"
)

// summaryCache provides thread-safe caching for summaries
type summaryCache struct {
	items    map[string]cachedSummary
	capacity int
	ttl      time.Duration
	mu       sync.RWMutex
}

// cachedSummary represents a cached summary with expiration
type cachedSummary struct {
	result   *textrank.Result
	expireAt time.Time
	storedAt time.Time
}

func newSummaryCache(capacity int, ttl time.Duration) *summaryCache {
	return &summaryCache{
		items:    make(map[string]cachedSummary),
		capacity: capacity,
		ttl:      ttl,
	}
}

// cacheKey hashes everything that determines the output.
func cacheKey(text string, sentences int, order textrank.Order) string {
	h := sha256.New()
	h.Write([]byte(order.String()))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(sentences)))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *summaryCache) get(key string) (*textrank.Result, bool) {
	if c.capacity <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || time.Now().After(item.expireAt) {
		return nil, false
	}
	return item.result, true
}

// put stores a result, evicting the oldest entry when the cache is full.
func (c *summaryCache) put(key string, result *textrank.Result) int {
	if c.capacity <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.capacity {
		c.evictLocked(now)
	}
	c.items[key] = cachedSummary{
		result:   result,
		expireAt: now.Add(c.ttl),
		storedAt: now,
	}
	return len(c.items)
}

// evictLocked drops expired entries, or the oldest one if none expired.
func (c *summaryCache) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	expired := false
	for k, item := range c.items {
		if now.After(item.expireAt) {
			delete(c.items, k)
			expired = true
			continue
		}
		if oldestKey == "" || item.storedAt.Before(oldest) {
			oldestKey, oldest = k, item.storedAt
		}
	}
	if !expired && oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *summaryCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *summaryCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cachedSummary)
}
