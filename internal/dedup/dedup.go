// Package dedup suppresses re-processing of retransmitted alerts. Alerts are
// keyed by a SHA-256 of the raw text, so an exact retransmission is ignored
// even when parsing would later fail differently. The cache is bounded: the
// requirement is rejecting replays within an operationally relevant window,
// not remembering forever.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"
	"time"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Options tune the replay window.
type Options struct {
	// MaxEntries caps the cache; the oldest entries are evicted first.
	MaxEntries int
	// TTL expires entries by age. Zero disables age eviction.
	TTL time.Duration
	// NormalizeWhitespace collapses runs of whitespace before hashing, so a
	// reformatted retransmission of the same alert is still a duplicate.
	// Off by default: the source feed hashes raw text and treats
	// whitespace-only differences as distinct signals.
	NormalizeWhitespace bool
}

type entry struct {
	hash string
	seen time.Time
}

// Cache is a hash-keyed replay filter. Safe for use from one goroutine;
// the alert consumer owns it.
type Cache struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]time.Time
	order   []entry // insertion order, for capacity eviction
	now     func() time.Time
}

func New(opts Options) *Cache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 4096
	}
	return &Cache{
		opts:    opts,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (c *Cache) key(text string) string {
	if c.opts.NormalizeWhitespace {
		text = whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Seen reports whether the text was marked within the replay window.
func (c *Cache) Seen(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expire()
	_, ok := c.entries[c.key(text)]
	return ok
}

// Mark records the text as processed.
func (c *Cache) Mark(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expire()
	k := c.key(text)
	if _, ok := c.entries[k]; ok {
		return
	}
	c.entries[k] = c.now()
	c.order = append(c.order, entry{hash: k, seen: c.now()})

	for len(c.entries) > c.opts.MaxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest.hash)
	}
}

// Len returns the current number of remembered alerts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expire()
	return len(c.entries)
}

func (c *Cache) expire() {
	if c.opts.TTL <= 0 {
		return
	}
	cutoff := c.now().Add(-c.opts.TTL)
	for len(c.order) > 0 && c.order[0].seen.Before(cutoff) {
		oldest := c.order[0]
		c.order = c.order[1:]
		if ts, ok := c.entries[oldest.hash]; ok && ts.Before(cutoff) {
			delete(c.entries, oldest.hash)
		}
	}
}
