package loader

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
)

// RecordCache memoizes loaded record sets per distinct year selection so
// re-running an analysis with unchanged years skips re-reading source files.
// Entries expire after a fixed TTL and the whole cache can be invalidated
// explicitly. Bounded by an LRU eviction policy.
type RecordCache struct {
	clock      clockwork.Clock
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]*cacheEntry
	head    *cacheEntry // most recently used
	tail    *cacheEntry // least recently used
}

type cacheEntry struct {
	key       string
	value     domain.RecordSet
	expiresAt time.Time
	prev      *cacheEntry
	next      *cacheEntry
}

// NewRecordCache creates a cache holding at most maxEntries record sets,
// each valid for ttl. Pass a nil clock to use real time; tests inject a
// fake for deterministic expiry.
func NewRecordCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *RecordCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RecordCache{
		clock:      clock,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

// cacheKey canonicalizes a year selection: sorted, deduplicated, joined.
// {2024, 2022, 2023} and {2022, 2023, 2024} hit the same entry.
func cacheKey(years []int) string {
	sorted := make([]int, len(years))
	copy(sorted, years)
	sort.Ints(sorted)

	var b strings.Builder
	prev := 0
	for i, y := range sorted {
		if i > 0 {
			if y == prev {
				continue
			}
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(y))
		prev = y
	}
	return b.String()
}

// Get returns the cached record set for a year selection, if present and
// not expired.
func (c *RecordCache) Get(years []int) (domain.RecordSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(years)]
	if !ok {
		return domain.RecordSet{}, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.removeEntry(e)
		return domain.RecordSet{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Put stores a record set for a year selection, resetting its TTL.
func (c *RecordCache) Put(years []int, rs domain.RecordSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(years)
	expiresAt := c.clock.Now().Add(c.ttl)

	if e, ok := c.entries[key]; ok {
		e.value = rs
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &cacheEntry{key: key, value: rs, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Invalidate drops every cached record set.
func (c *RecordCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.head = nil
	c.tail = nil
}

// Len reports the number of cached entries, expired ones included.
func (c *RecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *RecordCache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *RecordCache) addToFront(e *cacheEntry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *RecordCache) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *RecordCache) removeEntry(e *cacheEntry) {
	delete(c.entries, e.key)
	c.unlink(e)
}

func (c *RecordCache) evictTail() {
	if c.tail == nil {
		return
	}
	c.removeEntry(c.tail)
}
