package linkcheck

import (
	"sync"
	"time"
)

// ResultCache caches link check results with LRU eviction and TTL so that
// repeated checks of the same URL across pages and across watch-mode cycles
// hit the network once.
type ResultCache struct {
	entries    map[string]*cacheEntry
	mutex      sync.Mutex
	maxEntries int
	ttl        time.Duration
	// LRU implementation
	head *cacheEntry
	tail *cacheEntry
}

type cacheEntry struct {
	key       string
	result    Result
	createdAt time.Time
	// LRU doubly-linked list pointers
	prev *cacheEntry
	next *cacheEntry
}

// NewResultCache creates a cache bounded to maxEntries with the given TTL
func NewResultCache(maxEntries int, ttl time.Duration) *ResultCache {
	cache := &ResultCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}

	// Initialize LRU doubly-linked list with dummy head and tail
	cache.head = &cacheEntry{}
	cache.tail = &cacheEntry{}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// Get retrieves a cached result for a URL
func (rc *ResultCache) Get(url string) (Result, bool) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	entry, exists := rc.entries[url]
	if !exists {
		return Result{}, false
	}

	// Check TTL
	if time.Since(entry.createdAt) > rc.ttl {
		rc.removeFromList(entry)
		delete(rc.entries, url)
		return Result{}, false
	}

	rc.moveToFront(entry)
	return entry.result, true
}

// Set stores a result for a URL
func (rc *ResultCache) Set(url string, result Result) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if existing, exists := rc.entries[url]; exists {
		existing.result = result
		existing.createdAt = time.Now()
		rc.moveToFront(existing)
		return
	}

	// Evict from the tail while over capacity
	for len(rc.entries) >= rc.maxEntries && rc.tail.prev != rc.head {
		lru := rc.tail.prev
		rc.removeFromList(lru)
		delete(rc.entries, lru.key)
	}

	entry := &cacheEntry{
		key:       url,
		result:    result,
		createdAt: time.Now(),
	}
	rc.entries[url] = entry
	rc.addToFront(entry)
}

// Clear drops all cached results
func (rc *ResultCache) Clear() {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	rc.entries = make(map[string]*cacheEntry)
	rc.head.next = rc.tail
	rc.tail.prev = rc.head
}

// Len returns the number of cached results
func (rc *ResultCache) Len() int {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	return len(rc.entries)
}

// LRU doubly-linked list operations
func (rc *ResultCache) addToFront(entry *cacheEntry) {
	entry.prev = rc.head
	entry.next = rc.head.next
	rc.head.next.prev = entry
	rc.head.next = entry
}

func (rc *ResultCache) removeFromList(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (rc *ResultCache) moveToFront(entry *cacheEntry) {
	rc.removeFromList(entry)
	rc.addToFront(entry)
}
