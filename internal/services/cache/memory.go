package cache

import (
	"context"
	"sync"
	"time"
)

const defaultPageTTL = 30 * time.Minute

// MemoryCache is a size-capped in-memory page cache. Entries expire
// after their TTL; a background sweep reclaims them, and inserts evict
// other entries when the byte cap would be exceeded.
type MemoryCache struct {
	mu      sync.Mutex
	pages   map[string]pageEntry
	size    int64
	maxSize int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

type pageEntry struct {
	text    string
	expires time.Time
}

// NewMemoryCache creates a cache holding at most maxSizeMB of page text
func NewMemoryCache(maxSizeMB int64) *MemoryCache {
	mc := &MemoryCache{
		pages:   make(map[string]pageEntry),
		maxSize: maxSizeMB * 1024 * 1024,
		stopCh:  make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.sweepLoop()

	return mc
}

// Get returns the cached text for key, if present and not expired
func (mc *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry, ok := mc.pages[key]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expires) {
		mc.remove(key)
		return "", false
	}
	return entry.text, true
}

// Set stores text under key for at most ttl
func (mc *MemoryCache) Set(ctx context.Context, key, text string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultPageTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.remove(key)
	mc.makeRoom(entrySize(key, text))
	mc.pages[key] = pageEntry{text: text, expires: time.Now().Add(ttl)}
	mc.size += entrySize(key, text)
	return nil
}

// Stop ends the background sweep
func (mc *MemoryCache) Stop() {
	close(mc.stopCh)
	mc.wg.Wait()
}

// remove deletes key and adjusts the size accounting; callers hold mu
func (mc *MemoryCache) remove(key string) {
	if entry, ok := mc.pages[key]; ok {
		delete(mc.pages, key)
		mc.size -= entrySize(key, entry.text)
	}
}

// makeRoom evicts entries until sizeNeeded fits under the cap, expired
// entries first; callers hold mu
func (mc *MemoryCache) makeRoom(sizeNeeded int64) {
	if mc.maxSize <= 0 || mc.size+sizeNeeded <= mc.maxSize {
		return
	}

	now := time.Now()
	for key, entry := range mc.pages {
		if now.After(entry.expires) {
			mc.remove(key)
		}
	}
	for key := range mc.pages {
		if mc.size+sizeNeeded <= mc.maxSize {
			break
		}
		mc.remove(key)
	}
}

// sweepLoop removes expired entries periodically
func (mc *MemoryCache) sweepLoop() {
	defer mc.wg.Done()
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.sweep()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) sweep() {
	now := time.Now()
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for key, entry := range mc.pages {
		if now.After(entry.expires) {
			mc.remove(key)
		}
	}
}

func entrySize(key, text string) int64 {
	return int64(len(key) + len(text))
}
