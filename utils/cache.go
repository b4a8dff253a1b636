package utils

import (
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cppla/codestreak/config"
)

const defaultCacheTTL = time.Hour

var (
	memCache = newMemStore()
	loads    singleflight.Group
	// invalidations is bumped before every prefix delete; a load that overlaps one is not kept.
	invalidations atomic.Uint64
)

// CacheGetBytes returns cached bytes for a key from Redis, or process memory without Redis.
func CacheGetBytes(key string) ([]byte, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		b, err := rc.Get(ctx, key).Bytes()
		if err != nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
			return nil, false
		}
		return b, true
	}
	return memCache.get(key)
}

// CacheSetBytes stores bytes; ttl <= 0 uses the configured default.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cacheTTL()
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
		return
	}
	memCache.set(key, b, ttl)
}

func cacheDelete(key string) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		_ = rc.Del(ctx, key).Err()
		return
	}
	memCache.delete(key)
}

// InvalidateByPrefix deletes keys that match the given prefix.
func InvalidateByPrefix(prefix string) {
	invalidations.Add(1)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := redisCtx()
		defer cancel()
		var cursor uint64
		for i := 0; i < 10; i++ { // bounded rounds
			keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 1000).Result()
			if err != nil {
				Sugar.Warnf("cache invalidate scan failed prefix=%s err=%v", prefix, err)
				break
			}
			cursor = cur
			if len(keys) > 0 {
				pipe := rc.Pipeline()
				for _, k := range keys {
					pipe.Del(ctx, k)
				}
				_, _ = pipe.Exec(ctx)
			}
			if cursor == 0 {
				break
			}
		}
	}
	memCache.deletePrefix(prefix)
}

// Remember returns the cached JSON value under key, or runs load, caches and returns its result.
// Concurrent misses on the same key share one load. Load errors are not cached, and a
// value loaded while an invalidation ran is returned but dropped from the cache.
func Remember[T any](key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var out T
	if b, ok := CacheGetBytes(key); ok {
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
	}

	v, err, _ := loads.Do(key, func() (interface{}, error) {
		gen := invalidations.Load()
		val, err := load()
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		CacheSetBytes(key, b, ttl)
		if invalidations.Load() != gen {
			cacheDelete(key)
		}
		return b, nil
	})
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(v.([]byte), &out)
	return out, err
}

// FlushMemoryCache drops every in-process cache entry and pending email code.
func FlushMemoryCache() {
	memCache.clear()
	codeStore.clear()
}

func cacheTTL() time.Duration {
	if s := config.Get().CacheTTLSeconds; s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultCacheTTL
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// memStore is a mutex-guarded map with per-key expiry.
type memStore struct {
	mu    sync.Mutex
	items map[string]memEntry
}

func newMemStore() *memStore {
	return &memStore{items: map[string]memEntry{}}
}

func (m *memStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(m.items, key)
		return nil, false
	}
	return e.value, true
}

func (m *memStore) set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.items[key] = memEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

// setIfAbsent stores value unless a live entry already holds key.
func (m *memStore) setIfAbsent(key string, value []byte, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.items[key]; ok && time.Now().Before(e.expiresAt) {
		return false
	}
	m.items[key] = memEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return true
}

// take returns and removes a live entry.
func (m *memStore) take(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false
	}
	delete(m.items, key)
	return e.value, time.Now().Before(e.expiresAt)
}

func (m *memStore) delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

func (m *memStore) deletePrefix(prefix string) {
	m.mu.Lock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	m.mu.Unlock()
}

func (m *memStore) clear() {
	m.mu.Lock()
	m.items = map[string]memEntry{}
	m.mu.Unlock()
}
