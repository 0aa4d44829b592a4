// Copyright 2025 Lily Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// FastCacheConfig holds fastcache configuration
type FastCacheConfig struct {
	MaxBytes int // Maximum bytes for fastcache, default 16MB
}

// FastCache is the in-process ICache built on VictoriaMetrics fastcache.
//
// fastcache has no notion of expiry or key listing, so FastCache keeps an
// index of live keys with their deadlines next to it. The index may hold
// keys fastcache already evicted; lookups treat those as misses.
type FastCache struct {
	cache *fastcache.Cache
	mu    sync.RWMutex
	keys  map[string]time.Time // zero deadline means no expiry
	now   func() time.Time
}

// NewFastCache creates a new FastCache instance
func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024
	}

	return &FastCache{
		cache: fastcache.New(maxBytes),
		keys:  make(map[string]time.Time),
		now:   time.Now,
	}
}

func (fc *FastCache) expired(deadline time.Time) bool {
	return !deadline.IsZero() && fc.now().After(deadline)
}

// Get returns the value for the given key, or redis.Nil when absent or expired.
func (fc *FastCache) Get(ctx context.Context, key string) *redis.StringCmd {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	deadline, ok := fc.keys[key]
	if !ok || fc.expired(deadline) {
		return redis.NewStringResult("", redis.Nil)
	}

	value, ok := fc.cache.HasGet(nil, []byte(key))
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(value), nil)
}

// Set stores value under key. Values other than strings and byte slices are
// encoded as JSON. Values larger than 64KB are silently dropped by fastcache.
func (fc *FastCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	valueBytes, err := toBytes(value)
	if err != nil {
		return redis.NewStatusResult("", err)
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.set(key, valueBytes, expiration)
	return redis.NewStatusResult("OK", nil)
}

func (fc *FastCache) set(key string, value []byte, expiration time.Duration) {
	fc.cache.Set([]byte(key), value)
	var deadline time.Time
	if expiration > 0 {
		deadline = fc.now().Add(expiration)
	}
	fc.keys[key] = deadline
}

// Del deletes the given keys
func (fc *FastCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var count int64
	for _, key := range keys {
		if fc.del(key) {
			count++
		}
	}
	return redis.NewIntResult(count, nil)
}

func (fc *FastCache) del(key string) bool {
	deadline, ok := fc.keys[key]
	delete(fc.keys, key)
	existed := ok && !fc.expired(deadline) && fc.cache.Has([]byte(key))
	fc.cache.Del([]byte(key))
	return existed
}

// IncrBy adds delta to the integer stored at key. A missing or expired key
// starts from zero and the counter never expires.
func (fc *FastCache) IncrBy(ctx context.Context, key string, delta int64) *redis.IntCmd {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var current int64
	if deadline, ok := fc.keys[key]; ok && !fc.expired(deadline) {
		if raw, ok := fc.cache.HasGet(nil, []byte(key)); ok {
			n, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return redis.NewIntResult(0, err)
			}
			current = n
		}
	}

	current += delta
	fc.set(key, []byte(strconv.FormatInt(current, 10)), 0)
	return redis.NewIntResult(current, nil)
}

// DelPrefix removes every key starting with prefix.
func (fc *FastCache) DelPrefix(ctx context.Context, prefix string) *redis.IntCmd {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var count int64
	for key := range fc.keys {
		if strings.HasPrefix(key, prefix) && fc.del(key) {
			count++
		}
	}
	return redis.NewIntResult(count, nil)
}

// Sweep drops expired keys and returns how many were removed.
func (fc *FastCache) Sweep() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	removed := 0
	for key, deadline := range fc.keys {
		if fc.expired(deadline) {
			delete(fc.keys, key)
			fc.cache.Del([]byte(key))
			removed++
		}
	}
	return removed
}

// Len returns the number of indexed keys, including expired ones not yet swept.
func (fc *FastCache) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.keys)
}

// Clear removes all entries
func (fc *FastCache) Clear() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.cache.Reset()
	fc.keys = make(map[string]time.Time)
}

// Stats returns cache statistics
func (fc *FastCache) Stats() fastcache.Stats {
	var stats fastcache.Stats
	fc.cache.UpdateStats(&stats)
	return stats
}

func toBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return sonic.Marshal(v)
	}
}
