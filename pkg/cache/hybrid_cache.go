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
	"sync/atomic"
	"time"

	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/safe"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRemoteCooldown = 10 * time.Second
	defaultBackfillTTL    = time.Minute
)

// HybridCacheConfig holds hybrid cache configuration
type HybridCacheConfig struct {
	LocalEnabled   bool          // Enable local cache
	RemoteEnabled  bool          // Enable remote cache (Redis)
	LocalTTLRatio  float64       // Ratio of remote TTL for local cache (0.0-1.0)
	RemoteCooldown time.Duration // How long to bypass the remote after a failure
	BackfillTTL    time.Duration // TTL for values copied from remote into local
}

// HybridCache combines the local FastCache with a remote ICache.
//
// Reads go to the local cache first and then to the remote. Counters are the
// exception: IncrBy always asks the remote first so every node sees the same
// value, and mirrors the result locally. When the remote fails with anything
// other than a miss it is skipped for RemoteCooldown and the local cache
// serves alone.
type HybridCache struct {
	local     *FastCache
	remote    ICache
	config    HybridCacheConfig
	downUntil atomic.Int64 // unix nanos
}

// NewHybridCache creates a new HybridCache instance
func NewHybridCache(localCache *FastCache, remoteCache ICache, config HybridCacheConfig) *HybridCache {
	if config.RemoteCooldown <= 0 {
		config.RemoteCooldown = defaultRemoteCooldown
	}
	if config.BackfillTTL <= 0 {
		config.BackfillTTL = defaultBackfillTTL
	}
	return &HybridCache{
		local:  localCache,
		remote: remoteCache,
		config: config,
	}
}

func (hc *HybridCache) localOn() bool {
	return hc.config.LocalEnabled && hc.local != nil
}

func (hc *HybridCache) remoteOn() bool {
	if !hc.config.RemoteEnabled || hc.remote == nil {
		return false
	}
	return time.Now().UnixNano() >= hc.downUntil.Load()
}

// RemoteHealthy reports whether the remote cache is configured and not cooling down.
func (hc *HybridCache) RemoteHealthy() bool {
	return hc.remoteOn()
}

// remoteFailed records a remote error. Misses are not failures.
func (hc *HybridCache) remoteFailed(op, key string, err error) bool {
	if err == nil || IsMiss(err) {
		return false
	}
	until := time.Now().Add(hc.config.RemoteCooldown).UnixNano()
	if prev := hc.downUntil.Swap(until); time.Now().UnixNano() >= prev {
		log.Warnw("remote cache unavailable, serving from local cache",
			"op", op,
			"key", key,
			"cooldown", hc.config.RemoteCooldown,
			"error", err,
		)
	}
	return true
}

// getLocalTTL calculates local TTL based on remote TTL and ratio
func (hc *HybridCache) getLocalTTL(remoteTTL time.Duration) time.Duration {
	if hc.config.LocalTTLRatio > 0 && hc.config.LocalTTLRatio < 1.0 {
		return time.Duration(float64(remoteTTL) * hc.config.LocalTTLRatio)
	}
	return remoteTTL
}

// localSetArgs holds arguments for local cache set goroutine
type localSetArgs struct {
	cache *FastCache
	key   string
	value string
	ttl   time.Duration
}

// Get retrieves a value, local first. A remote failure is reported as a miss.
func (hc *HybridCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if hc.localOn() {
		if cmd := hc.local.Get(ctx, key); cmd.Err() == nil {
			log.Debugw("hybrid cache hit (local)", "key", key)
			return cmd
		}
	}

	if hc.remoteOn() {
		cmd := hc.remote.Get(ctx, key)
		switch err := cmd.Err(); {
		case err == nil:
			log.Debugw("hybrid cache hit (remote)", "key", key)
			if hc.localOn() {
				safe.GoWith(func(args localSetArgs) {
					args.cache.Set(context.Background(), args.key, args.value, args.ttl)
				}, localSetArgs{cache: hc.local, key: key, value: cmd.Val(), ttl: hc.getLocalTTL(hc.config.BackfillTTL)})
			}
			return cmd
		case ctx.Err() != nil:
			return redis.NewStringResult("", ctx.Err())
		default:
			hc.remoteFailed("get", key, err)
		}
	}

	log.Debugw("hybrid cache miss", "key", key)
	return redis.NewStringResult("", redis.Nil)
}

// Set writes to both layers. It only fails when no layer accepted the value.
func (hc *HybridCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	valueBytes, err := toBytes(value)
	if err != nil {
		log.Warnw("failed to marshal value for caching", "key", key, "error", err)
		return redis.NewStatusResult("", err)
	}

	stored := false
	if hc.localOn() {
		stored = hc.local.Set(ctx, key, valueBytes, hc.getLocalTTL(expiration)).Err() == nil
	}

	var remoteErr error
	if hc.remoteOn() {
		remoteErr = hc.remote.Set(ctx, key, valueBytes, expiration).Err()
		if remoteErr == nil {
			stored = true
		} else {
			hc.remoteFailed("set", key, remoteErr)
		}
	}

	if !stored && remoteErr != nil {
		return redis.NewStatusResult("", remoteErr)
	}
	return redis.NewStatusResult("OK", nil)
}

// Del deletes keys from both layers and returns the larger of the two counts.
func (hc *HybridCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var count int64
	if hc.localOn() {
		count = hc.local.Del(ctx, keys...).Val()
	}

	if hc.remoteOn() {
		cmd := hc.remote.Del(ctx, keys...)
		if hc.remoteFailed("del", "", cmd.Err()) {
			if !hc.localOn() {
				return cmd
			}
		} else if cmd.Val() > count {
			count = cmd.Val()
		}
	}
	return redis.NewIntResult(count, nil)
}

// IncrBy asks the remote first and mirrors the result locally. If the remote
// is unreachable the local counter is used.
func (hc *HybridCache) IncrBy(ctx context.Context, key string, delta int64) *redis.IntCmd {
	if hc.remoteOn() {
		cmd := hc.remote.IncrBy(ctx, key, delta)
		if cmd.Err() == nil {
			if hc.localOn() {
				hc.local.Set(ctx, key, strconv.FormatInt(cmd.Val(), 10), 0)
			}
			return cmd
		}
		if ctx.Err() != nil {
			return redis.NewIntResult(0, ctx.Err())
		}
		hc.remoteFailed("incrby", key, cmd.Err())
		if !hc.localOn() {
			return cmd
		}
	}

	if hc.localOn() {
		return hc.local.IncrBy(ctx, key, delta)
	}
	return redis.NewIntResult(0, ErrNoCacheLayer)
}

// DelPrefix removes keys under prefix from both layers.
func (hc *HybridCache) DelPrefix(ctx context.Context, prefix string) *redis.IntCmd {
	var count int64
	if hc.localOn() {
		count = hc.local.DelPrefix(ctx, prefix).Val()
	}

	if hc.remoteOn() {
		cmd := hc.remote.DelPrefix(ctx, prefix)
		if hc.remoteFailed("delprefix", prefix, cmd.Err()) {
			if !hc.localOn() {
				return cmd
			}
		} else if cmd.Val() > count {
			count = cmd.Val()
		}
	}
	return redis.NewIntResult(count, nil)
}

// Sweep drops expired local entries.
func (hc *HybridCache) Sweep() int {
	if !hc.localOn() {
		return 0
	}
	return hc.local.Sweep()
}
