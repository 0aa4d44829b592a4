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
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// defaultLocalMaxBytes is the default cache size (32MB)
const defaultLocalMaxBytes = 32 * 1024 * 1024

// ProviderSet provides the remote, local and hybrid caches.
var ProviderSet = wire.NewSet(
	ProvideRedisCmdable,
	ProvideICache,
	ProvideFastCache,
	ProvideHybridCache,
)

// Options tunes the local layer and the failover behavior of the hybrid cache.
type Options struct {
	LocalMaxBytes  int
	LocalTTLRatio  float64
	RemoteCooldown time.Duration
}

// ProvideRedisCmdable connects to Redis (single, sentinel or cluster).
func ProvideRedisCmdable(conf Redis) (redis.UniversalClient, func(), error) {
	client, err := NewRedisCmdable(conf)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideICache wraps the Redis client as the remote cache.
func ProvideICache(client redis.UniversalClient) *RedisCache {
	return NewRedisCache(client)
}

// ProvideFastCache builds the local cache, 32MB unless configured.
func ProvideFastCache(opts Options) *FastCache {
	maxBytes := opts.LocalMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}
	return NewFastCache(FastCacheConfig{MaxBytes: maxBytes})
}

// ProvideHybridCache combines the local FastCache with Redis.
func ProvideHybridCache(local *FastCache, remote *RedisCache, opts Options) *HybridCache {
	ratio := opts.LocalTTLRatio
	if ratio <= 0 {
		ratio = 0.8
	}
	return NewHybridCache(local, remote, HybridCacheConfig{
		LocalEnabled:   true,
		RemoteEnabled:  true,
		LocalTTLRatio:  ratio,
		RemoteCooldown: opts.RemoteCooldown,
	})
}
