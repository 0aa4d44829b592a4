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
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

// RedisCache is the remote ICache backed by a go-redis client.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps client as an ICache.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) *redis.StringCmd {
	return r.client.Get(ctx, key)
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	return r.client.Set(ctx, key, value, expiration)
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	return r.client.Del(ctx, keys...)
}

func (r *RedisCache) IncrBy(ctx context.Context, key string, delta int64) *redis.IntCmd {
	return r.client.IncrBy(ctx, key, delta)
}

// DelPrefix scans for keys under prefix and unlinks them. In cluster mode
// every master is scanned.
func (r *RedisCache) DelPrefix(ctx context.Context, prefix string) *redis.IntCmd {
	pattern := escapeGlob(prefix) + "*"

	if cc, ok := r.client.(*redis.ClusterClient); ok {
		var total atomic.Int64
		err := cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			n, err := scanUnlink(ctx, node, pattern)
			total.Add(n)
			return err
		})
		return redis.NewIntResult(total.Load(), err)
	}

	total, err := scanUnlink(ctx, r.client, pattern)
	return redis.NewIntResult(total, err)
}

// Client returns the underlying go-redis client.
func (r *RedisCache) Client() redis.UniversalClient {
	return r.client
}

// scanUnlink collects every key matching pattern, then unlinks them in
// pipelined batches. Deleting while the cursor is live lets the server rehash
// and skip keys. Each key gets its own UNLINK so keys hashing to different
// cluster slots never share a command.
func scanUnlink(ctx context.Context, c redis.Cmdable, pattern string) (int64, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return 0, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			break
		}
		cursor = next
	}

	var total int64
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		pipe := c.Pipeline()
		cmds := make([]*redis.IntCmd, 0, end-start)
		for _, k := range keys[start:end] {
			cmds = append(cmds, pipe.Unlink(ctx, k))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return total, err
		}
		for _, cmd := range cmds {
			total += cmd.Val()
		}
	}
	return total, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
