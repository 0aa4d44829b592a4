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
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_GetSetDel(t *testing.T) {
	rc, mr := setupRedisCache(t)
	ctx := context.Background()

	t.Run("Should report a miss as redis.Nil", func(t *testing.T) {
		err := rc.Get(ctx, "absent").Err()
		assert.True(t, IsMiss(err))
	})

	t.Run("Should store with expiration", func(t *testing.T) {
		require.NoError(t, rc.Set(ctx, "k", "v", time.Minute).Err())
		assert.Equal(t, "v", rc.Get(ctx, "k").Val())
		assert.Equal(t, time.Minute, mr.TTL("k"))
	})

	t.Run("Should delete", func(t *testing.T) {
		assert.Equal(t, int64(1), rc.Del(ctx, "k").Val())
		assert.False(t, mr.Exists("k"))
	})
}

func TestRedisCache_IncrBy(t *testing.T) {
	rc, _ := setupRedisCache(t)
	ctx := context.Background()

	v, err := rc.IncrBy(ctx, "ver", 0).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = rc.IncrBy(ctx, "ver", 1).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestRedisCache_DelPrefix(t *testing.T) {
	rc, mr := setupRedisCache(t)
	ctx := context.Background()

	for i := 0; i < 1200; i++ {
		require.NoError(t, mr.Set("lily:settings:v1:org-a:"+strconv.Itoa(i), "x"))
	}
	require.NoError(t, mr.Set("lily:settings:v1:org-ab:-:-:-", "x"))
	require.NoError(t, mr.Set("lily:settings:v1:org-b:-:-:-", "x"))

	n, err := rc.DelPrefix(ctx, "lily:settings:v1:org-a:").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1200), n)
	assert.True(t, mr.Exists("lily:settings:v1:org-ab:-:-:-"))
	assert.True(t, mr.Exists("lily:settings:v1:org-b:-:-:-"))
}

func TestRedisCache_Errors(t *testing.T) {
	rc, mr := setupRedisCache(t)
	ctx := context.Background()

	mr.SetError("ERR server down")
	defer mr.SetError("")

	err := rc.Get(ctx, "k").Err()
	require.Error(t, err)
	assert.False(t, IsMiss(err))
	assert.Error(t, rc.DelPrefix(ctx, "p:").Err())
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `org\*1\?\[x\]\\`, escapeGlob(`org*1?[x]\`))
	assert.Equal(t, "plain:key", escapeGlob("plain:key"))
}

func TestSplitAddrs(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, splitAddrs(" a:1, ,b:2 "))
}

func TestNewRedisCmdable(t *testing.T) {
	t.Run("Should connect in single mode", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := NewRedisCmdable(Redis{Mode: "single", Address: mr.Addr()})
		require.NoError(t, err)
		defer client.Close()
		assert.NoError(t, client.Ping(context.Background()).Err())
	})

	t.Run("Should reject unknown modes", func(t *testing.T) {
		_, err := NewRedisCmdable(Redis{Mode: "mesh"})
		assert.Error(t, err)
	})

	t.Run("Should start degraded when the server is unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		client, err := NewRedisCmdable(Redis{Address: addr, DialTimeout: 1})
		require.NoError(t, err)
		require.NotNil(t, client)
		defer client.Close()

		hc := NewHybridCache(NewFastCache(FastCacheConfig{}), NewRedisCache(client), HybridCacheConfig{
			LocalEnabled: true, RemoteEnabled: true, LocalTTLRatio: 1, RemoteCooldown: time.Minute,
		})
		ctx := context.Background()
		assert.True(t, IsMiss(hc.Get(ctx, "k").Err()))
		assert.False(t, hc.RemoteHealthy())
		require.NoError(t, hc.Set(ctx, "k", "v", time.Hour).Err())
		assert.Equal(t, "v", hc.Get(ctx, "k").Val())
	})
}
