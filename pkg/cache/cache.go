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
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache is the key/value surface shared by the remote, local and hybrid caches.
// A miss is reported as redis.Nil on the returned command.
type ICache interface {
	// Get returns the string value stored at key.
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set stores value at key. A zero expiration keeps the key until deleted.
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del removes keys and reports how many existed.
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	// IncrBy atomically adds delta to the integer at key and returns the new value.
	// A missing key counts as zero, so IncrBy(key, 0) reads a counter.
	IncrBy(ctx context.Context, key string, delta int64) *redis.IntCmd
	// DelPrefix removes every key starting with prefix.
	DelPrefix(ctx context.Context, prefix string) *redis.IntCmd
}

// ErrNoCacheLayer is returned when neither the local nor the remote layer can serve a call.
var ErrNoCacheLayer = errors.New("cache: no cache layer available")

// IsMiss reports whether err is a plain cache miss rather than a failure.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
