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
	"time"

	"github.com/bytedance/sonic"
	"github.com/lily-ai/lily/pkg/log"
)

// QueryFunc loads the value behind a cache key.
type QueryFunc[T any] func(ctx context.Context) (T, error)

// Entry is the stored form of a cached value. Version is the scope version
// that was current when the value was loaded.
type Entry[T any] struct {
	Value     T         `json:"value"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// Outcome describes how a VersionedQuery call was served.
type Outcome int

const (
	// OutcomeMiss means the value was loaded and stored.
	OutcomeMiss Outcome = iota
	// OutcomeHit means a current entry was served from cache.
	OutcomeHit
	// OutcomeBypass means the cache could not be used and the value was loaded directly.
	OutcomeBypass
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeBypass:
		return "bypass"
	default:
		return "miss"
	}
}

// VersionedQuery is a cache-aside reader whose entries are invalidated in bulk
// by bumping a per-scope version counter. An entry is only served when its
// version equals the scope's current version, so a single increment retires
// every entry of the scope on every node sharing the remote cache.
type VersionedQuery[T any] struct {
	cache      ICache
	versionKey func(scope string) string
	ttl        time.Duration
	logPrefix  string
	onError    func(op string, err error)
	now        func() time.Time
}

// Cache operations reported to the error hook.
const (
	OpVersion = "version"
	OpLookup  = "lookup"
	OpStore   = "store"
)

// VersionedQueryOption configures VersionedQuery behavior
type VersionedQueryOption[T any] func(*VersionedQuery[T])

// WithTTL sets the entry expiration time
func WithTTL[T any](ttl time.Duration) VersionedQueryOption[T] {
	return func(q *VersionedQuery[T]) {
		q.ttl = ttl
	}
}

// WithLogPrefix sets the log prefix for debugging
func WithLogPrefix[T any](prefix string) VersionedQueryOption[T] {
	return func(q *VersionedQuery[T]) {
		q.logPrefix = prefix
	}
}

// WithErrorHook calls fn for every cache failure that Get absorbs.
func WithErrorHook[T any](fn func(op string, err error)) VersionedQueryOption[T] {
	return func(q *VersionedQuery[T]) {
		q.onError = fn
	}
}

func (q *VersionedQuery[T]) reportError(op string, err error) {
	if q.onError != nil {
		q.onError(op, err)
	}
}

// NewVersionedQuery creates a VersionedQuery. versionKey maps a scope to the
// key of its counter.
func NewVersionedQuery[T any](cache ICache, versionKey func(scope string) string, opts ...VersionedQueryOption[T]) *VersionedQuery[T] {
	q := &VersionedQuery[T]{
		cache:      cache,
		versionKey: versionKey,
		ttl:        5 * time.Minute,
		logPrefix:  "[VersionedQuery]",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// TTL returns the configured entry lifetime.
func (q *VersionedQuery[T]) TTL() time.Duration {
	return q.ttl
}

// Version returns the current version of scope. A scope never bumped is at 0.
func (q *VersionedQuery[T]) Version(ctx context.Context, scope string) (int64, error) {
	return q.cache.IncrBy(ctx, q.versionKey(scope), 0).Result()
}

// Bump advances the version of scope, retiring all of its entries.
func (q *VersionedQuery[T]) Bump(ctx context.Context, scope string) (int64, error) {
	v, err := q.cache.IncrBy(ctx, q.versionKey(scope), 1).Result()
	if err != nil {
		log.Warnw(q.logPrefix+" failed to bump version", "scope", scope, "error", err)
		return 0, err
	}
	log.Debugw(q.logPrefix+" version bumped", "scope", scope, "version", v)
	return v, nil
}

// Lookup returns the entry at key when it carries version and has not outlived
// the TTL. Undecodable entries are treated as misses.
func (q *VersionedQuery[T]) Lookup(ctx context.Context, key string, version int64) (T, bool, error) {
	var zero T
	data, err := q.cache.Get(ctx, key).Result()
	if err != nil {
		if IsMiss(err) {
			return zero, false, nil
		}
		return zero, false, err
	}

	var entry Entry[T]
	if err := sonic.UnmarshalString(data, &entry); err != nil {
		log.Warnw(q.logPrefix+" failed to unmarshal cached entry", "key", key, "error", err)
		return zero, false, nil
	}
	if entry.Version != version {
		log.Debugw(q.logPrefix+" stale entry", "key", key, "entryVersion", entry.Version, "version", version)
		return zero, false, nil
	}
	if q.ttl > 0 && q.now().Sub(entry.CreatedAt) > q.ttl {
		return zero, false, nil
	}
	return entry.Value, true, nil
}

// Store writes value under key stamped with version.
func (q *VersionedQuery[T]) Store(ctx context.Context, key string, value T, version int64) error {
	data, err := sonic.MarshalString(Entry[T]{Value: value, Version: version, CreatedAt: q.now()})
	if err != nil {
		return err
	}
	return q.cache.Set(ctx, key, data, q.ttl).Err()
}

// Purge deletes every entry whose key starts with prefix.
func (q *VersionedQuery[T]) Purge(ctx context.Context, prefix string) error {
	return q.cache.DelPrefix(ctx, prefix).Err()
}

// Get serves key from cache when a current entry exists and otherwise calls
// load. The version is read before loading, so a value computed while the
// scope is being invalidated is stored under the old version and never served.
// Cache failures never fail the call; the value is loaded directly instead.
func (q *VersionedQuery[T]) Get(ctx context.Context, scope, key string, load QueryFunc[T]) (T, Outcome, error) {
	var zero T

	version, err := q.Version(ctx, scope)
	if err != nil {
		if ctx.Err() != nil {
			return zero, OutcomeBypass, ctx.Err()
		}
		log.Warnw(q.logPrefix+" version read failed, bypassing cache", "scope", scope, "error", err)
		q.reportError(OpVersion, err)
		value, err := load(ctx)
		return value, OutcomeBypass, err
	}

	value, ok, err := q.Lookup(ctx, key, version)
	if err != nil {
		log.Warnw(q.logPrefix+" cache get error", "key", key, "error", err)
		q.reportError(OpLookup, err)
	}
	if ok {
		log.Debugw(q.logPrefix+" cache hit", "key", key, "version", version)
		return value, OutcomeHit, nil
	}

	value, err = load(ctx)
	if err != nil {
		return zero, OutcomeMiss, err
	}

	if err := q.Store(ctx, key, value, version); err != nil {
		log.Warnw(q.logPrefix+" failed to cache result", "key", key, "error", err)
		q.reportError(OpStore, err)
	} else {
		log.Debugw(q.logPrefix+" cached result", "key", key, "version", version)
	}
	return value, OutcomeMiss, nil
}
