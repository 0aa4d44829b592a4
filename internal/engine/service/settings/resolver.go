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

package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/cache"
	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/metrics"
	"github.com/lily-ai/lily/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/lily-ai/lily/internal/engine/service/settings"

// EntityStore reads raw settings blobs together with their owning
// organization. Missing rows are reported with core.ErrEntityNotFound.
type EntityStore interface {
	GetOrganizationPlan(ctx context.Context, orgID string) (string, error)
	GetEntitySettings(ctx context.Context, ref core.EntityRef) (core.EntityBlob, error)
}

// Config tunes the resolver.
type Config struct {
	CacheTTL time.Duration
	// LoadTimeout bounds a shared resolution, which outlives the caller that started it.
	LoadTimeout        time.Duration
	MaxConcurrentLoads int
}

func (c *Config) setDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 10 * time.Second
	}
	if c.MaxConcurrentLoads <= 0 {
		c.MaxConcurrentLoads = len(core.EntityKinds())
	}
}

// Resolver merges the settings of every applicable level and caches the result
// per request tuple. Resolution only fails when the organization cannot be
// identified or the caller's context ends; every other failure degrades to
// defaults for the affected level.
type Resolver struct {
	store   EntityStore
	query   *cache.VersionedQuery[core.ResolvedSettings]
	metrics *metrics.SettingsMetrics
	conf    Config
	group   singleflight.Group
	tracer  oteltrace.Tracer
}

// NewResolver builds a resolver over store with results cached in c.
// m may be nil.
func NewResolver(store EntityStore, c cache.ICache, m *metrics.SettingsMetrics, conf Config) *Resolver {
	conf.setDefaults()
	return &Resolver{
		store: store,
		query: cache.NewVersionedQuery[core.ResolvedSettings](c, versionKey,
			cache.WithTTL[core.ResolvedSettings](conf.CacheTTL),
			cache.WithLogPrefix[core.ResolvedSettings]("[SettingsCache]"),
			cache.WithErrorHook[core.ResolvedSettings](m.CacheError),
		),
		metrics: m,
		conf:    conf,
		tracer:  trace.Tracer(tracerName),
	}
}

type flight struct {
	settings core.ResolvedSettings
	outcome  cache.Outcome
}

// GetSettings returns the fully defaulted, valid settings for req.
func (r *Resolver) GetSettings(ctx context.Context, req Request) (*core.ResolvedSettings, error) {
	start := time.Now()
	req = req.normalized()
	if err := req.validate(); err != nil {
		r.metrics.ObserveResolve(metrics.ResultError, time.Since(start))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, "settings.GetSettings", oteltrace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	key := cacheKey(req)
	ch := r.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.conf.LoadTimeout)
		defer cancel()
		s, outcome, err := r.query.Get(fctx, req.OrganizationID, key, func(ctx context.Context) (core.ResolvedSettings, error) {
			res, err := r.resolve(ctx, req)
			if err != nil {
				return core.ResolvedSettings{}, err
			}
			return *res.Settings, nil
		})
		return flight{settings: s, outcome: outcome}, err
	})

	select {
	case <-ctx.Done():
		r.finish(span, start, metrics.ResultError, ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			result := metrics.ResultError
			if errors.Is(res.Err, ErrOrganizationNotFound) {
				result = metrics.ResultNotFound
			}
			r.finish(span, start, result, res.Err)
			return nil, res.Err
		}
		f := res.Val.(flight)
		span.SetAttributes(attribute.Bool("settings.shared", res.Shared))
		r.finish(span, start, f.outcome.String(), nil)
		return f.settings.Clone(), nil
	}
}

func (r *Resolver) finish(span oteltrace.Span, start time.Time, result string, err error) {
	span.SetAttributes(attribute.String("settings.result", result))
	if err != nil && !errors.Is(err, ErrOrganizationNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	r.metrics.ObserveResolve(result, time.Since(start))
}

func (r *Resolver) GetPricingSettings(ctx context.Context, req Request) (core.PricingSettings, error) {
	s, err := r.GetSettings(ctx, req)
	if err != nil {
		return core.PricingSettings{}, err
	}
	return s.Pricing, nil
}

func (r *Resolver) GetWeatherSettings(ctx context.Context, req Request) (core.WeatherSettings, error) {
	s, err := r.GetSettings(ctx, req)
	if err != nil {
		return core.WeatherSettings{}, err
	}
	return s.Weather, nil
}

func (r *Resolver) GetDMSettings(ctx context.Context, req Request) (core.DMBookingSettings, error) {
	s, err := r.GetSettings(ctx, req)
	if err != nil {
		return core.DMBookingSettings{}, err
	}
	return s.DMBooking, nil
}

func (r *Resolver) GetSchedulingSettings(ctx context.Context, req Request) (core.SchedulingSettings, error) {
	s, err := r.GetSettings(ctx, req)
	if err != nil {
		return core.SchedulingSettings{}, err
	}
	return s.Scheduling, nil
}

// GetNamespace returns the struct of one namespace, for callers that select it at runtime.
func (r *Resolver) GetNamespace(ctx context.Context, req Request, ns core.Namespace) (any, error) {
	if _, err := core.SchemaFor(ns); err != nil {
		return nil, err
	}
	s, err := r.GetSettings(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Namespace(ns)
}

// Explain resolves req without the cache and reports where every field came from.
func (r *Resolver) Explain(ctx context.Context, req Request) (*Resolution, error) {
	start := time.Now()
	req = req.normalized()
	if err := req.validate(); err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, "settings.Explain", oteltrace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	res, err := r.resolve(ctx, req)
	if err != nil {
		r.finish(span, start, metrics.ResultError, err)
		return nil, err
	}
	res.fillDefaultSources()
	r.finish(span, start, metrics.ResultExplain, nil)
	return res, nil
}

// InvalidateCache retires every cached resolution of orgID. The version bump
// takes effect on every node sharing the cache; deleting the entries only
// reclaims space.
func (r *Resolver) InvalidateCache(ctx context.Context, orgID string) error {
	req := Request{OrganizationID: orgID}.normalized()
	if err := req.validate(); err != nil {
		return err
	}
	ctx, span := r.tracer.Start(ctx, "settings.InvalidateCache",
		oteltrace.WithAttributes(attribute.String("settings.org_id", req.OrganizationID)))
	defer span.End()

	version, err := r.query.Bump(ctx, req.OrganizationID)
	if err != nil {
		r.metrics.CacheError("bump", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if perr := r.query.Purge(ctx, orgKeyPrefix(req.OrganizationID)); perr != nil {
		r.metrics.CacheError("purge", perr)
		log.Warnw("failed to purge settings cache", "org_id", req.OrganizationID, "error", perr)
	}
	if err != nil {
		return fmt.Errorf("%w: invalidate settings of %s: %w", ErrCacheUnavailable, req.OrganizationID, err)
	}

	r.metrics.Invalidated()
	log.Infow("settings cache invalidated", "org_id", req.OrganizationID, "version", version)
	return nil
}

func requestAttributes(req Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("settings.org_id", req.OrganizationID)}
	if req.TeamID != "" {
		attrs = append(attrs, attribute.String("settings.team_id", req.TeamID))
	}
	if req.IntegrationID != "" {
		attrs = append(attrs, attribute.String("settings.integration_id", req.IntegrationID))
	}
	if req.UserID != "" {
		attrs = append(attrs, attribute.String("settings.user_id", req.UserID))
	}
	return attrs
}
