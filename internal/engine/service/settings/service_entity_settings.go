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
	"slices"
	"strings"
	"sync"

	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/log"
	"golang.org/x/sync/errgroup"
)

const invalidateConcurrency = 8

// EntityWriter persists raw settings blobs.
type EntityWriter interface {
	GetEntityOrganization(ctx context.Context, ref core.EntityRef) (string, error)
	UpdateEntitySettings(ctx context.Context, ref core.EntityRef, blob core.Blob) error
	ListOrganizationsByPlan(ctx context.Context, planID string) ([]string, error)
}

// Invalidator retires cached resolutions of an organization.
type Invalidator interface {
	InvalidateCache(ctx context.Context, orgID string) error
}

// EntitySettingsService is the write path for entity blobs. Every successful
// write invalidates the organizations it affects.
type EntitySettingsService struct {
	store       EntityWriter
	invalidator Invalidator
}

func NewEntitySettingsService(store EntityWriter, invalidator Invalidator) *EntitySettingsService {
	return &EntitySettingsService{store: store, invalidator: invalidator}
}

// ValidateBlob checks every namespace the blob contributes to for kind. The
// returned error joins one *core.ValidationError per failing namespace.
func ValidateBlob(kind core.EntityKind, blob core.Blob) error {
	var errs []error
	for _, ns := range core.AllNamespaces() {
		part := core.Extract(kind, blob, ns)
		if len(part) == 0 {
			continue
		}
		if _, err := core.Validate(ns, part); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UpdateEntitySettings validates and stores blob for ref and returns the
// organizations whose cache was invalidated.
func (s *EntitySettingsService) UpdateEntitySettings(ctx context.Context, ref core.EntityRef, blob core.Blob) ([]string, error) {
	if ref.Kind.Precedence() < 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownEntityKind, ref.Kind)
	}
	ref.ID = strings.TrimSpace(ref.ID)
	if ref.ID == "" || !validID(ref.ID) {
		return nil, fmt.Errorf("%w: %s id %q", ErrInvalidRequest, ref.Kind, ref.ID)
	}
	if err := ValidateBlob(ref.Kind, blob); err != nil {
		return nil, err
	}

	var orgs []string
	if ref.Kind != core.KindPlan {
		org, err := s.store.GetEntityOrganization(ctx, ref)
		if err != nil {
			return nil, err
		}
		orgs = []string{org}
	}

	if err := s.store.UpdateEntitySettings(ctx, ref, blob); err != nil {
		log.Errorw("failed to update entity settings", "entity", ref.String(), "error", err)
		return nil, err
	}
	log.Infow("entity settings updated", "entity", ref.String())

	if ref.Kind == core.KindPlan {
		var err error
		if orgs, err = s.store.ListOrganizationsByPlan(ctx, ref.ID); err != nil {
			// The write stands; entries of the plan's organizations expire with their TTL.
			log.Errorw("failed to list organizations of plan, cache not invalidated", "plan_id", ref.ID, "error", err)
			return nil, nil
		}
	}
	return s.invalidate(ctx, orgs), nil
}

// invalidate is best effort; failures are logged and the org is left out of the result.
func (s *EntitySettingsService) invalidate(ctx context.Context, orgs []string) []string {
	var (
		mu   sync.Mutex
		done = make([]string, 0, len(orgs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(invalidateConcurrency)
	for _, org := range orgs {
		g.Go(func() error {
			if err := s.invalidator.InvalidateCache(gctx, org); err != nil {
				log.Warnw("failed to invalidate settings cache after write", "org_id", org, "error", err)
				return nil
			}
			mu.Lock()
			done = append(done, org)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	slices.Sort(done)
	return done
}
