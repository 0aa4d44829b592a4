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

	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// SourceDefault marks a field no level overrode.
const SourceDefault = "default"

// Resolution is a resolved settings snapshot with its provenance.
type Resolution struct {
	Request  Request                `json:"request"`
	PlanID   string                 `json:"planId,omitempty"`
	Settings *core.ResolvedSettings `json:"settings"`
	// Sources maps each overridden field (map entries as field.key) to the
	// level that supplied its value.
	Sources    map[core.Namespace]map[string]string `json:"sources"`
	Rejected   []Rejection                          `json:"rejected,omitempty"`
	LoadErrors []LoadError                          `json:"loadErrors,omitempty"`
}

// Rejection is a level contribution discarded because it made the namespace invalid.
type Rejection struct {
	Namespace core.Namespace    `json:"namespace"`
	Level     core.EntityKind   `json:"level"`
	EntityID  string            `json:"entityId"`
	Fields    []core.FieldError `json:"fields"`
}

// LoadError is a level whose blob could not be read and was treated as empty.
type LoadError struct {
	Level    core.EntityKind `json:"level"`
	EntityID string          `json:"entityId,omitempty"`
	Error    string          `json:"error"`
}

type levelInput struct {
	ref  core.EntityRef
	blob core.Blob
}

// resolve runs Load, ExtractAndMerge and Validate for req.
func (r *Resolver) resolve(ctx context.Context, req Request) (*Resolution, error) {
	res := &Resolution{
		Request:  req,
		Settings: core.Defaults(),
		Sources:  make(map[core.Namespace]map[string]string),
	}
	levels, err := r.load(ctx, req, res)
	if err != nil {
		return nil, err
	}
	for _, ns := range core.AllNamespaces() {
		r.fold(ns, levels, res)
	}
	return res, nil
}

func (r *Resolver) load(ctx context.Context, req Request, res *Resolution) ([]levelInput, error) {
	ctx, span := r.tracer.Start(ctx, "settings.load")
	defer span.End()

	org := req.OrganizationID
	planID, err := r.store.GetOrganizationPlan(ctx, org)
	switch {
	case err == nil:
		res.PlanID = planID
	case errors.Is(err, core.ErrEntityNotFound):
		return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, org)
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		r.loadFailed(res, core.EntityRef{Kind: core.KindPlan}, err)
	}

	refs := req.refs(planID)
	blobs := make([]core.Blob, len(refs))
	errs := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.conf.MaxConcurrentLoads)
	for i, ref := range refs {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					errs[i] = fmt.Errorf("panic loading %s: %v", ref, p)
				}
			}()
			eb, err := r.store.GetEntitySettings(gctx, ref)
			if err == nil && ref.Kind.OrgScoped() && eb.OrgID != org {
				err = fmt.Errorf("%w: %s is owned by %q", core.ErrForeignEntity, ref, eb.OrgID)
			}
			blobs[i], errs[i] = eb.Blob, err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	levels := make([]levelInput, 0, len(refs))
	for i, ref := range refs {
		switch err := errs[i]; {
		case err == nil:
			levels = append(levels, levelInput{ref: ref, blob: blobs[i]})
		case errors.Is(err, core.ErrEntityNotFound):
			log.Debugw("settings entity not found, skipping level",
				"org_id", org, "level", ref.Kind, "entity_id", ref.ID)
		case errors.Is(err, core.ErrForeignEntity):
			log.Warnw("settings entity outside the organization, skipping level",
				"org_id", org, "level", ref.Kind, "entity_id", ref.ID)
			res.LoadErrors = append(res.LoadErrors, LoadError{Level: ref.Kind, EntityID: ref.ID, Error: core.ErrForeignEntity.Error()})
		default:
			r.loadFailed(res, ref, err)
		}
	}
	span.SetAttributes(attribute.Int("settings.levels", len(levels)))
	return levels, nil
}

func (r *Resolver) loadFailed(res *Resolution, ref core.EntityRef, err error) {
	log.Warnw("failed to load entity settings, using defaults for level",
		"org_id", res.Request.OrganizationID,
		"level", ref.Kind,
		"entity_id", ref.ID,
		"error", err,
	)
	r.metrics.EntityLoadError(string(ref.Kind))
	res.LoadErrors = append(res.LoadErrors, LoadError{Level: ref.Kind, EntityID: ref.ID, Error: err.Error()})
}

// fold merges the levels of ns in precedence order, validating after every
// level. A level whose contribution makes the namespace invalid is dropped
// and the fold continues from the last valid state.
func (r *Resolver) fold(ns core.Namespace, levels []levelInput, res *Resolution) {
	sources := make(map[string]string)
	res.Sources[ns] = sources
	schema, _ := core.SchemaFor(ns)

	acc := core.Partial{}
	for _, lv := range levels {
		part := core.Extract(lv.ref.Kind, lv.blob, ns)
		if len(part) == 0 {
			continue
		}
		candidate := core.Merge(ns, []core.Partial{acc, part})
		valid, err := core.Validate(ns, candidate)
		if err != nil {
			r.reject(ns, lv.ref, err, res)
			continue
		}
		acc = candidate
		if err := res.Settings.SetNamespace(ns, valid); err != nil {
			log.Errorw("failed to store validated settings", "namespace", ns, "error", err)
			continue
		}
		markSources(sources, schema, part, string(lv.ref.Kind))
	}
}

func (r *Resolver) reject(ns core.Namespace, ref core.EntityRef, err error, res *Resolution) {
	log.Warnw("discarding invalid settings level",
		"org_id", res.Request.OrganizationID,
		"namespace", ns,
		"level", ref.Kind,
		"entity_id", ref.ID,
		"error", err,
	)
	r.metrics.LevelRejected(string(ns), string(ref.Kind))

	rej := Rejection{Namespace: ns, Level: ref.Kind, EntityID: ref.ID}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		rej.Fields = verr.Fields
	} else {
		rej.Fields = []core.FieldError{{Reason: err.Error()}}
	}
	res.Rejected = append(res.Rejected, rej)
}

// markSources records level as the source of every schema field in part.
// Keys the validator ignores or drops are not attributed.
func markSources(sources map[string]string, schema *core.Schema, part core.Partial, level string) {
	if schema == nil {
		return
	}
	for name, v := range part {
		field, ok := schema.Lookup(name)
		if !ok || v == nil {
			continue
		}
		if m, ok := v.(map[string]any); ok && field.Kind == core.KindEnumMap {
			for k := range m {
				if slices.Contains(field.Enum, k) {
					sources[name+"."+k] = level
				}
			}
			continue
		}
		sources[name] = level
	}
}

// fillDefaultSources marks every schema field without an override as default.
func (res *Resolution) fillDefaultSources() {
	for ns, sources := range res.Sources {
		schema, err := core.SchemaFor(ns)
		if err != nil {
			continue
		}
		for _, f := range schema.Fields {
			if _, ok := sources[f.Name]; ok || hasEntry(sources, f.Name) {
				continue
			}
			sources[f.Name] = SourceDefault
		}
	}
}

func hasEntry(sources map[string]string, field string) bool {
	prefix := field + "."
	for k := range sources {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
