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
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/lily-ai/lily/pkg/log"
)

type fieldRef struct {
	ns    Namespace
	field string
}

// aliases map an entity's native flat keys onto namespace fields.
var aliases = map[EntityKind]map[string]fieldRef{
	KindUser: {
		"timezone":           {NamespaceScheduling, "timezone"},
		"work_start":         {NamespaceScheduling, "business_hours_start"},
		"work_end":           {NamespaceScheduling, "business_hours_end"},
		"work_days":          {NamespaceScheduling, "working_days"},
		"max_daily_jobs":     {NamespaceScheduling, "max_jobs_per_day"},
		"dm_auto_reply":      {NamespaceDMBooking, "auto_reply_enabled"},
		"preferred_currency": {NamespacePricing, "currency"},
	},
	KindIntegration: {
		"auto_reply":          {NamespaceDMBooking, "auto_reply_enabled"},
		"reply_delay_seconds": {NamespaceDMBooking, "response_delay_seconds"},
		"booking_mode":        {NamespaceDMBooking, "booking_mode"},
		"greeting":            {NamespaceDMBooking, "greeting_message"},
	},
}

// Extract returns the part of blob that belongs to ns. It reads, in rising
// priority, the entity's native alias keys, the nested object under the
// namespace name and dotted "ns.field" keys. The result is a deep copy.
// Extract never fails: a malformed blob yields an empty partial.
func Extract(kind EntityKind, blob Blob, ns Namespace) (out Partial) {
	out = Partial{}
	if len(blob) == 0 {
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warnw("settings extraction failed",
				"kind", kind,
				"namespace", ns,
				"error", fmt.Sprint(r),
			)
			out = Partial{}
		}
	}()

	for alias, ref := range aliases[kind] {
		if ref.ns != ns {
			continue
		}
		if v, ok := blob[alias]; ok {
			out[ref.field] = cloneValue(v)
		}
	}

	if raw, ok := blob[string(ns)]; ok && raw != nil {
		nested, ok := raw.(map[string]any)
		if !ok {
			log.Warnw("ignoring non-object settings namespace",
				"kind", kind,
				"namespace", ns,
				"type", fmt.Sprintf("%T", raw),
			)
		} else {
			for k, v := range nested {
				out[k] = cloneValue(v)
			}
		}
	}

	prefix := string(ns) + "."
	dotted := make([]string, 0)
	for k := range blob {
		if strings.HasPrefix(k, prefix) {
			dotted = append(dotted, k)
		}
	}
	// shorter paths first so "ns.a.b" refines rather than loses to "ns.a"
	sort.Slice(dotted, func(i, j int) bool {
		if len(dotted[i]) != len(dotted[j]) {
			return len(dotted[i]) < len(dotted[j])
		}
		return dotted[i] < dotted[j]
	})
	for _, k := range dotted {
		path := strings.Split(strings.TrimPrefix(k, prefix), ".")
		if slices.Contains(path, "") {
			continue
		}
		setPath(out, path, cloneValue(blob[k]))
	}
	return out
}

func setPath(m map[string]any, path []string, v any) {
	cur := m
	for _, p := range path[:len(path)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = v
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]float64:
		return maps.Clone(t)
	}
	return v
}
