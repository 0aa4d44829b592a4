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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		kind EntityKind
		blob Blob
		ns   Namespace
		want Partial
	}{
		{
			name: "nested form",
			kind: KindOrganization,
			blob: Blob{"pricing": map[string]any{"minimum_job_price": 175.0}},
			ns:   NamespacePricing,
			want: Partial{"minimum_job_price": 175.0},
		},
		{
			name: "nested form of another namespace",
			kind: KindOrganization,
			blob: Blob{"pricing": map[string]any{"minimum_job_price": 175.0}},
			ns:   NamespaceWeather,
		},
		{
			name: "dotted form wins over nested",
			kind: KindOrganization,
			blob: Blob{
				"pricing":                   map[string]any{"minimum_job_price": 175.0, "currency": "CAD"},
				"pricing.minimum_job_price": 190.0,
			},
			ns:   NamespacePricing,
			want: Partial{"minimum_job_price": 190.0, "currency": "CAD"},
		},
		{
			name: "multi-dot keys descend into mappings",
			kind: KindOrganization,
			blob: Blob{
				"pricing":                     map[string]any{"base_rates": map[string]any{"brick": 0.3}},
				"pricing.base_rates.concrete": 0.18,
			},
			ns:   NamespacePricing,
			want: Partial{"base_rates": map[string]any{"brick": 0.3, "concrete": 0.18}},
		},
		{
			name: "shorter dotted paths apply before longer ones",
			kind: KindOrganization,
			blob: Blob{
				"pricing.base_rates.concrete": 0.18,
				"pricing.base_rates":          map[string]any{"roof": 0.5},
			},
			ns:   NamespacePricing,
			want: Partial{"base_rates": map[string]any{"roof": 0.5, "concrete": 0.18}},
		},
		{
			name: "user scheduling aliases",
			kind: KindUser,
			blob: userBlob(),
			ns:   NamespaceScheduling,
			want: Partial{
				"timezone":             "America/Chicago",
				"business_hours_start": "09:00",
				"working_days":         []any{"monday"},
				"max_jobs_per_day":     4.0,
			},
		},
		{
			name: "user dm booking alias",
			kind: KindUser,
			blob: userBlob(),
			ns:   NamespaceDMBooking,
			want: Partial{"auto_reply_enabled": false},
		},
		{
			name: "user currency alias",
			kind: KindUser,
			blob: userBlob(),
			ns:   NamespacePricing,
			want: Partial{"currency": "CAD"},
		},
		{
			name: "integration aliases",
			kind: KindIntegration,
			blob: Blob{"auto_reply": true, "reply_delay_seconds": 5.0, "booking_mode": "quote_only", "greeting": "Hi!"},
			ns:   NamespaceDMBooking,
			want: Partial{
				"auto_reply_enabled":     true,
				"response_delay_seconds": 5.0,
				"booking_mode":           "quote_only",
				"greeting_message":       "Hi!",
			},
		},
		{
			name: "aliases of other kinds do not apply",
			kind: KindOrganization,
			blob: Blob{"timezone": "America/Chicago"},
			ns:   NamespaceScheduling,
		},
		{
			name: "namespaced keys override aliases",
			kind: KindUser,
			blob: Blob{
				"work_start": "07:00",
				"scheduling": map[string]any{"business_hours_start": "09:00"},
			},
			ns:   NamespaceScheduling,
			want: Partial{"business_hours_start": "09:00"},
		},
		{name: "missing blob", kind: KindTeam, ns: NamespacePricing},
		{name: "scalar namespace", kind: KindTeam, blob: Blob{"pricing": "oops"}, ns: NamespacePricing},
		{name: "list namespace", kind: KindTeam, blob: Blob{"pricing": []any{1, 2}}, ns: NamespacePricing},
		{name: "empty dotted segments", kind: KindTeam, blob: Blob{"pricing.": 1, "pricing..x": 2}, ns: NamespacePricing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.kind, tt.blob, tt.ns)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func userBlob() Blob {
	return Blob{
		"timezone":           "America/Chicago",
		"work_start":         "09:00",
		"work_days":          []any{"monday"},
		"max_daily_jobs":     4.0,
		"dm_auto_reply":      false,
		"preferred_currency": "CAD",
	}
}

func TestExtract_DoesNotShareMemory(t *testing.T) {
	rates := map[string]any{"brick": 0.3}
	blob := Blob{
		"pricing":                     map[string]any{"base_rates": rates},
		"pricing.base_rates.concrete": 0.18,
	}
	got := Extract(KindOrganization, blob, NamespacePricing)
	got["base_rates"].(map[string]any)["brick"] = 9.0

	assert.Equal(t, map[string]any{"brick": 0.3}, rates)
	assert.Len(t, blob, 2)
}
