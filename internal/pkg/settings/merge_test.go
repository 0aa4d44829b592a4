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

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		ns     Namespace
		levels []Partial
		want   Partial
	}{
		{
			name: "non-overlapping overrides from every level",
			ns:   NamespacePricing,
			levels: []Partial{
				{"minimum_job_price": 175.0},
				{"soft_wash_multiplier": 1.4},
				{"rush_job_multiplier": 2.0},
				{"travel_fee_per_mile": 3.0},
				{"currency": "CAD"},
			},
			want: Partial{
				"minimum_job_price":    175.0,
				"soft_wash_multiplier": 1.4,
				"rush_job_multiplier":  2.0,
				"travel_fee_per_mile":  3.0,
				"currency":             "CAD",
			},
		},
		{
			name:   "later levels win",
			ns:     NamespacePricing,
			levels: []Partial{nil, {"minimum_job_price": 175.0}, nil, nil, {"minimum_job_price": 200.0}},
			want:   Partial{"minimum_job_price": 200.0},
		},
		{
			name: "mappings merge per key",
			ns:   NamespacePricing,
			levels: []Partial{
				{"base_rates": map[string]any{"concrete": 0.18, "brick": 0.25}},
				{"base_rates": map[string]any{"brick": 0.3}},
			},
			want: Partial{"base_rates": map[string]any{"concrete": 0.18, "brick": 0.3}},
		},
		{
			name: "lists are replaced",
			ns:   NamespaceScheduling,
			levels: []Partial{
				{"working_days": []any{"monday", "tuesday"}},
				{"working_days": []any{"saturday"}},
			},
			want: Partial{"working_days": []any{"saturday"}},
		},
		{
			name:   "nil values are skipped",
			ns:     NamespacePricing,
			levels: []Partial{{"minimum_job_price": 175.0}, {"minimum_job_price": nil}},
			want:   Partial{"minimum_job_price": 175.0},
		},
		{
			name:   "keys unknown to the namespace are dropped",
			ns:     NamespaceWeather,
			levels: []Partial{{"legacy": true, "enabled": false}},
			want:   Partial{"enabled": false},
		},
		{
			name: "no input",
			ns:   NamespaceDMBooking,
			want: Partial{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.ns, tt.levels)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	first := Partial{"base_rates": map[string]any{"concrete": 0.18}}
	second := Partial{"base_rates": map[string]any{"brick": 0.3}}
	got := Merge(NamespacePricing, []Partial{first, second})
	got["base_rates"].(map[string]any)["roof"] = 1.0

	assert.Equal(t, Partial{"base_rates": map[string]any{"concrete": 0.18}}, first)
	assert.Equal(t, Partial{"base_rates": map[string]any{"brick": 0.3}}, second)
}
