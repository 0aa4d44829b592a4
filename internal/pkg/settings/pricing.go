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

// SurfaceTypes are the keys accepted in pricing.base_rates.
var SurfaceTypes = []string{
	"concrete",
	"brick",
	"vinyl_siding",
	"wood_deck",
	"composite_deck",
	"roof",
	"stucco",
	"pavers",
}

// Currencies are the accepted pricing.currency values.
var Currencies = []string{"USD", "CAD", "GBP", "EUR", "AUD"}

// PricingSettings controls how quotes are computed. Rates are per square foot.
type PricingSettings struct {
	BaseRates             map[string]float64 `json:"base_rates" validate:"dive,keys,surface,endkeys,gt=0,lte=50"`
	MinimumJobPrice       float64            `json:"minimum_job_price" validate:"gte=0,lte=100000"`
	SoftWashMultiplier    float64            `json:"soft_wash_multiplier" validate:"gte=1,lte=5"`
	RushJobMultiplier     float64            `json:"rush_job_multiplier" validate:"gte=1,lte=5"`
	TravelFeePerMile      float64            `json:"travel_fee_per_mile" validate:"gte=0,lte=100"`
	FreeTravelRadiusMiles float64            `json:"free_travel_radius_miles" validate:"gte=0,lte=500"`
	TaxRatePercent        float64            `json:"tax_rate_percent" validate:"gte=0,lte=30"`
	IncludeTaxInQuote     bool               `json:"include_tax_in_quote"`
	Currency              string             `json:"currency" validate:"currency"`
}

// DefaultPricing returns the pricing defaults.
func DefaultPricing() PricingSettings {
	return PricingSettings{
		BaseRates: map[string]float64{
			"concrete":       0.15,
			"brick":          0.20,
			"vinyl_siding":   0.12,
			"wood_deck":      0.35,
			"composite_deck": 0.30,
			"roof":           0.45,
			"stucco":         0.22,
			"pavers":         0.25,
		},
		MinimumJobPrice:       150,
		SoftWashMultiplier:    1.3,
		RushJobMultiplier:     1.5,
		TravelFeePerMile:      2.5,
		FreeTravelRadiusMiles: 15,
		TaxRatePercent:        0,
		IncludeTaxInQuote:     false,
		Currency:              "USD",
	}
}

var pricingSchema = newSchema(NamespacePricing,
	Field{Name: "base_rates", Kind: KindEnumMap, Enum: SurfaceTypes},
	Field{Name: "minimum_job_price", Kind: KindBoundedNumber},
	Field{Name: "soft_wash_multiplier", Kind: KindBoundedNumber},
	Field{Name: "rush_job_multiplier", Kind: KindBoundedNumber},
	Field{Name: "travel_fee_per_mile", Kind: KindBoundedNumber},
	Field{Name: "free_travel_radius_miles", Kind: KindBoundedNumber},
	Field{Name: "tax_rate_percent", Kind: KindBoundedNumber},
	Field{Name: "include_tax_in_quote", Kind: KindBoolean},
	Field{Name: "currency", Kind: KindEnum, Enum: Currencies},
)
