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
)

// ResolvedSettings is one fully defaulted, valid struct per namespace.
type ResolvedSettings struct {
	Pricing    PricingSettings    `json:"pricing"`
	Weather    WeatherSettings    `json:"weather"`
	DMBooking  DMBookingSettings  `json:"dm_booking"`
	Scheduling SchedulingSettings `json:"scheduling"`
}

// Defaults returns settings with every namespace at its defaults.
func Defaults() *ResolvedSettings {
	return &ResolvedSettings{
		Pricing:    DefaultPricing(),
		Weather:    DefaultWeather(),
		DMBooking:  DefaultDMBooking(),
		Scheduling: DefaultScheduling(),
	}
}

// Clone returns a copy that shares no maps or slices with r.
func (r *ResolvedSettings) Clone() *ResolvedSettings {
	if r == nil {
		return nil
	}
	out := *r
	out.Pricing.BaseRates = maps.Clone(r.Pricing.BaseRates)
	out.DMBooking.AllowedChannels = slices.Clone(r.DMBooking.AllowedChannels)
	out.Scheduling.WorkingDays = slices.Clone(r.Scheduling.WorkingDays)
	return &out
}

// DefaultFor returns the default struct of ns.
func DefaultFor(ns Namespace) (any, error) {
	switch ns {
	case NamespacePricing:
		return DefaultPricing(), nil
	case NamespaceWeather:
		return DefaultWeather(), nil
	case NamespaceDMBooking:
		return DefaultDMBooking(), nil
	case NamespaceScheduling:
		return DefaultScheduling(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNamespace, ns)
}

// Namespace returns the struct held for ns.
func (r *ResolvedSettings) Namespace(ns Namespace) (any, error) {
	switch ns {
	case NamespacePricing:
		return r.Pricing, nil
	case NamespaceWeather:
		return r.Weather, nil
	case NamespaceDMBooking:
		return r.DMBooking, nil
	case NamespaceScheduling:
		return r.Scheduling, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNamespace, ns)
}

// SetNamespace stores v, which must be the struct type of ns.
func (r *ResolvedSettings) SetNamespace(ns Namespace, v any) error {
	switch val := v.(type) {
	case PricingSettings:
		if ns == NamespacePricing {
			r.Pricing = val
			return nil
		}
	case WeatherSettings:
		if ns == NamespaceWeather {
			r.Weather = val
			return nil
		}
	case DMBookingSettings:
		if ns == NamespaceDMBooking {
			r.DMBooking = val
			return nil
		}
	case SchedulingSettings:
		if ns == NamespaceScheduling {
			r.Scheduling = val
			return nil
		}
	}
	return fmt.Errorf("cannot store %T as %s settings", v, ns)
}
