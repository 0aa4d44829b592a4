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

// WeatherSettings decides when outdoor jobs are rescheduled.
type WeatherSettings struct {
	Enabled                    bool    `json:"enabled"`
	MinTemperatureF            float64 `json:"min_temperature_f" validate:"gte=-40,lte=130"`
	MaxTemperatureF            float64 `json:"max_temperature_f" validate:"gte=-40,lte=130,gtfield=MinTemperatureF"`
	MaxWindSpeedMph            float64 `json:"max_wind_speed_mph" validate:"gte=0,lte=100"`
	MaxPrecipitationChance     int     `json:"max_precipitation_chance" validate:"gte=0,lte=100"`
	CheckHoursAhead            int     `json:"check_hours_ahead" validate:"gte=1,lte=168"`
	AutoReschedule             bool    `json:"auto_reschedule"`
	NotifyCustomerOnReschedule bool    `json:"notify_customer_on_reschedule"`
}

// DefaultWeather returns the weather defaults.
func DefaultWeather() WeatherSettings {
	return WeatherSettings{
		Enabled:                    true,
		MinTemperatureF:            40,
		MaxTemperatureF:            95,
		MaxWindSpeedMph:            20,
		MaxPrecipitationChance:     40,
		CheckHoursAhead:            24,
		AutoReschedule:             true,
		NotifyCustomerOnReschedule: true,
	}
}

var weatherSchema = newSchema(NamespaceWeather,
	Field{Name: "enabled", Kind: KindBoolean},
	Field{Name: "min_temperature_f", Kind: KindBoundedNumber},
	Field{Name: "max_temperature_f", Kind: KindBoundedNumber},
	Field{Name: "max_wind_speed_mph", Kind: KindBoundedNumber},
	Field{Name: "max_precipitation_chance", Kind: KindInteger},
	Field{Name: "check_hours_ahead", Kind: KindInteger},
	Field{Name: "auto_reschedule", Kind: KindBoolean},
	Field{Name: "notify_customer_on_reschedule", Kind: KindBoolean},
)
