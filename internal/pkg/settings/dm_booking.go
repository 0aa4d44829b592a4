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

// BookingModes are the accepted dm_booking.booking_mode values.
var BookingModes = []string{"manual_approval", "auto_confirm", "quote_only"}

// Channels are the social channels a DM booking can arrive on.
var Channels = []string{"facebook", "instagram", "twitter", "linkedin", "tiktok", "google_business"}

const defaultGreeting = "Thanks for reaching out! Send us a few details about your property and we'll get you a quote."

// DMBookingSettings controls automated replies and bookings from social DMs.
type DMBookingSettings struct {
	Enabled              bool     `json:"enabled"`
	AutoReplyEnabled     bool     `json:"auto_reply_enabled"`
	BookingMode          string   `json:"booking_mode" validate:"booking_mode"`
	AllowedChannels      []string `json:"allowed_channels" validate:"min=1,unique,dive,channel"`
	ResponseDelaySeconds int      `json:"response_delay_seconds" validate:"gte=0,lte=3600"`
	QuoteExpiryHours     int      `json:"quote_expiry_hours" validate:"gte=1,lte=720"`
	RequirePhotos        bool     `json:"require_photos"`
	DepositPercent       int      `json:"deposit_percent" validate:"gte=0,lte=100"`
	GreetingMessage      string   `json:"greeting_message" validate:"min=1,max=1000"`
}

// DefaultDMBooking returns the dm_booking defaults.
func DefaultDMBooking() DMBookingSettings {
	return DMBookingSettings{
		Enabled:              false,
		AutoReplyEnabled:     true,
		BookingMode:          "manual_approval",
		AllowedChannels:      []string{"facebook", "instagram"},
		ResponseDelaySeconds: 30,
		QuoteExpiryHours:     72,
		RequirePhotos:        false,
		DepositPercent:       0,
		GreetingMessage:      defaultGreeting,
	}
}

var dmBookingSchema = newSchema(NamespaceDMBooking,
	Field{Name: "enabled", Kind: KindBoolean},
	Field{Name: "auto_reply_enabled", Kind: KindBoolean},
	Field{Name: "booking_mode", Kind: KindEnum, Enum: BookingModes},
	Field{Name: "allowed_channels", Kind: KindEnumList, Enum: Channels},
	Field{Name: "response_delay_seconds", Kind: KindInteger},
	Field{Name: "quote_expiry_hours", Kind: KindInteger},
	Field{Name: "require_photos", Kind: KindBoolean},
	Field{Name: "deposit_percent", Kind: KindInteger},
	Field{Name: "greeting_message", Kind: KindString},
)
