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

// Weekdays are the accepted scheduling.working_days members.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// SchedulingSettings shapes the booking calendar. Times are HH:MM in Timezone.
type SchedulingSettings struct {
	Timezone            string   `json:"timezone" validate:"required,timezone"`
	BusinessHoursStart  string   `json:"business_hours_start" validate:"clock"`
	BusinessHoursEnd    string   `json:"business_hours_end" validate:"clock"`
	WorkingDays         []string `json:"working_days" validate:"min=1,unique,dive,weekday"`
	SlotDurationMinutes int      `json:"slot_duration_minutes" validate:"gte=15,lte=480"`
	BufferMinutes       int      `json:"buffer_minutes" validate:"gte=0,lte=240"`
	MaxJobsPerDay       int      `json:"max_jobs_per_day" validate:"gte=1,lte=50"`
	AdvanceBookingDays  int      `json:"advance_booking_days" validate:"gte=1,lte=365"`
	MinNoticeHours      int      `json:"min_notice_hours" validate:"gte=0,lte=720"`
}

// DefaultScheduling returns the scheduling defaults.
func DefaultScheduling() SchedulingSettings {
	return SchedulingSettings{
		Timezone:            "America/New_York",
		BusinessHoursStart:  "08:00",
		BusinessHoursEnd:    "17:00",
		WorkingDays:         []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		SlotDurationMinutes: 60,
		BufferMinutes:       30,
		MaxJobsPerDay:       6,
		AdvanceBookingDays:  60,
		MinNoticeHours:      24,
	}
}

var schedulingSchema = newSchema(NamespaceScheduling,
	Field{Name: "timezone", Kind: KindTimezone},
	Field{Name: "business_hours_start", Kind: KindClockTime},
	Field{Name: "business_hours_end", Kind: KindClockTime},
	Field{Name: "working_days", Kind: KindEnumList, Enum: Weekdays},
	Field{Name: "slot_duration_minutes", Kind: KindInteger},
	Field{Name: "buffer_minutes", Kind: KindInteger},
	Field{Name: "max_jobs_per_day", Kind: KindInteger},
	Field{Name: "advance_booking_days", Kind: KindInteger},
	Field{Name: "min_notice_hours", Kind: KindInteger},
)
