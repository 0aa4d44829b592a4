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
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"

	// timezone validation must not depend on the host zoneinfo
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var (
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

	enumSets = map[string][]string{
		"surface":      SurfaceTypes,
		"currency":     Currencies,
		"booking_mode": BookingModes,
		"channel":      Channels,
		"weekday":      Weekdays,
	}

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, members := range enumSets {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return slices.Contains(members, fl.Field().String())
		})
	}
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(validateBusinessHours, SchedulingSettings{})
	return v
}

// validateBusinessHours requires the working day to end after it starts.
// Zero padded HH:MM values order correctly as strings.
func validateBusinessHours(sl validator.StructLevel) {
	s := sl.Current().Interface().(SchedulingSettings)
	if !clockPattern.MatchString(s.BusinessHoursStart) || !clockPattern.MatchString(s.BusinessHoursEnd) {
		return
	}
	if s.BusinessHoursEnd <= s.BusinessHoursStart {
		sl.ReportError(s.BusinessHoursEnd, "business_hours_end", "BusinessHoursEnd", "after_start", "")
	}
}

// Validate applies partial over the defaults of ns and validates the result.
// It returns the namespace struct by value. Unknown keys and nil values are
// ignored; unknown keys inside base_rates are dropped.
func Validate(ns Namespace, partial Partial) (any, error) {
	switch ns {
	case NamespacePricing:
		return ValidatePricing(partial)
	case NamespaceWeather:
		return ValidateWeather(partial)
	case NamespaceDMBooking:
		return ValidateDMBooking(partial)
	case NamespaceScheduling:
		return ValidateScheduling(partial)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNamespace, ns)
}

func ValidatePricing(partial Partial) (PricingSettings, error) {
	out := DefaultPricing()
	return out, validateInto(pricingSchema, partial, &out)
}

func ValidateWeather(partial Partial) (WeatherSettings, error) {
	out := DefaultWeather()
	return out, validateInto(weatherSchema, partial, &out)
}

func ValidateDMBooking(partial Partial) (DMBookingSettings, error) {
	out := DefaultDMBooking()
	return out, validateInto(dmBookingSchema, partial, &out)
}

func ValidateScheduling(partial Partial) (SchedulingSettings, error) {
	out := DefaultScheduling()
	return out, validateInto(schedulingSchema, partial, &out)
}

func validateInto(schema *Schema, partial Partial, target any) error {
	var fieldErrs []FieldError
	rejected := make(map[string]bool)

	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		field, ok := schema.Lookup(name)
		if !ok || partial[name] == nil {
			continue
		}
		value, reason := normalize(field, partial[name])
		if reason == "" {
			if err := decodeField(target, name, value, field.Kind == KindEnumList); err != nil {
				reason = "has an invalid type"
			}
		}
		if reason != "" {
			fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: reason})
			rejected[name] = true
		}
	}

	if err := validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			name := fe.Field()
			if rejected[rootField(name)] {
				continue
			}
			fieldErrs = append(fieldErrs, FieldError{Field: name, Reason: reasonFor(fe)})
		}
	}

	if len(fieldErrs) == 0 {
		return nil
	}
	return &ValidationError{Namespace: schema.Namespace, Fields: fieldErrs}
}

// decodeField writes value into the field tagged name. Lists are replaced;
// maps are merged into the existing (default) map.
func decodeField(target any, name string, value any, replace bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     target,
		TagName:    "json",
		ZeroFields: replace,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any{name: value})
}

// normalize checks the JSON shape of value against the field kind and
// converts it to the Go type the struct expects. A non-empty reason means
// the value was rejected.
func normalize(field Field, value any) (any, string) {
	switch field.Kind {
	case KindNumber, KindBoundedNumber:
		n, ok := asNumber(value)
		if !ok {
			return nil, "must be a number"
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, "must be a finite number"
		}
		return n, ""
	case KindInteger:
		n, ok := asNumber(value)
		if !ok || n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, "must be an integer"
		}
		return int64(n), ""
	case KindString, KindEnum, KindClockTime, KindTimezone:
		s, ok := value.(string)
		if !ok {
			return nil, "must be a string"
		}
		return s, ""
	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, "must be a boolean"
		}
		return b, ""
	case KindEnumList:
		return asStringList(value)
	case KindEnumMap:
		return asRateMap(field, value)
	}
	return nil, "has an unsupported kind"
}

func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asStringList(value any) (any, string) {
	switch list := value.(type) {
	case []string:
		return slices.Clone(list), ""
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, "must be a list of strings"
			}
			out = append(out, s)
		}
		return out, ""
	}
	return nil, "must be a list of strings"
}

// asRateMap keeps the known keys of a mapping field. Unknown keys are dropped.
func asRateMap(field Field, value any) (any, string) {
	m, ok := value.(map[string]any)
	if !ok {
		if typed, ok := value.(map[string]float64); ok {
			m = make(map[string]any, len(typed))
			for k, v := range typed {
				m[k] = v
			}
		} else {
			return nil, "must be a mapping"
		}
	}

	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !slices.Contains(field.Enum, k) || v == nil {
			continue
		}
		n, ok := asNumber(v)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Sprintf("value for %q must be a number", k)
		}
		out[k] = n
	}
	return out, ""
}

func rootField(name string) string {
	root, _, _ := strings.Cut(name, "[")
	return root
}

func reasonFor(fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + p
	case "lte":
		return "must be at most " + p
	case "gt":
		return "must be greater than " + p
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + p + " item(s)"
		}
		return "must be at least " + p + " characters"
	case "max":
		return "must be at most " + p + " characters"
	case "unique":
		return "must not contain duplicates"
	case "gtfield":
		return "must be greater than " + snakeCase(p)
	case "clock":
		return "must be a 24-hour HH:MM time"
	case "timezone":
		return "must be an IANA time zone name"
	case "after_start":
		return "must be after business_hours_start"
	}
	if members, ok := enumSets[fe.Tag()]; ok {
		return "must be one of " + strings.Join(members, ", ")
	}
	return "failed " + fe.Tag()
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rune(s[i-1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					b.WriteByte('_')
				}
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
