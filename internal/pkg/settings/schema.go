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

// FieldKind is the semantic type of a namespace field.
type FieldKind string

const (
	KindNumber        FieldKind = "number"
	KindBoundedNumber FieldKind = "bounded_number"
	KindInteger       FieldKind = "integer"
	KindString        FieldKind = "string"
	KindEnum          FieldKind = "enum"
	KindEnumList      FieldKind = "enum_list"
	KindEnumMap       FieldKind = "enum_map"
	KindBoolean       FieldKind = "boolean"
	KindClockTime     FieldKind = "clock_time"
	KindTimezone      FieldKind = "timezone"
)

// Field describes one field of a namespace. Enum holds the allowed members
// for enum kinds; for enum_map it holds the allowed keys.
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
	Enum []string  `json:"enum,omitempty"`
}

// Schema is the ordered field table of a namespace.
type Schema struct {
	Namespace Namespace `json:"namespace"`
	Fields    []Field   `json:"fields"`
	index     map[string]int
}

func newSchema(ns Namespace, fields ...Field) *Schema {
	s := &Schema{Namespace: ns, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		s.index[f.Name] = i
	}
	return s
}

// Lookup returns the field called name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

var schemas = map[Namespace]*Schema{
	NamespacePricing:    pricingSchema,
	NamespaceWeather:    weatherSchema,
	NamespaceDMBooking:  dmBookingSchema,
	NamespaceScheduling: schedulingSchema,
}

// SchemaFor returns the schema of ns.
func SchemaFor(ns Namespace) (*Schema, error) {
	s, ok := schemas[ns]
	if !ok {
		return nil, ErrUnknownNamespace
	}
	return s, nil
}
