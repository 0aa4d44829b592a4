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

// Package settings defines the typed settings namespaces and the pure
// functions that turn loosely structured entity blobs into validated,
// fully defaulted settings.
package settings

import (
	"fmt"
	"slices"
)

// Namespace is one of the independent settings domains.
type Namespace string

const (
	NamespacePricing    Namespace = "pricing"
	NamespaceWeather    Namespace = "weather"
	NamespaceDMBooking  Namespace = "dm_booking"
	NamespaceScheduling Namespace = "scheduling"
)

var allNamespaces = []Namespace{
	NamespacePricing,
	NamespaceWeather,
	NamespaceDMBooking,
	NamespaceScheduling,
}

// AllNamespaces returns every namespace in a stable order.
func AllNamespaces() []Namespace {
	return slices.Clone(allNamespaces)
}

// ParseNamespace converts s into a Namespace.
func ParseNamespace(s string) (Namespace, error) {
	ns := Namespace(s)
	if !slices.Contains(allNamespaces, ns) {
		return "", fmt.Errorf("%w: %q", ErrUnknownNamespace, s)
	}
	return ns, nil
}

func (ns Namespace) String() string {
	return string(ns)
}

// Partial holds zero or more namespace fields contributed by one entity.
type Partial = map[string]any

// Blob is an entity's raw settings document as decoded from JSON.
type Blob = map[string]any
