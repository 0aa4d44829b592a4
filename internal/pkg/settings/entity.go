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
	"slices"
)

// EntityKind is a settings level. Kinds are ordered by precedence.
type EntityKind string

const (
	KindPlan         EntityKind = "plan"
	KindOrganization EntityKind = "organization"
	KindTeam         EntityKind = "team"
	KindIntegration  EntityKind = "integration"
	KindUser         EntityKind = "user"
)

var entityKinds = []EntityKind{
	KindPlan,
	KindOrganization,
	KindTeam,
	KindIntegration,
	KindUser,
}

// EntityKinds returns every kind, lowest precedence first.
func EntityKinds() []EntityKind {
	return slices.Clone(entityKinds)
}

// Precedence returns the position of k in the merge order, or -1 if k is unknown.
func (k EntityKind) Precedence() int {
	return slices.Index(entityKinds, k)
}

func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind converts s into an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if k.Precedence() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, s)
	}
	return k, nil
}

// OrgScoped reports whether entities of kind k belong to a single organization.
func (k EntityKind) OrgScoped() bool {
	return k == KindTeam || k == KindIntegration || k == KindUser
}

// EntityBlob is the raw settings of one entity and the organization owning
// it. OrgID is empty for plans.
type EntityBlob struct {
	OrgID string
	Blob  Blob
}

// EntityRef identifies one entity instance.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

func (r EntityRef) String() string {
	return string(r.Kind) + "/" + r.ID
}
