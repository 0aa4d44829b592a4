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
	"errors"
	"fmt"
	"strings"
	"unicode"

	core "github.com/lily-ai/lily/internal/pkg/settings"
)

var (
	// ErrInvalidOrganization is returned when the organization id is blank or malformed.
	ErrInvalidOrganization = errors.New("invalid organization id")
	// ErrOrganizationNotFound is returned when the entity store has no such organization.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrInvalidRequest is returned for a malformed optional id.
	ErrInvalidRequest = errors.New("invalid settings request")
	// ErrCacheUnavailable is returned when an invalidation could not reach the cache.
	ErrCacheUnavailable = errors.New("settings cache unavailable")
)

const (
	maxIDLength = 128

	cacheKeyPrefix   = "lily:settings:v1:"
	versionKeyPrefix = "lily:settings:ver:"
	absentID         = "-"
)

// Request identifies the entities a resolution applies to. Only
// OrganizationID is required.
type Request struct {
	OrganizationID string `json:"organizationId"`
	TeamID         string `json:"teamId,omitempty"`
	IntegrationID  string `json:"integrationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

func (r Request) normalized() Request {
	return Request{
		OrganizationID: strings.TrimSpace(r.OrganizationID),
		TeamID:         strings.TrimSpace(r.TeamID),
		IntegrationID:  strings.TrimSpace(r.IntegrationID),
		UserID:         strings.TrimSpace(r.UserID),
	}
}

func (r Request) validate() error {
	if r.OrganizationID == "" || !validID(r.OrganizationID) {
		return fmt.Errorf("%w: %q", ErrInvalidOrganization, r.OrganizationID)
	}
	for _, opt := range []struct{ name, id string }{
		{"team", r.TeamID},
		{"integration", r.IntegrationID},
		{"user", r.UserID},
	} {
		if opt.id != "" && !validID(opt.id) {
			return fmt.Errorf("%w: %s id %q", ErrInvalidRequest, opt.name, opt.id)
		}
	}
	return nil
}

// refs lists the applicable entities, lowest precedence first.
func (r Request) refs(planID string) []core.EntityRef {
	ids := map[core.EntityKind]string{
		core.KindPlan:         planID,
		core.KindOrganization: r.OrganizationID,
		core.KindTeam:         r.TeamID,
		core.KindIntegration:  r.IntegrationID,
		core.KindUser:         r.UserID,
	}
	refs := make([]core.EntityRef, 0, len(ids))
	for _, kind := range core.EntityKinds() {
		if id := ids[kind]; id != "" {
			refs = append(refs, core.EntityRef{Kind: kind, ID: id})
		}
	}
	return refs
}

// validID rejects ids that would corrupt a cache key or glob pattern.
func validID(id string) bool {
	if id == absentID || len(id) > maxIDLength {
		return false
	}
	for _, c := range id {
		if unicode.IsSpace(c) || unicode.IsControl(c) || strings.ContainsRune(":*?[]\\", c) {
			return false
		}
	}
	return true
}

func orDash(id string) string {
	if id == "" {
		return absentID
	}
	return id
}

func cacheKey(r Request) string {
	return cacheKeyPrefix + r.OrganizationID + ":" + orDash(r.TeamID) + ":" + orDash(r.IntegrationID) + ":" + orDash(r.UserID)
}

// orgKeyPrefix ends with a separator so org-1 does not match org-10.
func orgKeyPrefix(orgID string) string {
	return cacheKeyPrefix + orgID + ":"
}

func versionKey(orgID string) string {
	return versionKeyPrefix + orgID
}
