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

package router

import (
	"github.com/gofiber/fiber/v2"
	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/http/middleware"
)

func (rt *Router) entityRouter(r fiber.Router) {
	entityGroup := r.Group("/entities/:kind/:entityId")
	{
		// replaces the blob; the owning organizations are invalidated
		entityGroup.Put("/settings", rt.updateEntitySettings)
	}
}

type updateEntitySettingsResp struct {
	Entity      core.EntityRef `json:"entity"`
	Invalidated []string       `json:"invalidated"`
}

func (rt *Router) updateEntitySettings(c *fiber.Ctx) error {
	kind, err := core.ParseEntityKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	var blob core.Blob
	if err := c.BodyParser(&blob); err != nil {
		return http.WithRepErr(c.Status(fiber.StatusBadRequest), http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if blob == nil {
		blob = core.Blob{}
	}

	ref := core.EntityRef{Kind: kind, ID: c.Params("entityId")}
	orgs, err := rt.Services.Entities.UpdateEntitySettings(c.UserContext(), ref, blob)
	if err != nil {
		return writeError(c, err)
	}
	if orgs == nil {
		orgs = []string{}
	}
	c.Locals(middleware.DETAIL, updateEntitySettingsResp{Entity: ref, Invalidated: orgs})
	return nil
}
