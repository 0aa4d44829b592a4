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
	settingsservice "github.com/lily-ai/lily/internal/engine/service/settings"
	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/http/middleware"
)

func (rt *Router) settingsRouter(r fiber.Router) {
	orgGroup := r.Group("/orgs/:orgId")
	{
		// resolved settings, all namespaces
		orgGroup.Get("/settings", rt.getSettings)

		// per-field source levels and rejected contributions, uncached
		orgGroup.Get("/settings-explain", rt.explainSettings)

		orgGroup.Post("/settings/invalidate", rt.invalidateSettings)

		orgGroup.Get("/settings/:namespace", rt.getNamespaceSettings)
	}

	settingsGroup := r.Group("/settings")
	{
		settingsGroup.Get("/schemas", rt.listSchemas)
		settingsGroup.Get("/:namespace/schema", rt.getSchema)
		settingsGroup.Post("/:namespace/validate", rt.validateSettings)
	}
}

func settingsRequest(c *fiber.Ctx) settingsservice.Request {
	return settingsservice.Request{
		OrganizationID: c.Params("orgId"),
		TeamID:         c.Query("teamId"),
		IntegrationID:  c.Query("integrationId"),
		UserID:         c.Query("userId"),
	}
}

func (rt *Router) getSettings(c *fiber.Ctx) error {
	settings, err := rt.Services.Settings.GetSettings(c.UserContext(), settingsRequest(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Locals(middleware.DETAIL, settings)
	return nil
}

func (rt *Router) getNamespaceSettings(c *fiber.Ctx) error {
	ns, err := core.ParseNamespace(c.Params("namespace"))
	if err != nil {
		return writeError(c, err)
	}
	v, err := rt.Services.Settings.GetNamespace(c.UserContext(), settingsRequest(c), ns)
	if err != nil {
		return writeError(c, err)
	}
	c.Locals(middleware.DETAIL, v)
	return nil
}

func (rt *Router) explainSettings(c *fiber.Ctx) error {
	res, err := rt.Services.Settings.Explain(c.UserContext(), settingsRequest(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Locals(middleware.DETAIL, res)
	return nil
}

func (rt *Router) invalidateSettings(c *fiber.Ctx) error {
	if err := rt.Services.Settings.InvalidateCache(c.UserContext(), c.Params("orgId")); err != nil {
		return writeError(c, err)
	}
	c.Locals(middleware.OPERATION, "invalidate settings cache")
	return nil
}

type schemaDetail struct {
	Schema   *core.Schema `json:"schema"`
	Defaults any          `json:"defaults"`
}

func (rt *Router) listSchemas(c *fiber.Ctx) error {
	out := make(map[core.Namespace]schemaDetail, len(core.AllNamespaces()))
	for _, ns := range core.AllNamespaces() {
		d, err := describe(ns)
		if err != nil {
			return writeError(c, err)
		}
		out[ns] = d
	}
	c.Locals(middleware.DETAIL, out)
	return nil
}

func (rt *Router) getSchema(c *fiber.Ctx) error {
	ns, err := core.ParseNamespace(c.Params("namespace"))
	if err != nil {
		return writeError(c, err)
	}
	d, err := describe(ns)
	if err != nil {
		return writeError(c, err)
	}
	c.Locals(middleware.DETAIL, d)
	return nil
}

func describe(ns core.Namespace) (schemaDetail, error) {
	schema, err := core.SchemaFor(ns)
	if err != nil {
		return schemaDetail{}, err
	}
	defaults, err := core.DefaultFor(ns)
	if err != nil {
		return schemaDetail{}, err
	}
	return schemaDetail{Schema: schema, Defaults: defaults}, nil
}

// validateSettings checks a partial without storing it and returns the
// defaulted result.
func (rt *Router) validateSettings(c *fiber.Ctx) error {
	ns, err := core.ParseNamespace(c.Params("namespace"))
	if err != nil {
		return writeError(c, err)
	}
	var partial core.Partial
	if err := c.BodyParser(&partial); err != nil {
		return http.WithRepErr(c.Status(fiber.StatusBadRequest), http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	v, err := core.Validate(ns, partial)
	if err != nil {
		return writeError(c, err)
	}
	c.Locals(middleware.DETAIL, v)
	return nil
}
