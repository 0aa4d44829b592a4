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
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/lily-ai/lily/internal/engine/service"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/http/middleware"
	"github.com/lily-ai/lily/pkg/metrics"
	"github.com/lily-ai/lily/pkg/trace"
	"github.com/lily-ai/lily/pkg/version"
)

type Router struct {
	Http     *http.Http
	Services *service.Services
	Metrics  *metrics.Server
}

func NewRouter(httpConf *http.Http, services *service.Services, metricsServer *metrics.Server) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Metrics:  metricsServer,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(rt.Http.FiberConfig("Lily"))

	app.Use(
		middleware.RequestMiddleware(),
		middleware.AccessLogMiddleware(rt.Http),
		middleware.ExceptionMiddleware,
		cors.New(),
		trace.FiberMiddleware(),
		middleware.UnifiedResponseMiddleware(),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	if rt.Http.ExposeMetrics && rt.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(rt.Metrics.Handler()))
	}

	api := app.Group(rt.Http.ContextPath)
	{
		rt.settingsRouter(api)
		rt.entityRouter(api)
	}

	// must stay after every route
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErr(c.Status(fiber.StatusNotFound), http.NotFound.Code, "request path not found", c.Path())
	})

	return app
}
