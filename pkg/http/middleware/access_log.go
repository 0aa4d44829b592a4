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

package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/log"
)

// AccessLogMiddleware logs one structured line per request. Probe paths are skipped.
func AccessLogMiddleware(httpConfig *http.Http) fiber.Handler {
	// exact paths, or prefixes when ending in /*
	excludedPaths := []string{
		"/health",
		"/metrics",
		"/version",
	}

	if httpConfig != nil && !httpConfig.AccessLog {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		if skipAccessLog(c.Path(), excludedPaths) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			// the app error handler has not run yet
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		kv := []any{
			"method", c.Method(),
			"path", c.Path(),
			"query", string(c.Request().URI().QueryString()),
			"status", status,
			"ip", c.IP(),
			"latency", time.Since(start).String(),
			"request_id", RequestID(c),
		}
		if err != nil {
			kv = append(kv, "error", err)
		}
		if status >= fiber.StatusInternalServerError {
			log.Warnw("http request", kv...)
		} else {
			log.Infow("http request", kv...)
		}
		return err
	}
}

func skipAccessLog(path string, rules []string) bool {
	for _, rule := range rules {
		if prefix, ok := strings.CutSuffix(rule, "/*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		} else if path == rule {
			return true
		}
	}
	return false
}
