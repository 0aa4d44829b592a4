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
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	lhttp "github.com/lily-ai/lily/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMiddleware_WithExistingRequestId(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		if got := RequestID(c); got != "existing-request-id-12345" {
			t.Errorf("X-Request-Id should be preserved, got: %s", got)
		}
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "existing-request-id-12345")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("failed to test request: %v", err)
	}
	if got := resp.Header.Get(RequestIDHeader); got != "existing-request-id-12345" {
		t.Errorf("response should echo the request id, got: %s", got)
	}
}

func TestRequestMiddleware_WithoutRequestId(t *testing.T) {
	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	app := fiber.New()
	app.Use(RequestMiddleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		requestId := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestId); err != nil {
			t.Errorf("X-Request-Id should be a valid UUID, got: %s, error: %v", requestId, err)
		}
		return c.SendString("ok")
	})

	for _, header := range []string{"", "absent"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if header == "" {
			req.Header.Set(RequestIDHeader, "")
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("failed to test request: %v", err)
		}
		if !uuidRegex.MatchString(resp.Header.Get(RequestIDHeader)) {
			t.Errorf("generated id has the wrong format: %q", resp.Header.Get(RequestIDHeader))
		}
	}
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: lhttp.ErrorHandler})
	app.Use(RequestMiddleware(), ExceptionMiddleware, UnifiedResponseMiddleware())
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestExceptionMiddleware(t *testing.T) {
	app := newTestApp()
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/expected", func(c *fiber.Ctx) error {
		panic(lhttp.ResponseErr{ErrCode: 4000, ErrMsg: "bad input"})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	got := body(t, resp)
	assert.Contains(t, got, `"code":5000`)
	assert.NotContains(t, got, "boom")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/expected", nil))
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "bad input")
}

func TestUnifiedResponseMiddleware(t *testing.T) {
	app := newTestApp()
	app.Get("/detail", func(c *fiber.Ctx) error {
		c.Locals(DETAIL, map[string]int{"max_jobs_per_day": 6})
		return nil
	})
	app.Post("/operation", func(c *fiber.Ctx) error {
		c.Locals(OPERATION, "invalidate")
		return nil
	})
	app.Get("/own", func(c *fiber.Ctx) error {
		return lhttp.WithRepErr(c.Status(fiber.StatusNotFound), lhttp.NotFound.Code, "nope", c.Path())
	})
	app.Get("/empty-error", func(c *fiber.Ctx) error {
		c.Status(fiber.StatusBadGateway)
		return nil
	})

	tests := []struct {
		method, path string
		status       int
		contains     []string
	}{
		{http.MethodGet, "/detail", 200, []string{`"code":200`, `"detail":{"max_jobs_per_day":6}`}},
		{http.MethodPost, "/operation", 200, []string{`"msg":"Request Success"`}},
		{http.MethodGet, "/own", 404, []string{`"errMsg":"nope"`}},
		{http.MethodGet, "/empty-error", 502, []string{`"code":500`}},
		{http.MethodGet, "/missing", 404, []string{`"code":404`, `"path":"/missing"`}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			got := body(t, resp)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
		})
	}
}

func TestAccessLogMiddleware(t *testing.T) {
	assert.True(t, skipAccessLog("/health", []string{"/health"}))
	assert.True(t, skipAccessLog("/debug/pprof/heap", []string{"/debug/pprof/*"}))
	assert.False(t, skipAccessLog("/api/v1/orgs", []string{"/health", "/debug/*"}))

	app := fiber.New()
	app.Use(RequestMiddleware(), AccessLogMiddleware(&lhttp.Http{AccessLog: true}))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error { return fiber.ErrTeapot })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", body(t, resp))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.True(t, strings.Contains(body(t, resp), "teapot"))
}
