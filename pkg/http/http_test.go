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

package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/orgs/org-1/settings":
			assert.Equal(t, "team-1", r.URL.Query().Get("teamId"))
			_, _ = io.WriteString(w, `{"code":200,"msg":"Request Success","detail":{"currency":"USD"}}`)
		case "/api/v1/orgs/org-1/settings/invalidate":
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = io.WriteString(w, `{"code":200,"msg":"Request Success"}`)
		case "/api/v1/settings/weather/validate":
			b, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"min_temperature_f":80}`, string(b))
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"code":4220,"errMsg":"Settings validation failed","path":"/x","detail":[{"field":"max_temperature_f"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":4041,"errMsg":"Organization does not exist"}`)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/api/v1", time.Second)
	ctx := context.Background()

	var out struct {
		Currency string `json:"currency"`
	}
	require.NoError(t, c.Do(ctx, http.MethodGet, "/orgs/org-1/settings", map[string]string{"teamId": "team-1"}, nil, &out))
	assert.Equal(t, "USD", out.Currency)

	require.NoError(t, c.Do(ctx, http.MethodPost, "/orgs/org-1/settings/invalidate", nil, nil, nil))

	err := c.Do(ctx, http.MethodPost, "/settings/weather/validate", nil, map[string]any{"min_temperature_f": 80}, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 4220, apiErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.JSONEq(t, `[{"field":"max_temperature_f"}]`, string(apiErr.Detail))

	err = c.Do(ctx, http.MethodGet, "/orgs/org-404/settings", nil, nil, &out)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, OrganizationNotFound.Code, apiErr.Code)
	assert.Equal(t, "Organization does not exist", apiErr.Msg)
}

func TestHttp_SetDefaults(t *testing.T) {
	h := Http{Port: 9000}
	h.SetDefaults()
	assert.Equal(t, "0.0.0.0:9000", h.Addr())
	assert.Equal(t, "/api/v1", h.ContextPath)
	assert.Equal(t, 10, h.ShutdownTimeout)
	assert.Equal(t, 1<<20, h.FiberConfig("lily").BodyLimit)
}
