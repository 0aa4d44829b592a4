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
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/lily-ai/lily/internal/engine/model"
	"github.com/lily-ai/lily/internal/engine/repo"
	"github.com/lily-ai/lily/internal/engine/service"
	settingsservice "github.com/lily-ai/lily/internal/engine/service/settings"
	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/cache"
	"github.com/lily-ai/lily/pkg/database"
	lhttp "github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	ErrMsg string          `json:"errMsg"`
	Path   string          `json:"path"`
	Detail json.RawMessage `json:"detail"`
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:router_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(
		&model.Plan{}, &model.Organization{}, &model.Team{}, &model.Integration{}, &model.User{},
	))
	require.NoError(t, db.Create(&model.Plan{PlanId: "pro", Name: "Pro",
		Settings: datatypes.JSON(`{"pricing": {"minimum_job_price": 175}}`)}).Error)
	require.NoError(t, db.Create(&model.Organization{OrgId: "org-1", PlanId: "pro",
		Settings: datatypes.JSON(`{"pricing.base_rates.concrete": 0.18}`)}).Error)
	require.NoError(t, db.Create(&model.Team{TeamId: "team-1", OrgId: "org-1"}).Error)
	require.NoError(t, db.Create(&model.User{UserId: "user-1", OrgId: "org-1",
		Preferences: datatypes.JSON(`{"work_start": "09:00"}`)}).Error)

	store := repo.NewEntitySettingsRepo(database.NewGormDB(db))
	metricsServer := metrics.NewServer(metrics.MetricsConfig{})
	resolver := settingsservice.NewResolver(store,
		cache.NewFastCache(cache.FastCacheConfig{MaxBytes: 1 << 20}),
		metrics.NewSettingsMetrics(metricsServer.GetRegistry()),
		settingsservice.Config{},
	)
	services := service.NewServices(resolver, settingsservice.NewEntitySettingsService(store, resolver))

	conf := &lhttp.Http{ExposeMetrics: true}
	conf.SetDefaults()
	return NewRouter(conf, services, metricsServer).Router()
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, sonic.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestRouter_Probes(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(b))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/version", nil))
	require.NoError(t, err)
	b, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "goVersion")

	status, env := do(t, app, http.MethodGet, "/api/v1/nothing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, lhttp.NotFound.Code, env.Code)
}

func TestRouter_GetSettings(t *testing.T) {
	app := setupApp(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/orgs/org-1/settings?teamId=team-1&userId=user-1", "")
	require.Equal(t, http.StatusOK, status, env.ErrMsg)
	assert.Equal(t, lhttp.Success.Code, env.Code)

	var got core.ResolvedSettings
	require.NoError(t, sonic.Unmarshal(env.Detail, &got))
	assert.Equal(t, 175.0, got.Pricing.MinimumJobPrice)
	assert.Equal(t, 0.18, got.Pricing.BaseRates["concrete"])
	assert.Equal(t, 1.3, got.Pricing.SoftWashMultiplier)
	assert.Equal(t, "09:00", got.Scheduling.BusinessHoursStart)

	status, env = do(t, app, http.MethodGet, "/api/v1/orgs/org-1/settings/weather", "")
	require.Equal(t, http.StatusOK, status)
	var weather core.WeatherSettings
	require.NoError(t, sonic.Unmarshal(env.Detail, &weather))
	assert.Equal(t, core.DefaultWeather(), weather)
}

func TestRouter_Errors(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   int
	}{
		{"unknown org", http.MethodGet, "/api/v1/orgs/org-404/settings", "", 404, lhttp.OrganizationNotFound.Code},
		{"malformed org", http.MethodGet, "/api/v1/orgs/org:1/settings", "", 400, lhttp.InvalidOrganization.Code},
		{"malformed user", http.MethodGet, "/api/v1/orgs/org-1/settings?userId=a*b", "", 400, lhttp.InvalidRequest.Code},
		{"unknown namespace", http.MethodGet, "/api/v1/orgs/org-1/settings/billing", "", 400, lhttp.UnknownNamespace.Code},
		{"unknown kind", http.MethodPut, "/api/v1/entities/region/r-1/settings", "{}", 400, lhttp.UnknownEntityKind.Code},
		{"unknown entity", http.MethodPut, "/api/v1/entities/team/team-404/settings", "{}", 404, lhttp.EntityNotFound.Code},
		{"bad body", http.MethodPut, "/api/v1/entities/team/team-1/settings", "{", 400, lhttp.RequestParameterParsingFailed.Code},
		{"invalid org id on invalidate", http.MethodPost, "/api/v1/orgs/-/settings/invalidate", "", 400, lhttp.InvalidOrganization.Code},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.ErrMsg)
		})
	}
}

func TestRouter_UpdateEntityInvalidates(t *testing.T) {
	app := setupApp(t)
	path := "/api/v1/orgs/org-1/settings/weather?teamId=team-1"

	_, env := do(t, app, http.MethodGet, path, "")
	var weather core.WeatherSettings
	require.NoError(t, sonic.Unmarshal(env.Detail, &weather))
	assert.Equal(t, 20.0, weather.MaxWindSpeedMph)

	status, env := do(t, app, http.MethodPut, "/api/v1/entities/team/team-1/settings",
		`{"weather": {"max_wind_speed_mph": 25}}`)
	require.Equal(t, http.StatusOK, status, env.ErrMsg)
	var upd struct {
		Invalidated []string `json:"invalidated"`
	}
	require.NoError(t, sonic.Unmarshal(env.Detail, &upd))
	assert.Equal(t, []string{"org-1"}, upd.Invalidated)

	_, env = do(t, app, http.MethodGet, path, "")
	require.NoError(t, sonic.Unmarshal(env.Detail, &weather))
	assert.Equal(t, 25.0, weather.MaxWindSpeedMph)
}

func TestRouter_UpdateEntityRejectsInvalid(t *testing.T) {
	app := setupApp(t)

	status, env := do(t, app, http.MethodPut, "/api/v1/entities/team/team-1/settings",
		`{"weather": {"min_temperature_f": 80, "max_temperature_f": 60}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, lhttp.ValidationFailed.Code, env.Code)

	var details []core.ValidationError
	require.NoError(t, sonic.Unmarshal(env.Detail, &details))
	require.Len(t, details, 1)
	assert.Equal(t, core.NamespaceWeather, details[0].Namespace)
	_, ok := details[0].Field("max_temperature_f")
	assert.True(t, ok)
}

func TestRouter_ExplainAndInvalidate(t *testing.T) {
	app := setupApp(t)

	status, env := do(t, app, http.MethodGet, "/api/v1/orgs/org-1/settings-explain?userId=user-1", "")
	require.Equal(t, http.StatusOK, status)
	var res settingsservice.Resolution
	require.NoError(t, sonic.Unmarshal(env.Detail, &res))
	assert.Equal(t, "pro", res.PlanID)
	assert.Equal(t, "plan", res.Sources[core.NamespacePricing]["minimum_job_price"])
	assert.Equal(t, "organization", res.Sources[core.NamespacePricing]["base_rates.concrete"])
	assert.Equal(t, "user", res.Sources[core.NamespaceScheduling]["business_hours_start"])
	assert.Equal(t, settingsservice.SourceDefault, res.Sources[core.NamespaceWeather]["enabled"])

	status, env = do(t, app, http.MethodPost, "/api/v1/orgs/org-1/settings/invalidate", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, lhttp.Success.Code, env.Code)
}

func TestRouter_ValidateAndSchemas(t *testing.T) {
	app := setupApp(t)

	status, env := do(t, app, http.MethodPost, "/api/v1/settings/scheduling/validate", `{"max_jobs_per_day": 4}`)
	require.Equal(t, http.StatusOK, status, env.ErrMsg)
	var sched core.SchedulingSettings
	require.NoError(t, sonic.Unmarshal(env.Detail, &sched))
	want := core.DefaultScheduling()
	want.MaxJobsPerDay = 4
	assert.Equal(t, want, sched)

	status, env = do(t, app, http.MethodPost, "/api/v1/settings/weather/validate",
		`{"min_temperature_f": 80, "max_temperature_f": 60}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, lhttp.ValidationFailed.Code, env.Code)

	status, env = do(t, app, http.MethodGet, "/api/v1/settings/schemas", "")
	require.Equal(t, http.StatusOK, status)
	var schemas map[core.Namespace]struct {
		Schema core.Schema `json:"schema"`
	}
	require.NoError(t, sonic.Unmarshal(env.Detail, &schemas))
	assert.Len(t, schemas, len(core.AllNamespaces()))
	assert.NotEmpty(t, schemas[core.NamespaceDMBooking].Schema.Fields)

	status, _ = do(t, app, http.MethodGet, "/api/v1/settings/billing/schema", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_Metrics(t *testing.T) {
	app := setupApp(t)
	do(t, app, http.MethodGet, "/api/v1/orgs/org-1/settings", "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "lily_settings_resolve_total")
}
