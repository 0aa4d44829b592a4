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

package config

import (
	"github.com/google/wire"
	settingsservice "github.com/lily-ai/lily/internal/engine/service/settings"
	"github.com/lily-ai/lily/pkg/cache"
	"github.com/lily-ai/lily/pkg/database"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/metrics"
	"github.com/lily-ai/lily/pkg/trace"
)

// ProviderSet splits the application config into per-component configs.
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideMetricsConfig,
	ProvideTraceConfig,
	ProvideCacheOptions,
	ProvideResolverConfig,
)

func ProvideConf(configPath string) *AppConfig {
	c := NewConf(configPath)
	return &c
}

func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	httpConfig := &appConf.Http
	httpConfig.SetDefaults()
	return httpConfig
}

func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

func ProvideRedisConfig(appConf *AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	metricsConfig := appConf.Metrics
	metricsConfig.SetDefaults()
	return metricsConfig
}

func ProvideTraceConfig(appConf *AppConfig) trace.Conf {
	traceConfig := appConf.Trace
	traceConfig.SetDefaults()
	return traceConfig
}

// ProvideCacheOptions maps the settings section onto the hybrid cache.
func ProvideCacheOptions(appConf *AppConfig) cache.Options {
	s := appConf.Settings
	s.SetDefaults()
	return cache.Options{
		LocalMaxBytes:  s.LocalCacheBytes,
		LocalTTLRatio:  s.LocalTTLRatio,
		RemoteCooldown: s.RemoteCooldown,
	}
}

func ProvideResolverConfig(appConf *AppConfig) settingsservice.Config {
	s := appConf.Settings
	s.SetDefaults()
	return settingsservice.Config{
		CacheTTL:           s.CacheTTL,
		LoadTimeout:        s.LoadTimeout,
		MaxConcurrentLoads: s.MaxConcurrentLoads,
	}
}
