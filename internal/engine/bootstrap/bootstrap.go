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

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lily-ai/lily/internal/engine/config"
	"github.com/lily-ai/lily/pkg/cache"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/metrics"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	HttpApp *fiber.App
	Http    *http.Http
	Logger  *log.Logger
	Metrics *metrics.Server
	Sweeper *cache.Sweeper
	Tracer  *sdktrace.TracerProvider
	AppConf config.AppConfig
}

// InitAppFunc builds the application from a config path.
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	httpApp *fiber.App,
	httpConf *http.Http,
	logger *log.Logger,
	metricsServer *metrics.Server,
	sweeper *cache.Sweeper,
	tracer *sdktrace.TracerProvider,
	appConf *config.AppConfig,
) *App {
	return &App{
		HttpApp: httpApp,
		Http:    httpConf,
		Logger:  logger,
		Metrics: metricsServer,
		Sweeper: sweeper,
		Tracer:  tracer,
		AppConf: *appConf,
	}
}

// ProvideSweeper schedules the local cache sweep and reports runs to the cron metrics.
func ProvideSweeper(appConf *config.AppConfig, hc *cache.HybridCache, m *metrics.CronMetrics) (*cache.Sweeper, error) {
	s := appConf.Settings
	s.SetDefaults()
	sweeper, err := cache.NewSweeper(s.SweepSpec, hc)
	if err != nil {
		return nil, err
	}
	sweeper.SetRecorder(m)
	return sweeper, nil
}

// Bootstrap builds the app; the returned cleanup releases what wire opened.
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), config.AppConfig, error) {
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, config.AppConfig{}, err
	}
	return app, cleanup, app.AppConf, nil
}

// Run starts the servers and blocks until a termination signal or a listener failure,
// then shuts everything down.
func Run(app *App, configFile string, cleanup func()) {
	appConf := app.AppConf
	app.Logger.Log.Infow("lily starting", "address", app.Http.Addr(), "metrics", appConf.Metrics.Enable)

	if err := app.Metrics.Start(); err != nil {
		log.Errorw("metrics server failed to start", "error", err)
	}
	app.Sweeper.Start()

	// log level follows the file without a restart
	level := appConf.Log.Level
	if err := config.Watch(configFile, func(c config.AppConfig) {
		if c.Log.Level == level {
			return
		}
		if err := log.Init(&c.Log); err != nil {
			log.Warnw("log reconfiguration failed", "error", err)
			return
		}
		level = c.Log.Level
		log.Infow("log level changed", "level", level)
	}); err != nil {
		log.Warnw("config watch disabled", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	stopHttp, httpErr := http.NewHttp(*app.Http, app.HttpApp)

	select {
	case sig := <-quit:
		log.Infof("Received signal: %v, shutting down gracefully...", sig)
	case err, ok := <-httpErr:
		if ok {
			log.Errorw("http listener failed", "address", app.Http.Addr(), "error", err)
		}
	}

	stopHttp()
	app.Sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Metrics.Stop(ctx); err != nil {
		log.Errorw("metrics server shutdown error", "error", err)
	}

	cleanup()

	log.Info("Server shutdown complete")
	_ = log.Sync()
}
