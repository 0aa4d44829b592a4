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
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/lily-ai/lily/pkg/cache"
	"github.com/lily-ai/lily/pkg/database"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/metrics"
	"github.com/lily-ai/lily/pkg/trace"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LILY_HTTP_PORT.
const EnvPrefix = "LILY"

// SettingsConf tunes the resolver and its cache.
type SettingsConf struct {
	CacheTTL           time.Duration `validate:"gte=0"`
	LoadTimeout        time.Duration `validate:"gte=0"`
	MaxConcurrentLoads int           `validate:"gte=0,lte=64"`
	LocalCacheBytes    int           `validate:"gte=0"`
	LocalTTLRatio      float64       `validate:"gte=0,lte=1"`
	RemoteCooldown     time.Duration `validate:"gte=0"`
	// SweepSpec is a cron spec for dropping expired local entries.
	SweepSpec string
}

func (c *SettingsConf) SetDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 10 * time.Second
	}
	if c.LocalTTLRatio <= 0 {
		c.LocalTTLRatio = 0.8
	}
	if c.RemoteCooldown <= 0 {
		c.RemoteCooldown = 5 * time.Second
	}
	if c.SweepSpec == "" {
		c.SweepSpec = "@every 1m"
	}
}

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Settings SettingsConf
	Metrics  metrics.MetricsConfig
	Trace    trace.Conf
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(path string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(path)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return cfg
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read configuration file")
	}
	return v, nil
}

func decode(v *viper.Viper) (AppConfig, error) {
	var c AppConfig
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return c, errors.Wrap(err, "failed to unmarshal configuration file")
	}
	if err := validator.New().Struct(c.Settings); err != nil {
		return c, errors.Wrap(err, "invalid settings configuration")
	}
	return c, nil
}

// LoadConfigFile reads the file at path, applying LILY_* environment overrides.
func LoadConfigFile(path string) (AppConfig, error) {
	v, err := newViper(path)
	if err != nil {
		return AppConfig{}, err
	}
	c, err := decode(v)
	if err != nil {
		return c, err
	}
	log.Infow("config file loaded", "path", path)
	return c, nil
}

// Watch calls fn with the re-read configuration whenever the file changes.
// A change that fails to parse is logged and skipped.
func Watch(path string, fn func(AppConfig)) error {
	v, err := newViper(path)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		c, err := decode(v)
		if err != nil {
			log.Warnw("configuration change ignored", "path", e.Name, "error", err)
			return
		}
		log.Infow("configuration reloaded", "path", e.Name)
		fn(c)
	})
	v.WatchConfig()
	return nil
}
