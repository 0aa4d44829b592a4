//go:build wireinject
// +build wireinject

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

package main

import (
	"github.com/google/wire"
	"github.com/lily-ai/lily/internal/engine/bootstrap"
	"github.com/lily-ai/lily/internal/engine/config"
	"github.com/lily-ai/lily/internal/engine/repo"
	"github.com/lily-ai/lily/internal/engine/router"
	"github.com/lily-ai/lily/internal/engine/service"
	"github.com/lily-ai/lily/pkg/cache"
	"github.com/lily-ai/lily/pkg/database"
	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/metrics"
	"github.com/lily-ai/lily/pkg/trace"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		log.ProviderSet,
		trace.ProviderSet,
		database.ProviderSet,
		cache.ProviderSet,
		metrics.ProviderSet,
		repo.ProviderSet,
		service.ProviderSet,
		router.ProviderSet,
		bootstrap.ProviderSet,
	))
}
