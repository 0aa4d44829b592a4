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

package settings

import (
	"github.com/google/wire"
	"github.com/lily-ai/lily/internal/engine/repo"
	"github.com/lily-ai/lily/pkg/cache"
	"github.com/lily-ai/lily/pkg/metrics"
)

// ProviderSet provides the resolver and the entity write service.
var ProviderSet = wire.NewSet(
	ProvideResolver,
	ProvideEntitySettingsService,
)

func ProvideResolver(store repo.IEntitySettingsRepository, c *cache.HybridCache, m *metrics.SettingsMetrics, conf Config) *Resolver {
	return NewResolver(store, c, m, conf)
}

func ProvideEntitySettingsService(store repo.IEntitySettingsRepository, resolver *Resolver) *EntitySettingsService {
	return NewEntitySettingsService(store, resolver)
}
