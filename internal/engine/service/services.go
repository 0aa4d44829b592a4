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

package service

import (
	settingsservice "github.com/lily-ai/lily/internal/engine/service/settings"
)

// Services groups the services exposed by the API.
type Services struct {
	Settings *settingsservice.Resolver
	Entities *settingsservice.EntitySettingsService
}

func NewServices(resolver *settingsservice.Resolver, entities *settingsservice.EntitySettingsService) *Services {
	return &Services{
		Settings: resolver,
		Entities: entities,
	}
}
