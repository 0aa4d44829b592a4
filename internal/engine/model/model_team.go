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

package model

import "gorm.io/datatypes"

type Team struct {
	BaseModel
	TeamId   string         `gorm:"column:team_id;size:64;uniqueIndex" json:"teamId"`
	OrgId    string         `gorm:"column:org_id;size:64;index" json:"orgId"`
	Name     string         `gorm:"column:name" json:"name"`
	Settings datatypes.JSON `gorm:"column:settings;type:json" json:"settings"`
}

func (Team) TableName() string {
	return "t_team"
}
