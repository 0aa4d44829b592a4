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

type Organization struct {
	BaseModel
	OrgId       string         `gorm:"column:org_id;size:64;uniqueIndex" json:"orgId"`
	Name        string         `gorm:"column:name" json:"name"`
	DisplayName string         `gorm:"column:display_name" json:"displayName"`
	PlanId      string         `gorm:"column:plan_id;size:64;index" json:"planId"`
	Settings    datatypes.JSON `gorm:"column:settings;type:json" json:"settings"`
	Status      int            `gorm:"column:status;default:1" json:"status"` // 0: inactive, 1: active, 2: frozen
}

func (Organization) TableName() string {
	return "t_organization"
}

const (
	OrgStatusInactive = 0
	OrgStatusActive   = 1
	OrgStatusFrozen   = 2
)
