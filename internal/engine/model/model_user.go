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

type User struct {
	BaseModel
	UserId      string         `gorm:"column:user_id;size:64;uniqueIndex" json:"userId"`
	OrgId       string         `gorm:"column:org_id;size:64;index" json:"orgId"`
	Username    string         `gorm:"column:username" json:"username"`
	Email       string         `gorm:"column:email" json:"email"`
	Preferences datatypes.JSON `gorm:"column:preferences;type:json" json:"preferences"`
}

func (User) TableName() string {
	return "t_user"
}
