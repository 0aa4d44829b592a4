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

package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lily-ai/lily/internal/engine/model"
	"github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/database"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IEntitySettingsRepository interface {
	GetOrganizationPlan(ctx context.Context, orgID string) (string, error)
	GetEntitySettings(ctx context.Context, ref settings.EntityRef) (settings.EntityBlob, error)
	GetEntityOrganization(ctx context.Context, ref settings.EntityRef) (string, error)
	UpdateEntitySettings(ctx context.Context, ref settings.EntityRef, blob settings.Blob) error
	ListOrganizationsByPlan(ctx context.Context, planID string) ([]string, error)
}

type entityTable struct {
	table    string
	idColumn string
	column   string // JSON settings column
}

var entityTables = map[settings.EntityKind]entityTable{
	settings.KindPlan:         {model.Plan{}.TableName(), "plan_id", "settings"},
	settings.KindOrganization: {model.Organization{}.TableName(), "org_id", "settings"},
	settings.KindTeam:         {model.Team{}.TableName(), "team_id", "settings"},
	settings.KindIntegration:  {model.Integration{}.TableName(), "integration_id", "settings"},
	settings.KindUser:         {model.User{}.TableName(), "user_id", "preferences"},
}

type EntitySettingsRepo struct {
	database.IDatabase
}

func NewEntitySettingsRepo(db database.IDatabase) IEntitySettingsRepository {
	return &EntitySettingsRepo{IDatabase: db}
}

func tableFor(kind settings.EntityKind) (entityTable, error) {
	t, ok := entityTables[kind]
	if !ok {
		return entityTable{}, fmt.Errorf("%w: %q", settings.ErrUnknownEntityKind, kind)
	}
	return t, nil
}

func notFound(err error, ref settings.EntityRef) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", settings.ErrEntityNotFound, ref)
	}
	return err
}

// GetOrganizationPlan returns the plan id of an organization.
func (r *EntitySettingsRepo) GetOrganizationPlan(ctx context.Context, orgID string) (string, error) {
	var org model.Organization
	err := database.ReadDB(r.Database().WithContext(ctx)).
		Table(org.TableName()).
		Select("plan_id").
		Where("org_id = ?", orgID).
		Take(&org).Error
	if err != nil {
		return "", notFound(err, settings.EntityRef{Kind: settings.KindOrganization, ID: orgID})
	}
	return org.PlanId, nil
}

// GetEntitySettings loads and decodes the settings blob of one entity along
// with its owning organization. An empty or null column yields a nil blob.
func (r *EntitySettingsRepo) GetEntitySettings(ctx context.Context, ref settings.EntityRef) (settings.EntityBlob, error) {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return settings.EntityBlob{}, err
	}

	var row struct {
		Settings []byte
		OrgId    string
	}
	err = database.ReadDB(r.Database().WithContext(ctx)).
		Table(t.table).
		Select(t.column+" AS settings, "+ownerColumn(ref.Kind)+" AS org_id").
		Where(t.idColumn+" = ?", ref.ID).
		Take(&row).Error
	if err != nil {
		return settings.EntityBlob{}, notFound(err, ref)
	}
	blob, err := decodeBlob(row.Settings)
	if err != nil {
		return settings.EntityBlob{}, err
	}
	return settings.EntityBlob{OrgID: row.OrgId, Blob: blob}, nil
}

// ownerColumn selects the owning organization; plans have none.
func ownerColumn(kind settings.EntityKind) string {
	if kind == settings.KindPlan {
		return "''"
	}
	return "org_id"
}

func decodeBlob(raw []byte) (settings.Blob, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var blob settings.Blob
	if err := sonic.Unmarshal(raw, &blob); err != nil {
		return nil, errors.Wrap(err, "decode settings blob")
	}
	return blob, nil
}

// GetEntityOrganization returns the organization owning ref. Plans belong to
// no organization and yield "".
func (r *EntitySettingsRepo) GetEntityOrganization(ctx context.Context, ref settings.EntityRef) (string, error) {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return "", err
	}
	var row struct {
		OrgId string
	}
	err = database.ReadDB(r.Database().WithContext(ctx)).
		Table(t.table).
		Select(ownerColumn(ref.Kind)+" AS org_id").
		Where(t.idColumn+" = ?", ref.ID).
		Take(&row).Error
	if err != nil {
		return "", notFound(err, ref)
	}
	return row.OrgId, nil
}

// UpdateEntitySettings replaces the settings blob of one entity.
func (r *EntitySettingsRepo) UpdateEntitySettings(ctx context.Context, ref settings.EntityRef, blob settings.Blob) error {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}
	if blob == nil {
		blob = settings.Blob{}
	}
	data, err := sonic.Marshal(blob)
	if err != nil {
		return errors.Wrap(err, "encode settings blob")
	}

	db := database.WriteDB(r.Database().WithContext(ctx))
	res := db.Table(t.table).
		Where(t.idColumn+" = ?", ref.ID).
		Updates(map[string]any{
			t.column:     datatypes.JSON(data),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Table(t.table).Where(t.idColumn+" = ?", ref.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", settings.ErrEntityNotFound, ref)
	}
	return nil
}

// ListOrganizationsByPlan returns the ids of every organization on planID.
func (r *EntitySettingsRepo) ListOrganizationsByPlan(ctx context.Context, planID string) ([]string, error) {
	var ids []string
	err := database.ReadDB(r.Database().WithContext(ctx)).
		Table(model.Organization{}.TableName()).
		Where("plan_id = ?", planID).
		Order("org_id").
		Pluck("org_id", &ids).Error
	return ids, err
}
