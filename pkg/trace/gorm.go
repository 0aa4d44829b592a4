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

package trace

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const gormTracerName = "github.com/lily-ai/lily/pkg/trace/gorm"

type gormSpanKey struct{}

type gormStartKey struct{}

// GormPlugin records one client span per gorm statement.
type GormPlugin struct {
	WithQuery bool
	WithRows  bool
}

// NewGormPlugin returns a plugin that records statements and affected rows.
func NewGormPlugin() *GormPlugin {
	return &GormPlugin{WithQuery: true, WithRows: true}
}

func (p *GormPlugin) Name() string {
	return "lily:opentelemetry"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("otel:before", p.before("create")),
		cb.Query().Before("gorm:query").Register("otel:before", p.before("query")),
		cb.Update().Before("gorm:update").Register("otel:before", p.before("update")),
		cb.Delete().Before("gorm:delete").Register("otel:before", p.before("delete")),
		cb.Row().Before("gorm:row").Register("otel:before", p.before("row")),
		cb.Raw().Before("gorm:raw").Register("otel:before", p.before("raw")),

		cb.Create().After("gorm:create").Register("otel:after", p.after),
		cb.Query().After("gorm:query").Register("otel:after", p.after),
		cb.Update().After("gorm:update").Register("otel:after", p.after),
		cb.Delete().After("gorm:delete").Register("otel:after", p.after),
		cb.Row().After("gorm:row").Register("otel:after", p.after),
		cb.Raw().After("gorm:raw").Register("otel:after", p.after),
	)
}

func (p *GormPlugin) before(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		p.startSpan(db, op)
	}
}

func (p *GormPlugin) startSpan(db *gorm.DB, op string) {
	if db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := otel.Tracer(gormTracerName).Start(ctx, "gorm."+op, trace.WithSpanKind(trace.SpanKindClient))
	ctx = context.WithValue(ctx, gormSpanKey{}, span)
	db.Statement.Context = context.WithValue(ctx, gormStartKey{}, time.Now())

	attrs := []attribute.KeyValue{
		attribute.String("db.system", dbSystem(db)),
		attribute.String("db.operation", op),
	}
	if db.Statement.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attrs...)
}

func (p *GormPlugin) after(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Context == nil {
		return
	}
	span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if start, ok := db.Statement.Context.Value(gormStartKey{}).(time.Time); ok {
		span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(start).Milliseconds()))
	}
	if p.WithQuery {
		if sql := strings.TrimSpace(db.Statement.SQL.String()); sql != "" {
			span.SetAttributes(attribute.String("db.statement", sql))
		}
	}
	if p.WithRows {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
}

func dbSystem(db *gorm.DB) string {
	if db.Dialector != nil {
		return db.Dialector.Name()
	}
	return "sql"
}
