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

package database

import (
	"context"
	"errors"
	"time"

	"github.com/lily-ai/lily/pkg/log"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// GormLogger sends gorm output to the global zap logger.
type GormLogger struct {
	Config logger.Config
	Level  logger.LogLevel
}

func NewGormLogger(config logger.Config) *GormLogger {
	return &GormLogger{Config: config, Level: config.LogLevel}
}

func (l *GormLogger) sugar() *zap.SugaredLogger {
	return log.GetLogger().Desugar().WithOptions(zap.AddCallerSkip(2)).Sugar()
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.Level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.Level >= logger.Info {
		l.sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.Level >= logger.Warn {
		l.sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.Level >= logger.Error {
		l.sugar().Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.Level >= logger.Error && (!errors.Is(err, logger.ErrRecordNotFound) || !l.Config.IgnoreRecordNotFoundError):
		l.sugar().Errorw("SQL query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case l.Config.SlowThreshold != 0 && elapsed > l.Config.SlowThreshold && l.Level >= logger.Warn:
		l.sugar().Warnw("Slow SQL query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.Level >= logger.Info:
		l.sugar().Debugw("SQL query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
