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
	"fmt"

	"github.com/lily-ai/lily/pkg/log"
	"github.com/lily-ai/lily/pkg/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// Manager owns the MySQL connection pool.
type Manager interface {
	MySQL() *gorm.DB
	Close() error
}

type managerImpl struct {
	mysql *gorm.DB
}

func (m *managerImpl) MySQL() *gorm.DB {
	return m.mysql
}

func (m *managerImpl) Database() *gorm.DB {
	return m.mysql
}

func (m *managerImpl) Close() error {
	if m.mysql == nil {
		return nil
	}
	sqlDB, err := m.mysql.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close MySQL: %w", err)
	}
	return nil
}

// NewManager opens MySQL, registers DBResolver when replicas or primaries are
// configured, and optionally the tracing plugin.
func NewManager(cfg Database) (Manager, error) {
	db, err := newMySQLConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MySQL: %w", err)
	}
	if cfg.Trace {
		if err := db.Use(trace.NewGormPlugin()); err != nil {
			log.Warnw("failed to register tracing gorm plugin", "error", err)
		}
	}
	log.Info("MySQL database connected successfully")
	return &managerImpl{mysql: db}, nil
}

// GormConfig returns the gorm settings shared by every connection.
func GormConfig(cfg Database) *gorm.Config {
	var l gormlogger.Interface = gormlogger.Default.LogMode(gormlogger.Silent)
	if cfg.OutPut {
		l = NewGormLogger(gormlogger.Config{
			SlowThreshold:             slowThreshold(cfg.SlowSQL),
			LogLevel:                  gormlogger.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		})
	}
	return &gorm.Config{
		Logger: l,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dataTablePrefix,
			SingularTable: true,
		},
	}
}

func newMySQLConnection(cfg Database) (*gorm.DB, error) {
	mysqlCfg := cfg.MySQL
	port := mysqlCfg.Port
	if port == "" {
		port = "3306"
	}
	dsn := buildMySQLDSN(mysqlCfg.User, mysqlCfg.Password, mysqlCfg.Host, port, mysqlCfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), GormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if len(mysqlCfg.Primary) > 0 || len(mysqlCfg.Replicas) > 0 {
		resolverConfig := dbresolver.Config{TraceResolverMode: cfg.OutPut}
		if resolverConfig.Sources, err = buildDialectors(mysqlCfg.Primary); err != nil {
			return nil, fmt.Errorf("failed to build primary dialectors: %w", err)
		}
		if resolverConfig.Replicas, err = buildDialectors(mysqlCfg.Replicas); err != nil {
			return nil, fmt.Errorf("failed to build replicas dialectors: %w", err)
		}
		err = db.Use(dbresolver.Register(resolverConfig).
			SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime)).
			SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime)).
			SetMaxIdleConns(cfg.MaxIdleConns).
			SetMaxOpenConns(cfg.MaxOpenConns))
		if err != nil {
			return nil, fmt.Errorf("failed to register DBResolver plugin: %w", err)
		}
		log.Infow("DBResolver enabled",
			"primaries", len(mysqlCfg.Primary),
			"replicas", len(mysqlCfg.Replicas),
		)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	return db, nil
}
