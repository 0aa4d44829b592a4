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
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// IDatabase gives repositories access to the gorm handle.
type IDatabase interface {
	Database() *gorm.DB
}

// GormDB wraps an opened *gorm.DB as IDatabase.
type GormDB struct {
	db *gorm.DB
}

// NewGormDB wraps db, for callers that open their own connection.
func NewGormDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

func (g *GormDB) Database() *gorm.DB {
	return g.db
}

// ReadDB routes the statement to a replica when DBResolver is configured.
func ReadDB(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Read)
}

// WriteDB routes the statement to a source when DBResolver is configured.
func WriteDB(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Write)
}
