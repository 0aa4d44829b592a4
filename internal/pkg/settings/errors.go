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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation        = errors.New("settings validation failed")
	ErrUnknownNamespace  = errors.New("unknown settings namespace")
	ErrUnknownEntityKind = errors.New("unknown entity kind")
	// ErrEntityNotFound is returned by entity stores for missing rows.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrForeignEntity marks an entity owned by a different organization than the one resolved.
	ErrForeignEntity = errors.New("entity belongs to another organization")
)

// FieldError is one rejected field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + " " + e.Reason
}

// ValidationError lists every field of a namespace that failed validation.
type ValidationError struct {
	Namespace Namespace    `json:"namespace"`
	Fields    []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid %s settings: %s", e.Namespace, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the reason recorded for name, if any.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Reason, true
		}
	}
	return "", false
}
