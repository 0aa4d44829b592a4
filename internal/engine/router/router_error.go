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

package router

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	settingsservice "github.com/lily-ai/lily/internal/engine/service/settings"
	core "github.com/lily-ai/lily/internal/pkg/settings"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/log"
)

// writeError maps a service error onto the response envelope.
func writeError(c *fiber.Ctx, err error) error {
	status, rep := fiber.StatusInternalServerError, http.Failed
	var detail any

	switch {
	case errors.Is(err, settingsservice.ErrInvalidOrganization):
		status, rep = fiber.StatusBadRequest, http.InvalidOrganization
	case errors.Is(err, settingsservice.ErrInvalidRequest):
		status, rep = fiber.StatusBadRequest, http.InvalidRequest
	case errors.Is(err, core.ErrUnknownNamespace):
		status, rep = fiber.StatusBadRequest, http.UnknownNamespace
	case errors.Is(err, core.ErrUnknownEntityKind):
		status, rep = fiber.StatusBadRequest, http.UnknownEntityKind
	case errors.Is(err, settingsservice.ErrOrganizationNotFound):
		status, rep = fiber.StatusNotFound, http.OrganizationNotFound
	case errors.Is(err, core.ErrEntityNotFound):
		status, rep = fiber.StatusNotFound, http.EntityNotFound
	case errors.Is(err, core.ErrValidation):
		status, rep = fiber.StatusUnprocessableEntity, http.ValidationFailed
		detail = validationErrors(err)
	case errors.Is(err, settingsservice.ErrCacheUnavailable):
		status, rep = fiber.StatusServiceUnavailable, http.CacheUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, rep = fiber.StatusRequestTimeout, http.Failed
	default:
		log.Errorw("settings request failed", "path", c.Path(), "error", err)
	}

	msg := rep.Msg
	if status < fiber.StatusInternalServerError {
		msg = err.Error()
	}
	return http.WithRepErrDetail(c.Status(status), rep.Code, msg, c.Path(), detail)
}

// validationErrors flattens err, possibly joined, into its ValidationErrors.
func validationErrors(err error) []*core.ValidationError {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*core.ValidationError
		for _, inner := range joined.Unwrap() {
			out = append(out, validationErrors(inner)...)
		}
		return out
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return []*core.ValidationError{verr}
	}
	return nil
}
