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

package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/lily-ai/lily/pkg/http"
	"github.com/lily-ai/lily/pkg/log"
)

// ExceptionMiddleware turns a handler panic into a 500 error envelope.
func ExceptionMiddleware(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("panic in request handler",
				"path", c.Path(),
				"request_id", RequestID(c),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			err = http.WithRepErr(c.Status(fiber.StatusInternalServerError), http.InternalError.Code, errorToString(r), c.Path())
		}
	}()

	return c.Next()
}

func errorToString(r any) string {
	switch v := r.(type) {
	case http.ResponseErr:
		// expected errors are safe to show the client
		if errMsg, ok := v.ErrMsg.(string); ok {
			return errMsg
		}
		return http.InternalError.Msg
	default:
		return http.InternalError.Msg
	}
}
