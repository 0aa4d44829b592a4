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
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const fiberTracerName = "github.com/lily-ai/lily/pkg/trace/fiber"

// FiberMiddleware starts a server span per request and stores the span
// context as the request's UserContext so handlers propagate it downstream.
func FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		carrier := propagation.MapCarrier{}
		c.Request().Header.VisitAll(func(k, v []byte) {
			carrier.Set(strings.ToLower(string(k)), string(v))
		})
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		start := time.Now()
		ctx, span := otel.Tracer(fiberTracerName).Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", string(c.Request().URI().RequestURI())),
			),
		)
		defer span.End()
		c.SetUserContext(ctx)

		if id, ok := c.Locals("request_id").(string); ok && id != "" {
			span.SetAttributes(attribute.String("http.request.id", id))
		}
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			span.SetAttributes(attribute.String("http.user_agent", ua))
		}

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.duration_ms", time.Since(start).Milliseconds()),
		)
		if status >= fiber.StatusInternalServerError {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
			}
		}
		return err
	}
}

// TraceID returns the trace id of the span in c's UserContext, or "".
func TraceID(c *fiber.Ctx) string {
	sc := trace.SpanContextFromContext(c.UserContext())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
