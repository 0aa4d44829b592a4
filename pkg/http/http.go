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

package http

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/lily-ai/lily/pkg/log"
)

// Http holds the API server configuration.
type Http struct {
	Host            string
	Port            int
	ContextPath     string
	AccessLog       bool
	ExposeMetrics   bool
	BodyLimit       int // bytes
	ReadTimeout     int // seconds
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
}

// SetDefaults fills unset fields.
func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.ContextPath == "" {
		h.ContextPath = "/api/v1"
	}
	if h.BodyLimit <= 0 {
		h.BodyLimit = 1 << 20
	}
	if h.ReadTimeout <= 0 {
		h.ReadTimeout = 10
	}
	if h.WriteTimeout <= 0 {
		h.WriteTimeout = 10
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = 60
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10
	}
}

// Addr returns the listen address.
func (h Http) Addr() string {
	return net.JoinHostPort(h.Host, fmt.Sprint(h.Port))
}

// FiberConfig returns the fiber settings derived from h.
func (h Http) FiberConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(h.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(h.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(h.IdleTimeout) * time.Second,
		BodyLimit:             h.BodyLimit,
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	}
}

// NewHttp starts app in the background and returns its shutdown hook.
// errc receives the listener error if the server stops on its own.
func NewHttp(cfg Http, app *fiber.App) (shutdown func(), errc <-chan error) {
	ch := make(chan error, 1)
	go func() {
		log.Infow("http server start", "addr", cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			ch <- err
		}
		close(ch)
	}()

	return func() {
		timeout := time.Duration(cfg.ShutdownTimeout) * time.Second
		log.Infow("http server shutting down", "timeout", timeout)
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			log.Errorw("http server shutdown error", "error", err)
			return
		}
		log.Info("http server shut down gracefully")
	}, ch
}

// ErrorHandler writes errors that escape the handlers as an error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := InternalError.Msg
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		log.Errorw("unhandled request error", "path", c.Path(), "error", err)
	}
	return WithRepErr(c.Status(code), code, msg, c.Path())
}
