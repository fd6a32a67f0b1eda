// Copyright 2025 Ekatalog Team
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

// Package http owns the fiber app lifecycle: construction, ambient routes
// and graceful shutdown.
package http

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/httpx"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/log"
	"github.com/yudaprayogaIT/cms-adminEkatalog/pkg/version"
)

type Http struct {
	Host            string
	Port            int
	ContextPath     string
	ExposeMetrics   bool
	AccessLog       bool
	BodyLimit       int
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
}

func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.ContextPath == "" {
		h.ContextPath = "/api"
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = 10
	}
}

// NewApp builds the fiber app with the ambient routes. Domain routes are
// registered by the caller before Run.
func NewApp(cfg *Http) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Ekatalog Admin",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(cfg.IdleTimeout) * time.Second,
		BodyLimit:             cfg.BodyLimit,
	})

	app.Use(fiberrecover.New())

	if cfg.AccessLog {
		app.Use(httpx.AccessLogFormat(log.GetLogger()))
	}

	if cfg.ExposeMetrics {
		metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get("/metrics", func(c *fiber.Ctx) error {
			metrics(c.Context())
			return nil
		})
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	return app
}

// Run starts the listener and returns a hook that blocks until a shutdown
// signal arrives, then drains the app.
func Run(cfg *Http, app *fiber.App) func() {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	go func() {
		log.Infof("http server start at: %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	return func() {
		<-sc
		log.Info("http server shutting down")

		timeout := time.Duration(cfg.ShutdownTimeout) * time.Second
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			log.Errorf("http server shutdown error: %v", err)
			return
		}
		log.Info("http server shut down gracefully")
	}
}
