// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/mia-platform/zohosync/internal/info"
	"github.com/mia-platform/zohosync/internal/logger"
)

const (
	loggerName = "zohosync:server"
)

var (
	ErrServerListen   = errors.New("server listen error")
	ErrServerShutdown = errors.New("server shutdown error")
)

// StatusFunc returns the document served by the status route.
type StatusFunc func() any

type Server struct {
	Config

	app *fiber.App
}

// NewServer returns a server exposing the health routes and, under /-/status, the value
// returned by status.
func NewServer(ctx context.Context, cfg *Config, status StatusFunc) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: cfg.DisableStartupMessage,
	})
	app.Use(logger.RequestMiddlewareLogger(logger.FromContext(ctx), []string{"/-/"}))

	statusRoutes(app, info.AppName, info.Version, status)

	return &Server{
		Config: *cfg,
		app:    app,
	}
}

func (s *Server) Start() error {
	if err := s.app.Listen(fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)); err != nil {
		return fmt.Errorf("%w: %w", ErrServerListen, err)
	}
	return nil
}

func (s *Server) Stop() error {
	if err := s.app.Shutdown(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerShutdown, err)
	}
	return nil
}

func (s *Server) StartAsync(ctx context.Context) {
	log := logger.FromContext(ctx).WithName(loggerName)
	go func() {
		log.Info("status server listening", "host", s.HTTPHost, "port", s.HTTPPort)
		if err := s.Start(); err != nil {
			log.Error(err.Error())
		}
	}()
}
