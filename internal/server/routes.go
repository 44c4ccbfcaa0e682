// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func statusRoutes(app *fiber.App, serviceName, version string, status StatusFunc) {
	healthy := func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":  "OK",
			"name":    serviceName,
			"version": version,
		})
	}

	app.Get("/-/healthz", healthy)
	app.Get("/-/ready", healthy)
	app.Get("/-/status", func(c *fiber.Ctx) error {
		if status == nil {
			return c.SendStatus(http.StatusNoContent)
		}
		return c.Status(http.StatusOK).JSON(status())
	})
}
