package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/database"
)

func (a *API) HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "clinicpulse",
		"clinic":  a.ClinicName,
		"bus":     a.Bus.State(),
	})
}

// HandleUp returns 200 when the server is running and the database answers.
func HandleUp(c fiber.Ctx) error {
	if database.DB == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("database unavailable")
	}
	if err := database.DB.PingContext(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("database unavailable")
	}
	return c.SendStatus(fiber.StatusOK)
}

func (a *API) HandleVersion(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": a.Version,
	})
}
