package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/httpx"
)

func (a *API) HandleNotifications(c fiber.Ctx) error {
	return c.JSON(NotificationsResponse{
		Notifications: a.Sink.List(),
		Unread:        a.Sink.UnreadCount(),
	})
}

func (a *API) HandleMarkRead(c fiber.Ctx) error {
	if !a.Sink.MarkRead(c.Params("id")) {
		return httpx.Error(c, fiber.StatusNotFound, "Notification not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *API) HandleMarkAllRead(c fiber.Ctx) error {
	a.Sink.MarkAllRead()
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDismiss removes a notification. Unknown ids succeed.
func (a *API) HandleDismiss(c fiber.Ctx) error {
	a.Sink.Dismiss(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}
