package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/httpx"
	"github.com/clinicpulse/clinicpulse/internal/realtime"
)

// HandleTrigger injects an event as if a tick had produced it.
func (a *API) HandleTrigger(c fiber.Ctx) error {
	var req TriggerRequest
	if err := httpx.ReadJSON(c, &req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err.Error())
	}

	kind := realtime.Kind(req.Type)
	if !kind.Valid() {
		return httpx.Error(c, fiber.StatusBadRequest, "type must be one of asset, task, metric")
	}
	action := realtime.Action(req.Action)
	if action == "" {
		action = realtime.ActionUpdate
	}
	if !action.Valid() {
		return httpx.Error(c, fiber.StatusBadRequest, "action must be one of create, update, delete")
	}

	if req.Data == nil {
		req.Data = map[string]any{}
	}

	ev := realtime.NewUpdateEvent(kind, action, req.Data, time.Now())
	a.publish(c.Context(), ev)

	return httpx.JSON(c, fiber.StatusAccepted, ev)
}

func (a *API) HandleRealtimeStatus(c fiber.Ctx) error {
	status := RealtimeStatus{
		Stats: a.Bus.Stats(),
		Relay: a.RelayNotifications,
	}
	if a.Hub != nil {
		status.Clients = a.Hub.GetClientCount()
	}
	return c.JSON(status)
}
