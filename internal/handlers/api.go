package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/notify"
	"github.com/clinicpulse/clinicpulse/internal/realtime"
)

// API bundles the state the HTTP surface needs. The bus and sink are
// constructed by the caller and shared with the rest of the process.
type API struct {
	Bus        *realtime.Bus
	Sink       *notify.Sink
	Hub        *realtime.Hub
	ClinicName string
	Version    string

	// RelayNotifications is set when a Postgres listener feeds the bus.
	// Events are then published through pg_notify so every instance sees
	// them exactly once.
	RelayNotifications bool

	notifyEvent func(context.Context, realtime.UpdateEvent)
}

// NewAPI wires the HTTP surface to an existing bus and sink.
func NewAPI(bus *realtime.Bus, sink *notify.Sink, hub *realtime.Hub, clinicName, version string) *API {
	return &API{
		Bus:         bus,
		Sink:        sink,
		Hub:         hub,
		ClinicName:  clinicName,
		Version:     version,
		notifyEvent: realtime.NotifyEvent,
	}
}

// Register mounts every route on app.
func (a *API) Register(app *fiber.App) {
	app.Get("/health", a.HandleHealth)
	app.Get("/up", HandleUp) // Docker health check
	app.Get("/api/version", a.HandleVersion)

	app.Get("/api/assets", HandleAssets)
	app.Get("/api/tasks", HandleTasks)
	app.Post("/api/tasks", HandleCreateTask)
	app.Post("/api/tasks/:id/complete", a.HandleCompleteTask)
	app.Get("/api/competitors", HandleCompetitors)
	app.Get("/api/kpis/:metric", HandleKPISeries)

	app.Get("/api/ecosystem", a.HandleEcosystem)

	app.Get("/api/notifications", a.HandleNotifications)
	app.Post("/api/notifications/read-all", a.HandleMarkAllRead)
	app.Post("/api/notifications/:id/read", a.HandleMarkRead)
	app.Delete("/api/notifications/:id", a.HandleDismiss)

	app.Post("/api/realtime/trigger", a.HandleTrigger)
	app.Get("/api/realtime/status", a.HandleRealtimeStatus)

	if a.Hub != nil {
		app.Get("/ws", a.Hub.Handler())
	}
}

// publish routes ev through Postgres when a listener relays notifications,
// otherwise straight onto the local bus.
func (a *API) publish(ctx context.Context, ev realtime.UpdateEvent) {
	if a.RelayNotifications && a.notifyEvent != nil {
		a.notifyEvent(ctx, ev)
		return
	}
	a.Bus.TriggerUpdate(ev)
}
