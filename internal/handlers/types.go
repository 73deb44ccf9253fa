package handlers

import (
	"github.com/clinicpulse/clinicpulse/internal/ecosystem"
	"github.com/clinicpulse/clinicpulse/internal/notify"
	"github.com/clinicpulse/clinicpulse/internal/realtime"
)

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"` // RFC3339 or YYYY-MM-DD
	AIGenerated bool   `json:"ai_generated"`
}

// TriggerRequest is the body of POST /api/realtime/trigger
type TriggerRequest struct {
	Type   string         `json:"type"`
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// EcosystemResponse is the laid out ecosystem graph plus the collapsed set it was built with
type EcosystemResponse struct {
	ecosystem.Graph
	Collapsed []string `json:"collapsed"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
}

// NotificationsResponse lists notifications newest first
type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// RealtimeStatus reports the bus and websocket state
type RealtimeStatus struct {
	realtime.Stats
	Clients int  `json:"clients"`
	Relay   bool `json:"relay"`
}
