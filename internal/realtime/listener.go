package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/clinicpulse/clinicpulse/internal/database"
	"github.com/clinicpulse/clinicpulse/internal/logging"
)

// ChannelName is the Postgres NOTIFY channel written by the table triggers
// and by NotifyEvent.
const ChannelName = "clinicpulse_updates"

// Publisher is the part of Bus the listener needs.
type Publisher interface {
	TriggerUpdate(UpdateEvent)
}

// NotifyEvent publishes ev through pg_notify so every process listening on
// the database delivers it to its own bus.
func NotifyEvent(ctx context.Context, ev UpdateEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.L().Warn("failed to marshal realtime payload", "error", err)
		return
	}

	if _, err := database.DB.ExecContext(ctx, "SELECT pg_notify($1, $2)", ChannelName, string(data)); err != nil {
		logging.L().Warn("failed to send realtime notification", "error", err)
	}
}

// DecodeNotification parses a NOTIFY payload into an event. Missing
// timestamps are filled with now.
func DecodeNotification(extra string, now time.Time) (UpdateEvent, error) {
	var ev UpdateEvent
	if err := json.Unmarshal([]byte(extra), &ev); err != nil {
		return UpdateEvent{}, fmt.Errorf("decode notification: %w", err)
	}
	if !ev.Kind.Valid() {
		return UpdateEvent{}, fmt.Errorf("decode notification: unknown kind %q", ev.Kind)
	}
	if !ev.Action.Valid() {
		return UpdateEvent{}, fmt.Errorf("decode notification: unknown action %q", ev.Action)
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = now
	}
	return ev, nil
}

// StartListener relays database notifications onto pub until ctx is done.
func StartListener(ctx context.Context, databaseURL string, pub Publisher) error {
	listener := pq.NewListener(databaseURL, 5*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			logging.L().Warn("realtime listener event", "event", event, "error", err)
		}
	})

	if err := listener.Listen(ChannelName); err != nil {
		_ = listener.Close()
		return err
	}

	go func() {
		defer func() {
			_ = listener.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				if n == nil {
					continue
				}
				relay(pub, n.Extra)
			case <-time.After(time.Minute):
				if err := listener.Ping(); err != nil {
					logging.L().Warn("realtime listener ping failed", "error", err)
				}
			}
		}
	}()

	return nil
}

func relay(pub Publisher, extra string) {
	ev, err := DecodeNotification(extra, time.Now())
	if err != nil {
		logging.L().Warn("ignoring realtime notification", "error", err)
		return
	}
	pub.TriggerUpdate(ev)
}
