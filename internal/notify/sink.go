// Package notify keeps the user-facing notification list fed by realtime
// updates.
package notify

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicpulse/clinicpulse/internal/realtime"
)

// Severity drives how a notification is presented.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one entry in the notification centre.
type Notification struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Message   string    `json:"message" yaml:"message"`
	Severity  Severity  `json:"severity" yaml:"severity"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Read      bool      `json:"read" yaml:"read"`
}

// Sink holds notifications newest first. It is safe for concurrent use.
type Sink struct {
	mu    sync.RWMutex
	items []Notification
	now   func() time.Time
	newID func() string
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// OnEvent turns asset warnings and task completions into notifications.
// Other events are ignored. It has the realtime.Callback signature.
func (s *Sink) OnEvent(ev realtime.UpdateEvent) {
	switch {
	case ev.Kind == realtime.KindAsset && ev.Payload["status"] == "warning":
		s.Add("Asset Alert", "Asset status changed to warning", SeverityWarning)
	case ev.Kind == realtime.KindTask && ev.Payload["completed"] == true:
		s.Add("Task Completed", "A task has been marked as completed", SeveritySuccess)
	}
}

// Add prepends an unread notification and returns it.
func (s *Sink) Add(title, message string, severity Severity) Notification {
	n := Notification{
		ID:        s.newID(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Insert(s.items, 0, n)
	return n
}

// MarkRead flags one notification as read. It reports whether id was found.
func (s *Sink) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead flags every notification as read.
func (s *Sink) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
}

// Dismiss removes id from the list. Unknown ids are a no-op.
func (s *Sink) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.DeleteFunc(s.items, func(n Notification) bool { return n.ID == id })
}

// List returns a copy of the notifications, newest first.
func (s *Sink) List() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// UnreadCount returns how many notifications are unread.
func (s *Sink) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// Len returns the number of notifications.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
