package realtime

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/clinicpulse/clinicpulse/internal/logging"
)

// DefaultInterval is how often the bus synthesizes an update while running.
const DefaultInterval = 30 * time.Second

// Callback receives delivered events. It runs on the delivering goroutine and
// must not call TriggerUpdate on the same bus.
type Callback func(UpdateEvent)

// Generator synthesizes the event for a tick fired at now.
type Generator func(now time.Time) UpdateEvent

// State is the lifecycle state of a Bus.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Ticker is the periodic source that drives simulated updates.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	*time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func newRealTicker(d time.Duration) Ticker {
	return &realTicker{time.NewTicker(d)}
}

type subscription struct {
	id uint64
	fn Callback
}

// Stats is a point-in-time view of the bus.
type Stats struct {
	State         State  `json:"state" yaml:"state"`
	Subscribers   int    `json:"subscribers" yaml:"subscribers"`
	TimersStarted uint64 `json:"timers_started" yaml:"timers_started"`
	TimersStopped uint64 `json:"timers_stopped" yaml:"timers_stopped"`
	Delivered     uint64 `json:"delivered" yaml:"delivered"` // events that reached at least one subscriber
	Failures      uint64 `json:"failures" yaml:"failures"`
}

// Bus is an in-process publish/subscribe registry. While it has at least one
// subscriber it runs a ticker that delivers one generated event per tick.
//
// The subscriber set for a delivery is snapshotted before the first callback
// runs: a subscriber added during delivery first hears the next event, and
// one removed during delivery still receives the current event. Deliveries
// never overlap; callbacks are invoked in subscription order.
type Bus struct {
	mu       sync.Mutex
	subs     []subscription
	nextID   uint64
	stop     chan struct{}
	started  uint64
	stopped  uint64
	sent     uint64
	failures uint64

	deliverMu sync.Mutex

	interval  time.Duration
	generate  Generator
	newTicker func(time.Duration) Ticker
	logger    *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithInterval sets the tick interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithGenerator replaces the simulated event source.
func WithGenerator(g Generator) Option {
	return func(b *Bus) {
		if g != nil {
			b.generate = g
		}
	}
}

// WithTickerFactory replaces the ticker constructor, mostly for tests.
func WithTickerFactory(f func(time.Duration) Ticker) Option {
	return func(b *Bus) {
		if f != nil {
			b.newTicker = f
		}
	}
}

// WithLogger sets the logger used for lifecycle and failure messages.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an idle bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		interval:  DefaultInterval,
		newTicker: newRealTicker,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.generate == nil {
		b.generate = NewSimulator(nil).Next
	}
	if b.logger == nil {
		b.logger = logging.L().With("component", "update_bus")
	}
	return b
}

// Subscribe registers fn and returns a function that removes exactly this
// registration. Calling the returned function more than once is harmless.
// The first subscriber starts the ticker.
func (b *Bus) Subscribe(fn Callback) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	if len(b.subs) == 1 && b.stop == nil {
		b.startLocked()
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := slices.IndexFunc(b.subs, func(s subscription) bool { return s.id == id })
	if idx < 0 {
		return
	}
	b.subs = slices.Delete(b.subs, idx, idx+1)

	if len(b.subs) == 0 && b.stop != nil {
		close(b.stop)
		b.stop = nil
		b.stopped++
		b.logger.Debug("update bus idle")
	}
}

func (b *Bus) startLocked() {
	stop := make(chan struct{})
	b.stop = stop
	b.started++
	ticker := b.newTicker(b.interval)
	b.logger.Debug("update bus running", "interval", b.interval)
	go b.run(ticker, stop)
}

func (b *Bus) run(ticker Ticker, stop chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C():
			// a tick may race with the last unsubscribe
			select {
			case <-stop:
				return
			default:
			}
			b.deliver(b.generate(now))
		}
	}
}

// TriggerUpdate delivers ev to every current subscriber before returning.
func (b *Bus) TriggerUpdate(ev UpdateEvent) {
	b.deliver(ev)
}

func (b *Bus) deliver(ev UpdateEvent) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	snapshot := slices.Clone(b.subs)
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	var failed uint64
	for i, s := range snapshot {
		if !b.invoke(i, s.fn, ev.Clone()) {
			failed++
		}
	}

	b.mu.Lock()
	b.sent++
	b.failures += failed
	b.mu.Unlock()
}

func (b *Bus) invoke(position int, fn Callback, ev UpdateEvent) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("update subscriber panicked",
				"position", position,
				"kind", ev.Kind,
				"panic", r,
			)
			ok = false
		}
	}()
	fn(ev)
	return true
}

// Close drops every subscription and stops the ticker.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = nil
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
		b.stopped++
	}
}

// State reports whether the ticker is running.
func (b *Bus) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Bus) stateLocked() State {
	if b.stop != nil {
		return StateRunning
	}
	return StateIdle
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Stats returns lifecycle and delivery counters.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:         b.stateLocked(),
		Subscribers:   len(b.subs),
		TimersStarted: b.started,
		TimersStopped: b.stopped,
		Delivered:     b.sent,
		Failures:      b.failures,
	}
}
