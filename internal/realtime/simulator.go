package realtime

import (
	"math/rand/v2"
	"sync"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Simulator produces plausible dashboard updates for demo and development.
// Only updates are simulated; the kind is chosen uniformly.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator returns a simulator drawing from rng, or from a time-seeded
// source when rng is nil.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Simulator{rng: rng}
}

// Next returns the event for a tick at now. It satisfies Generator.
func (s *Simulator) Next(now time.Time) UpdateEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := Kinds[s.rng.IntN(len(Kinds))]

	var payload map[string]any
	switch kind {
	case KindAsset:
		status := "active"
		if s.rng.Float64() > 0.7 {
			status = "warning"
		}
		payload = map[string]any{
			"id":          s.randomID(),
			"status":      status,
			"lastUpdated": now.UTC().Format(time.RFC3339),
		}
	case KindTask:
		priority := "medium"
		if s.rng.Float64() > 0.5 {
			priority = "high"
		}
		payload = map[string]any{
			"id":        s.randomID(),
			"completed": s.rng.Float64() > 0.8,
			"priority":  priority,
		}
	case KindMetric:
		payload = map[string]any{
			"metricKind": "data_quality",
			"value":      80 + s.rng.IntN(20),
		}
	}

	return UpdateEvent{
		Kind:       kind,
		Action:     ActionUpdate,
		Payload:    payload,
		OccurredAt: now,
	}
}

func (s *Simulator) randomID() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = idAlphabet[s.rng.IntN(len(idAlphabet))]
	}
	return string(b)
}

// Sequence returns a Generator that replays events in order, stamping each
// with the tick time, and repeats the last one once exhausted.
func Sequence(events ...UpdateEvent) Generator {
	var mu sync.Mutex
	i := 0
	return func(now time.Time) UpdateEvent {
		mu.Lock()
		defer mu.Unlock()
		if len(events) == 0 {
			return UpdateEvent{Kind: KindMetric, Action: ActionUpdate, OccurredAt: now}
		}
		ev := events[min(i, len(events)-1)].Clone()
		i++
		ev.OccurredAt = now
		return ev
	}
}
