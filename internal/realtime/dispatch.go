package realtime

// KindHandlers forwards each event's payload to the handler for its kind.
// Nil handlers are skipped. Pass Handle to Bus.Subscribe.
type KindHandlers struct {
	OnAsset  func(payload map[string]any)
	OnTask   func(payload map[string]any)
	OnMetric func(payload map[string]any)
}

// Handle routes ev by kind.
func (h KindHandlers) Handle(ev UpdateEvent) {
	var fn func(map[string]any)
	switch ev.Kind {
	case KindAsset:
		fn = h.OnAsset
	case KindTask:
		fn = h.OnTask
	case KindMetric:
		fn = h.OnMetric
	}
	if fn != nil {
		fn(ev.Payload)
	}
}
