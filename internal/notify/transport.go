package notify

import "context"

// Recipients addresses a notification by entity refs, the way the host
// framework's notification system expects them.
type Recipients struct {
	Type             string   `json:"type"`
	EntityRefs       []string `json:"entityRef"`
	ExcludeEntityRef string   `json:"excludeEntityRef,omitempty"`
}

// Payload is the human-facing part of a notification. Scope lets the
// transport collapse repeated notifications about the same thread.
type Payload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Topic       string `json:"topic"`
	Scope       string `json:"scope,omitempty"`
}

// Notification is what gets handed to the transport.
type Notification struct {
	Recipients Recipients `json:"recipients"`
	Payload    Payload    `json:"payload"`
}

// Transport delivers notifications. Implementations are external; delivery
// failures are logged by the dispatcher and never surface to callers.
type Transport interface {
	Send(ctx context.Context, notification Notification) error
}
