package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogTransport writes notifications to the log. It is the default transport
// when no delivery backend is configured, and keeps the fan-out path
// observable in development.
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport creates a LogTransport.
func NewLogTransport(logger *zap.Logger) *LogTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, n Notification) error {
	t.logger.Info("notification",
		zap.String("topic", n.Payload.Topic),
		zap.String("title", n.Payload.Title),
		zap.String("link", n.Payload.Link),
		zap.String("scope", n.Payload.Scope),
		zap.Strings("recipients", n.Recipients.EntityRefs),
	)
	return nil
}
