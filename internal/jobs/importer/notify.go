package importer

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/interfaces"
)

// notifier publishes controller events. It never holds controller locks while
// handlers run.
type notifier struct {
	events interfaces.EventService
	logger arbor.ILogger
}

func (n notifier) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if n.events == nil {
		return
	}
	if err := n.events.PublishSync(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		n.logger.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Msg("Import event handler failed")
	}
}

// fail logs and publishes an error event, then returns the structured error.
func (n notifier) fail(ctx context.Context, kind ErrorKind, op string, err error) *ImportError {
	ie := &ImportError{Kind: kind, Op: op, Err: err}

	n.logger.Warn().
		Str("kind", string(kind)).
		Str("operation", op).
		Err(err).
		Msg("Import operation failed")

	n.publish(ctx, interfaces.EventImportError, interfaces.ImportErrorPayload{
		Kind:      string(kind),
		Operation: op,
		Message:   err.Error(),
	})
	return ie
}
