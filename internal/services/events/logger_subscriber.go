package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/models"
)

// NewLoggerSubscriber creates an event handler that logs all import events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		switch payload := event.Payload.(type) {
		case models.JobState:
			logEvent = logEvent.
				Str("status", string(payload.Status)).
				Str("name", payload.Name).
				Int("imported", payload.Imported).
				Int("total", payload.Total)
		case interfaces.ImportLogsPayload:
			logEvent = logEvent.Int("log_bytes", len(payload.Text))
		case interfaces.ImportErrorPayload:
			logEvent = logEvent.
				Str("kind", payload.Kind).
				Str("operation", payload.Operation).
				Str("message", payload.Message)
		case interfaces.ImportPollDegradedPayload:
			logEvent = logEvent.Int("failures", payload.Failures)
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all import event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	for _, eventType := range interfaces.AllImportEventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Debug().
		Int("event_type_count", len(interfaces.AllImportEventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
