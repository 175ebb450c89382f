package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventImportSubmitted is published when the server accepts an upload.
	// Payload: models.JobState
	EventImportSubmitted EventType = "import_submitted"

	// EventImportStatusChanged is published whenever a status response is applied.
	// Payload: models.JobState
	EventImportStatusChanged EventType = "import_status_changed"

	// EventImportLogsUpdated is published when the log buffer is replaced.
	// Presentation layers scroll to (or print) the newest content.
	// Payload: ImportLogsPayload
	EventImportLogsUpdated EventType = "import_logs_updated"

	// EventImportCleared is published after a terminal job was acknowledged.
	EventImportCleared EventType = "import_cleared"

	// EventImportError is published for every caught failure.
	// Payload: ImportErrorPayload
	EventImportError EventType = "import_error"

	// EventImportPollDegraded is published once per streak of consecutive
	// fetch failures reaching the configured threshold.
	// Payload: ImportPollDegradedPayload
	EventImportPollDegraded EventType = "import_poll_degraded"
)

// AllImportEventTypes lists every event the import controller publishes.
var AllImportEventTypes = []EventType{
	EventImportSubmitted,
	EventImportStatusChanged,
	EventImportLogsUpdated,
	EventImportCleared,
	EventImportError,
	EventImportPollDegraded,
}

// ImportLogsPayload carries the replaced log buffer.
type ImportLogsPayload struct {
	Text string
}

// ImportErrorPayload describes a failure for the notification collaborator.
type ImportErrorPayload struct {
	Kind      string // validation, submission, poll_fetch, request
	Operation string // submit, status, logs, stop, done
	Message   string
}

// ImportPollDegradedPayload reports a run of failed fetches.
type ImportPollDegradedPayload struct {
	Failures int
}

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Unsubscribe from an event type
	Unsubscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
