package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/models"
)

// renderer prints controller events to the terminal: one line per progress
// change and only the new tail of the cumulative log.
type renderer struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	last    models.JobState
	printed string
}

func newRenderer(out, errOut io.Writer) *renderer {
	return &renderer{out: out, errOut: errOut}
}

func (r *renderer) subscribe(events interfaces.EventService) error {
	handlers := map[interfaces.EventType]interfaces.EventHandler{
		interfaces.EventImportSubmitted:     r.onState,
		interfaces.EventImportStatusChanged: r.onState,
		interfaces.EventImportLogsUpdated:   r.onLogs,
		interfaces.EventImportCleared:       r.onCleared,
		interfaces.EventImportError:         r.onError,
		interfaces.EventImportPollDegraded:  r.onDegraded,
	}
	for eventType, handler := range handlers {
		if err := events.Subscribe(eventType, handler); err != nil {
			return fmt.Errorf("failed to subscribe renderer to %s: %w", eventType, err)
		}
	}
	return nil
}

func (r *renderer) onState(ctx context.Context, event interfaces.Event) error {
	state, ok := event.Payload.(models.JobState)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if state == r.last {
		return nil
	}
	r.last = state
	fmt.Fprintf(r.out, "[%s] %s\n", progressBar(state.Progress(), 20), state)
	return nil
}

func (r *renderer) onLogs(ctx context.Context, event interfaces.Event) error {
	payload, ok := event.Payload.(interfaces.ImportLogsPayload)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, newTail(r.printed, payload.Text))
	r.printed = payload.Text
	return nil
}

func (r *renderer) onCleared(ctx context.Context, event interfaces.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = models.JobState{}
	r.printed = ""
	fmt.Fprintln(r.out, "Import cleared")
	return nil
}

func (r *renderer) onError(ctx context.Context, event interfaces.Event) error {
	payload, ok := event.Payload.(interfaces.ImportErrorPayload)
	if !ok {
		return nil
	}
	fmt.Fprintf(r.errOut, "! %s (%s): %s\n", payload.Operation, payload.Kind, payload.Message)
	return nil
}

func (r *renderer) onDegraded(ctx context.Context, event interfaces.Event) error {
	payload, ok := event.Payload.(interfaces.ImportPollDegradedPayload)
	if !ok {
		return nil
	}
	fmt.Fprintf(r.errOut, "! %d status checks in a row failed, still retrying\n", payload.Failures)
	return nil
}

// newTail returns the part of text not printed yet. A buffer that does not
// extend the previous one is printed in full.
func newTail(printed, text string) string {
	tail := text
	if printed != "" && strings.HasPrefix(text, printed) {
		tail = text[len(printed):]
	}
	tail = strings.TrimLeft(tail, "\n")
	if tail == "" {
		return ""
	}
	if !strings.HasSuffix(tail, "\n") {
		tail += "\n"
	}
	return tail
}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
