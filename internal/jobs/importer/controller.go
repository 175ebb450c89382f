// Package importer is the client-side lifecycle controller of a subscriber
// bulk-import job: submission, polling, log tailing, cancellation and the
// final acknowledgement that returns the system to idle.
package importer

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/common"
	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/models"
)

// Controller owns the job store and the components that act on it.
// Presentation layers read snapshots and subscribe to events; they never
// mutate state.
//
// Event handlers run on controller goroutines and must not call Close.
type Controller struct {
	api    interfaces.ImportAPI
	store  *store
	poller *poller
	notify notifier
	logger arbor.ILogger

	// submitMu serialises Submit and RequestDone so the idle check and the
	// resulting transition cannot interleave.
	submitMu sync.Mutex
}

// NewController creates a controller in the idle state. Call Refresh to pick
// up a job that is already running remotely.
func NewController(api interfaces.ImportAPI, events interfaces.EventService, logger arbor.ILogger, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ordering != common.OrderingLastCompleted && o.ordering != common.OrderingLastIssued {
		logger.Warn().
			Str("ordering", o.ordering).
			Msgf("Unknown poll ordering, using %s", common.OrderingLastCompleted)
		o.ordering = common.OrderingLastCompleted
	}

	st := newStore()
	n := notifier{events: events, logger: logger}

	return &Controller{
		api:    api,
		store:  st,
		poller: newPoller(api, st, n, logger, o),
		notify: n,
		logger: logger,
	}
}

// State returns a snapshot of the current job.
func (c *Controller) State() models.JobState {
	return c.store.snapshot()
}

// Logs returns the most recently fetched cumulative log text.
func (c *Controller) Logs() string {
	return c.store.logText()
}

// Progress returns the completion percentage of the current job.
func (c *Controller) Progress() int {
	return c.store.snapshot().Progress()
}

// Polling reports whether the poll timer is active.
func (c *Controller) Polling() bool {
	return c.poller.Polling()
}

// Changed returns a channel that is closed on the next state or log change.
func (c *Controller) Changed() <-chan struct{} {
	_, ch := c.store.view()
	return ch
}

// Refresh fetches the remote status once. A job found importing or stopping
// resumes polling; a finished or failed job is shown until RequestDone.
func (c *Controller) Refresh(ctx context.Context) (models.JobState, error) {
	return c.poller.refresh(ctx)
}

// WaitTerminal blocks until the job reaches finished or failed. It returns
// ErrNoActiveJob when the controller is idle and not polling, since nothing
// could move it forward.
func (c *Controller) WaitTerminal(ctx context.Context) (models.JobState, error) {
	for {
		state, changed := c.store.view()
		if state.Status.IsTerminal() {
			return state, nil
		}
		if c.poller.isClosed() {
			return state, ErrClosed
		}
		if state.IsIdle() && !c.poller.Polling() {
			return state, ErrNoActiveJob
		}

		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-changed:
		}
	}
}

// Close stops polling, aborts in-flight requests and waits for them.
// It is safe to call more than once.
func (c *Controller) Close() error {
	c.poller.close()
	c.logger.Debug().Msg("Import controller closed")
	return nil
}
