package importer

import (
	"context"

	"github.com/ternarybob/subimport/internal/interfaces"
)

// RequestStop asks the server to stop the running job. The local status is
// left alone: the stopping transition shows up once a tick observes it.
func (c *Controller) RequestStop(ctx context.Context) error {
	if c.poller.isClosed() {
		return ErrClosed
	}

	state := c.store.snapshot()
	if !state.Status.IsActive() {
		return c.notify.fail(ctx, KindRequest, opStop, ErrNoActiveJob)
	}

	if err := c.api.StopImport(ctx); err != nil {
		return c.notify.fail(ctx, KindRequest, opStop, err)
	}

	c.logger.WithCorrelationId(state.Name).Info().
		Str("name", state.Name).
		Msg("Stop requested for subscriber import")

	// The next tick has to observe the transition.
	c.poller.Start()
	return nil
}

// RequestDone acknowledges a finished or failed job. On success the state is
// reset to idle and a fresh status check confirms it.
func (c *Controller) RequestDone(ctx context.Context) error {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	if c.poller.isClosed() {
		return ErrClosed
	}

	state := c.store.snapshot()
	if !state.Status.IsTerminal() {
		return c.notify.fail(ctx, KindRequest, opDone, ErrNotTerminal)
	}

	if err := c.api.StopImport(ctx); err != nil {
		return c.notify.fail(ctx, KindRequest, opDone, err)
	}

	c.poller.reset()
	c.logger.WithCorrelationId(state.Name).Info().
		Str("name", state.Name).
		Str("status", string(state.Status)).
		Msg("Subscriber import cleared")
	c.notify.publish(ctx, interfaces.EventImportCleared, state)

	// A failed confirmation is already reported as a poll_fetch error.
	if _, err := c.poller.refresh(ctx); err != nil {
		c.logger.Debug().Err(err).Msg("Status check after clear failed")
	}
	return nil
}
