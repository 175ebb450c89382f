package importer

import (
	"context"
	"errors"

	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/models"
)

// Submit validates the request, uploads it and on acceptance starts polling.
// Invalid requests and submissions while a job is active are rejected without
// a network call. A failed upload leaves the controller idle.
func (c *Controller) Submit(ctx context.Context, req *models.UploadRequest) error {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	if c.poller.isClosed() {
		return ErrClosed
	}
	if req == nil {
		return c.notify.fail(ctx, KindValidation, opSubmit, errors.New("upload request is required"))
	}
	if err := req.Validate(); err != nil {
		return c.notify.fail(ctx, KindValidation, opSubmit, err)
	}
	if current := c.store.snapshot(); !current.IsIdle() {
		return c.notify.fail(ctx, KindValidation, opSubmit, ErrJobActive)
	}

	c.logger.Info().
		Str("file", req.File.Name).
		Int("size", len(req.File.Content)).
		Str("delimiter", req.Delimiter).
		Bool("override_status", req.OverrideStatus).
		Msgf("Submitting subscriber import to %d list(s)", len(req.Lists))

	ack, err := c.api.StartImport(ctx, req.Params(), req.File)
	if err != nil {
		return c.notify.fail(ctx, KindSubmission, opSubmit, err)
	}

	state := models.JobState{
		Status: models.JobStatusImporting,
		Name:   req.File.Name,
	}
	if ack != nil {
		if ack.Name != "" {
			state.Name = ack.Name
		}
		state.Imported = ack.Imported
		state.Total = ack.Total
	}

	if err := c.poller.begin(state); err != nil {
		return err
	}

	c.logger.WithCorrelationId(state.Name).Info().
		Str("name", state.Name).
		Int("total", state.Total).
		Msg("Subscriber import accepted")

	c.notify.publish(ctx, interfaces.EventImportSubmitted, state)
	return nil
}
