package importer

import "context"

// FetchLogs retrieves the full cumulative log text of the current job and
// replaces the log buffer. On failure the buffer is kept and polling is not
// affected.
func (c *Controller) FetchLogs(ctx context.Context) (string, error) {
	session, seq, err := c.poller.issue()
	if err != nil {
		return c.store.logText(), err
	}
	return c.poller.fetchLogs(ctx, session, seq)
}
