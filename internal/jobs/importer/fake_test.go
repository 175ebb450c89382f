package importer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/models"
	"github.com/ternarybob/subimport/internal/services/events"
)

const (
	waitFor  = 2 * time.Second
	pollTick = 5 * time.Millisecond
)

// statusReply is one scripted GetStatus response. A non-nil release blocks
// the response until the channel is closed.
type statusReply struct {
	state   *models.JobState
	err     error
	release chan struct{}
}

// fakeAPI scripts the import endpoints. Status replies are consumed in
// order, the last one repeats.
type fakeAPI struct {
	mu       sync.Mutex
	statuses []statusReply
	logs     []string
	logsErr  error
	logsGate chan struct{}
	startAck *models.JobState
	startErr error
	stopErr  error

	statusCalls int
	logsCalls   int
	startCalls  int
	stopCalls   int
	params      models.ImportParams
}

func (f *fakeAPI) StartImport(ctx context.Context, params models.ImportParams, file *models.UploadFile) (*models.JobState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	f.params = params
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.startAck, nil
}

func (f *fakeAPI) GetStatus(ctx context.Context) (*models.JobState, error) {
	f.mu.Lock()
	idx := f.statusCalls
	f.statusCalls++
	if len(f.statuses) == 0 {
		f.mu.Unlock()
		idle := models.IdleJobState()
		return &idle, nil
	}
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	reply := f.statuses[idx]
	f.mu.Unlock()

	if reply.release != nil {
		select {
		case <-reply.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if reply.err != nil {
		return nil, reply.err
	}
	state := *reply.state
	return &state, nil
}

func (f *fakeAPI) GetLogs(ctx context.Context) (string, error) {
	f.mu.Lock()
	idx := f.logsCalls
	f.logsCalls++
	gate, err := f.logsGate, f.logsErr
	text := ""
	if len(f.logs) > 0 {
		if idx >= len(f.logs) {
			idx = len(f.logs) - 1
		}
		text = f.logs[idx]
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (f *fakeAPI) StopImport(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return f.stopErr
}

func (f *fakeAPI) GetLists(ctx context.Context) ([]models.List, error) {
	return nil, nil
}

func (f *fakeAPI) setLogsErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logsErr = err
}

func (f *fakeAPI) counts() (status, logs, start, stop int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls, f.logsCalls, f.startCalls, f.stopCalls
}

func (f *fakeAPI) statusCount() int {
	s, _, _, _ := f.counts()
	return s
}

// recorder captures every published import event.
type recorder struct {
	mu     sync.Mutex
	events []interfaces.Event
}

func (r *recorder) handle(ctx context.Context, event interfaces.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) ofType(eventType interfaces.EventType) []interfaces.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interfaces.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) count(eventType interfaces.EventType) int {
	return len(r.ofType(eventType))
}

func newTestController(t *testing.T, api interfaces.ImportAPI, opts ...Option) (*Controller, *recorder) {
	t.Helper()

	logger := arbor.NewNoOpLogger()
	bus := events.NewService(logger)
	rec := &recorder{}
	for _, eventType := range interfaces.AllImportEventTypes {
		require.NoError(t, bus.Subscribe(eventType, rec.handle))
	}

	c := NewController(api, bus, logger, opts...)
	t.Cleanup(func() {
		_ = c.Close()
		_ = bus.Close()
	})
	return c, rec
}

func validUpload(t *testing.T) *models.UploadRequest {
	t.Helper()
	req, err := models.NewUploadRequest([]int{1, 2}, false, "", &models.UploadFile{
		Name:    "subs.zip",
		Content: []byte("PK\x03\x04"),
	})
	require.NoError(t, err)
	return req
}

func job(status models.JobStatus, imported, total int) *models.JobState {
	return &models.JobState{Status: status, Name: "subs.zip", Imported: imported, Total: total}
}

// manualTick issues a tick for the running loop's session.
func manualTick(c *Controller) {
	c.poller.mu.Lock()
	session := c.poller.session
	c.poller.mu.Unlock()
	c.poller.tick(session)
}
