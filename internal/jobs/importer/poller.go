package importer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/subimport/internal/common"
	"github.com/ternarybob/subimport/internal/interfaces"
	"github.com/ternarybob/subimport/internal/models"
)

// poller owns the periodic tick and is the only writer of the store.
//
// Every fetch captures the session at issue time. Start, Stop, the terminal
// halt and the post-done reset advance the session, so a response that
// resolves after any of them is discarded instead of overwriting newer state.
type poller struct {
	api         interfaces.ImportAPI
	store       *store
	notify      notifier
	logger      arbor.ILogger
	interval    time.Duration
	ordering    string
	maxFailures int

	// ctx lives as long as the controller; in-flight requests use it so
	// that Close aborts them.
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	running    bool
	closed     bool
	cancelLoop context.CancelFunc
	session    uint64
	issued     uint64
	statusSeq  uint64
	logsSeq    uint64
	failures   int
	degraded   bool

	dropped atomic.Int64
	wg      sync.WaitGroup
}

func newPoller(api interfaces.ImportAPI, st *store, n notifier, logger arbor.ILogger, opts options) *poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &poller{
		api:         api,
		store:       st,
		notify:      n,
		logger:      logger,
		interval:    opts.interval,
		ordering:    opts.ordering,
		maxFailures: opts.maxFailures,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins ticking, issuing the first tick immediately. It returns false
// if the poller is already running or closed.
func (p *poller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.running {
		return false
	}

	p.session++
	session := p.session
	loopCtx, cancel := context.WithCancel(p.ctx)
	p.running = true
	p.cancelLoop = cancel

	common.SafeGoGroup(&p.wg, p.logger, "importPoller", func() {
		p.run(loopCtx, session)
	})

	p.logger.Debug().
		Str("interval", p.interval.String()).
		Str("ordering", p.ordering).
		Msg("Import poller started")
	return true
}

// Stop cancels future ticks and invalidates in-flight responses.
func (p *poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltLocked()
}

func (p *poller) Polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *poller) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *poller) haltLocked() {
	p.session++
	if p.running {
		p.running = false
		p.cancelLoop()
		p.cancelLoop = nil
		p.logger.Debug().Msg("Import poller stopped")
	}
}

func (p *poller) nextSeqLocked() uint64 {
	p.issued++
	return p.issued
}

// issue tags a fetch made outside the tick loop.
func (p *poller) issue() (session, seq uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, 0, ErrClosed
	}
	return p.session, p.nextSeqLocked(), nil
}

func (p *poller) run(ctx context.Context, session uint64) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(session)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(session)
		}
	}
}

// tick issues the status and the log fetch concurrently. Either may resolve
// after the next tick has been issued.
func (p *poller) tick(session uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.session != session {
		return
	}
	seq := p.nextSeqLocked()

	common.SafeGoGroup(&p.wg, p.logger, "importStatusFetch", func() {
		_, _ = p.fetchStatus(p.ctx, session, seq)
	})
	common.SafeGoGroup(&p.wg, p.logger, "importLogsFetch", func() {
		_, _ = p.fetchLogs(p.ctx, session, seq)
	})
}

func (p *poller) fetchStatus(ctx context.Context, session, seq uint64) (models.JobState, error) {
	state, err := p.api.GetStatus(ctx)
	if err != nil {
		return p.store.snapshot(), p.fetchFailed(session, opStatus, err)
	}
	if state == nil {
		idle := models.IdleJobState()
		state = &idle
	}
	p.applyStatus(session, seq, *state)
	return p.store.snapshot(), nil
}

func (p *poller) fetchLogs(ctx context.Context, session, seq uint64) (string, error) {
	text, err := p.api.GetLogs(ctx)
	if err != nil {
		return p.store.logText(), p.fetchFailed(session, opLogs, err)
	}
	p.applyLogs(session, seq, text)
	return text, nil
}

// refresh runs one status fetch outside the tick loop and resumes polling
// when the remote job is still running.
func (p *poller) refresh(ctx context.Context) (models.JobState, error) {
	session, seq, err := p.issue()
	if err != nil {
		return p.store.snapshot(), err
	}

	state, err := p.fetchStatus(ctx, session, seq)
	if err != nil {
		return state, err
	}
	if state.Status.IsActive() {
		p.Start()
	}
	return state, nil
}

// acceptLocked is the liveness and ordering guard for a response.
func (p *poller) acceptLocked(session, seq uint64, applied *uint64) bool {
	if p.closed || p.session != session {
		p.dropped.Add(1)
		p.logger.Debug().
			Int64("seq", int64(seq)).
			Msg("Discarding poll response from a stopped session")
		return false
	}
	if p.ordering == common.OrderingLastIssued {
		if seq < *applied {
			p.dropped.Add(1)
			p.logger.Debug().
				Int64("seq", int64(seq)).
				Int64("applied_seq", int64(*applied)).
				Msg("Discarding out-of-order poll response")
			return false
		}
		*applied = seq
	}
	return true
}

func (p *poller) applyStatus(session, seq uint64, state models.JobState) {
	p.mu.Lock()
	if !p.acceptLocked(session, seq, &p.statusSeq) {
		p.mu.Unlock()
		return
	}
	p.recoveredLocked()

	prev := p.store.snapshot()
	p.store.setState(state)

	if state.Status.IsTerminal() || state.IsIdle() {
		p.haltLocked()
	}
	if state.Status.IsTerminal() {
		// One more log fetch under the new session picks up the closing lines.
		finalSession, finalSeq := p.session, p.nextSeqLocked()
		common.SafeGoGroup(&p.wg, p.logger, "importFinalLogs", func() {
			_, _ = p.fetchLogs(p.ctx, finalSession, finalSeq)
		})
	}
	p.mu.Unlock()

	if prev.Status != state.Status {
		p.logger.WithCorrelationId(state.Name).Info().
			Str("from", string(prev.Status)).
			Str("to", string(state.Status)).
			Int("imported", state.Imported).
			Int("total", state.Total).
			Msg("Import status changed")
	}
	p.notify.publish(p.ctx, interfaces.EventImportStatusChanged, state)
}

func (p *poller) applyLogs(session, seq uint64, text string) {
	p.mu.Lock()
	if !p.acceptLocked(session, seq, &p.logsSeq) {
		p.mu.Unlock()
		return
	}
	p.recoveredLocked()
	changed := p.store.setLogs(text)
	p.mu.Unlock()

	if changed {
		p.notify.publish(p.ctx, interfaces.EventImportLogsUpdated, interfaces.ImportLogsPayload{Text: text})
	}
}

// fetchFailed reports a failed fetch. Polling is never stopped by it.
func (p *poller) fetchFailed(session uint64, op string, err error) error {
	p.mu.Lock()
	if p.closed || p.session != session {
		p.mu.Unlock()
		p.dropped.Add(1)
		return &ImportError{Kind: KindPollFetch, Op: op, Err: err}
	}
	p.failures++
	failures := p.failures
	degraded := p.maxFailures > 0 && failures >= p.maxFailures && !p.degraded
	if degraded {
		p.degraded = true
	}
	p.mu.Unlock()

	ie := p.notify.fail(p.ctx, KindPollFetch, op, err)
	if degraded {
		p.logger.Warn().
			Int("failures", failures).
			Msg("Import polling degraded: consecutive fetches failed")
		p.notify.publish(p.ctx, interfaces.EventImportPollDegraded, interfaces.ImportPollDegradedPayload{Failures: failures})
	}
	return ie
}

func (p *poller) recoveredLocked() {
	if p.degraded {
		p.logger.Info().Msg("Import polling recovered")
	}
	p.failures = 0
	p.degraded = false
}

// begin installs the state of a freshly accepted job and starts polling.
func (p *poller) begin(state models.JobState) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.haltLocked()
	p.failures = 0
	p.degraded = false
	p.store.reset(state)
	p.mu.Unlock()

	p.Start()
	return nil
}

// reset returns the store to idle after a done request.
func (p *poller) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltLocked()
	p.failures = 0
	p.degraded = false
	p.store.reset(models.IdleJobState())
}

// close stops the ticker, aborts in-flight requests and waits for them.
func (p *poller) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.haltLocked()
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
