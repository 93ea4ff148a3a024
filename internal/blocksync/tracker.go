package blocksync

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/syncwatch/syncwatch/libs/log"
	"github.com/syncwatch/syncwatch/types"
)

// Status is the stage a download session is in.
type Status uint32

const (
	StatusNotStarted Status = iota
	StatusDownloading
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusDownloading:
		return "downloading"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// unset marks session values that have not been observed yet.
const unset = -1

// TrackerOption sets an optional parameter on the Tracker.
type TrackerOption func(*Tracker)

// WithListener replaces the default LogListener.
func WithListener(l Listener) TrackerOption {
	return func(t *Tracker) { t.listener = l }
}

// WithMetrics records the session in m, in addition to notifying the
// listener. A nil m keeps the no-op metrics.
func WithMetrics(m *Metrics) TrackerOption {
	return func(t *Tracker) {
		if m != nil {
			t.metrics = m
		}
	}
}

// Tracker follows a single block chain download session. It implements
// BlocksDownloadedHandler.
//
// OnBlocksDownloaded must not be called concurrently. Await, Done, Status and
// SessionID are safe to call from any goroutine.
type Tracker struct {
	logger    log.Logger
	listener  Listener
	metrics   *Metrics
	sessionID string

	// written only by OnBlocksDownloaded
	originalRemaining   int64
	lastReportedPercent int64

	status uint32 // atomic
	done   *completionSignal
}

var _ BlocksDownloadedHandler = (*Tracker)(nil)

// NewTracker returns a Tracker for a new download session. Without
// WithListener, notifications are logged through logger.
func NewTracker(logger log.Logger, options ...TrackerOption) *Tracker {
	sessionID := uuid.New().String()
	logger = logger.With("module", "blocksync", "session", sessionID)

	t := &Tracker{
		logger:              logger,
		sessionID:           sessionID,
		originalRemaining:   unset,
		lastReportedPercent: unset,
		metrics:             NopMetrics(),
		done:                newCompletionSignal(),
	}
	for _, opt := range options {
		opt(t)
	}

	if t.listener == nil {
		t.listener = NewLogListener(logger)
	}
	t.listener = MultiListener{t.listener, NewMetricsListener(t.metrics)}

	return t
}

// OnBlocksDownloaded is called by the peer layer after block was processed,
// with blocksLeft the number of blocks still needed to reach the peer's
// chain tip. Negative values are ignored.
func (t *Tracker) OnBlocksDownloaded(peer types.NodeID, block *types.BlockMeta, blocksLeft int64) {
	if blocksLeft == 0 {
		t.metrics.BlocksRemaining.Set(0)
		t.listener.OnDownloadComplete()
		atomic.StoreUint32(&t.status, uint32(StatusDone))
		t.done.release()
		t.logger.Debug("block chain download complete", "peer", peer, "block", block.String())
	}

	if blocksLeft <= 0 {
		return
	}

	t.metrics.BlocksRemaining.Set(float64(blocksLeft))

	if t.originalRemaining == unset {
		t.listener.OnDownloadStart(blocksLeft)
		t.originalRemaining = blocksLeft
		atomic.CompareAndSwapUint32(&t.status, uint32(StatusNotStarted), uint32(StatusDownloading))
	}

	pct := 100.0 - (100.0 * (float64(blocksLeft) / float64(t.originalRemaining)))
	if int64(pct) != t.lastReportedPercent {
		t.listener.OnProgress(pct)
		t.lastReportedPercent = int64(pct)
	}
}

// Await blocks until the download is complete. It returns immediately if it
// already is. If ctx ends first, the returned error wraps ctx.Err().
func (t *Tracker) Await(ctx context.Context) error {
	if err := t.done.wait(ctx); err != nil {
		return errors.Wrap(err, "waiting for block chain download")
	}
	return nil
}

// Done returns a channel that is closed once the download is complete.
func (t *Tracker) Done() <-chan struct{} {
	return t.done.opened
}

// Status returns the current stage of the session.
func (t *Tracker) Status() Status {
	return Status(atomic.LoadUint32(&t.status))
}

// SessionID returns the identifier attached to the session's log lines.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Completions returns how many times the download was reported complete.
// Anything above one means the peer layer delivered a zero remaining-count
// more than once.
func (t *Tracker) Completions() int {
	return t.done.numPermits()
}
