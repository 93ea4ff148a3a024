package blocksync

import (
	"context"
	"sync"
)

// completionSignal is a one-way gate with a permit count. The first release
// opens the gate for good; later releases only add permits.
type completionSignal struct {
	mtx     sync.Mutex
	permits int
	opened  chan struct{}
}

func newCompletionSignal() *completionSignal {
	return &completionSignal{opened: make(chan struct{})}
}

func (s *completionSignal) release() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.permits++
	if s.permits == 1 {
		close(s.opened)
	}
}

func (s *completionSignal) numPermits() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.permits
}

// wait returns nil once the gate is open, or ctx.Err() if ctx ends first.
// An open gate wins over a finished context.
func (s *completionSignal) wait(ctx context.Context) error {
	select {
	case <-s.opened:
		return nil
	default:
	}

	select {
	case <-s.opened:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
