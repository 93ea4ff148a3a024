package blocksync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/syncwatch/syncwatch/config"
	"github.com/syncwatch/syncwatch/libs/log"
	"github.com/syncwatch/syncwatch/libs/service"
	"github.com/syncwatch/syncwatch/types"
)

var _ service.Service = (*Simulator)(nil)

// Simulator stands in for a peer serving blocks. Once started it counts the
// local height up from StartHeight to TargetHeight in steps of BatchSize,
// one step per BlockInterval, and reports every step to its handlers. All
// events are delivered from one goroutine, in order. The service stops
// itself after the final (zero remaining) event.
type Simulator struct {
	service.BaseService
	logger log.Logger

	cfg    *config.SyncConfig
	peerID types.NodeID

	mtx      sync.Mutex
	handlers []BlocksDownloadedHandler

	height int64 // atomic
}

// NewSimulator returns a Simulator configured by cfg.
func NewSimulator(logger log.Logger, cfg *config.SyncConfig) (*Simulator, error) {
	if err := cfg.ValidateBasic(); err != nil {
		return nil, errors.Wrap(err, "invalid sync config")
	}
	peerID, err := types.NewNodeID(cfg.PeerID)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		logger: logger.With("module", "simulator", "peer", peerID),
		cfg:    cfg,
		peerID: peerID,
		height: cfg.StartHeight,
	}
	s.BaseService = *service.NewBaseService(logger, "Simulator", s)
	return s, nil
}

// AddHandler registers h for all events delivered after the call returns.
func (s *Simulator) AddHandler(h BlocksDownloadedHandler) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.handlers = append(s.handlers, h)
}

// Height returns the last height delivered.
func (s *Simulator) Height() int64 {
	return atomic.LoadInt64(&s.height)
}

// PeerID returns the ID the simulated peer reports in its events.
func (s *Simulator) PeerID() types.NodeID {
	return s.peerID
}

// OnStart implements service.Service.
func (s *Simulator) OnStart(ctx context.Context) error {
	go s.deliverRoutine(ctx)
	return nil
}

// OnStop implements service.Service.
func (s *Simulator) OnStop() {}

func (s *Simulator) deliverRoutine(ctx context.Context) {
	defer func() {
		if err := s.Stop(); err != nil && !errors.Is(err, service.ErrAlreadyStopped) {
			s.logger.Error("failed to stop simulator", "err", err)
		}
	}()

	height := s.cfg.StartHeight
	remaining := s.cfg.Blocks()
	s.logger.Info("serving blocks", "from", height, "to", s.cfg.TargetHeight)

	for {
		step := s.cfg.BatchSize
		if step > remaining {
			step = remaining
		}
		height += step
		remaining -= step

		atomic.StoreInt64(&s.height, height)
		s.deliver(types.NewBlockMeta(s.cfg.ChainID, height), remaining)

		if remaining == 0 {
			s.logger.Info("reached target height", "height", height)
			return
		}

		if s.cfg.BlockInterval > 0 {
			timer := time.NewTimer(s.cfg.BlockInterval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.Quit():
				timer.Stop()
				return
			}
		} else {
			select {
			case <-ctx.Done():
				return
			case <-s.Quit():
				return
			default:
			}
		}
	}
}

func (s *Simulator) deliver(block *types.BlockMeta, blocksLeft int64) {
	s.mtx.Lock()
	handlers := make([]BlocksDownloadedHandler, len(s.handlers))
	copy(handlers, s.handlers)
	s.mtx.Unlock()

	for _, h := range handlers {
		h.OnBlocksDownloaded(s.peerID, block, blocksLeft)
	}
}
