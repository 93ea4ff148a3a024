package blocksync

import (
	"fmt"

	"github.com/syncwatch/syncwatch/libs/log"
	"github.com/syncwatch/syncwatch/types"
)

// largeDownloadBlocks is the download size above which the start
// notification warns the user that syncing will take a while.
const largeDownloadBlocks = 1000

//go:generate mockery --case underscore --name Listener

// Listener receives the lifecycle notifications of a download session.
//
// Methods are called from the goroutine that delivers block events, one at a
// time, so implementations do not need to be safe for concurrent use.
type Listener interface {
	// OnDownloadStart is called once, with the estimated number of blocks to
	// download.
	OnDownloadStart(blocks int64)

	// OnProgress is called when the estimated percentage of the chain
	// downloaded changes by at least one whole percent.
	OnProgress(percent float64)

	// OnDownloadComplete is called when no blocks remain.
	OnDownloadComplete()
}

// BlocksDownloadedHandler is implemented by anything that consumes block
// download events from a peer. peer and block are passed through untouched.
type BlocksDownloadedHandler interface {
	OnBlocksDownloaded(peer types.NodeID, block *types.BlockMeta, blocksLeft int64)
}

// LogListener is the default Listener. It writes one informational line per
// notification.
type LogListener struct {
	logger log.Logger
}

var _ Listener = (*LogListener)(nil)

// NewLogListener returns a Listener that reports through logger.
func NewLogListener(logger log.Logger) *LogListener {
	return &LogListener{logger: logger}
}

func (l *LogListener) OnDownloadStart(blocks int64) {
	msg := fmt.Sprintf("Downloading block chain of size %d.", blocks)
	if blocks > largeDownloadBlocks {
		msg += " This may take a while."
	}
	l.logger.Info(msg, "blocks", blocks)
}

func (l *LogListener) OnProgress(percent float64) {
	pct := int64(percent)
	l.logger.Info(fmt.Sprintf("Chain download %d%% done", pct), "percent", pct)
}

func (l *LogListener) OnDownloadComplete() {
	l.logger.Info("Done downloading block chain")
}

// NopListener ignores every notification. Use it when only Await matters.
type NopListener struct{}

var _ Listener = NopListener{}

func (NopListener) OnDownloadStart(int64) {}
func (NopListener) OnProgress(float64) {}
func (NopListener) OnDownloadComplete() {}

// MultiListener forwards each notification to all of its listeners, in
// order.
type MultiListener []Listener

var _ Listener = MultiListener(nil)

func (ml MultiListener) OnDownloadStart(blocks int64) {
	for _, l := range ml {
		l.OnDownloadStart(blocks)
	}
}

func (ml MultiListener) OnProgress(percent float64) {
	for _, l := range ml {
		l.OnProgress(percent)
	}
}

func (ml MultiListener) OnDownloadComplete() {
	for _, l := range ml {
		l.OnDownloadComplete()
	}
}
