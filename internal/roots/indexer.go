package roots

import (
	"sync"

	"scriptconfig/internal/common"
	"scriptconfig/internal/host"
)

// Indexer batches index-rebuild notifications. Roots invalidations that
// happen inside a Transaction are coalesced into a single RootsRebuilt call
// on the outermost transaction exit; invalidations outside any transaction
// notify immediately.
type Indexer struct {
	mu         sync.Mutex
	listener   host.IndexListener
	depth      int
	pending    bool
	pendingGen int64
	logger     *common.SafeLogger
}

// NewIndexer creates an indexer forwarding to listener. A nil listener is
// allowed; notifications are then dropped.
func NewIndexer(listener host.IndexListener) *Indexer {
	return &Indexer{listener: listener, logger: common.ScriptLogger}
}

// Transaction runs fn, deferring any roots-changed notifications raised
// inside it until fn returns. Transactions nest.
func (i *Indexer) Transaction(fn func()) {
	i.mu.Lock()
	i.depth++
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.depth--
		notify := i.depth == 0 && i.pending
		gen := i.pendingGen
		if notify {
			i.pending = false
		}
		i.mu.Unlock()

		if notify {
			i.notify(gen)
		}
	}()

	fn()
}

// RootsChanged records that the roots cache moved to the given generation.
func (i *Indexer) RootsChanged(generation int64) {
	i.mu.Lock()
	if i.depth > 0 {
		i.pending = true
		if generation > i.pendingGen {
			i.pendingGen = generation
		}
		i.mu.Unlock()
		return
	}
	i.mu.Unlock()

	i.notify(generation)
}

func (i *Indexer) notify(generation int64) {
	if i.listener == nil {
		return
	}
	i.logger.Debug("Notifying index listeners: roots generation %d", generation)
	i.listener.RootsRebuilt(generation)
}
