package sim

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/sarchlab/cachesim/cache"
)

// evictionCounter counts the evictions a cache reports.
type evictionCounter struct {
	count uint64
}

func (h *evictionCounter) Func(ctx cache.HookCtx) {
	if ctx.Pos == cache.HookPosEvict {
		h.count++
	}
}

// blockTracker remembers which blocks have been touched so that misses on
// first touch can be told apart from capacity and conflict misses.
type blockTracker struct {
	blockSize uint64
	seen      *roaring64.Bitmap
}

func newBlockTracker(blockSize uint64) *blockTracker {
	return &blockTracker{
		blockSize: blockSize,
		seen:      roaring64.New(),
	}
}

// touch marks the block holding address and reports whether this was the
// first touch.
func (t *blockTracker) touch(address uint64) bool {
	return t.seen.CheckedAdd(address / t.blockSize)
}

func (t *blockTracker) unique() uint64 {
	return t.seen.GetCardinality()
}

func (t *blockTracker) reset() {
	t.seen.Clear()
}
