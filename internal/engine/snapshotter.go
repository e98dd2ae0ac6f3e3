package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const snapshotInterval = 30 * time.Second

// runSnapshotter ticks every snapshotInterval and asks the applier whether
// it is worth taking a new snapshot, then persists whatever the committer
// approves. lastOffset is the offset of the last snapshot this task
// persisted (startOffset until the first one), and every request is tagged
// with it, so the applier measures progress against the last persisted
// snapshot rather than taking one every tick regardless of how much
// changed.
func (e *Engine) runSnapshotter(
	ctx context.Context,
	startOffset uint64,
	snapshotReqTx chan<- *Snapshot,
	snapshotRx <-chan *Snapshot,
) error {
	lastOffset := startOffset

	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			req := &Snapshot{OrderOffset: lastOffset}
			select {
			case snapshotReqTx <- req:
			case <-ctx.Done():
				return nil
			}

		case snap, ok := <-snapshotRx:
			if !ok {
				return nil
			}

			if err := e.snapshotStore.Store(ctx, snap); err != nil {
				log.Error().Err(err).Str("product_id", e.Product.ID).Msg("store snapshot failed, will retry next cycle")
				continue
			}

			log.Info().
				Str("product_id", e.Product.ID).
				Uint64("order_offset", snap.OrderOffset).
				Msg("snapshot stored")

			lastOffset = snap.OrderOffset
		}
	}
}
