package engine

import (
	"context"

	"exchangecore/internal/book"

	"github.com/rs/zerolog/log"
)

// runCommitter is the sole writer to the event sink. It batches whatever
// has already piled up on logRx onto the write that woke it (up to
// committerDrainBatch extra records) so a burst of matches costs one
// durable write instead of many, then, once the sink has durably accepted
// a batch, approves any snapshot request whose events it covers.
//
// A Store error is fatal: the committer cannot let the snapshotter or a
// later bootstrap believe events were persisted when they were not.
func (e *Engine) runCommitter(
	ctx context.Context,
	startLogSeq uint64,
	logRx <-chan book.LogRecord,
	snapshotApproveRx <-chan *Snapshot,
	snapshotTx chan<- *Snapshot,
) error {
	lastSeq := startLogSeq
	var pending *Snapshot

	for {
		var first book.LogRecord

		select {
		case <-ctx.Done():
			return nil

		case rec, ok := <-logRx:
			if !ok {
				return nil
			}
			first = rec

		case snap, ok := <-snapshotApproveRx:
			if !ok {
				return nil
			}
			if snap.OrderBookSnapshot != nil && snap.OrderBookSnapshot.LogSeq <= lastSeq {
				if err := e.forwardSnapshot(ctx, snap, snapshotTx); err != nil {
					return err
				}
				continue
			}
			if pending != nil {
				log.Warn().
					Str("product_id", e.Product.ID).
					Uint64("discarded_log_seq", pending.OrderBookSnapshot.LogSeq).
					Msg("discarding superseded pending snapshot")
			}
			pending = snap
			continue
		}

		batch := []book.LogRecord{first}
	drain:
		for len(batch) <= committerDrainBatch {
			select {
			case rec, ok := <-logRx:
				if !ok {
					break drain
				}
				batch = append(batch, rec)
			default:
				break drain
			}
		}

		var toWrite []book.LogRecord
		for _, rec := range batch {
			if rec.Seq() <= lastSeq {
				log.Warn().
					Str("product_id", e.Product.ID).
					Uint64("seq", rec.Seq()).
					Uint64("last_seq", lastSeq).
					Msg("discarding replayed event")
				continue
			}
			toWrite = append(toWrite, rec)
			lastSeq = rec.Seq()
		}

		if len(toWrite) > 0 {
			if err := e.eventSink.Store(ctx, toWrite); err != nil {
				log.Error().Err(err).Str("product_id", e.Product.ID).Msg("store events failed")
				return err
			}
		}

		if pending != nil && pending.OrderBookSnapshot.LogSeq <= lastSeq {
			snap := pending
			pending = nil
			if err := e.forwardSnapshot(ctx, snap, snapshotTx); err != nil {
				return err
			}
		}
	}
}

// forwardSnapshot hands an approved snapshot to the snapshotter for
// persistence. The committer only ever forwards a snapshot once every
// event up to and including its LogSeq is durable.
func (e *Engine) forwardSnapshot(ctx context.Context, snap *Snapshot, snapshotTx chan<- *Snapshot) error {
	select {
	case snapshotTx <- snap:
	case <-ctx.Done():
	}
	return nil
}
