package engine

import (
	"context"

	"exchangecore/internal/book"
	"exchangecore/internal/model"

	"github.com/rs/zerolog/log"
)

// runApplier is the sole owner of e.Book: no other task ever reads or
// mutates it. It selects between inbound orders (apply the time-in-force
// policy, forward emitted events) and snapshot requests (take a snapshot
// once the request is old enough to be worth persisting).
//
// orderOffset tracks, locally, the offset of the last order this task
// applied; it starts at zero rather than at the engine's recovered
// OrderOffset; the first order the fetcher redelivers after a restart
// (always offset > the recovered offset) catches it up within one
// iteration, and in the meantime it only affects the snapshot-delta
// heuristic below, never matching correctness.
func (e *Engine) runApplier(
	ctx context.Context,
	orderRx <-chan offsetOrder,
	logTx chan<- book.LogRecord,
	snapshotReqRx <-chan *Snapshot,
	snapshotApproveTx chan<- *Snapshot,
) error {
	var orderOffset uint64

	for {
		select {
		case <-ctx.Done():
			return nil

		case oo, ok := <-orderRx:
			if !ok {
				return nil
			}

			logs := e.dispatch(oo.order)
			for _, rec := range logs {
				select {
				case logTx <- rec:
				case <-ctx.Done():
					return nil
				}
			}
			orderOffset = oo.offset

		case req, ok := <-snapshotReqRx:
			if !ok {
				return nil
			}

			delta := int64(orderOffset) - int64(req.OrderOffset)
			if delta <= snapshotRecentThreshold {
				continue
			}

			log.Info().
				Str("product_id", e.Product.ID).
				Uint64("from_offset", req.OrderOffset).
				Int64("delta", delta).
				Uint64("to_offset", orderOffset).
				Msg("taking snapshot")

			req.OrderBookSnapshot = e.Book.Snapshot()
			req.OrderOffset = orderOffset

			select {
			case snapshotApproveTx <- req:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// dispatch runs the time-in-force policy for a single consumed order and
// returns every event it produced, in emission order.
func (e *Engine) dispatch(order *model.Order) []book.LogRecord {
	if order.Status == model.OrderStatusCancelling {
		return e.Book.CancelOrder(order)
	}

	switch order.TimeInForce {
	case model.ImmediateOrCancel:
		logs := e.Book.ApplyOrder(order)
		return append(logs, e.Book.CancelOrder(selfCancel(order))...)

	case model.GoodTillCrossing:
		if e.Book.IsOrderWillNotMatch(order) {
			return e.Book.ApplyOrder(order)
		}
		return e.Book.NullifyOrder(order)

	case model.FillOrKill:
		if e.Book.IsOrderWillFullMatch(order) {
			return e.Book.ApplyOrder(order)
		}
		return e.Book.NullifyOrder(order)

	default: // GoodTillCanceled
		return e.Book.ApplyOrder(order)
	}
}

// selfCancel builds the cancellation CancelOrder must receive to find the
// residual IOC just opened on its own side. CancelOrder looks a cancel
// request up on restingDepthFor(order.Side.Opposite()) — the documented,
// preserved ambiguity from SPEC_FULL.md's Open Question resolution #1 for
// externally-submitted cancel messages. The IOC follow-up cancel is not an
// external message, though: it is the same taker order object, whose Side
// still names the side it just rested on via finishApply's
// restingDepthFor(order.Side). Flipping Side here before handing it to
// CancelOrder cancels it out against that same opposite-side lookup, so the
// residual is found and removed, without touching CancelOrder's pinned
// external-cancel behavior at all.
func selfCancel(order *model.Order) *model.Order {
	flipped := *order
	flipped.Side = order.Side.Opposite()
	return &flipped
}
