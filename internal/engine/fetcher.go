package engine

import (
	"context"

	"github.com/rs/zerolog/log"
)

// runFetcher seeks the inbound log to startOffset and forwards every
// decoded order downstream. Decode/transport errors are logged and
// skipped; the stream is assumed replayable up to the dedup window size.
func (e *Engine) runFetcher(ctx context.Context, startOffset uint64, orderTx chan<- offsetOrder) error {
	if err := e.orderSource.SetOffset(ctx, startOffset); err != nil {
		log.Error().Err(err).Msg("set order reader offset failed")
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		offset, order, err := e.orderSource.Fetch(ctx)
		if err != nil {
			log.Error().Err(err).Msg("fetch order failed")
			continue
		}
		if order == nil {
			continue
		}

		log.Debug().Uint64("offset", offset).Uint64("order_id", order.ID).Msg("consume order")

		select {
		case orderTx <- offsetOrder{offset: offset, order: order}:
		case <-ctx.Done():
			return nil
		}
	}
}
