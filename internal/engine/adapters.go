package engine

import (
	"context"

	"exchangecore/internal/book"
	"exchangecore/internal/model"
)

// OrderSource is the inbound ordered log. It must support seeking to an
// offset and yielding (offset, order) pairs in strictly increasing offset
// order. Implementations live outside the core (see internal/kafkaadapter).
type OrderSource interface {
	// SetOffset seeks the stream so the next Fetch call returns the record
	// immediately after offset, or the beginning of the stream if offset
	// is 0.
	SetOffset(ctx context.Context, offset uint64) error
	// Fetch blocks for the next record. Decode/transport errors are
	// returned for the caller to log and skip.
	Fetch(ctx context.Context) (offset uint64, order *model.Order, err error)
}

// EventSink is the outbound, append-only, ordered-per-product event log.
type EventSink interface {
	// Store durably appends logs, in order. A write error is fatal to the
	// committer.
	Store(ctx context.Context, logs []book.LogRecord) error
}

// SnapshotStore is the durable key-value store holding the single latest
// snapshot for a product.
type SnapshotStore interface {
	GetLatest(ctx context.Context) (*Snapshot, error)
	Store(ctx context.Context, snapshot *Snapshot) error
}
