// Package engine orchestrates the four cooperating pipeline tasks
// (fetcher, applier, committer, snapshotter) around a single-writer order
// book, connected by bounded in-process channels. See SPEC_FULL.md §6.
package engine

import (
	"context"
	"fmt"

	"exchangecore/internal/book"
	"exchangecore/internal/model"

	tomb "gopkg.in/tomb.v2"
)

const (
	orderChanCap    = 10000
	logChanCap      = 10000
	snapshotChanCap = 32

	// snapshotRecentThreshold is how close (in inbound offsets) a snapshot
	// request can be to the applier's current offset before it is dropped
	// as not worth taking yet.
	snapshotRecentThreshold = 1000

	// committerDrainBatch bounds how many additional already-buffered
	// events the committer opportunistically batches onto one durable
	// write after the event that woke it.
	committerDrainBatch = 100
)

// Snapshot is the engine-level snapshot envelope: the book's own snapshot
// plus the last inbound offset whose effect it includes.
type Snapshot struct {
	OrderBookSnapshot *book.OrderBookSnapshot `json:"order_book_snapshot"`
	OrderOffset       uint64                  `json:"order_offset"`
}

type offsetOrder struct {
	offset uint64
	order  *model.Order
}

// Engine owns the order book and the three external adapters (order
// source, event sink, snapshot store) and runs the four-task pipeline.
type Engine struct {
	Product model.Product
	Book    *book.OrderBook

	// OrderOffset is the last inbound offset recovered from the latest
	// snapshot (via Bootstrap). The engine has no mechanism to commit a
	// consumer position upstream; recovery relies entirely on
	// snapshot-embedded offsets, per SPEC_FULL.md §9.3.
	OrderOffset uint64

	orderSource   OrderSource
	eventSink     EventSink
	snapshotStore SnapshotStore
}

// New builds an engine for product, wired to the given adapters. Call
// Bootstrap before Start to recover any prior state.
func New(product model.Product, source OrderSource, sink EventSink, store SnapshotStore) *Engine {
	return &Engine{
		Product:       product,
		Book:          book.New(product),
		orderSource:   source,
		eventSink:     sink,
		snapshotStore: store,
	}
}

// Bootstrap fetches the latest persisted snapshot, if any, and restores
// the book and offset from it. It must be called before Start.
func (e *Engine) Bootstrap(ctx context.Context) error {
	snap, err := e.snapshotStore.GetLatest(ctx)
	if err != nil {
		return fmt.Errorf("get latest snapshot: %w", err)
	}
	if snap == nil || snap.OrderBookSnapshot == nil {
		return nil
	}
	e.OrderOffset = snap.OrderOffset
	e.Book.Restore(snap.OrderBookSnapshot)
	return nil
}

// Start wires the five bounded channels and runs the four tasks until ctx
// is cancelled or one of them returns a fatal error (a durable write
// failure), in which case every task is torn down together. A book
// invariant violation panics inside the applier and aborts the process.
func (e *Engine) Start(ctx context.Context) error {
	initialOffset := e.OrderOffset
	initialLogSeq := e.Book.LogSeq

	orderCh := make(chan offsetOrder, orderChanCap)
	logCh := make(chan book.LogRecord, logChanCap)
	snapshotReqCh := make(chan *Snapshot, snapshotChanCap)
	snapshotApproveCh := make(chan *Snapshot, snapshotChanCap)
	snapshotCh := make(chan *Snapshot, snapshotChanCap)

	t, tombCtx := tomb.WithContext(ctx)

	t.Go(func() error {
		return e.runFetcher(tombCtx, initialOffset, orderCh)
	})
	t.Go(func() error {
		return e.runApplier(tombCtx, orderCh, logCh, snapshotReqCh, snapshotApproveCh)
	})
	t.Go(func() error {
		return e.runCommitter(tombCtx, initialLogSeq, logCh, snapshotApproveCh, snapshotCh)
	})
	t.Go(func() error {
		return e.runSnapshotter(tombCtx, initialOffset, snapshotReqCh, snapshotCh)
	})

	return t.Wait()
}
