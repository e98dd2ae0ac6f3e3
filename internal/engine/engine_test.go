package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"exchangecore/internal/book"
	"exchangecore/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct() model.Product {
	return model.Product{ID: "BTC-USD", BaseCurrency: "BTC", QuoteCurrency: "USD", BaseScale: 8, QuoteScale: 2}
}

func testLimitOrder(id uint64, side model.Side, price, size string) *model.Order {
	p, _ := decimal.NewFromString(price)
	s, _ := decimal.NewFromString(size)
	return &model.Order{
		ID:          id,
		ProductID:   "BTC-USD",
		UserID:      id,
		Price:       p,
		Size:        s,
		Type:        model.OrderTypeLimit,
		Side:        side,
		TimeInForce: model.GoodTillCanceled,
	}
}

// fakeOrderSource replays a fixed list of orders, one per offset starting
// at 1, then blocks until the context is cancelled.
type fakeOrderSource struct {
	orders    []*model.Order
	idx       int
	lastSetAt uint64
}

func (f *fakeOrderSource) SetOffset(ctx context.Context, offset uint64) error {
	f.lastSetAt = offset
	return nil
}

func (f *fakeOrderSource) Fetch(ctx context.Context) (uint64, *model.Order, error) {
	if f.idx < len(f.orders) {
		o := f.orders[f.idx]
		f.idx++
		return uint64(f.idx), o, nil
	}
	<-ctx.Done()
	return 0, nil, ctx.Err()
}

// fakeEventSink records every batch Store receives.
type fakeEventSink struct {
	mu      sync.Mutex
	batches [][]book.LogRecord
}

func (f *fakeEventSink) Store(ctx context.Context, logs []book.LogRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]book.LogRecord(nil), logs...)
	f.batches = append(f.batches, cp)
	return nil
}

func (f *fakeEventSink) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

// fakeSnapshotStore is an in-memory single-slot snapshot store.
type fakeSnapshotStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

func (f *fakeSnapshotStore) GetLatest(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, nil
}

func (f *fakeSnapshotStore) Store(ctx context.Context, snapshot *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snapshot
	return nil
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestEngine_ProcessesOrdersEndToEnd(t *testing.T) {
	source := &fakeOrderSource{orders: []*model.Order{
		testLimitOrder(1, model.SideSell, "100.00", "1"),
		testLimitOrder(2, model.SideBuy, "100.00", "1"),
	}}
	sink := &fakeEventSink{}
	store := &fakeSnapshotStore{}

	eng := New(testProduct(), source, sink, store)
	require.NoError(t, eng.Bootstrap(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Start(ctx) }()

	// order 1 rests (open), order 2 fully matches it (match + 2 done).
	waitUntil(t, 2*time.Second, func() bool { return sink.total() >= 4 })

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not shut down after context cancellation")
	}

	assert.Equal(t, uint64(0), source.lastSetAt, "SetOffset is called once, with the recovered offset")
}

func TestEngine_BootstrapRestoresFromSnapshot(t *testing.T) {
	b := book.New(testProduct())
	b.ApplyOrder(testLimitOrder(1, model.SideBuy, "100.00", "1"))
	snap := b.Snapshot()

	store := &fakeSnapshotStore{snap: &Snapshot{OrderBookSnapshot: snap, OrderOffset: 42}}
	source := &fakeOrderSource{}
	sink := &fakeEventSink{}

	eng := New(testProduct(), source, sink, store)
	require.NoError(t, eng.Bootstrap(context.Background()))

	assert.Equal(t, uint64(42), eng.OrderOffset)
	assert.Equal(t, 1, eng.Book.BidDepth.Len())
}
