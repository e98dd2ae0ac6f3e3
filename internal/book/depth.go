package book

import (
	"fmt"

	"exchangecore/internal/model"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// BookOrder is the resting projection of an inbound Order kept on the
// book. Size is the only mutable field; it is decremented as the order
// trades against the opposite side.
type BookOrder struct {
	OrderID     uint64                `json:"order_id"`
	UserID      uint64                `json:"user_id"`
	Size        decimal.Decimal       `json:"size"`
	Funds       decimal.Decimal       `json:"funds"`
	Price       decimal.Decimal       `json:"price"`
	Side        model.Side            `json:"side"`
	Type        model.OrderType       `json:"type"`
	TimeInForce model.TimeInForceType `json:"time_in_force"`
}

// NewBookOrder projects an inbound Order into its resting form.
func NewBookOrder(o *model.Order) *BookOrder {
	return &BookOrder{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Size:        o.Size,
		Funds:       o.Funds,
		Price:       o.Price,
		Side:        o.Side,
		Type:        o.Type,
		TimeInForce: o.TimeInForce,
	}
}

// entry is what actually lives in the queue: the ordering key plus the id
// it resolves to in the orders map. Keeping the id alongside the key (not
// just trusting the key's own OrderID field) mirrors the Rust
// BTreeMap<Key, order_id> shape this is ported from.
type entry[K any] struct {
	key     K
	orderID uint64
}

// Depth pairs an indexed map (order_id -> resting order) with a
// key-ordered queue. The invariant orders.keys() == queue.values() always
// holds at quiescent moments; Depth's two operations (Add, DecrSize) keep
// both updated atomically with respect to each other.
type Depth[K any] struct {
	orders map[uint64]*BookOrder
	queue  *btree.BTreeG[entry[K]]
	newKey func(price decimal.Decimal, orderID uint64) K
}

func newDepth[K any](newKey func(decimal.Decimal, uint64) K, less func(a, b K) bool) *Depth[K] {
	return &Depth[K]{
		orders: make(map[uint64]*BookOrder),
		queue: btree.NewBTreeG(func(a, b entry[K]) bool {
			return less(a.key, b.key)
		}),
		newKey: newKey,
	}
}

// NewAskDepth orders by AscKey: price ascending, then order id ascending.
func NewAskDepth() *Depth[AscKey] {
	return newDepth(NewAscKey, LessAsc)
}

// NewBidDepth orders by DescKey: price descending, then order id ascending.
func NewBidDepth() *Depth[DescKey] {
	return newDepth(NewDescKey, LessDesc)
}

// Add inserts order into both the map and the queue.
func (d *Depth[K]) Add(order *BookOrder) {
	d.orders[order.OrderID] = order
	d.queue.Set(entry[K]{key: d.newKey(order.Price, order.OrderID), orderID: order.OrderID})
}

// DecrSize subtracts delta from the resting order's size. It fails with
// "not found" if the order is absent, and "insufficient size" if delta
// exceeds the stored size — both are book/bookkeeping divergences the
// caller must treat as fatal. If the resulting size is zero the order is
// removed from both the map and the queue.
func (d *Depth[K]) DecrSize(orderID uint64, delta decimal.Decimal) error {
	order, ok := d.orders[orderID]
	if !ok {
		return fmt.Errorf("order %d not found on book", orderID)
	}
	if delta.GreaterThan(order.Size) {
		return fmt.Errorf("order %d size %s less than %s", orderID, order.Size, delta)
	}
	order.Size = order.Size.Sub(delta)
	if order.Size.IsZero() {
		delete(d.orders, orderID)
		d.queue.Delete(entry[K]{key: d.newKey(order.Price, orderID), orderID: orderID})
	}
	return nil
}

// Get returns the resting order by id, if present.
func (d *Depth[K]) Get(orderID uint64) (*BookOrder, bool) {
	o, ok := d.orders[orderID]
	return o, ok
}

// PeekBest returns the resting order at the front of the priority queue
// (best price, earliest arrival), without removing it.
func (d *Depth[K]) PeekBest() (*BookOrder, bool) {
	e, ok := d.queue.Min()
	if !ok {
		return nil, false
	}
	return d.orders[e.orderID], true
}

// Len reports the number of resting orders.
func (d *Depth[K]) Len() int {
	return len(d.orders)
}

// Walk visits every resting order in priority order, stopping early if
// visit returns false. It does not mutate the depth and is safe to call
// during a non-mutating simulation such as IsOrderWillFullMatch.
func (d *Depth[K]) Walk(visit func(order *BookOrder) bool) {
	d.queue.Scan(func(e entry[K]) bool {
		order, ok := d.orders[e.orderID]
		if !ok {
			return true
		}
		return visit(order)
	})
}

// Flatten returns every resting order, in no particular order, for
// snapshotting.
func (d *Depth[K]) Flatten() []BookOrder {
	out := make([]BookOrder, 0, len(d.orders))
	for _, o := range d.orders {
		out = append(out, *o)
	}
	return out
}
