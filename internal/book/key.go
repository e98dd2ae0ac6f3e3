package book

import "github.com/shopspring/decimal"

// AscKey and DescKey are the two concrete price-time ordering keys: a
// composite (price, order_id) pair, each with its own comparator, sharing
// the same construction shape. AscKey orders the ask side (best ask =
// smallest price, FIFO within a price); DescKey orders the bid side (best
// bid = largest price, FIFO within a price). No auxiliary timestamp is
// used — order id is the sole tiebreaker.
type AscKey struct {
	Price   decimal.Decimal
	OrderID uint64
}

func NewAscKey(price decimal.Decimal, orderID uint64) AscKey {
	return AscKey{Price: price, OrderID: orderID}
}

// LessAsc orders ascending by price, then ascending by order id.
func LessAsc(a, b AscKey) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	return a.OrderID < b.OrderID
}

type DescKey struct {
	Price   decimal.Decimal
	OrderID uint64
}

func NewDescKey(price decimal.Decimal, orderID uint64) DescKey {
	return DescKey{Price: price, OrderID: orderID}
}

// LessDesc orders descending by price, then ascending by order id.
func LessDesc(a, b DescKey) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	return a.OrderID < b.OrderID
}
