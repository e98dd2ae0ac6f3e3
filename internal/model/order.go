package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderType distinguishes resting limit orders from immediately-priced
// market orders.
type OrderType int

const (
	OrderTypeLimit OrderType = iota
	OrderTypeMarket
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeMarket:
		return "market"
	default:
		return "limit"
	}
}

func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *OrderType) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"limit"`:
		*t = OrderTypeLimit
	case `"market"`:
		*t = OrderTypeMarket
	default:
		return fmt.Errorf("unknown order type %s", b)
	}
	return nil
}

// Side is which book an order rests on / trades against.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "buy"
	}
}

func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Side) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"buy"`:
		*s = SideBuy
	case `"sell"`:
		*s = SideSell
	default:
		return fmt.Errorf("unknown side %s", b)
	}
	return nil
}

// Opposite returns the other side, used when looking up a resting order's
// depth during cancellation (see OrderBook.CancelOrder).
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// TimeInForceType is the lifetime policy applied to a limit order on arrival.
type TimeInForceType int

const (
	GoodTillCanceled TimeInForceType = iota
	ImmediateOrCancel
	GoodTillCrossing
	FillOrKill
)

func (t TimeInForceType) String() string {
	switch t {
	case GoodTillCanceled:
		return "GTC"
	case ImmediateOrCancel:
		return "IOC"
	case GoodTillCrossing:
		return "GTX"
	case FillOrKill:
		return "FOK"
	default:
		return "GTC"
	}
}

func (t TimeInForceType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeInForceType) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"GTC"`:
		*t = GoodTillCanceled
	case `"IOC"`:
		*t = ImmediateOrCancel
	case `"GTX"`:
		*t = GoodTillCrossing
	case `"FOK"`:
		*t = FillOrKill
	default:
		return fmt.Errorf("unknown time in force %s", b)
	}
	return nil
}

// OrderStatus is the inbound order's lifecycle state. The applier only ever
// distinguishes OrderStatusCancelling from everything else; the other
// values exist for completeness of the wire format and for callers
// upstream of the matching core.
type OrderStatus int

const (
	OrderStatusNew OrderStatus = iota
	OrderStatusOpen
	OrderStatusCancelling
	OrderStatusCancelled
	OrderStatusPartial
	OrderStatusFilled
)

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusNew:
		return "new"
	case OrderStatusOpen:
		return "open"
	case OrderStatusCancelling:
		return "cancelling"
	case OrderStatusCancelled:
		return "cancelled"
	case OrderStatusPartial:
		return "partial"
	case OrderStatusFilled:
		return "filled"
	default:
		return "new"
	}
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"new"`:
		*s = OrderStatusNew
	case `"open"`:
		*s = OrderStatusOpen
	case `"cancelling"`:
		*s = OrderStatusCancelling
	case `"cancelled"`:
		*s = OrderStatusCancelled
	case `"partial"`:
		*s = OrderStatusPartial
	case `"filled"`:
		*s = OrderStatusFilled
	default:
		return fmt.Errorf("unknown order status %s", b)
	}
	return nil
}

// DoneReason distinguishes why a resting or taker order left the book.
type DoneReason int

const (
	DoneReasonFilled DoneReason = iota
	DoneReasonCancelled
)

func (r DoneReason) String() string {
	if r == DoneReasonCancelled {
		return "cancelled"
	}
	return "filled"
}

func (r DoneReason) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

func (r *DoneReason) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"filled"`:
		*r = DoneReasonFilled
	case `"cancelled"`:
		*r = DoneReasonCancelled
	default:
		return fmt.Errorf("unknown done reason %s", b)
	}
	return nil
}

// Order is an inbound submission or cancellation as read off the order
// stream. Every monetary field is an arbitrary-precision decimal; id is
// strictly increasing per producer.
type Order struct {
	ID            uint64          `json:"id"`
	CreatedAt     uint64          `json:"created_at"`
	ProductID     string          `json:"product_id"`
	UserID        uint64          `json:"user_id"`
	ClientOID     string          `json:"client_oid"`
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
	Funds         decimal.Decimal `json:"funds"`
	Type          OrderType       `json:"type"`
	Side          Side            `json:"side"`
	TimeInForce   TimeInForceType `json:"time_in_force"`
	Status        OrderStatus     `json:"status"`
}
