package book

import (
	"time"

	"exchangecore/internal/dedup"
	"exchangecore/internal/model"

	"github.com/shopspring/decimal"
)

// SideDepth is the method set both AskDepth (*Depth[AscKey]) and BidDepth
// (*Depth[DescKey]) export. Its signatures never mention the key type
// parameter, so both concrete depths satisfy it — the Go expression of the
// design note that the two orderings share a common construction shape.
type SideDepth interface {
	Add(order *BookOrder)
	DecrSize(orderID uint64, delta decimal.Decimal) error
	Get(orderID uint64) (*BookOrder, bool)
	PeekBest() (*BookOrder, bool)
	Walk(visit func(order *BookOrder) bool)
	Len() int
	Flatten() []BookOrder
}

// OrderBookSnapshot is a point-in-time capture of a book's resting orders
// and sequence counters, sufficient to rebuild an equivalent book via
// Restore.
type OrderBookSnapshot struct {
	ProductID string         `json:"product_id"`
	Orders    []BookOrder    `json:"orders"`
	TradeSeq  uint64         `json:"trade_seq"`
	LogSeq    uint64         `json:"log_seq"`
	Window    dedup.Snapshot `json:"order_id_window"`
}

// OrderBook owns both side depths, the trade and log sequences, and the
// dedup window. It is exclusively mutated by the applier task; no locking
// is required.
type OrderBook struct {
	Product  model.Product
	AskDepth SideDepth
	BidDepth SideDepth
	TradeSeq uint64
	LogSeq   uint64
	Window   *dedup.Window
}

// New builds an empty book for product, with a fresh default-capacity
// dedup window.
func New(product model.Product) *OrderBook {
	return &OrderBook{
		Product:  product,
		AskDepth: NewAskDepth(),
		BidDepth: NewBidDepth(),
		Window:   dedup.NewDefault(),
	}
}

// NextLogSeq pre-increments and returns the book's log sequence.
func (b *OrderBook) NextLogSeq() uint64 {
	b.LogSeq++
	return b.LogSeq
}

// NextTradeSeq pre-increments and returns the book's trade sequence.
func (b *OrderBook) NextTradeSeq() uint64 {
	b.TradeSeq++
	return b.TradeSeq
}

// matchingDepthFor is the depth a taker on side crosses against: asks for a
// buy, bids for a sell.
func (b *OrderBook) matchingDepthFor(side model.Side) SideDepth {
	if side == model.SideBuy {
		return b.AskDepth
	}
	return b.BidDepth
}

// restingDepthFor is the depth an order on side would rest on if it opens:
// bids for a buy, asks for a sell.
func (b *OrderBook) restingDepthFor(side model.Side) SideDepth {
	if side == model.SideBuy {
		return b.BidDepth
	}
	return b.AskDepth
}

// crosses reports whether a taker on takerSide at takerPrice still crosses
// a resting maker at makerPrice: buy stops when taker < maker, sell stops
// when taker > maker.
func crosses(takerSide model.Side, takerPrice, makerPrice decimal.Decimal) bool {
	if takerSide == model.SideBuy {
		return !takerPrice.LessThan(makerPrice)
	}
	return !takerPrice.GreaterThan(makerPrice)
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// IsOrderWillNotMatch returns true iff order cannot cross the opposite
// book top. Market orders are normalized to a price that always crosses
// (+inf for a buy, 0 for a sell), so they only report "will not match"
// when the opposite side is empty.
func (b *OrderBook) IsOrderWillNotMatch(order *model.Order) bool {
	depth := b.matchingDepthFor(order.Side)
	best, ok := depth.PeekBest()
	if !ok {
		return true
	}
	if order.Type == model.OrderTypeMarket {
		return false
	}
	if order.Side == model.SideBuy {
		return order.Price.LessThan(best.Price)
	}
	return order.Price.GreaterThan(best.Price)
}

// IsOrderWillFullMatch simulates, without mutation, walking the opposite
// queue in priority order. Market orders always report full-match true
// regardless of residual funds/size — see SPEC_FULL.md Open Question
// resolution #2; this means FOK never nullifies a market order.
func (b *OrderBook) IsOrderWillFullMatch(order *model.Order) bool {
	if order.Type == model.OrderTypeMarket {
		return true
	}
	depth := b.matchingDepthFor(order.Side)
	residual := order.Size
	full := false
	depth.Walk(func(maker *BookOrder) bool {
		if !crosses(order.Side, order.Price, maker.Price) {
			return false
		}
		qty := decimalMin(residual, maker.Size)
		residual = residual.Sub(qty)
		if residual.IsZero() {
			full = true
			return false
		}
		return true
	})
	return full
}

// ApplyOrder runs the dedup check, then walks the opposite depth matching
// the taker against resting makers in priority order, emitting match/done
// events for makers and a final open/done for the taker. If the dedup
// check rejects the order (expired or already seen) no events are emitted
// and the order is silently ignored.
func (b *OrderBook) ApplyOrder(order *model.Order) []LogRecord {
	if err := b.Window.Put(order.ID); err != nil {
		return nil
	}

	taker := NewBookOrder(order)
	now := uint64(time.Now().UnixNano())
	var logs []LogRecord

	matching := b.matchingDepthFor(order.Side)
	isMarketBuy := order.Type == model.OrderTypeMarket && order.Side == model.SideBuy

	for {
		maker, ok := matching.PeekBest()
		if !ok {
			break
		}

		var size decimal.Decimal
		switch {
		case isMarketBuy:
			if taker.Funds.IsZero() {
				return b.finishApply(logs, order, taker, now)
			}
			takerSize := taker.Funds.Div(maker.Price).Truncate(b.Product.BaseScale)
			if takerSize.IsZero() {
				return b.finishApply(logs, order, taker, now)
			}
			size = decimalMin(takerSize, maker.Size)
			taker.Funds = taker.Funds.Sub(size.Mul(maker.Price))
		case order.Type == model.OrderTypeMarket:
			// market sell: behaves like limit, tracked by remaining size.
			size = decimalMin(taker.Size, maker.Size)
			taker.Size = taker.Size.Sub(size)
		default:
			if !crosses(order.Side, taker.Price, maker.Price) {
				return b.finishApply(logs, order, taker, now)
			}
			size = decimalMin(taker.Size, maker.Size)
			taker.Size = taker.Size.Sub(size)
		}

		if err := matching.DecrSize(maker.OrderID, size); err != nil {
			panic(err)
		}

		tradeSeq := b.NextTradeSeq()
		logs = append(logs, &MatchLog{
			Type:         LogTypeMatch,
			Sequence:     b.NextLogSeq(),
			ProductID:    b.Product.ID,
			Time:         now,
			TradeSeq:     tradeSeq,
			TakerOrderID: order.ID,
			MakerOrderID: maker.OrderID,
			TakerUserID:  order.UserID,
			MakerUserID:  maker.UserID,
			Side:         maker.Side,
			Price:        maker.Price,
			Size:         size,
			TakerTif:     order.TimeInForce,
			MakerTif:     maker.TimeInForce,
		})

		if maker.Size.IsZero() {
			logs = append(logs, &DoneLog{
				Type:          LogTypeDone,
				Sequence:      b.NextLogSeq(),
				ProductID:     b.Product.ID,
				Time:          now,
				OrderID:       maker.OrderID,
				UserID:        maker.UserID,
				Price:         maker.Price,
				RemainingSize: decimal.Zero,
				Reason:        model.DoneReasonFilled,
				Side:          maker.Side,
				TimeInForce:   maker.TimeInForce,
			})
		}

		if (isMarketBuy && taker.Funds.IsZero()) || (!isMarketBuy && taker.Size.IsZero()) {
			break
		}
	}

	return b.finishApply(logs, order, taker, now)
}

// finishApply emits the taker's own open or done event once the match
// walk has stopped (no more cross, or residual exhausted), and adds the
// taker to its own side's depth if it is a limit order with positive
// remaining size.
func (b *OrderBook) finishApply(logs []LogRecord, order *model.Order, taker *BookOrder, now uint64) []LogRecord {
	if order.Type == model.OrderTypeLimit && taker.Size.GreaterThan(decimal.Zero) {
		b.restingDepthFor(order.Side).Add(taker)
		logs = append(logs, &OpenLog{
			Type:          LogTypeOpen,
			Sequence:      b.NextLogSeq(),
			ProductID:     b.Product.ID,
			Time:          now,
			OrderID:       order.ID,
			UserID:        order.UserID,
			RemainingSize: taker.Size,
			Price:         taker.Price,
			Side:          order.Side,
			TimeInForce:   order.TimeInForce,
		})
		return logs
	}

	var remaining, price decimal.Decimal
	reason := model.DoneReasonFilled
	if order.Type == model.OrderTypeMarket {
		remaining = decimal.Zero
		price = decimal.Zero
		if order.Side == model.SideBuy && taker.Funds.GreaterThan(decimal.Zero) {
			reason = model.DoneReasonCancelled
		} else if order.Side == model.SideSell && taker.Size.GreaterThan(decimal.Zero) {
			reason = model.DoneReasonCancelled
		}
	} else {
		remaining = taker.Size
		price = taker.Price
	}

	logs = append(logs, &DoneLog{
		Type:          LogTypeDone,
		Sequence:      b.NextLogSeq(),
		ProductID:     b.Product.ID,
		Time:          now,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Price:         price,
		RemainingSize: remaining,
		Reason:        reason,
		Side:          order.Side,
		TimeInForce:   order.TimeInForce,
	})
	return logs
}

// CancelOrder records the id in the dedup window on a best-effort basis,
// then looks the order up on the *opposite* side's depth relative to the
// conventional side mapping (buy cancels search the ask depth, sell
// cancels search the bid depth). This is the documented, preserved
// behavior from the source system — see SPEC_FULL.md Open Question
// resolution #1. If the order is not found the cancel is a no-op
// (idempotent); no events are emitted.
func (b *OrderBook) CancelOrder(order *model.Order) []LogRecord {
	_ = b.Window.Put(order.ID)

	depth := b.restingDepthFor(order.Side.Opposite())
	maker, ok := depth.Get(order.ID)
	if !ok {
		return nil
	}

	size := maker.Size
	price := maker.Price
	userID := maker.UserID
	side := maker.Side
	tif := maker.TimeInForce

	if err := depth.DecrSize(order.ID, size); err != nil {
		panic(err)
	}

	return []LogRecord{&DoneLog{
		Type:          LogTypeDone,
		Sequence:      b.NextLogSeq(),
		ProductID:     b.Product.ID,
		Time:          uint64(time.Now().UnixNano()),
		OrderID:       order.ID,
		UserID:        userID,
		Price:         price,
		RemainingSize: size,
		Reason:        model.DoneReasonCancelled,
		Side:          side,
		TimeInForce:   tif,
	}}
}

// NullifyOrder unconditionally emits a single done{cancelled} for the
// order's full original size. Used by GTX/FOK when the book state makes
// them impossible.
func (b *OrderBook) NullifyOrder(order *model.Order) []LogRecord {
	return []LogRecord{&DoneLog{
		Type:          LogTypeDone,
		Sequence:      b.NextLogSeq(),
		ProductID:     b.Product.ID,
		Time:          uint64(time.Now().UnixNano()),
		OrderID:       order.ID,
		UserID:        order.UserID,
		Price:         order.Price,
		RemainingSize: order.Size,
		Reason:        model.DoneReasonCancelled,
		Side:          order.Side,
		TimeInForce:   order.TimeInForce,
	}}
}

// Snapshot flattens both depths (order unspecified) and captures the
// sequence counters and a clone of the dedup window.
func (b *OrderBook) Snapshot() *OrderBookSnapshot {
	orders := append(b.AskDepth.Flatten(), b.BidDepth.Flatten()...)
	return &OrderBookSnapshot{
		ProductID: b.Product.ID,
		Orders:    orders,
		TradeSeq:  b.TradeSeq,
		LogSeq:    b.LogSeq,
		Window:    b.Window.ToSnapshot(),
	}
}

// Restore resets sequences and the dedup window (rebuilt with default
// capacity if the persisted cap is zero) and re-adds every resting order
// via the side add path, rebuilding the queues.
func (b *OrderBook) Restore(snap *OrderBookSnapshot) {
	b.TradeSeq = snap.TradeSeq
	b.LogSeq = snap.LogSeq
	b.Window = dedup.FromSnapshot(snap.Window)
	b.AskDepth = NewAskDepth()
	b.BidDepth = NewBidDepth()

	for i := range snap.Orders {
		o := snap.Orders[i]
		if o.Side == model.SideBuy {
			b.BidDepth.Add(&o)
		} else {
			b.AskDepth.Add(&o)
		}
	}
}
