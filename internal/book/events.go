package book

import (
	"exchangecore/internal/model"

	"github.com/shopspring/decimal"
)

// LogType discriminates the three event record variants that are
// serialized into one ordered sink.
type LogType int

const (
	LogTypeOpen LogType = iota
	LogTypeMatch
	LogTypeDone
)

func (t LogType) String() string {
	switch t {
	case LogTypeOpen:
		return "open"
	case LogTypeMatch:
		return "match"
	case LogTypeDone:
		return "done"
	default:
		return "open"
	}
}

func (t LogType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// LogRecord is the common shape of everything the applier pushes onto the
// log channel: something with a monotone sequence number, used by the
// committer to discard replays and couple snapshot durability.
type LogRecord interface {
	Seq() uint64
	Kind() LogType
}

// OpenLog announces that a limit taker, still having residual size after
// the match walk, now rests on its own side of the book.
type OpenLog struct {
	Type          LogType               `json:"type"`
	Sequence      uint64                `json:"seq"`
	ProductID     string                `json:"product_id"`
	Time          uint64                `json:"time"`
	OrderID       uint64                `json:"order_id"`
	UserID        uint64                `json:"user_id"`
	RemainingSize decimal.Decimal       `json:"remaining_size"`
	Price         decimal.Decimal       `json:"price"`
	Side          model.Side            `json:"side"`
	TimeInForce   model.TimeInForceType `json:"tif"`
}

func (l *OpenLog) Seq() uint64   { return l.Sequence }
func (l *OpenLog) Kind() LogType { return LogTypeOpen }

// MatchLog records one trade between a taker and a resting maker. Price is
// always the maker's price (price-taker rule).
type MatchLog struct {
	Type         LogType               `json:"type"`
	Sequence     uint64                `json:"seq"`
	ProductID    string                `json:"product_id"`
	Time         uint64                `json:"time"`
	TradeSeq     uint64                `json:"trade_seq"`
	TakerOrderID uint64                `json:"taker_order_id"`
	MakerOrderID uint64                `json:"maker_order_id"`
	TakerUserID  uint64                `json:"taker_user_id"`
	MakerUserID  uint64                `json:"maker_user_id"`
	Side         model.Side            `json:"side"`
	Price        decimal.Decimal       `json:"price"`
	Size         decimal.Decimal       `json:"size"`
	TakerTif     model.TimeInForceType `json:"taker_tif"`
	MakerTif     model.TimeInForceType `json:"maker_tif"`
}

func (l *MatchLog) Seq() uint64   { return l.Sequence }
func (l *MatchLog) Kind() LogType { return LogTypeMatch }

// DoneLog announces that an order (taker or maker) has left the book,
// either because it is fully filled or because it was cancelled/nullified.
type DoneLog struct {
	Type          LogType               `json:"type"`
	Sequence      uint64                `json:"seq"`
	ProductID     string                `json:"product_id"`
	Time          uint64                `json:"time"`
	OrderID       uint64                `json:"order_id"`
	UserID        uint64                `json:"user_id"`
	Price         decimal.Decimal       `json:"price"`
	RemainingSize decimal.Decimal       `json:"remaining_size"`
	Reason        model.DoneReason      `json:"reason"`
	Side          model.Side            `json:"side"`
	TimeInForce   model.TimeInForceType `json:"tif"`
}

func (l *DoneLog) Seq() uint64   { return l.Sequence }
func (l *DoneLog) Kind() LogType { return LogTypeDone }
