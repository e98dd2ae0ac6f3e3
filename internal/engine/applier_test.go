package engine

import (
	"testing"

	"exchangecore/internal/book"
	"exchangecore/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchTestEngine() *Engine {
	return &Engine{Product: testProduct(), Book: book.New(testProduct())}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tifLimitOrder(id uint64, side model.Side, price, size string, tif model.TimeInForceType) *model.Order {
	o := testLimitOrder(id, side, price, size)
	o.TimeInForce = tif
	return o
}

// TestDispatch_GTXPostOnlyReject pins spec.md §8 scenario 3: a GTX order
// that would cross on arrival is nullified rather than applied, and the
// book is left untouched.
func TestDispatch_GTXPostOnlyReject(t *testing.T) {
	e := dispatchTestEngine()
	e.dispatch(testLimitOrder(1, model.SideSell, "100.00", "1"))

	logs := e.dispatch(tifLimitOrder(2, model.SideBuy, "100.00", "1", model.GoodTillCrossing))

	require.Len(t, logs, 1)
	done, ok := logs[0].(*book.DoneLog)
	require.True(t, ok)
	assert.Equal(t, model.DoneReasonCancelled, done.Reason)
	assert.Equal(t, uint64(2), done.OrderID)
	assert.True(t, done.RemainingSize.Equal(dec("1")))
	assert.Equal(t, 1, e.Book.AskDepth.Len(), "resting ask is untouched")
	assert.Equal(t, 0, e.Book.BidDepth.Len(), "GTX order never rests")
}

// TestDispatch_IOCLeftoverIsCancelled pins spec.md §8 scenario 4: an IOC
// order that partially fills emits the match/done pair for the maker, then
// its own open, then a trailing done{cancelled} for the unfilled residual
// — and the book ends up empty, not left resting.
func TestDispatch_IOCLeftoverIsCancelled(t *testing.T) {
	e := dispatchTestEngine()
	e.dispatch(testLimitOrder(1, model.SideSell, "100.00", "1"))

	logs := e.dispatch(tifLimitOrder(2, model.SideBuy, "100.00", "3", model.ImmediateOrCancel))

	kinds := make([]book.LogType, len(logs))
	for i, l := range logs {
		kinds[i] = l.Kind()
	}
	require.Equal(t, []book.LogType{
		book.LogTypeMatch, book.LogTypeDone, book.LogTypeOpen, book.LogTypeDone,
	}, kinds)

	makerDone, ok := logs[1].(*book.DoneLog)
	require.True(t, ok)
	assert.Equal(t, uint64(1), makerDone.OrderID)
	assert.Equal(t, model.DoneReasonFilled, makerDone.Reason)

	open, ok := logs[2].(*book.OpenLog)
	require.True(t, ok)
	assert.Equal(t, uint64(2), open.OrderID)
	assert.True(t, open.RemainingSize.Equal(dec("2")))

	takerDone, ok := logs[3].(*book.DoneLog)
	require.True(t, ok)
	assert.Equal(t, uint64(2), takerDone.OrderID)
	assert.Equal(t, model.DoneReasonCancelled, takerDone.Reason)
	assert.True(t, takerDone.RemainingSize.Equal(dec("2")))

	assert.Equal(t, 0, e.Book.AskDepth.Len())
	assert.Equal(t, 0, e.Book.BidDepth.Len(), "IOC residual must not be left resting")
}

// TestDispatch_FOKInsufficientLiquidityIsNullified pins spec.md §8 scenario
// 5: a FOK order that cannot be fully filled on arrival is nullified, never
// touching the book.
func TestDispatch_FOKInsufficientLiquidityIsNullified(t *testing.T) {
	e := dispatchTestEngine()
	e.dispatch(testLimitOrder(1, model.SideSell, "100.00", "1"))

	logs := e.dispatch(tifLimitOrder(3, model.SideBuy, "100.00", "2", model.FillOrKill))

	require.Len(t, logs, 1)
	done, ok := logs[0].(*book.DoneLog)
	require.True(t, ok)
	assert.Equal(t, model.DoneReasonCancelled, done.Reason)
	assert.Equal(t, uint64(3), done.OrderID)
	assert.True(t, done.RemainingSize.Equal(dec("2")))
	assert.Equal(t, 1, e.Book.AskDepth.Len(), "resting ask is untouched")
	assert.Equal(t, 0, e.Book.BidDepth.Len())
}
