package models

import (
	"errors"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTrigger(t *testing.T) {
	previous := flatBar(0, 100)
	current := newBar(1, 101, 120, 90, 95)

	t.Run("market fills at the current open", func(t *testing.T) {
		price, triggered := CheckTrigger(NewMarketOrder(1, testStartTime, BacktesterOrderSideBuy, 1, nil, ""), previous, current)
		assert.True(t, triggered)
		assert.Equal(t, 101.0, price)
	})

	t.Run("limit buy fills at the limit when the low trades below it", func(t *testing.T) {
		price, triggered := CheckTrigger(NewLimitOrder(1, testStartTime, BacktesterOrderSideBuy, 1, 95, nil, ""), previous, current)
		assert.True(t, triggered)
		assert.Equal(t, 95.0, price)
	})

	t.Run("limit buy does not fill when the low only touches the limit", func(t *testing.T) {
		_, triggered := CheckTrigger(NewLimitOrder(1, testStartTime, BacktesterOrderSideBuy, 1, 90, nil, ""), previous, current)
		assert.False(t, triggered)
	})

	t.Run("limit sell fills at the limit when the high trades above it", func(t *testing.T) {
		price, triggered := CheckTrigger(NewLimitOrder(1, testStartTime, BacktesterOrderSideSell, 1, 119, nil, ""), previous, current)
		assert.True(t, triggered)
		assert.Equal(t, 119.0, price)

		_, triggered = CheckTrigger(NewLimitOrder(1, testStartTime, BacktesterOrderSideSell, 1, 120, nil, ""), previous, current)
		assert.False(t, triggered)
	})

	t.Run("stop fills at the stop on an upward crossing", func(t *testing.T) {
		price, triggered := CheckTrigger(NewStopOrder(1, testStartTime, BacktesterOrderSideBuy, 1, 110, nil, ""), previous, current)
		assert.True(t, triggered)
		assert.Equal(t, 110.0, price)
	})

	t.Run("stop fills at the stop on a downward crossing", func(t *testing.T) {
		price, triggered := CheckTrigger(NewStopOrder(1, testStartTime, BacktesterOrderSideSell, 1, 95, nil, ""), previous, current)
		assert.True(t, triggered)
		assert.Equal(t, 95.0, price)
	})

	t.Run("stop crossing test is the same for both sides", func(t *testing.T) {
		_, buyTriggered := CheckTrigger(NewStopOrder(1, testStartTime, BacktesterOrderSideBuy, 1, 95, nil, ""), previous, current)
		_, sellTriggered := CheckTrigger(NewStopOrder(1, testStartTime, BacktesterOrderSideSell, 1, 110, nil, ""), previous, current)
		assert.True(t, buyTriggered)
		assert.True(t, sellTriggered)
	})

	t.Run("stop outside the range does not fill", func(t *testing.T) {
		_, triggered := CheckTrigger(NewStopOrder(1, testStartTime, BacktesterOrderSideBuy, 1, 125, nil, ""), previous, current)
		assert.False(t, triggered)

		_, triggered = CheckTrigger(NewStopOrder(1, testStartTime, BacktesterOrderSideSell, 1, 85, nil, ""), previous, current)
		assert.False(t, triggered)
	})
}

func TestExecutionEngine(t *testing.T) {
	previous := flatBar(0, 100)

	newLongExits := func() []*BacktesterOrder {
		return []*BacktesterOrder{
			NewStopOrder(2, testStartTime, BacktesterOrderSideSell, 1, 95, []uint{2, 3}, "stop loss"),
			NewLimitOrder(3, testStartTime, BacktesterOrderSideSell, 1, 130, []uint{2, 3}, "take profit"),
		}
	}

	heldLedger := func(t *testing.T) *Ledger {
		ledger := mustLedger(1000)
		require.NoError(t, ledger.Buy(testSymbol, 100, 1))
		return ledger
	}

	t.Run("market order fills at the current open", func(t *testing.T) {
		ledger := mustLedger(1000)
		engine := NewExecutionEngine(testSymbol, nil)
		pending := []*BacktesterOrder{NewMarketOrder(1, testStartTime, BacktesterOrderSideBuy, 2, nil, "")}

		remaining, executed, delta, err := engine.Evaluate(previous, newBar(1, 101, 120, 90, 95), pending, NewExecutedSet(), ledger)
		require.NoError(t, err)

		assert.Empty(t, remaining)
		assert.Equal(t, []uint{1}, executed.FilledIDs())
		require.Len(t, delta.Fills, 1)
		assert.Equal(t, 101.0, delta.Fills[0].Price)
		assert.Equal(t, testSymbol, delta.Fills[0].Symbol)
		assert.Equal(t, 1000.0-202.0, ledger.GetCash())
		assert.Equal(t, 2.0, ledger.GetPosition(testSymbol))
	})

	t.Run("untriggered orders remain pending in order", func(t *testing.T) {
		ledger := heldLedger(t)
		engine := NewExecutionEngine(testSymbol, nil)
		pending := newLongExits()

		remaining, executed, delta, err := engine.Evaluate(previous, newBar(1, 100, 102, 98, 101), pending, NewExecutedSet(), ledger)
		require.NoError(t, err)

		require.Len(t, remaining, 2)
		assert.Equal(t, uint(2), remaining[0].ID)
		assert.Equal(t, uint(3), remaining[1].ID)
		assert.Equal(t, 0, executed.Len())
		assert.Empty(t, delta.Fills)
		assert.Empty(t, delta.Cancellations)
		assert.Equal(t, 900.0, ledger.GetCash())
	})

	t.Run("stop loss fill cancels the take profit in the same step", func(t *testing.T) {
		ledger := heldLedger(t)
		engine := NewExecutionEngine(testSymbol, nil)

		remaining, executed, delta, err := engine.Evaluate(previous, newBar(1, 99, 101, 90, 92), newLongExits(), NewExecutedSet(), ledger)
		require.NoError(t, err)

		assert.Empty(t, remaining)
		assert.Equal(t, []uint{2}, executed.FilledIDs())
		assert.Equal(t, []uint{3}, executed.CancelledIDs())
		require.Len(t, delta.Fills, 1)
		assert.Equal(t, 95.0, delta.Fills[0].Price)
		require.Len(t, delta.Cancellations, 1)
		assert.Equal(t, uint(3), delta.Cancellations[0].OrderID)

		assert.Equal(t, 995.0, ledger.GetCash())
		assert.Empty(t, ledger.GetPositions())
	})

	t.Run("take profit fill cancels the stop loss in the same step", func(t *testing.T) {
		ledger := heldLedger(t)
		engine := NewExecutionEngine(testSymbol, nil)

		remaining, executed, delta, err := engine.Evaluate(previous, newBar(1, 101, 135, 99, 130), newLongExits(), NewExecutedSet(), ledger)
		require.NoError(t, err)

		assert.Empty(t, remaining)
		assert.Equal(t, []uint{3}, executed.FilledIDs())
		assert.Equal(t, []uint{2}, executed.CancelledIDs())
		require.Len(t, delta.Cancellations, 1)
		assert.Equal(t, uint(2), delta.Cancellations[0].OrderID)

		assert.Equal(t, 1030.0, ledger.GetCash())
		assert.Empty(t, ledger.GetPositions())
	})

	t.Run("earlier order wins when both exits trigger on the same bar", func(t *testing.T) {
		ledger := heldLedger(t)
		engine := NewExecutionEngine(testSymbol, nil)

		_, executed, delta, err := engine.Evaluate(previous, newBar(1, 100, 135, 90, 100), newLongExits(), NewExecutedSet(), ledger)
		require.NoError(t, err)

		assert.Equal(t, []uint{2}, executed.FilledIDs())
		assert.Equal(t, []uint{3}, executed.CancelledIDs())
		require.Len(t, delta.Fills, 1)
		assert.Equal(t, 95.0, delta.Fills[0].Price)
		assert.Equal(t, 995.0, ledger.GetCash())
	})

	t.Run("independent orders fill in insertion order", func(t *testing.T) {
		ledger := mustLedger(1000)
		engine := NewExecutionEngine(testSymbol, nil)
		pending := []*BacktesterOrder{
			NewMarketOrder(7, testStartTime, BacktesterOrderSideBuy, 1, nil, ""),
			NewMarketOrder(4, testStartTime, BacktesterOrderSideBuy, 1, nil, ""),
		}

		_, executed, delta, err := engine.Evaluate(previous, flatBar(1, 100), pending, NewExecutedSet(), ledger)
		require.NoError(t, err)

		assert.Equal(t, []uint{7, 4}, executed.FilledIDs())
		require.Len(t, delta.Fills, 2)
		assert.Equal(t, uint(7), delta.Fills[0].OrderID)
		assert.Equal(t, uint(4), delta.Fills[1].OrderID)
	})

	t.Run("bracket entry fills without touching the exits", func(t *testing.T) {
		ledger := mustLedger(1000)
		engine := NewExecutionEngine(testSymbol, nil)
		bracket, err := NewLongBracket(1, testStartTime, 1, 95, 130, "")
		require.NoError(t, err)

		remaining, executed, _, err := engine.Evaluate(previous, newBar(1, 100, 102, 98, 101), bracket, NewExecutedSet(), ledger)
		require.NoError(t, err)

		assert.Equal(t, []uint{1}, executed.FilledIDs())
		require.Len(t, remaining, 2)
		assert.Equal(t, uint(2), remaining[0].ID)
		assert.Equal(t, uint(3), remaining[1].ID)
	})

	t.Run("resolved orders are dropped without being evaluated again", func(t *testing.T) {
		ledger := mustLedger(1000)
		engine := NewExecutionEngine(testSymbol, nil)
		executed := NewExecutedSet()
		executed.MarkFilled(1)
		pending := []*BacktesterOrder{NewMarketOrder(1, testStartTime, BacktesterOrderSideBuy, 1, nil, "")}

		remaining, _, delta, err := engine.Evaluate(previous, flatBar(1, 100), pending, executed, ledger)
		require.NoError(t, err)

		assert.Empty(t, remaining)
		assert.Empty(t, delta.Fills)
		assert.Equal(t, 1000.0, ledger.GetCash())
	})

	t.Run("ledger failure is returned with the failing order", func(t *testing.T) {
		ledger := mustLedger(1000)
		engine := NewExecutionEngine(testSymbol, nil)
		pending := []*BacktesterOrder{
			NewMarketOrder(1, testStartTime, BacktesterOrderSideBuy, 1, nil, ""),
			NewMarketOrder(2, testStartTime, BacktesterOrderSideBuy, 20, nil, ""),
			NewMarketOrder(3, testStartTime, BacktesterOrderSideBuy, 1, nil, ""),
		}

		_, executed, delta, err := engine.Evaluate(previous, newBar(1, 101, 101, 101, 101), pending, NewExecutedSet(), ledger)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientFunds))

		var orderErr *OrderError
		require.True(t, errors.As(err, &orderErr))
		assert.Equal(t, uint(2), orderErr.OrderID)

		assert.Equal(t, []uint{1}, executed.FilledIDs())
		require.Len(t, delta.Fills, 1)
		assert.Equal(t, 899.0, ledger.GetCash())
	})

	t.Run("sell without holdings fails the step", func(t *testing.T) {
		ledger := mustLedger(1000)
		engine := NewExecutionEngine(testSymbol, nil)
		pending := []*BacktesterOrder{NewMarketOrder(1, testStartTime, BacktesterOrderSideSell, 1, nil, "")}

		_, _, _, err := engine.Evaluate(previous, flatBar(1, 100), pending, NewExecutedSet(), ledger)
		assert.True(t, errors.Is(err, ErrInsufficientHoldings))
	})

	t.Run("fills and cancellations are published on the bus", func(t *testing.T) {
		bus := EventBus.New()
		var fills []*BacktesterFill
		var cancellations []*BacktesterCancellation

		require.NoError(t, bus.Subscribe(OrderFilledTopic, func(fill *BacktesterFill) {
			fills = append(fills, fill)
		}))
		require.NoError(t, bus.Subscribe(OrderCancelledTopic, func(cancellation *BacktesterCancellation) {
			cancellations = append(cancellations, cancellation)
		}))

		engine := NewExecutionEngine(testSymbol, bus)
		_, _, _, err := engine.Evaluate(previous, newBar(1, 99, 101, 90, 92), newLongExits(), NewExecutedSet(), heldLedger(t))
		require.NoError(t, err)

		require.Len(t, fills, 1)
		assert.Equal(t, uint(2), fills[0].OrderID)
		require.Len(t, cancellations, 1)
		assert.Equal(t, uint(3), cancellations[0].OrderID)
		assert.Equal(t, []uint{2, 3}, cancellations[0].BlockedBy)
	})
}
