package models

import (
	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type FillApplier interface {
	Buy(symbol eventmodels.StockSymbol, price, quantity float64) error
	Sell(symbol eventmodels.StockSymbol, price, quantity float64) error
}

// ExecutionDelta lists what a single Evaluate pass resolved, in resolution
// order.
type ExecutionDelta struct {
	Fills         []*BacktesterFill
	Cancellations []*BacktesterCancellation
}

type ExecutionEngine struct {
	symbol eventmodels.StockSymbol
	bus    EventBus.Bus
}

// Evaluate resolves the pending orders against the move from previous to
// current in a single pass, in priority (insertion) order. An order cancelled
// or filled earlier in the pass is visible to the orders after it.
func (e *ExecutionEngine) Evaluate(previous, current eventmodels.Bar, pending []*BacktesterOrder, executed *ExecutedSet, ledger FillApplier) ([]*BacktesterOrder, *ExecutedSet, *ExecutionDelta, error) {
	delta := &ExecutionDelta{}

	for _, order := range pending {
		if executed.Contains(order.ID) {
			continue
		}

		if order.IsBlockedBy(executed) {
			e.cancel(order, current, executed, delta)
			continue
		}

		price, triggered := CheckTrigger(order, previous, current)
		if !triggered {
			continue
		}

		var err error
		switch order.Side {
		case BacktesterOrderSideBuy:
			err = ledger.Buy(e.symbol, price, order.Quantity)
		case BacktesterOrderSideSell:
			err = ledger.Sell(e.symbol, price, order.Quantity)
		default:
			err = ErrInvalidOrder
		}

		if err != nil {
			return remainingOrders(pending, executed), executed, delta, NewOrderError(order.ID, err)
		}

		executed.MarkFilled(order.ID)

		fill := NewBacktesterFill(order, e.symbol, current.Timestamp, price)
		delta.Fills = append(delta.Fills, fill)

		log.Debugf("ExecutionEngine: filled %s at %.4f", order, price)

		e.publish(OrderFilledTopic, fill)
	}

	// Orders ahead of a fill in the pending list did not see it during the
	// pass. Cancel them now so a bracket resolves within one step whichever
	// exit fires.
	for swept := true; swept; {
		swept = false
		for _, order := range pending {
			if !executed.Contains(order.ID) && order.IsBlockedBy(executed) {
				e.cancel(order, current, executed, delta)
				swept = true
			}
		}
	}

	return remainingOrders(pending, executed), executed, delta, nil
}

func (e *ExecutionEngine) cancel(order *BacktesterOrder, current eventmodels.Bar, executed *ExecutedSet, delta *ExecutionDelta) {
	executed.MarkCancelled(order.ID)
	log.Debugf("ExecutionEngine: cancelled %s, blocked by %v", order, order.BlockingIDs)

	cancellation := &BacktesterCancellation{
		OrderID:    order.ID,
		BlockedBy:  order.BlockingIDs,
		CreateDate: current.Timestamp,
		Tag:        order.Tag,
	}
	delta.Cancellations = append(delta.Cancellations, cancellation)

	e.publish(OrderCancelledTopic, cancellation)
}

func (e *ExecutionEngine) publish(topic string, event interface{}) {
	if e.bus == nil {
		return
	}

	e.bus.Publish(topic, event)
}

// CheckTrigger returns the fill price and whether the order fires on the move
// from previous to current.
func CheckTrigger(order *BacktesterOrder, previous, current eventmodels.Bar) (float64, bool) {
	switch order.Type {
	case Market:
		return current.Open, true
	case Limit:
		limit := *order.LimitPrice
		if order.Side == BacktesterOrderSideBuy && current.Low < limit {
			return limit, true
		}

		if order.Side == BacktesterOrderSideSell && current.High > limit {
			return limit, true
		}
	case Stop:
		// The crossing test is the same for both sides.
		stop := *order.StopPrice
		if previous.Low < stop && current.High > stop {
			return stop, true
		}

		if previous.High > stop && current.Low < stop {
			return stop, true
		}
	}

	return 0, false
}

func remainingOrders(pending []*BacktesterOrder, executed *ExecutedSet) []*BacktesterOrder {
	remaining := make([]*BacktesterOrder, 0, len(pending))
	for _, order := range pending {
		if !executed.Contains(order.ID) {
			remaining = append(remaining, order)
		}
	}

	return remaining
}

// NewExecutionEngine builds an engine for one symbol. bus may be nil.
func NewExecutionEngine(symbol eventmodels.StockSymbol, bus EventBus.Bus) *ExecutionEngine {
	return &ExecutionEngine{
		symbol: symbol,
		bus:    bus,
	}
}
