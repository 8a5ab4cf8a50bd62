package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// Playground is the simulation loop of a single run. It exclusively owns the
// ledger, the pending orders and the executed set.
type Playground struct {
	ID           uuid.UUID
	Meta         *PlaygroundMeta
	ledger       *Ledger
	engine       *ExecutionEngine
	strategy     Strategy
	bus          EventBus.Bus
	pending      []*BacktesterOrder
	executed     *ExecutedSet
	orders       map[uint]*BacktesterOrder
	previousBar  *eventmodels.Bar
	nextBarIndex int
	runErr       error
}

func (p *Playground) GetLedger() *Ledger {
	return p.ledger
}

func (p *Playground) GetStrategy() Strategy {
	return p.strategy
}

func (p *Playground) GetMeta() *PlaygroundMeta {
	return p.Meta
}

// GetPendingOrders returns the pending orders in priority order.
func (p *Playground) GetPendingOrders() []*BacktesterOrder {
	out := make([]*BacktesterOrder, len(p.pending))
	copy(out, p.pending)
	return out
}

func (p *Playground) GetExecuted() *ExecutedSet {
	return p.executed
}

// GetOrder returns any order submitted during the run, along with its status.
func (p *Playground) GetOrder(id uint) (*BacktesterOrder, BacktesterOrderStatus, bool) {
	order, found := p.orders[id]
	if !found {
		return nil, "", false
	}

	return order, p.executed.GetStatus(id), true
}

func (p *Playground) GetRunError() error {
	return p.runErr
}

// Subscribe registers a synchronous handler on the run's event bus. See
// playground_events.go for the topics and handler signatures.
func (p *Playground) Subscribe(topic string, fn interface{}) error {
	if err := p.bus.Subscribe(topic, fn); err != nil {
		return fmt.Errorf("Playground.Subscribe: %s: %w", topic, err)
	}

	return nil
}

// Tick advances the simulation by one bar: resolve pending orders against the
// previous and current bar, collect new orders from the strategy, then mark
// the ledger to market at the current close.
func (p *Playground) Tick(bar eventmodels.Bar) (*TickDelta, error) {
	if p.runErr != nil {
		return nil, ErrPlaygroundAborted
	}

	delta, err := p.tick(bar)
	if err != nil {
		p.runErr = err
		return nil, err
	}

	return delta, nil
}

func (p *Playground) tick(bar eventmodels.Bar) (*TickDelta, error) {
	barIndex := p.nextBarIndex

	if err := bar.Validate(); err != nil {
		return nil, p.newRunError(barIndex, bar.Timestamp, fmt.Errorf("%w: %v", ErrInvalidBar, err))
	}

	if p.previousBar != nil && !bar.Timestamp.After(p.previousBar.Timestamp) {
		return nil, p.newRunError(barIndex, bar.Timestamp, fmt.Errorf("%w: %s is not after %s", ErrBarsOutOfOrder, bar.Timestamp.Format(time.RFC3339), p.previousBar.Timestamp.Format(time.RFC3339)))
	}

	delta := &TickDelta{
		BarIndex:    barIndex,
		CurrentTime: bar.Timestamp,
	}

	if p.previousBar != nil {
		remaining, executed, executionDelta, err := p.engine.Evaluate(*p.previousBar, bar, p.pending, p.executed, p.ledger)
		p.pending = remaining
		p.executed = executed

		if executionDelta != nil {
			delta.NewFills = executionDelta.Fills
			delta.CancelledOrders = executionDelta.Cancellations
		}

		if err != nil {
			return nil, p.newRunError(barIndex, bar.Timestamp, err)
		}
	}

	newOrders, err := p.strategy.OnBar(bar, p.ledger)
	if err != nil {
		return nil, p.newRunError(barIndex, bar.Timestamp, fmt.Errorf("strategy %s: %w", p.strategy.GetName(), err))
	}

	for _, order := range newOrders {
		placed, err := p.placeOrder(order)
		if err != nil {
			return nil, p.newRunError(barIndex, bar.Timestamp, err)
		}

		delta.NewOrders = append(delta.NewOrders, placed)
	}

	prices := map[eventmodels.StockSymbol]float64{p.Meta.Symbol: bar.Close}
	if err := p.ledger.MarkToMarket(prices, bar.Timestamp); err != nil {
		return nil, p.newRunError(barIndex, bar.Timestamp, err)
	}

	delta.TotalValue = p.ledger.GetTotalValue()
	p.bus.Publish(EquityMarkedTopic, EquityPlotRecord{Timestamp: bar.Timestamp, Equity: delta.TotalValue})

	p.updateMeta(bar)
	p.previousBar = &bar
	p.nextBarIndex++

	return delta, nil
}

// placeOrder stores a copy of order, so the strategy cannot change it once
// it is submitted.
func (p *Playground) placeOrder(order *BacktesterOrder) (*BacktesterOrder, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: nil order", ErrInvalidOrder)
	}

	if err := order.Validate(); err != nil {
		return nil, NewOrderError(order.ID, err)
	}

	if _, found := p.orders[order.ID]; found {
		return nil, NewOrderError(order.ID, fmt.Errorf("%w: %d was already submitted in this run", ErrDuplicateOrderID, order.ID))
	}

	placed := order.Copy()
	p.orders[placed.ID] = placed
	p.pending = append(p.pending, placed)

	log.Debugf("Playground: placed %s", placed)

	p.bus.Publish(OrderSubmittedTopic, placed)

	return placed, nil
}

func (p *Playground) updateMeta(bar eventmodels.Bar) {
	if p.Meta.StartAt == nil {
		startAt := bar.Timestamp
		p.Meta.StartAt = &startAt
	}

	endAt := bar.Timestamp
	p.Meta.EndAt = &endAt
	p.Meta.NoOfBars++
}

func (p *Playground) newRunError(barIndex int, timestamp time.Time, err error) *RunError {
	runErr := &RunError{
		BarIndex:  barIndex,
		Timestamp: timestamp,
		Err:       err,
	}

	var orderErr *OrderError
	if errors.As(err, &orderErr) {
		orderID := orderErr.OrderID
		runErr.OrderID = &orderID
	}

	return runErr
}

// Run feeds every bar to Tick and stops at the first fatal error.
func (p *Playground) Run(bars []eventmodels.Bar) error {
	log.Infof("Playground %s: running %s on %s over %d bars", p.ID, p.strategy.GetName(), p.Meta.Symbol, len(bars))

	for _, bar := range bars {
		if _, err := p.Tick(bar); err != nil {
			return err
		}
	}

	log.Infof("Playground %s: complete, total value %.2f", p.ID, p.ledger.GetTotalValue())

	return nil
}

func NewPlayground(symbol eventmodels.StockSymbol, strategy Strategy, ledger *Ledger) (*Playground, error) {
	if strategy == nil {
		return nil, fmt.Errorf("NewPlayground: strategy is required")
	}

	if ledger == nil {
		return nil, fmt.Errorf("NewPlayground: ledger is required")
	}

	meta := &PlaygroundMeta{
		Symbol:          symbol,
		StrategyName:    strategy.GetName(),
		StartingBalance: ledger.GetInitialCash(),
		AllowShort:      ledger.IsShortAllowed(),
	}

	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("NewPlayground: %w", err)
	}

	bus := EventBus.New()

	return &Playground{
		ID:       uuid.New(),
		Meta:     meta,
		ledger:   ledger,
		engine:   NewExecutionEngine(symbol, bus),
		strategy: strategy,
		bus:      bus,
		pending:  []*BacktesterOrder{},
		executed: NewExecutedSet(),
		orders:   make(map[uint]*BacktesterOrder),
	}, nil
}
