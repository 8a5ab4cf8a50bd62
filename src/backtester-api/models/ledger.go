package models

import (
	"fmt"
	"math"
	"time"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// quantityTolerance absorbs float rounding when positions built from several
// fills are closed again.
const quantityTolerance = 1e-9

type LedgerReader interface {
	GetCash() float64
	GetPositions() map[eventmodels.StockSymbol]float64
}

type Ledger struct {
	initialCash float64
	cash        float64
	positions   map[eventmodels.StockSymbol]float64
	totalValue  float64
	history     []EquityPlotRecord
	allowShort  bool
}

type LedgerOption func(*Ledger)

// WithAllowShort disables the holdings check on sells, so positions may go
// negative.
func WithAllowShort(allowShort bool) LedgerOption {
	return func(l *Ledger) {
		l.allowShort = allowShort
	}
}

func (l *Ledger) Buy(symbol eventmodels.StockSymbol, price, quantity float64) error {
	if err := validateFillArgs(price, quantity); err != nil {
		return fmt.Errorf("Ledger.Buy: %w", err)
	}

	cost := price * quantity
	if cost > l.cash {
		return fmt.Errorf("Ledger.Buy: %w: cost (%.2f) > cash (%.2f)", ErrInsufficientFunds, cost, l.cash)
	}

	l.cash -= cost
	l.setPosition(symbol, l.positions[symbol]+quantity)

	return nil
}

func (l *Ledger) Sell(symbol eventmodels.StockSymbol, price, quantity float64) error {
	if err := validateFillArgs(price, quantity); err != nil {
		return fmt.Errorf("Ledger.Sell: %w", err)
	}

	held := l.positions[symbol]
	if !l.allowShort && held+quantityTolerance < quantity {
		return fmt.Errorf("Ledger.Sell: %w: holding %.4f %s, selling %.4f", ErrInsufficientHoldings, held, symbol, quantity)
	}

	l.setPosition(symbol, held-quantity)
	l.cash += price * quantity

	return nil
}

func (l *Ledger) setPosition(symbol eventmodels.StockSymbol, quantity float64) {
	if math.Abs(quantity) <= quantityTolerance {
		delete(l.positions, symbol)
		return
	}

	l.positions[symbol] = quantity
}

// MarkToMarket values every held position at the given prices and appends the
// resulting total value to the history. The ledger is left untouched on error.
func (l *Ledger) MarkToMarket(prices map[eventmodels.StockSymbol]float64, timestamp time.Time) error {
	holdingsValue := 0.0
	for symbol, quantity := range l.positions {
		price, found := prices[symbol]
		if !found {
			return fmt.Errorf("Ledger.MarkToMarket: %w for %s", ErrMissingPrice, symbol)
		}

		holdingsValue += price * quantity
	}

	l.totalValue = l.cash + holdingsValue
	l.history = append(l.history, EquityPlotRecord{
		Timestamp: timestamp,
		Equity:    l.totalValue,
	})

	return nil
}

func (l *Ledger) GetCash() float64 {
	return l.cash
}

func (l *Ledger) GetInitialCash() float64 {
	return l.initialCash
}

// GetTotalValue returns the value computed by the latest MarkToMarket, or the
// initial cash before the first one.
func (l *Ledger) GetTotalValue() float64 {
	return l.totalValue
}

func (l *Ledger) IsShortAllowed() bool {
	return l.allowShort
}

func (l *Ledger) GetPosition(symbol eventmodels.StockSymbol) float64 {
	return l.positions[symbol]
}

func (l *Ledger) GetPositions() map[eventmodels.StockSymbol]float64 {
	out := make(map[eventmodels.StockSymbol]float64, len(l.positions))
	for symbol, quantity := range l.positions {
		out[symbol] = quantity
	}

	return out
}

func (l *Ledger) GetHistory() []EquityPlotRecord {
	out := make([]EquityPlotRecord, len(l.history))
	copy(out, l.history)
	return out
}

// GetEquityCurve returns the history normalized by the initial cash.
func (l *Ledger) GetEquityCurve() []EquityPlotRecord {
	out := make([]EquityPlotRecord, len(l.history))
	for i, record := range l.history {
		out[i] = EquityPlotRecord{
			Timestamp: record.Timestamp,
			Equity:    record.Equity / l.initialCash,
		}
	}

	return out
}

func validateFillArgs(price, quantity float64) error {
	if !isPositiveFinite(price) {
		return fmt.Errorf("%w: fill price must be a positive number, got %v", ErrInvalidOrder, price)
	}

	if !isPositiveFinite(quantity) {
		return fmt.Errorf("%w: fill quantity must be a positive number, got %v", ErrInvalidOrder, quantity)
	}

	return nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func NewLedger(initialCash float64, opts ...LedgerOption) (*Ledger, error) {
	if !isPositiveFinite(initialCash) {
		return nil, fmt.Errorf("initial cash must be greater than 0")
	}

	l := &Ledger{
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[eventmodels.StockSymbol]float64),
		totalValue:  initialCash,
		history:     []EquityPlotRecord{},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}
