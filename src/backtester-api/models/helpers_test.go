package models

import (
	"time"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

var testSymbol = eventmodels.StockSymbol("AAPL")

var testStartTime = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)

// scriptedStrategy returns a fixed list of orders for each bar index.
type scriptedStrategy struct {
	ordersByBar map[int][]*BacktesterOrder
	seenBars    []eventmodels.Bar
	seenCash    []float64
}

func (s *scriptedStrategy) GetName() string {
	return "scripted"
}

func (s *scriptedStrategy) OnBar(bar eventmodels.Bar, ledger LedgerReader) ([]*BacktesterOrder, error) {
	index := len(s.seenBars)
	s.seenBars = append(s.seenBars, bar)
	s.seenCash = append(s.seenCash, ledger.GetCash())
	return s.ordersByBar[index], nil
}

func newScriptedStrategy(ordersByBar map[int][]*BacktesterOrder) *scriptedStrategy {
	if ordersByBar == nil {
		ordersByBar = map[int][]*BacktesterOrder{}
	}

	return &scriptedStrategy{ordersByBar: ordersByBar}
}

func newBar(day int, open, high, low, close float64) eventmodels.Bar {
	return eventmodels.Bar{
		Timestamp: testStartTime.AddDate(0, 0, day),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    1000,
	}
}

func flatBar(day int, price float64) eventmodels.Bar {
	return newBar(day, price, price, price, price)
}

func mustLedger(cash float64, opts ...LedgerOption) *Ledger {
	ledger, err := NewLedger(cash, opts...)
	if err != nil {
		panic(err)
	}

	return ledger
}
