package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

var testSymbol = eventmodels.StockSymbol("SPY")

type stubLedger struct {
	cash      float64
	positions map[eventmodels.StockSymbol]float64
}

func (l *stubLedger) GetCash() float64 {
	return l.cash
}

func (l *stubLedger) GetPositions() map[eventmodels.StockSymbol]float64 {
	out := make(map[eventmodels.StockSymbol]float64, len(l.positions))
	for symbol, quantity := range l.positions {
		out[symbol] = quantity
	}

	return out
}

func barsFromCloses(closes []float64) []eventmodels.Bar {
	start := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]eventmodels.Bar, len(closes))
	for i, c := range closes {
		bars[i] = eventmodels.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}

	return bars
}

// zigzag starts at 100 and alternates steps of first and second.
func zigzag(n int, first, second float64) []float64 {
	closes := []float64{100}
	for i := 0; i < n; i++ {
		step := first
		if i%2 == 1 {
			step = second
		}
		closes = append(closes, closes[len(closes)-1]+step)
	}

	return closes
}

// feed returns the orders emitted per bar index.
func feed(t *testing.T, strategy models.Strategy, ledger models.LedgerReader, closes []float64) map[int][]*models.BacktesterOrder {
	t.Helper()

	out := map[int][]*models.BacktesterOrder{}
	for i, bar := range barsFromCloses(closes) {
		orders, err := strategy.OnBar(bar, ledger)
		require.NoError(t, err)
		if len(orders) > 0 {
			out[i] = orders
		}
	}

	return out
}

func TestMovingAverageCrossover(t *testing.T) {
	closes := []float64{}
	for i := 0; i < 25; i++ {
		closes = append(closes, 100-float64(i))
	}
	for i := 1; i < 15; i++ {
		closes = append(closes, 76+3*float64(i))
	}

	t.Run("fast sma crossing above slow sma opens a long bracket", func(t *testing.T) {
		strategy, err := NewStrategy(eventmodels.StrategyYAML{Name: MovingAverageCrossoverName}, testSymbol, false)
		require.NoError(t, err)
		assert.Equal(t, MovingAverageCrossoverName, strategy.GetName())

		signals := feed(t, strategy, &stubLedger{cash: 10000}, closes)
		require.Len(t, signals, 1)

		orders, found := signals[31]
		require.True(t, found)
		require.Len(t, orders, 3)

		entry, stopLoss, takeProfit := orders[0], orders[1], orders[2]
		assert.Equal(t, uint(1), entry.ID)
		assert.Equal(t, models.Market, entry.Type)
		assert.Equal(t, models.BacktesterOrderSideBuy, entry.Side)
		assert.Equal(t, 1.0, entry.Quantity)

		assert.Equal(t, models.Stop, stopLoss.Type)
		assert.InDelta(t, 0.8*97, *stopLoss.StopPrice, 1e-9)
		assert.Equal(t, models.Limit, takeProfit.Type)
		assert.InDelta(t, 1.2*97, *takeProfit.LimitPrice, 1e-9)
		assert.ElementsMatch(t, []uint{2, 3}, stopLoss.BlockingIDs)
		assert.ElementsMatch(t, []uint{2, 3}, takeProfit.BlockingIDs)
	})

	t.Run("signal is skipped without enough cash", func(t *testing.T) {
		strategy, err := NewMovingAverageCrossover(10, 20, 1, 0.2, 0.2)
		require.NoError(t, err)

		signals := feed(t, strategy, &stubLedger{cash: 50}, closes)
		assert.Empty(t, signals)
	})

	t.Run("invalid periods are rejected", func(t *testing.T) {
		_, err := NewMovingAverageCrossover(20, 10, 1, 0.2, 0.2)
		assert.Error(t, err)

		_, err = NewMovingAverageCrossover(0, 10, 1, 0.2, 0.2)
		assert.Error(t, err)
	})
}

func TestTrendFollowing(t *testing.T) {
	t.Run("uptrend opens long brackets sized by the risk fraction", func(t *testing.T) {
		strategy, err := NewStrategy(eventmodels.StrategyYAML{Name: TrendFollowingName}, testSymbol, false)
		require.NoError(t, err)

		ledger := &stubLedger{cash: 10000}
		signals := feed(t, strategy, ledger, zigzag(20, 2, -1))

		_, early := signals[13]
		assert.False(t, early)

		orders, found := signals[14]
		require.True(t, found)
		require.Len(t, orders, 3)

		assert.Equal(t, models.BacktesterOrderSideBuy, orders[0].Side)
		assert.InDelta(t, 0.02*10000/107.0, orders[0].Quantity, 1e-9)
		assert.InDelta(t, 0.9*107, *orders[1].StopPrice, 1e-9)
		assert.InDelta(t, 1.1*107, *orders[2].LimitPrice, 1e-9)

		ids := map[uint]bool{}
		for _, bracket := range signals {
			for _, order := range bracket {
				assert.False(t, ids[order.ID], "order id %d reused", order.ID)
				ids[order.ID] = true
			}
		}
		assert.Len(t, ids, 3*len(signals))
	})

	t.Run("downtrend opens short brackets when shorting is allowed", func(t *testing.T) {
		strategy, err := NewTrendFollowing(14, 7, 0.02, 0.1, 0.1, true)
		require.NoError(t, err)

		signals := feed(t, strategy, &stubLedger{cash: 10000}, zigzag(20, -2, 1))

		orders, found := signals[14]
		require.True(t, found)
		assert.Equal(t, models.BacktesterOrderSideSell, orders[0].Side)
		assert.Equal(t, models.BacktesterOrderSideBuy, orders[1].Side)
		assert.InDelta(t, 1.1*93, *orders[1].StopPrice, 1e-9)
		assert.InDelta(t, 0.9*93, *orders[2].LimitPrice, 1e-9)
	})

	t.Run("downtrend is ignored when shorting is not allowed", func(t *testing.T) {
		strategy, err := NewTrendFollowing(14, 7, 0.02, 0.1, 0.1, false)
		require.NoError(t, err)

		signals := feed(t, strategy, &stubLedger{cash: 10000}, zigzag(20, -2, 1))
		assert.Empty(t, signals)
	})

	t.Run("invalid risk fraction is rejected", func(t *testing.T) {
		_, err := NewTrendFollowing(14, 7, 0, 0.1, 0.1, false)
		assert.Error(t, err)

		_, err = NewTrendFollowing(14, 7, 1.5, 0.1, 0.1, false)
		assert.Error(t, err)
	})
}

func TestBollingerReversion(t *testing.T) {
	closes := []float64{}
	for i := 0; i < 20; i++ {
		closes = append(closes, 100+float64(i%2))
	}
	closes = append(closes, 90, 91)

	t.Run("buys the first up close below the lower band", func(t *testing.T) {
		strategy, err := NewStrategy(eventmodels.StrategyYAML{Name: BollingerReversionName}, testSymbol, false)
		require.NoError(t, err)

		signals := feed(t, strategy, &stubLedger{cash: 10000}, closes)
		require.Len(t, signals, 1)

		orders, found := signals[21]
		require.True(t, found)
		assert.InDelta(t, 99.5, *orders[2].LimitPrice, 1e-9)
		assert.InDelta(t, 82.5, *orders[1].StopPrice, 1e-9)
		assert.InDelta(t, 0.02*10000/91.0, orders[0].Quantity, 1e-9)
	})

	t.Run("no entry while holding a position", func(t *testing.T) {
		strategy, err := NewBollingerReversion(testSymbol, 20, 2, 0.02)
		require.NoError(t, err)

		ledger := &stubLedger{cash: 10000, positions: map[eventmodels.StockSymbol]float64{testSymbol: 5}}
		signals := feed(t, strategy, ledger, closes)
		assert.Empty(t, signals)
	})
}

func TestNewStrategy(t *testing.T) {
	t.Run("unknown strategy name", func(t *testing.T) {
		_, err := NewStrategy(eventmodels.StrategyYAML{Name: "martingale"}, testSymbol, false)
		assert.Error(t, err)
	})

	t.Run("invalid parameters are reported", func(t *testing.T) {
		_, err := NewStrategy(eventmodels.StrategyYAML{Name: MovingAverageCrossoverName, FastPeriod: 30}, testSymbol, false)
		assert.Error(t, err)
	})

	t.Run("every name builds a strategy", func(t *testing.T) {
		for _, name := range Names() {
			strategy, err := NewStrategy(eventmodels.StrategyYAML{Name: name}, testSymbol, false)
			require.NoError(t, err)
			assert.Equal(t, name, strategy.GetName())
		}
	})

	t.Run("each call returns independent state", func(t *testing.T) {
		s1, err := NewStrategy(eventmodels.StrategyYAML{Name: TrendFollowingName}, testSymbol, false)
		require.NoError(t, err)

		s2, err := NewStrategy(eventmodels.StrategyYAML{Name: TrendFollowingName}, testSymbol, false)
		require.NoError(t, err)

		feed(t, s1, &stubLedger{cash: 10000}, zigzag(20, 2, -1))
		signals := feed(t, s2, &stubLedger{cash: 10000}, zigzag(20, 2, -1))

		assert.Equal(t, uint(1), signals[14][0].ID)
	})
}
