package strategy

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
	"github.com/jiaming2012/bar-backtester/src/indicators"
)

const MovingAverageCrossoverName = "ma_crossover"

// MovingAverageCrossover opens a long bracket when the fast SMA crosses above
// the slow SMA.
type MovingAverageCrossover struct {
	fast              *indicators.Sma
	slow              *indicators.Sma
	quantity          float64
	stopLossPercent   float64
	takeProfitPercent float64
	barCount          int
	ids               *orderIDSequence
}

func (s *MovingAverageCrossover) GetName() string {
	return MovingAverageCrossoverName
}

func (s *MovingAverageCrossover) OnBar(bar eventmodels.Bar, ledger models.LedgerReader) ([]*models.BacktesterOrder, error) {
	s.fast.Update(bar)
	s.slow.Update(bar)
	s.barCount++

	if s.barCount <= s.slow.Period {
		return nil, nil
	}

	fastHistory := s.fast.History()
	slowHistory := s.slow.History()
	n := len(fastHistory)

	crossedAbove := fastHistory[n-2] < slowHistory[n-2] && fastHistory[n-1] > slowHistory[n-1]
	if !crossedAbove {
		return nil, nil
	}

	if s.quantity*bar.Close > ledger.GetCash() {
		log.Debugf("%s: skipping signal at %s, not enough cash", s.GetName(), bar.Timestamp)
		return nil, nil
	}

	stopLoss := bar.Close * (1 - s.stopLossPercent)
	takeProfit := bar.Close * (1 + s.takeProfitPercent)

	orders, err := models.NewLongBracket(s.ids.Reserve(models.BracketOrderCount), bar.Timestamp, s.quantity, stopLoss, takeProfit, s.GetName())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.GetName(), err)
	}

	log.Debugf("%s: fast sma crossed above slow sma at %s, close %.4f", s.GetName(), bar.Timestamp, bar.Close)

	return orders, nil
}

func NewMovingAverageCrossover(fastPeriod, slowPeriod int, quantity, stopLossPercent, takeProfitPercent float64) (*MovingAverageCrossover, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, fmt.Errorf("NewMovingAverageCrossover: periods must be positive")
	}

	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("NewMovingAverageCrossover: fast period (%d) must be less than slow period (%d)", fastPeriod, slowPeriod)
	}

	if quantity <= 0 {
		return nil, fmt.Errorf("NewMovingAverageCrossover: quantity must be positive")
	}

	if err := validatePercents(stopLossPercent, takeProfitPercent); err != nil {
		return nil, fmt.Errorf("NewMovingAverageCrossover: %w", err)
	}

	return &MovingAverageCrossover{
		fast:              indicators.NewSma(fastPeriod),
		slow:              indicators.NewSma(slowPeriod),
		quantity:          quantity,
		stopLossPercent:   stopLossPercent,
		takeProfitPercent: takeProfitPercent,
		ids:               newOrderIDSequence(),
	}, nil
}
