package strategy

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
	"github.com/jiaming2012/bar-backtester/src/indicators"
)

const (
	TrendFollowingName = "trend_following"
	rsiOverbought      = 70.0
	rsiOversold        = 30.0
)

// TrendFollowing trades in the direction of the close relative to its EMA,
// staying out when the RSI says the move is stretched. Each signal risks a
// fixed fraction of the available cash.
//
// The EMA is seeded with the first close and the RSI uses Wilder smoothing.
// Signals therefore differ from those of a zero-seeded EMA or a simple-sum
// RSI window, most of all in the first bars of a run.
type TrendFollowing struct {
	ema               *indicators.Ema
	rsi               *indicators.Rsi
	riskFraction      float64
	stopLossPercent   float64
	takeProfitPercent float64
	allowShort        bool
	ids               *orderIDSequence
}

func (s *TrendFollowing) GetName() string {
	return TrendFollowingName
}

func (s *TrendFollowing) OnBar(bar eventmodels.Bar, ledger models.LedgerReader) ([]*models.BacktesterOrder, error) {
	ema := s.ema.Update(bar)
	rsi := s.rsi.Update(bar)

	if !s.ema.IsReady() || !s.rsi.IsReady() {
		return nil, nil
	}

	quantity := s.riskFraction * ledger.GetCash() / bar.Close
	if quantity <= 0 {
		return nil, nil
	}

	var (
		orders []*models.BacktesterOrder
		err    error
	)

	switch {
	case ema < bar.Close && rsi < rsiOverbought:
		stopLoss := bar.Close * (1 - s.stopLossPercent)
		takeProfit := bar.Close * (1 + s.takeProfitPercent)
		orders, err = models.NewLongBracket(s.ids.Peek(), bar.Timestamp, quantity, stopLoss, takeProfit, s.GetName())
		log.Debugf("%s: enter long at %s, ema %.4f, rsi %.2f", s.GetName(), bar.Timestamp, ema, rsi)

	case ema > bar.Close && rsi > rsiOversold && s.allowShort:
		stopLoss := bar.Close * (1 + s.stopLossPercent)
		takeProfit := bar.Close * (1 - s.takeProfitPercent)
		orders, err = models.NewShortBracket(s.ids.Peek(), bar.Timestamp, quantity, stopLoss, takeProfit, s.GetName())
		log.Debugf("%s: enter short at %s, ema %.4f, rsi %.2f", s.GetName(), bar.Timestamp, ema, rsi)

	default:
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.GetName(), err)
	}

	s.ids.Reserve(len(orders))

	return orders, nil
}

func NewTrendFollowing(emaPeriod, rsiPeriod int, riskFraction, stopLossPercent, takeProfitPercent float64, allowShort bool) (*TrendFollowing, error) {
	if emaPeriod <= 0 || rsiPeriod <= 0 {
		return nil, fmt.Errorf("NewTrendFollowing: periods must be positive")
	}

	if riskFraction <= 0 || riskFraction > 1 {
		return nil, fmt.Errorf("NewTrendFollowing: risk fraction must be in (0, 1], got %v", riskFraction)
	}

	if err := validatePercents(stopLossPercent, takeProfitPercent); err != nil {
		return nil, fmt.Errorf("NewTrendFollowing: %w", err)
	}

	return &TrendFollowing{
		ema:               indicators.NewEma(emaPeriod),
		rsi:               indicators.NewRsi(rsiPeriod),
		riskFraction:      riskFraction,
		stopLossPercent:   stopLossPercent,
		takeProfitPercent: takeProfitPercent,
		allowShort:        allowShort,
		ids:               newOrderIDSequence(),
	}, nil
}
