package strategy

import (
	"fmt"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

const (
	DefaultRiskFraction = 0.02

	defaultCrossoverFastPeriod = 10
	defaultCrossoverSlowPeriod = 20
	defaultCrossoverQuantity   = 1.0
	defaultCrossoverStopLoss   = 0.2
	defaultCrossoverTakeProfit = 0.2

	defaultTrendEmaPeriod  = 14
	defaultTrendRsiPeriod  = 7
	defaultTrendStopLoss   = 0.1
	defaultTrendTakeProfit = 0.1

	defaultBollingerPeriod     = 20
	defaultBollingerDeviations = 2.0
)

func Names() []string {
	return []string{MovingAverageCrossoverName, TrendFollowingName, BollingerReversionName}
}

func orDefault[T int | float64](value, fallback T) T {
	if value == 0 {
		return fallback
	}

	return value
}

// NewStrategy builds a fresh strategy for one run. Zero-valued parameters
// fall back to the strategy's defaults.
func NewStrategy(config eventmodels.StrategyYAML, symbol eventmodels.StockSymbol, allowShort bool) (models.Strategy, error) {
	var (
		strategy models.Strategy
		err      error
	)

	switch config.Name {
	case MovingAverageCrossoverName:
		strategy, err = NewMovingAverageCrossover(
			orDefault(config.FastPeriod, defaultCrossoverFastPeriod),
			orDefault(config.SlowPeriod, defaultCrossoverSlowPeriod),
			orDefault(config.Quantity, defaultCrossoverQuantity),
			orDefault(config.StopLossPercent, defaultCrossoverStopLoss),
			orDefault(config.TakeProfitPercent, defaultCrossoverTakeProfit),
		)

	case TrendFollowingName:
		strategy, err = NewTrendFollowing(
			orDefault(config.EmaPeriod, defaultTrendEmaPeriod),
			orDefault(config.RsiPeriod, defaultTrendRsiPeriod),
			orDefault(config.RiskFraction, DefaultRiskFraction),
			orDefault(config.StopLossPercent, defaultTrendStopLoss),
			orDefault(config.TakeProfitPercent, defaultTrendTakeProfit),
			allowShort,
		)

	case BollingerReversionName:
		strategy, err = NewBollingerReversion(
			symbol,
			orDefault(config.SlowPeriod, defaultBollingerPeriod),
			orDefault(config.StdDevMultiplier, defaultBollingerDeviations),
			orDefault(config.RiskFraction, DefaultRiskFraction),
		)

	default:
		return nil, fmt.Errorf("NewStrategy: unknown strategy %q, expected one of %v", config.Name, Names())
	}

	if err != nil {
		return nil, err
	}

	return strategy, nil
}
