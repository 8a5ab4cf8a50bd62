package services

import (
	"context"
	"time"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/mock"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

var (
	testSymbol    = eventmodels.StockSymbol("SPY")
	testStartTime = time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
)

type fakePolygonClient struct {
	bars  []eventmodels.Bar
	err   error
	calls int
}

func (c *fakePolygonClient) FetchAggregateBars(ctx context.Context, symbol eventmodels.StockSymbol, multiplier int, timespan string, from, to time.Time) ([]eventmodels.Bar, error) {
	c.calls++
	return c.bars, c.err
}

// crossoverCloses falls for 25 bars and then rallies, so a 10/20 SMA
// crossover signals once at bar 31.
func crossoverCloses() []float64 {
	closes := []float64{}
	for i := 0; i < 25; i++ {
		closes = append(closes, 100-float64(i))
	}
	for i := 1; i < 15; i++ {
		closes = append(closes, 76+3*float64(i))
	}

	return closes
}

func crossoverBars() []eventmodels.Bar {
	return mock.BarsFromCloses(testStartTime, 24*time.Hour, crossoverCloses())
}

func crossoverConfig() *eventmodels.BacktestConfigYAML {
	return &eventmodels.BacktestConfigYAML{
		Symbol:      testSymbol.String(),
		InitialCash: 10000,
		Strategy: eventmodels.StrategyYAML{
			Name: "ma_crossover",
		},
		DataSource: eventmodels.DataSourceYAML{
			Type:    eventmodels.DataSourceTypeCsv,
			CsvPath: "unused.csv",
		},
	}
}
