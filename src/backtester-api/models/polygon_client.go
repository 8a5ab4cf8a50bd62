package models

import (
	"context"
	"time"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type IPolygonClient interface {
	FetchAggregateBars(ctx context.Context, symbol eventmodels.StockSymbol, multiplier int, timespan string, from, to time.Time) ([]eventmodels.Bar, error)
}
