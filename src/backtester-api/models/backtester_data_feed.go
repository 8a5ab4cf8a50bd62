package models

import (
	"context"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// BacktesterDataFeed supplies the bars of one symbol in ascending timestamp
// order.
type BacktesterDataFeed interface {
	GetSymbol() eventmodels.StockSymbol
	GetSource() string
	FetchBars(ctx context.Context) ([]eventmodels.Bar, error)
}
