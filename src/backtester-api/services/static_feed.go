package services

import (
	"context"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// StaticBarFeed serves bars supplied with the request itself.
type StaticBarFeed struct {
	symbol eventmodels.StockSymbol
	bars   []eventmodels.Bar
}

func (f *StaticBarFeed) GetSymbol() eventmodels.StockSymbol {
	return f.symbol
}

func (f *StaticBarFeed) GetSource() string {
	return "inline"
}

func (f *StaticBarFeed) FetchBars(ctx context.Context) ([]eventmodels.Bar, error) {
	out := make([]eventmodels.Bar, len(f.bars))
	copy(out, f.bars)
	return out, nil
}

func NewStaticBarFeed(symbol eventmodels.StockSymbol, dtos []*eventmodels.BarDTO) (*StaticBarFeed, error) {
	bars, err := barsFromDTOs(dtos)
	if err != nil {
		return nil, err
	}

	return &StaticBarFeed{
		symbol: symbol,
		bars:   bars,
	}, nil
}
