package mock

import (
	"context"
	"time"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type MockBacktesterDataFeed struct {
	symbol eventmodels.StockSymbol
	bars   []eventmodels.Bar
	err    error
}

func (feed *MockBacktesterDataFeed) FetchBars(ctx context.Context) ([]eventmodels.Bar, error) {
	if feed.err != nil {
		return nil, feed.err
	}

	out := make([]eventmodels.Bar, len(feed.bars))
	copy(out, feed.bars)
	return out, nil
}

func (feed *MockBacktesterDataFeed) GetSymbol() eventmodels.StockSymbol {
	return feed.symbol
}

func (feed *MockBacktesterDataFeed) GetSource() string {
	return "mock"
}

// BarsFromCloses builds flat bars (open = high = low = close) one period apart.
func BarsFromCloses(start time.Time, period time.Duration, closes []float64) []eventmodels.Bar {
	bars := make([]eventmodels.Bar, len(closes))
	for i, c := range closes {
		bars[i] = eventmodels.Bar{
			Timestamp: start.Add(time.Duration(i) * period),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}

	return bars
}

func NewMockBacktesterDataFeed(symbol eventmodels.StockSymbol, bars []eventmodels.Bar) *MockBacktesterDataFeed {
	return &MockBacktesterDataFeed{
		symbol: symbol,
		bars:   bars,
	}
}

func NewFailingMockBacktesterDataFeed(symbol eventmodels.StockSymbol, err error) *MockBacktesterDataFeed {
	return &MockBacktesterDataFeed{
		symbol: symbol,
		err:    err,
	}
}
