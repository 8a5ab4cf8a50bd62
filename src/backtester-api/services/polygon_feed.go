package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

const (
	defaultPolygonTimespan   = "day"
	defaultPolygonMultiplier = 1
)

type PolygonBarFeed struct {
	client     models.IPolygonClient
	symbol     eventmodels.StockSymbol
	multiplier int
	timespan   string
	from       time.Time
	to         time.Time
}

func (f *PolygonBarFeed) GetSymbol() eventmodels.StockSymbol {
	return f.symbol
}

func (f *PolygonBarFeed) GetSource() string {
	return fmt.Sprintf("polygon:%d/%s", f.multiplier, f.timespan)
}

func (f *PolygonBarFeed) FetchBars(ctx context.Context) ([]eventmodels.Bar, error) {
	bars, err := f.client.FetchAggregateBars(ctx, f.symbol, f.multiplier, f.timespan, f.from, f.to)
	if err != nil {
		return nil, fmt.Errorf("PolygonBarFeed: %w", err)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("PolygonBarFeed: no bars found for %s between %s and %s", f.symbol, f.from.Format("2006-01-02"), f.to.Format("2006-01-02"))
	}

	if err := validateBarSequence(bars); err != nil {
		return nil, fmt.Errorf("PolygonBarFeed: %w", err)
	}

	log.Infof("PolygonBarFeed: loaded %d bars for %s", len(bars), f.symbol)

	return bars, nil
}

func NewPolygonBarFeed(client models.IPolygonClient, symbol eventmodels.StockSymbol, source eventmodels.DataSourceYAML) (*PolygonBarFeed, error) {
	from, to, err := source.GetDateRange()
	if err != nil {
		return nil, fmt.Errorf("NewPolygonBarFeed: %w", err)
	}

	timespan := source.Timespan
	if timespan == "" {
		timespan = defaultPolygonTimespan
	}

	multiplier := source.Multiplier
	if multiplier == 0 {
		multiplier = defaultPolygonMultiplier
	}

	return &PolygonBarFeed{
		client:     client,
		symbol:     symbol,
		multiplier: multiplier,
		timespan:   timespan,
		from:       from,
		to:         to,
	}, nil
}
