package services

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polygon_models "github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type PolygonClient struct {
	client *polygon.Client
}

func (c *PolygonClient) FetchAggregateBars(ctx context.Context, symbol eventmodels.StockSymbol, multiplier int, timespan string, from, to time.Time) ([]eventmodels.Bar, error) {
	log.Debugf("fetching polygon aggregates for %s from %s to %s", symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))

	params := polygon_models.ListAggsParams{
		Ticker:     symbol.String(),
		Multiplier: multiplier,
		Timespan:   polygon_models.Timespan(timespan),
		From:       polygon_models.Millis(from),
		To:         polygon_models.Millis(to),
	}.WithOrder(polygon_models.Asc).WithAdjusted(true)

	iter := c.client.ListAggs(ctx, params)

	var bars []eventmodels.Bar
	for iter.Next() {
		item := iter.Item()
		bars = append(bars, eventmodels.Bar{
			Timestamp: time.Time(item.Timestamp).UTC(),
			Open:      item.Open,
			High:      item.High,
			Low:       item.Low,
			Close:     item.Close,
			Volume:    item.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("PolygonClient: failed to list aggregates for %s: %w", symbol, err)
	}

	return bars, nil
}

func NewPolygonClient(apiKey string) *PolygonClient {
	return &PolygonClient{
		client: polygon.New(apiKey),
	}
}
