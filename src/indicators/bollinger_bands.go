package indicators

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type BollingerBands struct {
	SmaPeriod         int
	StandardDeviation float64
	typicalPrice      []float64
	history           []BollingerBandsStats
}

type BollingerBandsStats struct {
	Upper         float64
	Lower         float64
	MovingAverage float64
}

// Update returns false until SmaPeriod bars have been seen.
func (b *BollingerBands) Update(bar eventmodels.Bar) (bool, BollingerBandsStats, error) {
	typicalPrice := (bar.High + bar.Low + bar.Close) / 3.0
	b.typicalPrice = append(b.typicalPrice, typicalPrice)
	if len(b.typicalPrice) < b.SmaPeriod {
		return false, BollingerBandsStats{}, nil
	}

	if len(b.typicalPrice) > b.SmaPeriod {
		b.typicalPrice = b.typicalPrice[1:]
	}

	movingAverage, err := stats.Mean(b.typicalPrice)
	if err != nil {
		return false, BollingerBandsStats{}, fmt.Errorf("failed to calculate mean: %w", err)
	}

	sd, err := stats.StandardDeviation(b.typicalPrice)
	if err != nil {
		return false, BollingerBandsStats{}, fmt.Errorf("failed to calculate the standard deviation: %w", err)
	}

	bands := BollingerBandsStats{
		Upper:         movingAverage + (b.StandardDeviation * sd),
		Lower:         movingAverage - (b.StandardDeviation * sd),
		MovingAverage: movingAverage,
	}

	b.history = append(b.history, bands)
	return true, bands, nil
}

func (b *BollingerBands) IsReady() bool {
	return len(b.history) > 0
}

func (b *BollingerBands) History() []BollingerBandsStats {
	out := make([]BollingerBandsStats, len(b.history))
	copy(out, b.history)
	return out
}

func NewBollingerBands(smaPeriod int, standardDeviation float64) *BollingerBands {
	return &BollingerBands{
		SmaPeriod:         smaPeriod,
		StandardDeviation: standardDeviation,
	}
}
