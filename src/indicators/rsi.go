package indicators

import (
	"math"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// Rsi is Wilder's relative strength index. The first value is seeded from a
// simple average of Period gains and losses; later values are smoothed.
type Rsi struct {
	Period      int
	prevAvgGain *float64
	prevAvgLoss *float64
	closes      []float64
	history     []float64
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func splitDelta(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}

	return 0, math.Abs(delta)
}

func (r *Rsi) deriveAverages() (float64, float64) {
	if r.prevAvgGain != nil {
		curPrice := r.closes[len(r.closes)-1]
		prevPrice := r.closes[len(r.closes)-2]
		deltaGain, deltaLoss := splitDelta(curPrice - prevPrice)

		avgGain := ((*r.prevAvgGain)*(float64(r.Period)-1.0) + deltaGain) / float64(r.Period)
		avgLoss := ((*r.prevAvgLoss)*(float64(r.Period)-1.0) + deltaLoss) / float64(r.Period)

		return avgGain, avgLoss
	}

	gains := make([]float64, 0, r.Period)
	losses := make([]float64, 0, r.Period)
	for i := 1; i < len(r.closes); i++ {
		gain, loss := splitDelta(r.closes[i] - r.closes[i-1])
		gains = append(gains, gain)
		losses = append(losses, loss)
	}

	return average(gains), average(losses)
}

// Update returns 0 until Period+1 closes have been seen.
func (r *Rsi) Update(bar eventmodels.Bar) float64 {
	r.closes = append(r.closes, bar.Close)
	if len(r.closes) <= r.Period {
		return 0
	}

	avgGain, avgLoss := r.deriveAverages()
	r.prevAvgGain = &avgGain
	r.prevAvgLoss = &avgLoss

	r.closes = r.closes[1:]

	var rsi float64
	switch {
	case avgLoss == 0 && avgGain == 0:
		rsi = 50
	case avgLoss == 0:
		rsi = 100
	default:
		rsi = 100 - (100 / (1 + avgGain/avgLoss))
	}

	r.history = append(r.history, rsi)
	return rsi
}

func (r *Rsi) IsReady() bool {
	return len(r.history) > 0
}

func (r *Rsi) Latest() float64 {
	return latest(r.history)
}

func (r *Rsi) History() []float64 {
	return copyHistory(r.history)
}

func NewRsi(period int) *Rsi {
	return &Rsi{
		Period: period,
	}
}
