package indicators

import "github.com/jiaming2012/bar-backtester/src/eventmodels"

// Ema is an exponential moving average of closes with alpha = 2 / (Period + 1).
// It is seeded with the first close.
type Ema struct {
	Period  int
	alpha   float64
	history []float64
}

func (e *Ema) Update(bar eventmodels.Bar) float64 {
	value := bar.Close
	if len(e.history) > 0 {
		value = e.history[len(e.history)-1]*(1-e.alpha) + bar.Close*e.alpha
	}

	e.history = append(e.history, value)
	return value
}

// IsReady reports whether at least Period closes have been seen.
func (e *Ema) IsReady() bool {
	return len(e.history) >= e.Period
}

func (e *Ema) Latest() float64 {
	return latest(e.history)
}

func (e *Ema) History() []float64 {
	return copyHistory(e.history)
}

func NewEma(period int) *Ema {
	return &Ema{
		Period: period,
		alpha:  2.0 / float64(period+1),
	}
}
