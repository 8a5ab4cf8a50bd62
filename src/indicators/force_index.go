package indicators

import "github.com/jiaming2012/bar-backtester/src/eventmodels"

// ForceIndex is the one-period force index: (close - previous close) * volume.
// The first bar only primes the previous close.
type ForceIndex struct {
	prevClose *float64
	history   []float64
}

func (f *ForceIndex) Update(bar eventmodels.Bar) float64 {
	price := bar.Close
	prev := f.prevClose
	f.prevClose = &price

	if prev == nil {
		return 0
	}

	value := (price - *prev) * bar.Volume
	f.history = append(f.history, value)
	return value
}

func (f *ForceIndex) IsReady() bool {
	return len(f.history) > 0
}

func (f *ForceIndex) Latest() float64 {
	return latest(f.history)
}

func (f *ForceIndex) History() []float64 {
	return copyHistory(f.history)
}

func NewForceIndex() *ForceIndex {
	return &ForceIndex{}
}
