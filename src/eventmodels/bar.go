package eventmodels

import (
	"fmt"
	"math"
	"time"
)

// Bar is one OHLCV sample. It is passed by value so the simulation never
// shares a mutable bar between steps.
type Bar struct {
	Timestamp time.Time `json:"datetime"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

func (b Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return fmt.Errorf("bar timestamp is zero")
	}

	for _, price := range []float64{b.Open, b.High, b.Low, b.Close} {
		if !(price > 0) || math.IsInf(price, 0) {
			return fmt.Errorf("bar @ %s: prices must be positive finite numbers, got %v", b.Timestamp.Format(time.RFC3339), price)
		}
	}

	if b.Low > b.High {
		return fmt.Errorf("bar @ %s: low (%.4f) > high (%.4f)", b.Timestamp.Format(time.RFC3339), b.Low, b.High)
	}

	if !(b.Volume >= 0) || math.IsInf(b.Volume, 0) {
		return fmt.Errorf("bar @ %s: volume must be a finite non-negative number, got %v", b.Timestamp.Format(time.RFC3339), b.Volume)
	}

	return nil
}

func (b Bar) ToDTO() BarDTO {
	return BarDTO{
		Timestamp: b.Timestamp.UTC().Format(time.RFC3339),
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
	}
}

func NewBar(timestamp time.Time, open, high, low, close, volume float64) (Bar, error) {
	bar := Bar{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}

	if err := bar.Validate(); err != nil {
		return Bar{}, err
	}

	return bar, nil
}
