package eventmodels

import (
	"fmt"
	"time"
)

var barTimestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type BarDTO struct {
	Timestamp string  `json:"datetime" csv:"timestamp"`
	Open      float64 `json:"open" csv:"open"`
	High      float64 `json:"high" csv:"high"`
	Low       float64 `json:"low" csv:"low"`
	Close     float64 `json:"close" csv:"close"`
	Volume    float64 `json:"volume" csv:"volume"`
}

func (dto *BarDTO) ToModel() (Bar, error) {
	var timestamp time.Time
	var err error
	for _, format := range barTimestampFormats {
		timestamp, err = time.Parse(format, dto.Timestamp)
		if err == nil {
			break
		}
	}

	if err != nil {
		return Bar{}, fmt.Errorf("failed to parse timestamp %q: %w", dto.Timestamp, err)
	}

	return NewBar(timestamp, dto.Open, dto.High, dto.Low, dto.Close, dto.Volume)
}
