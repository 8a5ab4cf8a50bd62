package models

import (
	"fmt"
	"time"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type PlaygroundMeta struct {
	Symbol          eventmodels.StockSymbol `json:"symbol"`
	StrategyName    string                  `json:"strategy"`
	StartingBalance float64                 `json:"starting_balance"`
	AllowShort      bool                    `json:"allow_short"`
	StartAt         *time.Time              `json:"start_at,omitempty"`
	EndAt           *time.Time              `json:"end_at,omitempty"`
	NoOfBars        int                     `json:"no_of_bars"`
}

func (p *PlaygroundMeta) Validate() error {
	if err := p.Symbol.Validate(); err != nil {
		return fmt.Errorf("PlaygroundMeta.Validate: %w", err)
	}

	if p.StartingBalance <= 0 {
		return fmt.Errorf("PlaygroundMeta.Validate: invalid starting balance")
	}

	return nil
}
