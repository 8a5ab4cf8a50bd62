package models

import "fmt"

type BacktesterOrderSide string

const (
	BacktesterOrderSideBuy  BacktesterOrderSide = "buy"
	BacktesterOrderSideSell BacktesterOrderSide = "sell"
)

func (s BacktesterOrderSide) Validate() error {
	switch s {
	case BacktesterOrderSideBuy, BacktesterOrderSideSell:
		return nil
	default:
		return fmt.Errorf("invalid order side: %q", s)
	}
}

func (s BacktesterOrderSide) Opposite() BacktesterOrderSide {
	if s == BacktesterOrderSideBuy {
		return BacktesterOrderSideSell
	}

	return BacktesterOrderSideBuy
}
