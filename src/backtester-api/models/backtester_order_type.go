package models

import "fmt"

type BacktesterOrderType string

const (
	Market BacktesterOrderType = "market"
	Limit  BacktesterOrderType = "limit"
	Stop   BacktesterOrderType = "stop"
)

func (t BacktesterOrderType) Validate() error {
	switch t {
	case Market, Limit, Stop:
		return nil
	default:
		return fmt.Errorf("invalid order type: %q", t)
	}
}
