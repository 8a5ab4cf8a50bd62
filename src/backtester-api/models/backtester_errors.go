package models

import "fmt"

var (
	ErrInsufficientFunds    = fmt.Errorf("insufficient funds")
	ErrInsufficientHoldings = fmt.Errorf("insufficient holdings")
	ErrMissingPrice         = fmt.Errorf("missing price")
	ErrInsufficientHistory  = fmt.Errorf("insufficient history")
	ErrNonFiniteStatistic   = fmt.Errorf("statistic is not a finite number")
	ErrDuplicateOrderID     = fmt.Errorf("duplicate order id")
	ErrInvalidOrder         = fmt.Errorf("invalid order")
	ErrInvalidBar           = fmt.Errorf("invalid bar")
	ErrBarsOutOfOrder       = fmt.Errorf("bars out of order")
	ErrPlaygroundAborted    = fmt.Errorf("playground aborted by a previous fatal error")
)
