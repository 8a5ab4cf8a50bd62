package models

import (
	"fmt"
	"time"
)

// OrderError ties a failure to the order that caused it.
type OrderError struct {
	OrderID uint
	Err     error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order %d: %v", e.OrderID, e.Err)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func NewOrderError(orderID uint, err error) *OrderError {
	return &OrderError{
		OrderID: orderID,
		Err:     err,
	}
}

// RunError is the fatal error that aborts a simulation at a given bar.
type RunError struct {
	BarIndex  int
	Timestamp time.Time
	OrderID   *uint
	Err       error
}

func (e *RunError) Error() string {
	if e.OrderID != nil {
		return fmt.Sprintf("run aborted at bar %d (%s), order %d: %v", e.BarIndex, e.Timestamp.Format(time.RFC3339), *e.OrderID, e.Err)
	}

	return fmt.Sprintf("run aborted at bar %d (%s): %v", e.BarIndex, e.Timestamp.Format(time.RFC3339), e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
