package models

import (
	"fmt"
	"time"
)

// BacktesterOrder is never mutated after it is submitted. Only its membership
// in the pending set changes.
type BacktesterOrder struct {
	ID          uint                `json:"id"`
	Side        BacktesterOrderSide `json:"side"`
	Type        BacktesterOrderType `json:"type"`
	Quantity    float64             `json:"quantity"`
	LimitPrice  *float64            `json:"limit_price,omitempty"`
	StopPrice   *float64            `json:"stop_price,omitempty"`
	BlockingIDs []uint              `json:"blocking_ids,omitempty"`
	Tag         string              `json:"tag"`
	CreateDate  time.Time           `json:"create_date"`
}

func (o *BacktesterOrder) Validate() error {
	if err := o.Side.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	if err := o.Type.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	if !isPositiveFinite(o.Quantity) {
		return fmt.Errorf("%w: quantity must be a positive number, got %v", ErrInvalidOrder, o.Quantity)
	}

	switch o.Type {
	case Limit:
		if o.LimitPrice == nil {
			return fmt.Errorf("%w: limit order is missing limit_price", ErrInvalidOrder)
		}

		if !isPositiveFinite(*o.LimitPrice) {
			return fmt.Errorf("%w: limit_price must be a positive number, got %v", ErrInvalidOrder, *o.LimitPrice)
		}
	case Stop:
		if o.StopPrice == nil {
			return fmt.Errorf("%w: stop order is missing stop_price", ErrInvalidOrder)
		}

		if !isPositiveFinite(*o.StopPrice) {
			return fmt.Errorf("%w: stop_price must be a positive number, got %v", ErrInvalidOrder, *o.StopPrice)
		}
	}

	return nil
}

// IsBlockedBy reports whether any of the order's blocking ids has already
// been resolved.
func (o *BacktesterOrder) IsBlockedBy(executed *ExecutedSet) bool {
	for _, id := range o.BlockingIDs {
		if executed.Contains(id) {
			return true
		}
	}

	return false
}

func (o *BacktesterOrder) String() string {
	switch o.Type {
	case Limit:
		return fmt.Sprintf("#%d %s %s %.4f @ %.4f", o.ID, o.Type, o.Side, o.Quantity, *o.LimitPrice)
	case Stop:
		return fmt.Sprintf("#%d %s %s %.4f @ %.4f", o.ID, o.Type, o.Side, o.Quantity, *o.StopPrice)
	default:
		return fmt.Sprintf("#%d %s %s %.4f", o.ID, o.Type, o.Side, o.Quantity)
	}
}

// Copy returns an order that shares no memory with o.
func (o *BacktesterOrder) Copy() *BacktesterOrder {
	return NewBacktesterOrder(o.ID, o.CreateDate, o.Side, o.Quantity, o.Type, o.LimitPrice, o.StopPrice, o.BlockingIDs, o.Tag)
}

func NewBacktesterOrder(id uint, createDate time.Time, side BacktesterOrderSide, quantity float64, orderType BacktesterOrderType, limitPrice, stopPrice *float64, blockingIDs []uint, tag string) *BacktesterOrder {
	var blocking []uint
	if len(blockingIDs) > 0 {
		blocking = make([]uint, len(blockingIDs))
		copy(blocking, blockingIDs)
	}

	var limit, stop *float64
	if limitPrice != nil {
		v := *limitPrice
		limit = &v
	}

	if stopPrice != nil {
		v := *stopPrice
		stop = &v
	}

	return &BacktesterOrder{
		ID:          id,
		Side:        side,
		Type:        orderType,
		Quantity:    quantity,
		LimitPrice:  limit,
		StopPrice:   stop,
		BlockingIDs: blocking,
		Tag:         tag,
		CreateDate:  createDate,
	}
}

func NewMarketOrder(id uint, createDate time.Time, side BacktesterOrderSide, quantity float64, blockingIDs []uint, tag string) *BacktesterOrder {
	return NewBacktesterOrder(id, createDate, side, quantity, Market, nil, nil, blockingIDs, tag)
}

func NewLimitOrder(id uint, createDate time.Time, side BacktesterOrderSide, quantity, limitPrice float64, blockingIDs []uint, tag string) *BacktesterOrder {
	return NewBacktesterOrder(id, createDate, side, quantity, Limit, &limitPrice, nil, blockingIDs, tag)
}

func NewStopOrder(id uint, createDate time.Time, side BacktesterOrderSide, quantity, stopPrice float64, blockingIDs []uint, tag string) *BacktesterOrder {
	return NewBacktesterOrder(id, createDate, side, quantity, Stop, nil, &stopPrice, blockingIDs, tag)
}
