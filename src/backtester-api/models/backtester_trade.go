package models

import (
	"time"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type BacktesterFill struct {
	OrderID    uint                    `json:"order_id"`
	Symbol     eventmodels.StockSymbol `json:"symbol"`
	Side       BacktesterOrderSide     `json:"side"`
	Type       BacktesterOrderType     `json:"type"`
	Quantity   float64                 `json:"quantity"`
	Price      float64                 `json:"price"`
	CreateDate time.Time               `json:"create_date"`
	Tag        string                  `json:"tag"`
}

// Notional is the cash value exchanged by the fill.
func (f *BacktesterFill) Notional() float64 {
	return f.Price * f.Quantity
}

type BacktesterCancellation struct {
	OrderID    uint      `json:"order_id"`
	BlockedBy  []uint    `json:"blocked_by"`
	CreateDate time.Time `json:"create_date"`
	Tag        string    `json:"tag"`
}

func NewBacktesterFill(order *BacktesterOrder, symbol eventmodels.StockSymbol, createDate time.Time, price float64) *BacktesterFill {
	return &BacktesterFill{
		OrderID:    order.ID,
		Symbol:     symbol,
		Side:       order.Side,
		Type:       order.Type,
		Quantity:   order.Quantity,
		Price:      price,
		CreateDate: createDate,
		Tag:        order.Tag,
	}
}
