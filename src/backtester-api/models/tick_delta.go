package models

import "time"

type TickDelta struct {
	BarIndex        int                       `json:"bar_index"`
	CurrentTime     time.Time                 `json:"current_time"`
	NewFills        []*BacktesterFill         `json:"new_fills,omitempty"`
	CancelledOrders []*BacktesterCancellation `json:"cancelled_orders,omitempty"`
	NewOrders       []*BacktesterOrder        `json:"new_orders,omitempty"`
	TotalValue      float64                   `json:"total_value"`
}
