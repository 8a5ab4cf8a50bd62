package models

type BacktesterOrderStatus string

const (
	BacktesterOrderStatusPending   BacktesterOrderStatus = "pending"
	BacktesterOrderStatusFilled    BacktesterOrderStatus = "filled"
	BacktesterOrderStatusCancelled BacktesterOrderStatus = "cancelled"
)

func (status BacktesterOrderStatus) IsResolved() bool {
	return status == BacktesterOrderStatusFilled || status == BacktesterOrderStatusCancelled
}
