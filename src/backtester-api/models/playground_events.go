package models

const (
	OrderFilledTopic    = "order:filled"
	OrderCancelledTopic = "order:cancelled"
	OrderSubmittedTopic = "order:submitted"
	EquityMarkedTopic   = "equity:marked"
)

// Subscribers receive:
//	OrderFilledTopic    -> func(*BacktesterFill)
//	OrderCancelledTopic -> func(*BacktesterCancellation)
//	OrderSubmittedTopic -> func(*BacktesterOrder)
//	EquityMarkedTopic   -> func(EquityPlotRecord)
