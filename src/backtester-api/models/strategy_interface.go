package models

import "github.com/jiaming2012/bar-backtester/src/eventmodels"

// Strategy turns the latest bar into zero or more new orders. Each
// implementation owns its indicator state for the lifetime of one run.
type Strategy interface {
	GetName() string
	OnBar(bar eventmodels.Bar, ledger LedgerReader) ([]*BacktesterOrder, error)
}
