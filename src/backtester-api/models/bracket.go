package models

import (
	"fmt"
	"time"
)

// BracketOrderCount is the number of order ids a bracket consumes.
const BracketOrderCount = 3

// NewLongBracket returns a market buy entry followed by a sell stop-loss and a
// sell take-profit. The two exits block each other; the entry blocks nothing.
// Ids are firstID, firstID+1 and firstID+2.
func NewLongBracket(firstID uint, createDate time.Time, quantity, stopLoss, takeProfit float64, tag string) ([]*BacktesterOrder, error) {
	if stopLoss >= takeProfit {
		return nil, fmt.Errorf("%w: long bracket stop loss (%.4f) must be below take profit (%.4f)", ErrInvalidOrder, stopLoss, takeProfit)
	}

	return newBracket(firstID, createDate, BacktesterOrderSideBuy, quantity, stopLoss, takeProfit, tag), nil
}

// NewShortBracket mirrors NewLongBracket for a sell entry.
func NewShortBracket(firstID uint, createDate time.Time, quantity, stopLoss, takeProfit float64, tag string) ([]*BacktesterOrder, error) {
	if stopLoss <= takeProfit {
		return nil, fmt.Errorf("%w: short bracket stop loss (%.4f) must be above take profit (%.4f)", ErrInvalidOrder, stopLoss, takeProfit)
	}

	return newBracket(firstID, createDate, BacktesterOrderSideSell, quantity, stopLoss, takeProfit, tag), nil
}

func newBracket(firstID uint, createDate time.Time, entrySide BacktesterOrderSide, quantity, stopLoss, takeProfit float64, tag string) []*BacktesterOrder {
	entryID := firstID
	stopLossID := firstID + 1
	takeProfitID := firstID + 2
	exits := []uint{stopLossID, takeProfitID}
	exitSide := entrySide.Opposite()

	return []*BacktesterOrder{
		NewMarketOrder(entryID, createDate, entrySide, quantity, nil, fmt.Sprintf("%s entry", tag)),
		NewStopOrder(stopLossID, createDate, exitSide, quantity, stopLoss, exits, fmt.Sprintf("%s stop loss", tag)),
		NewLimitOrder(takeProfitID, createDate, exitSide, quantity, takeProfit, exits, fmt.Sprintf("%s take profit", tag)),
	}
}
