package strategy

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
	"github.com/jiaming2012/bar-backtester/src/indicators"
)

const BollingerReversionName = "bollinger_reversion"

// BollingerReversion buys a flat book when the close is below the lower band
// but the force index has turned positive. The take profit is the band's
// moving average and the stop sits the same distance below the close.
type BollingerReversion struct {
	symbol       eventmodels.StockSymbol
	bands        *indicators.BollingerBands
	force        *indicators.ForceIndex
	riskFraction float64
	ids          *orderIDSequence
}

func (s *BollingerReversion) GetName() string {
	return BollingerReversionName
}

func (s *BollingerReversion) OnBar(bar eventmodels.Bar, ledger models.LedgerReader) ([]*models.BacktesterOrder, error) {
	force := s.force.Update(bar)

	ready, bands, err := s.bands.Update(bar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.GetName(), err)
	}

	if !ready || !s.force.IsReady() {
		return nil, nil
	}

	if _, holding := ledger.GetPositions()[s.symbol]; holding {
		return nil, nil
	}

	if bar.Close >= bands.Lower || force <= 0 {
		return nil, nil
	}

	takeProfit := bands.MovingAverage
	stopLoss := bar.Close - (takeProfit - bar.Close)
	if stopLoss <= 0 {
		return nil, nil
	}

	quantity := s.riskFraction * ledger.GetCash() / bar.Close
	if quantity <= 0 {
		return nil, nil
	}

	orders, err := models.NewLongBracket(s.ids.Reserve(models.BracketOrderCount), bar.Timestamp, quantity, stopLoss, takeProfit, s.GetName())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.GetName(), err)
	}

	log.Debugf("%s: close %.4f below lower band %.4f with force index %.2f", s.GetName(), bar.Close, bands.Lower, force)

	return orders, nil
}

func NewBollingerReversion(symbol eventmodels.StockSymbol, period int, standardDeviations, riskFraction float64) (*BollingerReversion, error) {
	if period <= 1 {
		return nil, fmt.Errorf("NewBollingerReversion: period must be greater than 1")
	}

	if standardDeviations <= 0 {
		return nil, fmt.Errorf("NewBollingerReversion: standard deviations must be positive")
	}

	if riskFraction <= 0 || riskFraction > 1 {
		return nil, fmt.Errorf("NewBollingerReversion: risk fraction must be in (0, 1], got %v", riskFraction)
	}

	return &BollingerReversion{
		symbol:       symbol,
		bands:        indicators.NewBollingerBands(period, standardDeviations),
		force:        indicators.NewForceIndex(),
		riskFraction: riskFraction,
		ids:          newOrderIDSequence(),
	}, nil
}
