package services

import (
	"fmt"
	"time"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// validateBarSequence checks every bar and that timestamps strictly increase.
func validateBarSequence(bars []eventmodels.Bar) error {
	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return fmt.Errorf("bar %d: %w: %v", i, models.ErrInvalidBar, err)
		}

		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("bar %d: %w: %s is not after %s", i, models.ErrBarsOutOfOrder, bar.Timestamp.Format(time.RFC3339), bars[i-1].Timestamp.Format(time.RFC3339))
		}
	}

	return nil
}
