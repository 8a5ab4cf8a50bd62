package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	daysPerYear         = 365.25
	tradingDaysPerYear  = 252
	minCAGRHistory      = 2
	minVolatilityPoints = 3
)

type LedgerStats struct {
	InitialCash            float64   `json:"initial_cash"`
	FinalValue             float64   `json:"final_value"`
	TotalReturn            float64   `json:"total_return"`
	CAGRPercent            float64   `json:"cagr_percent"`
	AnnualizedStdevPercent float64   `json:"annualized_stdev_percent"`
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
	NoOfObservations       int       `json:"no_of_observations"`
}

func (s LedgerStats) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Statistic", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	table.Append([]string{"Period", fmt.Sprintf("%s -> %s", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))})
	table.Append([]string{"Initial cash", fmt.Sprintf("$%s", p.Sprintf("%.2f", s.InitialCash))})
	table.Append([]string{"Final value", fmt.Sprintf("$%s", p.Sprintf("%.2f", s.FinalValue))})
	table.Append([]string{"Total return", fmt.Sprintf("$%s", p.Sprintf("%.2f", s.TotalReturn))})
	table.Append([]string{"CAGR", fmt.Sprintf("%.2f%%", s.CAGRPercent)})
	table.Append([]string{"Annualized stdev", fmt.Sprintf("%.2f%%", s.AnnualizedStdevPercent)})
	table.Append([]string{"Observations", fmt.Sprintf("%d", s.NoOfObservations)})

	display.WriteString("Backtest Stats:\n")
	table.Render()
	return display.String()
}

// TotalReturn is the latest total value minus the initial cash.
func (l *Ledger) TotalReturn() float64 {
	return l.totalValue - l.initialCash
}

// CAGR returns the compound annual growth rate in percent.
func (l *Ledger) CAGR() (float64, error) {
	if len(l.history) < minCAGRHistory {
		return 0, fmt.Errorf("CAGR: %w: need at least %d observations, have %d", ErrInsufficientHistory, minCAGRHistory, len(l.history))
	}

	first := l.history[0]
	last := l.history[len(l.history)-1]
	daysElapsed := last.Timestamp.Sub(first.Timestamp).Hours() / 24
	if daysElapsed <= 0 {
		return 0, fmt.Errorf("CAGR: %w: history spans %.2f days", ErrInsufficientHistory, daysElapsed)
	}

	ratio := l.totalValue / l.initialCash
	if ratio <= 0 {
		return -100, nil
	}

	cagr := (math.Pow(ratio, daysPerYear/daysElapsed) - 1) * 100
	if !isFinite(cagr) {
		return 0, fmt.Errorf("CAGR: %w: ratio %.6f compounded over %.6f days", ErrNonFiniteStatistic, ratio, daysElapsed)
	}

	return cagr, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AnnualizedVolatility returns the sample standard deviation of the
// observation-to-observation returns scaled by sqrt(252), in percent.
func (l *Ledger) AnnualizedVolatility() (float64, error) {
	if len(l.history) < minVolatilityPoints {
		return 0, fmt.Errorf("AnnualizedVolatility: %w: need at least %d observations, have %d", ErrInsufficientHistory, minVolatilityPoints, len(l.history))
	}

	returns := make([]float64, 0, len(l.history)-1)
	for i := 1; i < len(l.history); i++ {
		prev := l.history[i-1].Equity
		if prev == 0 {
			return 0, fmt.Errorf("AnnualizedVolatility: zero total value at %s", l.history[i-1].Timestamp.Format(time.RFC3339))
		}

		returns = append(returns, l.history[i].Equity/prev-1)
	}

	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, fmt.Errorf("AnnualizedVolatility: failed to calculate the standard deviation: %w", err)
	}

	volatility := sd * math.Sqrt(tradingDaysPerYear) * 100
	if !isFinite(volatility) {
		return 0, fmt.Errorf("AnnualizedVolatility: %w", ErrNonFiniteStatistic)
	}

	return volatility, nil
}

func (l *Ledger) Stats() (LedgerStats, error) {
	cagr, err := l.CAGR()
	if err != nil {
		return LedgerStats{}, err
	}

	volatility, err := l.AnnualizedVolatility()
	if err != nil {
		return LedgerStats{}, err
	}

	return LedgerStats{
		InitialCash:            l.initialCash,
		FinalValue:             l.totalValue,
		TotalReturn:            l.TotalReturn(),
		CAGRPercent:            cagr,
		AnnualizedStdevPercent: volatility,
		StartDate:              l.history[0].Timestamp,
		EndDate:                l.history[len(l.history)-1].Timestamp,
		NoOfObservations:       len(l.history),
	}, nil
}
