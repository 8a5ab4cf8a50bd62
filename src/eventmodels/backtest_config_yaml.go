package eventmodels

import (
	"fmt"
	"strings"
	"time"
)

type DataSourceType string

const (
	DataSourceTypeCsv     DataSourceType = "csv"
	DataSourceTypePolygon DataSourceType = "polygon"
	DataSourceTypeInline  DataSourceType = "inline"
)

type BacktestConfigYAML struct {
	Symbol      string         `yaml:"symbol" json:"symbol"`
	InitialCash float64        `yaml:"initialCash" json:"initial_cash"`
	AllowShort  bool           `yaml:"allowShort" json:"allow_short"`
	LogLevel    string         `yaml:"logLevel,omitempty" json:"log_level,omitempty"`
	OutDir      string         `yaml:"outDir,omitempty" json:"out_dir,omitempty"`
	Strategy    StrategyYAML   `yaml:"strategy" json:"strategy"`
	DataSource  DataSourceYAML `yaml:"dataSource" json:"data_source"`
	Telemetry   *TelemetryYAML `yaml:"telemetry,omitempty" json:"-"`
}

type StrategyYAML struct {
	Name              string  `yaml:"name" json:"name"`
	FastPeriod        int     `yaml:"fastPeriod,omitempty" json:"fast_period,omitempty"`
	SlowPeriod        int     `yaml:"slowPeriod,omitempty" json:"slow_period,omitempty"`
	EmaPeriod         int     `yaml:"emaPeriod,omitempty" json:"ema_period,omitempty"`
	RsiPeriod         int     `yaml:"rsiPeriod,omitempty" json:"rsi_period,omitempty"`
	Quantity          float64 `yaml:"quantity,omitempty" json:"quantity,omitempty"`
	RiskFraction      float64 `yaml:"riskFraction,omitempty" json:"risk_fraction,omitempty"`
	StopLossPercent   float64 `yaml:"stopLossPercent,omitempty" json:"stop_loss_percent,omitempty"`
	TakeProfitPercent float64 `yaml:"takeProfitPercent,omitempty" json:"take_profit_percent,omitempty"`
	StdDevMultiplier  float64 `yaml:"stdDevMultiplier,omitempty" json:"std_dev_multiplier,omitempty"`
}

type DataSourceYAML struct {
	Type       DataSourceType `yaml:"type" json:"type"`
	CsvPath    string         `yaml:"csvPath,omitempty" json:"csv_path,omitempty"`
	StartsAt   string         `yaml:"startsAt,omitempty" json:"starts_at,omitempty"`
	EndsAt     string         `yaml:"endsAt,omitempty" json:"ends_at,omitempty"`
	Timespan   string         `yaml:"timespan,omitempty" json:"timespan,omitempty"`
	Multiplier int            `yaml:"multiplier,omitempty" json:"multiplier,omitempty"`
}

type TelemetryYAML struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"serviceName,omitempty"`
}

func (c *BacktestConfigYAML) GetSymbol() StockSymbol {
	return NewStockSymbol(c.Symbol)
}

func (d *DataSourceYAML) GetDateRange() (time.Time, time.Time, error) {
	startsAt, err := time.Parse("2006-01-02", d.StartsAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid startsAt %q: %w", d.StartsAt, err)
	}

	endsAt, err := time.Parse("2006-01-02", d.EndsAt)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid endsAt %q: %w", d.EndsAt, err)
	}

	if !endsAt.After(startsAt) {
		return time.Time{}, time.Time{}, fmt.Errorf("endsAt (%s) must be after startsAt (%s)", d.EndsAt, d.StartsAt)
	}

	return startsAt, endsAt, nil
}

func (c *BacktestConfigYAML) Validate() error {
	if err := c.GetSymbol().Validate(); err != nil {
		return err
	}

	if c.InitialCash <= 0 {
		return fmt.Errorf("initialCash must be greater than 0")
	}

	if strings.TrimSpace(c.Strategy.Name) == "" {
		return fmt.Errorf("strategy.name is required")
	}

	switch c.DataSource.Type {
	case DataSourceTypeCsv:
		if c.DataSource.CsvPath == "" {
			return fmt.Errorf("dataSource.csvPath is required for csv data source")
		}
	case DataSourceTypePolygon:
		if _, _, err := c.DataSource.GetDateRange(); err != nil {
			return fmt.Errorf("dataSource: %w", err)
		}
	case DataSourceTypeInline:
	default:
		return fmt.Errorf("invalid dataSource.type: %q", c.DataSource.Type)
	}

	return nil
}
