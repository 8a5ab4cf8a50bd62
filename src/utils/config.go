package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// LoadBacktestConfig reads and validates a backtest config. A relative csv path
// is resolved against the directory of the config file.
func LoadBacktestConfig(path string) (*eventmodels.BacktestConfigYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backtest config: %w", err)
	}

	var config eventmodels.BacktestConfigYAML
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backtest config: %w", err)
	}

	if config.DataSource.Type == eventmodels.DataSourceTypeCsv && config.DataSource.CsvPath != "" && !filepath.IsAbs(config.DataSource.CsvPath) {
		config.DataSource.CsvPath = filepath.Join(filepath.Dir(path), config.DataSource.CsvPath)
	}

	if config.DataSource.Type == eventmodels.DataSourceTypeInline {
		return nil, fmt.Errorf("invalid backtest config: inline bars are only accepted over http")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}

	return &config, nil
}
