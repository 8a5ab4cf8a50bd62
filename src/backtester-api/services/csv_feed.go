package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

// CsvBarFeed reads bars from a csv file with a
// timestamp,open,high,low,close,volume header.
type CsvBarFeed struct {
	symbol eventmodels.StockSymbol
	path   string
}

func (f *CsvBarFeed) GetSymbol() eventmodels.StockSymbol {
	return f.symbol
}

func (f *CsvBarFeed) GetSource() string {
	return fmt.Sprintf("csv:%s", f.path)
}

func (f *CsvBarFeed) FetchBars(ctx context.Context) ([]eventmodels.Bar, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("CsvBarFeed: failed to open %s: %w", f.path, err)
	}

	defer file.Close()

	bars, err := ParseBarsCsv(file)
	if err != nil {
		return nil, fmt.Errorf("CsvBarFeed: %s: %w", f.path, err)
	}

	log.Infof("CsvBarFeed: loaded %d bars for %s from %s", len(bars), f.symbol, f.path)

	return bars, nil
}

// ParseBarsCsv decodes and validates bars from csv.
func ParseBarsCsv(r io.Reader) ([]eventmodels.Bar, error) {
	var dtos []*eventmodels.BarDTO
	if err := gocsv.Unmarshal(r, &dtos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bars: %w", err)
	}

	return barsFromDTOs(dtos)
}

func barsFromDTOs(dtos []*eventmodels.BarDTO) ([]eventmodels.Bar, error) {
	bars := make([]eventmodels.Bar, 0, len(dtos))
	for i, dto := range dtos {
		bar, err := dto.ToModel()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		bars = append(bars, bar)
	}

	if err := validateBarSequence(bars); err != nil {
		return nil, err
	}

	return bars, nil
}

func NewCsvBarFeed(symbol eventmodels.StockSymbol, path string) *CsvBarFeed {
	return &CsvBarFeed{
		symbol: symbol,
		path:   path,
	}
}
