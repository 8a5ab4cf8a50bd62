package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

const barsCsv = `timestamp,open,high,low,close,volume
2023-03-01,100,101,99,100.5,1000
2023-03-02 00:00:00,100.4,102,99.5,100.6,750
2023-03-03T00:00:00Z,100.8,102.5,98,101.2,1100
`

func TestCsvBarFeed(t *testing.T) {
	t.Run("loads bars from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "spy.csv")
		require.NoError(t, os.WriteFile(path, []byte(barsCsv), 0644))

		feed := NewCsvBarFeed(testSymbol, path)
		bars, err := feed.FetchBars(context.Background())
		require.NoError(t, err)
		require.Len(t, bars, 3)

		assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
		assert.Equal(t, 100.5, bars[0].Close)
		assert.Equal(t, 750.0, bars[1].Volume)
		assert.Equal(t, 98.0, bars[2].Low)
		assert.Equal(t, testSymbol, feed.GetSymbol())
		assert.Contains(t, feed.GetSource(), path)
	})

	t.Run("missing file", func(t *testing.T) {
		feed := NewCsvBarFeed(testSymbol, filepath.Join(t.TempDir(), "missing.csv"))
		_, err := feed.FetchBars(context.Background())
		assert.Error(t, err)
	})

	t.Run("bars out of order are rejected", func(t *testing.T) {
		data := `timestamp,open,high,low,close,volume
2023-03-02,100,101,99,100,1
2023-03-01,100,101,99,100,1
`
		_, err := ParseBarsCsv(strings.NewReader(data))
		assert.True(t, errors.Is(err, models.ErrBarsOutOfOrder))
	})

	t.Run("invalid bars are rejected", func(t *testing.T) {
		data := `timestamp,open,high,low,close,volume
2023-03-01,100,99,101,100,1
`
		_, err := ParseBarsCsv(strings.NewReader(data))
		assert.Error(t, err)
	})

	t.Run("NaN prices are rejected", func(t *testing.T) {
		data := `timestamp,open,high,low,close,volume
2023-01-03,100,101,99,NaN,1000
`
		_, err := ParseBarsCsv(strings.NewReader(data))
		assert.ErrorContains(t, err, "positive finite")

		data = `timestamp,open,high,low,close,volume
2023-01-03,100,101,99,100,1000
2023-01-04,NaN,NaN,NaN,NaN,1000
`
		_, err = ParseBarsCsv(strings.NewReader(data))
		assert.ErrorContains(t, err, "positive finite")
	})

	t.Run("unparseable timestamps are rejected", func(t *testing.T) {
		data := `timestamp,open,high,low,close,volume
yesterday,100,101,99,100,1
`
		_, err := ParseBarsCsv(strings.NewReader(data))
		assert.Error(t, err)
	})
}

func TestStaticBarFeed(t *testing.T) {
	t.Run("serves validated inline bars", func(t *testing.T) {
		feed, err := NewStaticBarFeed(testSymbol, []*eventmodels.BarDTO{
			{Timestamp: "2023-03-01", Open: 1, High: 2, Low: 1, Close: 2, Volume: 10},
			{Timestamp: "2023-03-02", Open: 2, High: 3, Low: 2, Close: 3, Volume: 10},
		})
		require.NoError(t, err)

		bars, err := feed.FetchBars(context.Background())
		require.NoError(t, err)
		assert.Len(t, bars, 2)
		assert.Equal(t, "inline", feed.GetSource())
	})

	t.Run("rejects repeated timestamps", func(t *testing.T) {
		_, err := NewStaticBarFeed(testSymbol, []*eventmodels.BarDTO{
			{Timestamp: "2023-03-01", Open: 1, High: 2, Low: 1, Close: 2},
			{Timestamp: "2023-03-01", Open: 2, High: 3, Low: 2, Close: 3},
		})
		assert.True(t, errors.Is(err, models.ErrBarsOutOfOrder))
	})
}
