package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
	"github.com/jiaming2012/bar-backtester/src/strategy"
)

const instrumentationName = "github.com/jiaming2012/bar-backtester/src/backtester-api/services"

// BacktestResult is a finished, or aborted, run.
type BacktestResult struct {
	ID         uuid.UUID              `json:"id"`
	Meta       *models.PlaygroundMeta `json:"meta"`
	Source     string                 `json:"source"`
	Stats      *models.LedgerStats    `json:"stats,omitempty"`
	Error      string                 `json:"error,omitempty"`
	TraceID    string                 `json:"trace_id,omitempty"`
	playground *models.Playground
	journal    *RunJournal
}

func (r *BacktestResult) GetLedger() *models.Ledger {
	return r.playground.GetLedger()
}

func (r *BacktestResult) GetJournal() *RunJournal {
	return r.journal
}

func (r *BacktestResult) GetPlayground() *models.Playground {
	return r.playground
}

// Export writes the order journal and the equity curve of the run to outDir.
func (r *BacktestResult) Export(outDir string) ([]string, error) {
	ordersPath := filepath.Join(outDir, fmt.Sprintf("orders-%s.csv", r.ID))
	if err := r.journal.ExportOrdersCsv(ordersPath); err != nil {
		return nil, err
	}

	equityPath := filepath.Join(outDir, fmt.Sprintf("equity-%s.csv", r.ID))
	if err := ExportEquityCsv(r.GetLedger(), equityPath); err != nil {
		return nil, err
	}

	return []string{ordersPath, equityPath}, nil
}

type BacktesterApiService struct {
	polygonClient models.IPolygonClient
	tracer        trace.Tracer
	runCounter    metric.Int64Counter
	fillCounter   metric.Int64Counter
	cancelCounter metric.Int64Counter
}

// NewDataFeed builds the feed named by the config's data source.
func (s *BacktesterApiService) NewDataFeed(config *eventmodels.BacktestConfigYAML) (models.BacktesterDataFeed, error) {
	symbol := config.GetSymbol()

	switch config.DataSource.Type {
	case eventmodels.DataSourceTypeCsv:
		return NewCsvBarFeed(symbol, config.DataSource.CsvPath), nil
	case eventmodels.DataSourceTypePolygon:
		if s.polygonClient == nil {
			return nil, eventmodels.NewWebError(400, "polygon data source is not configured", nil)
		}

		feed, err := NewPolygonBarFeed(s.polygonClient, symbol, config.DataSource)
		if err != nil {
			return nil, eventmodels.NewWebError(400, "invalid polygon data source", err)
		}

		return feed, nil
	case eventmodels.DataSourceTypeInline:
		return nil, eventmodels.NewWebError(400, "inline bars must be sent with the request", nil)
	default:
		return nil, eventmodels.NewWebError(400, "unknown data source", fmt.Errorf("%q", config.DataSource.Type))
	}
}

// RunBacktest fetches the bars and runs a fresh playground over them. When the
// run itself aborts, the partial result is returned together with the error.
func (s *BacktesterApiService) RunBacktest(ctx context.Context, config *eventmodels.BacktestConfigYAML, feed models.BacktesterDataFeed) (*BacktestResult, error) {
	symbol := config.GetSymbol()

	ctx, span := s.tracer.Start(ctx, "RunBacktest")
	defer span.End()

	span.SetAttributes(
		attribute.String("symbol", symbol.String()),
		attribute.String("strategy", config.Strategy.Name),
		attribute.String("source", feed.GetSource()),
	)

	logger := log.WithContext(ctx)

	bars, err := feed.FetchBars(ctx)
	if err != nil {
		recordSpanError(span, err)

		statusCode := 502
		if errors.Is(err, models.ErrInvalidBar) || errors.Is(err, models.ErrBarsOutOfOrder) {
			statusCode = 400
		}

		return nil, eventmodels.NewWebError(statusCode, "failed to fetch bars", err)
	}

	ledger, err := models.NewLedger(config.InitialCash, models.WithAllowShort(config.AllowShort))
	if err != nil {
		recordSpanError(span, err)
		return nil, eventmodels.NewWebError(400, "invalid ledger", err)
	}

	tradingStrategy, err := strategy.NewStrategy(config.Strategy, symbol, config.AllowShort)
	if err != nil {
		recordSpanError(span, err)
		return nil, eventmodels.NewWebError(400, "invalid strategy", err)
	}

	playground, err := models.NewPlayground(symbol, tradingStrategy, ledger)
	if err != nil {
		recordSpanError(span, err)
		return nil, eventmodels.NewWebError(400, "failed to create playground", err)
	}

	journal := NewRunJournal()
	if err := journal.Attach(playground); err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("RunBacktest: failed to attach journal: %w", err)
	}

	if err := s.attachMetrics(ctx, playground, config.Strategy.Name); err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("RunBacktest: failed to attach metrics: %w", err)
	}

	span.SetAttributes(attribute.String("playground_id", playground.ID.String()), attribute.Int("bars", len(bars)))

	result := &BacktestResult{
		ID:         playground.ID,
		Meta:       playground.GetMeta(),
		Source:     feed.GetSource(),
		TraceID:    span.SpanContext().TraceID().String(),
		playground: playground,
		journal:    journal,
	}

	s.runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("strategy", config.Strategy.Name)))

	if err := playground.Run(bars); err != nil {
		recordSpanError(span, err)
		result.Error = err.Error()
		return result, err
	}

	stats, err := ledger.Stats()
	if err != nil {
		if !errors.Is(err, models.ErrInsufficientHistory) && !errors.Is(err, models.ErrNonFiniteStatistic) {
			recordSpanError(span, err)
			return result, fmt.Errorf("RunBacktest: failed to compute stats: %w", err)
		}

		logger.Warnf("RunBacktest: no stats for %s: %v", playground.ID, err)
	} else {
		result.Stats = &stats
		span.SetAttributes(attribute.Float64("cagr_percent", stats.CAGRPercent), attribute.Float64("total_return", stats.TotalReturn))
	}

	logger.Infof("RunBacktest: %s finished %s on %s with total value %.2f", playground.ID, config.Strategy.Name, symbol, ledger.GetTotalValue())

	span.SetStatus(codes.Ok, "")

	return result, nil
}

func (s *BacktesterApiService) attachMetrics(ctx context.Context, playground *models.Playground, strategyName string) error {
	attrs := metric.WithAttributes(attribute.String("strategy", strategyName))

	if err := playground.Subscribe(models.OrderFilledTopic, func(fill *models.BacktesterFill) {
		s.fillCounter.Add(ctx, 1, attrs)
	}); err != nil {
		return err
	}

	return playground.Subscribe(models.OrderCancelledTopic, func(cancellation *models.BacktesterCancellation) {
		s.cancelCounter.Add(ctx, 1, attrs)
	})
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// NewBacktesterApiService uses the global otel providers. polygonClient may be
// nil when only csv and inline bars are used.
func NewBacktesterApiService(polygonClient models.IPolygonClient) (*BacktesterApiService, error) {
	meter := otel.Meter(instrumentationName)

	runCounter, err := meter.Int64Counter("backtester.runs", metric.WithDescription("Number of backtests started"))
	if err != nil {
		return nil, fmt.Errorf("NewBacktesterApiService: %w", err)
	}

	fillCounter, err := meter.Int64Counter("backtester.order.fills", metric.WithDescription("Number of orders filled"))
	if err != nil {
		return nil, fmt.Errorf("NewBacktesterApiService: %w", err)
	}

	cancelCounter, err := meter.Int64Counter("backtester.order.cancellations", metric.WithDescription("Number of orders cancelled by a sibling"))
	if err != nil {
		return nil, fmt.Errorf("NewBacktesterApiService: %w", err)
	}

	return &BacktesterApiService{
		polygonClient: polygonClient,
		tracer:        otel.Tracer(instrumentationName),
		runCounter:    runCounter,
		fillCounter:   fillCounter,
		cancelCounter: cancelCounter,
	}, nil
}
