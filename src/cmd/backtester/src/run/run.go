package run

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/backtester-api/router"
	"github.com/jiaming2012/bar-backtester/src/backtester-api/services"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

const shutdownTimeout = 10 * time.Second

// NewService wires a Polygon client when POLYGON_API_KEY is set.
func NewService() (*services.BacktesterApiService, error) {
	var polygonClient models.IPolygonClient
	if apiKey := os.Getenv("POLYGON_API_KEY"); apiKey != "" {
		polygonClient = services.NewPolygonClient(apiKey)
	} else {
		log.Debug("POLYGON_API_KEY not set, polygon data source disabled")
	}

	return services.NewBacktesterApiService(polygonClient)
}

// Exec runs a single backtest and, when outDir is set, exports its journal and
// equity curve. The result is returned even when the run aborts.
func Exec(ctx context.Context, service *services.BacktesterApiService, config *eventmodels.BacktestConfigYAML, outDir string) (*services.BacktestResult, []string, error) {
	feed, err := service.NewDataFeed(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create data feed: %w", err)
	}

	log.Infof("running %s on %s from %s", config.Strategy.Name, config.GetSymbol(), feed.GetSource())

	result, runErr := service.RunBacktest(ctx, config, feed)
	if result == nil {
		return nil, nil, runErr
	}

	if outDir == "" {
		return result, nil, runErr
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return result, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths, err := result.Export(outDir)
	if err != nil {
		return result, nil, fmt.Errorf("failed to export results: %w", err)
	}

	return result, paths, runErr
}

// Serve exposes the backtest http api until SIGINT or SIGTERM.
func Serve(ctx context.Context, service *services.BacktesterApiService, port string) error {
	r := mux.NewRouter()
	router.SetupHandler(r.PathPrefix("/backtests").Subrouter(), service, services.NewRunRegistry())

	srv := &http.Server{
		Handler: otelhttp.NewHandler(r, "backtester"),
		Addr:    fmt.Sprintf(":%s", port),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("server gracefully stopped")

	return nil
}
