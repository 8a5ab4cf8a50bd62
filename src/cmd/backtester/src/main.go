package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/cmd/backtester/src/run"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
	"github.com/jiaming2012/bar-backtester/src/utils"
)

const defaultServiceName = "bar-backtester"

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Bar by bar backtester for single asset strategies",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}

		if projectsDir := os.Getenv("PROJECTS_DIR"); projectsDir != "" {
			if err := utils.InitEnvironmentVariables(projectsDir, goEnv); err != nil {
				log.Warnf("failed to load environment variables: %v", err)
			}
		}

		utils.SetLogLevel(os.Getenv("LOG_LEVEL"))
	},
}

var runCmd = &cobra.Command{
	Use:   "run --config config.yaml --outDir results",
	Short: "Run a backtest described by a config file",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		outDir, err := cmd.Flags().GetString("outDir")
		if err != nil {
			log.Fatalf("error getting outDir: %v", err)
		}

		config, err := utils.LoadBacktestConfig(configPath)
		if err != nil {
			log.Fatalf("error loading config: %v", err)
		}

		if config.LogLevel != "" {
			utils.SetLogLevel(config.LogLevel)
		}

		if outDir == "" {
			outDir = config.OutDir
		}

		ctx := context.Background()

		shutdown := setupTelemetry(ctx, config.Telemetry)
		defer shutdown()

		service, err := run.NewService()
		if err != nil {
			log.Fatalf("error creating backtester service: %v", err)
		}

		result, paths, err := run.Exec(ctx, service, config, outDir)
		if result != nil {
			printResult(result.GetLedger().GetTotalValue(), result.Stats)
		}

		for _, path := range paths {
			fmt.Println("CSV file written to: ", path)
		}

		if err != nil {
			log.Errorf("backtest failed: %v", err)
			shutdown()
			os.Exit(1)
		}

		log.Info("Done")
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve --port 8080",
	Short: "Serve the backtest http api",
	Run: func(cmd *cobra.Command, args []string) {
		port, err := cmd.Flags().GetString("port")
		if err != nil {
			log.Fatalf("error getting port: %v", err)
		}

		telemetry, err := cmd.Flags().GetBool("telemetry")
		if err != nil {
			log.Fatalf("error getting telemetry: %v", err)
		}

		ctx := context.Background()

		shutdown := setupTelemetry(ctx, &eventmodels.TelemetryYAML{Enabled: telemetry})
		defer shutdown()

		service, err := run.NewService()
		if err != nil {
			log.Fatalf("error creating backtester service: %v", err)
		}

		if err := run.Serve(ctx, service, port); err != nil {
			log.Errorf("server stopped: %v", err)
		}
	},
}

func setupTelemetry(ctx context.Context, config *eventmodels.TelemetryYAML) func() {
	if config == nil || !config.Enabled {
		return func() {}
	}

	serviceName := config.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	otelShutdown, err := utils.SetupOTelSDK(ctx, serviceName)
	if err != nil {
		log.Fatalf("error setting up telemetry: %v", err)
	}

	utils.AddTelemetryHook()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := otelShutdown(shutdownCtx); err != nil {
			log.Errorf("error shutting down telemetry: %v", err)
		}
	}
}

func printResult(finalValue float64, stats *models.LedgerStats) {
	if stats == nil {
		fmt.Printf("Final value: %.2f (not enough history for statistics)\n", finalValue)
		return
	}

	fmt.Println(stats.String())
}

func main() {
	rootCmd.PersistentFlags().String("go-env", "development", "The environment whose .env file is loaded.")

	runCmd.Flags().String("config", "", "The backtest config file.")
	runCmd.Flags().String("outDir", "", "The directory to write the order journal and equity curve to.")
	runCmd.MarkFlagRequired("config")

	serveCmd.Flags().String("port", "8080", "The port to listen on.")
	serveCmd.Flags().Bool("telemetry", false, "Export traces and metrics over OTLP.")

	rootCmd.AddCommand(runCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
