// Package app wires configuration, logging and the analysis pipeline for the
// binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"crypto-chart-analyzer/internal/chart"
	"crypto-chart-analyzer/internal/chart/chartobs"
	"crypto-chart-analyzer/internal/interfaces"
	"crypto-chart-analyzer/internal/llm/claude"
	"crypto-chart-analyzer/internal/llm/llmobs"
	"crypto-chart-analyzer/internal/llm/noop"
	"crypto-chart-analyzer/internal/llm/openai"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/market"
	"crypto-chart-analyzer/internal/market/marketobs"
	"crypto-chart-analyzer/internal/store"
	"crypto-chart-analyzer/internal/trace"
	"crypto-chart-analyzer/internal/workflow"
)

const defaultConfigPath = "config.yaml"

// InitializeSystem loads .env and starts the logger and tracer.
func InitializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// Shutdown flushes the tracer.
func Shutdown(ctx context.Context) {
	if err := trace.Shutdown(ctx); err != nil {
		logger.Warn(ctx, "Failed to shut down tracer", "error", err)
	}
}

// ConfigPath is CONFIG_PATH when set, otherwise config.yaml.
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

func LoadConfig(ctx context.Context, path string) (*store.Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	logger.Debug(ctx, "Config loaded", "path", path, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	return cfg, nil
}

// InitializeMarket returns the KuCoin market data source with observability
func InitializeMarket(cfg *store.Config) interfaces.MarketData {
	k := market.NewKuCoin(market.Params{
		BaseURL: cfg.Market.BaseURL,
		Timeout: time.Duration(cfg.Market.TimeoutSeconds) * time.Second,
	})
	return marketobs.Wrap(k)
}

// InitializeRenderer returns the chart renderer with observability
func InitializeRenderer(cfg *store.Config, md interfaces.MarketData) interfaces.ChartRenderer {
	r := chart.NewRenderer(md, chart.Options{
		Exchange:   cfg.Exchange,
		SMAWindows: cfg.Chart.SMAWindows,
	})
	return chartobs.Wrap(r)
}

// InitializeAnalyzer picks the inference provider and wraps it with observability
func InitializeAnalyzer(ctx context.Context, cfg *store.Config) interfaces.Analyzer {
	var a interfaces.Analyzer

	switch cfg.LLM.Provider {
	case store.ProviderOpenAI:
		a = openai.NewAnalyzer(cfg)
		if cfg.APIKey() == "" {
			logger.Warn(ctx, "Inference API key not set; analysis requests will fail", "env", cfg.LLM.APIKeyEnv)
		}
	case store.ProviderClaude:
		a = claude.NewAnalyzer(cfg)
	default:
		a = noop.NewAnalyzer()
		logger.Warn(ctx, "No inference provider configured - using Noop analyzer (always no position)")
	}

	return llmobs.Wrap(a)
}

// NewService builds the full analysis pipeline from cfg.
func NewService(ctx context.Context, cfg *store.Config) *workflow.Service {
	md := InitializeMarket(cfg)
	return workflow.NewService(cfg, InitializeRenderer(cfg, md), InitializeAnalyzer(ctx, cfg))
}
