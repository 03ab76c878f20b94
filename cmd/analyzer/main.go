package main

import (
	"context"
	"log"

	"fyne.io/fyne/v2/app"

	bootstrap "crypto-chart-analyzer/internal/app"
	"crypto-chart-analyzer/internal/logger"
	"crypto-chart-analyzer/internal/ui"
)

func main() {
	if err := bootstrap.InitializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer bootstrap.Shutdown(context.Background())

	cfg, err := bootstrap.LoadConfig(ctx, "")
	if err != nil {
		log.Fatal(err)
	}

	svc := bootstrap.NewService(ctx, cfg)

	a := app.NewWithID("com.cryptochart.analyzer")
	w := ui.New(ctx, a, cfg, svc)
	logger.Info(ctx, "Analyzer window started", "exchange", cfg.Exchange, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	w.ShowAndRun()
}
