package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"salespulse/internal/config"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/profitability"
	"salespulse/internal/services"
)

func main() {
	configFile := flag.String("config", "", "path to YAML configuration file")
	source := flag.String("source", "", "data source path, overrides configuration")
	out := flag.String("out", "", "output directory, overrides configuration")
	divisions := flag.String("division", "", "comma-separated division filter")
	from := flag.String("from", "", "start of the order-date range (YYYY-MM-DD)")
	to := flag.String("to", "", "end of the order-date range (YYYY-MM-DD)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *source != "" {
		cfg.Data.SourcePath = *source
	}
	if *out != "" {
		cfg.Data.OutputDir = *out
	}

	logger := infrastructure.NewLogger(cfg.Logging)

	filter, err := buildFilter(*divisions, *from, *to)
	if err != nil {
		logger.Error("invalid filter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ref, err := config.LoadReferenceData(cfg.Data.ReferencePath)
	if err != nil {
		logger.Error("failed to load reference data", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	analytics := services.NewAnalyticsService(cfg.Data, cfg.Analytics, ref, logger)

	result, err := analytics.Analyze(ctx, filter)
	if err != nil {
		logger.Error("analysis failed",
			slog.String("source", cfg.Data.SourcePath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	writer := exporter.NewReportWriter(cfg.Data.OutputDir, logger)
	reports := []struct {
		name  string
		write func() (string, error)
	}{
		{"products.csv", func() (string, error) { return writer.SaveEntitiesCSV("products.csv", result.Products) }},
		{"divisions.csv", func() (string, error) { return writer.SaveEntitiesCSV("divisions.csv", result.Divisions) }},
		{"factories.csv", func() (string, error) { return writer.SaveEntitiesCSV("factories.csv", result.Factories) }},
		{"volatility.csv", func() (string, error) { return writer.SaveVolatilityCSV("volatility.csv", result.Volatility) }},
		{"result.json", func() (string, error) { return writer.SaveResultJSON("result.json", result) }},
	}
	for _, rep := range reports {
		if _, err := rep.write(); err != nil {
			logger.Error("failed to write report",
				slog.String("report", rep.name),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("report run complete",
		slog.Int("records", result.KPIs.RecordCount),
		slog.Int("products", len(result.Products)),
		slog.String("output", cfg.Data.OutputDir),
	)
}

func buildFilter(divisions, from, to string) (profitability.Filter, error) {
	var filter profitability.Filter

	for _, d := range strings.Split(divisions, ",") {
		if d = strings.TrimSpace(d); d != "" {
			filter.Divisions = append(filter.Divisions, d)
		}
	}
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return profitability.Filter{}, err
		}
		filter.From = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return profitability.Filter{}, err
		}
		filter.To = t
	}

	return filter, nil
}
