package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"coffeepulse/internal/config"
	"coffeepulse/internal/dataset"
	"coffeepulse/internal/infrastructure"
	"coffeepulse/internal/synth"
)

func main() {
	dir := flag.String("dir", "", "directory containing the coffee CSV datasets (defaults to the configured data dir)")
	out := flag.String("out", "", "output csv path (defaults to the configured trade flow file)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *dir != "" {
		cfg.Data.Dir = *dir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	output := *out
	if output == "" {
		output = cfg.DatasetPath(cfg.Data.TradeFlowFile)
	}

	ctx := context.Background()
	start := time.Now()

	loader := dataset.NewLoader(cfg, logger, nil)
	exports, imports, err := loader.LoadTradeInputs(ctx)
	if err != nil {
		logger.Error("Failed to load trade inputs", slog.String("error", err.Error()))
		os.Exit(1)
	}

	gen := synth.NewGenerator(logger)
	flows, err := gen.Generate(ctx, exports, imports)
	if err != nil {
		logger.Error("Flow generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if mismatches := gen.Verify(flows, exports); mismatches > 0 {
		logger.Error("Generated flows violate export totals",
			slog.Int("mismatches", mismatches))
		os.Exit(1)
	}

	if err := synth.WriteCSV(output, flows); err != nil {
		logger.Error("Failed to write flow file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Synthetic trade flows written",
		slog.String("output", output),
		slog.Int("flows", len(flows)),
		slog.Duration("duration", time.Since(start)))

	fmt.Printf("Wrote %d trade flows to %s\n", len(flows), output)
}
