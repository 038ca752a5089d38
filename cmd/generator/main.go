package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"time"

	"customers-service/internal/config"
	"customers-service/internal/generator"
	"customers-service/internal/infrastructure/logging"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	count := resolveCount(os.Args[1:], cfg.Generator.DefaultCount, logger)
	logger.Info("Starting customer generation", "count", count, "target", cfg.Generator.BaseURL)

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	pools := generator.LoadNamePools(logger)
	gen := generator.New(cfg.Generator, pools, rnd, logger)

	if err := gen.Generate(context.Background(), count); err != nil {
		logger.Error("Customer generation aborted", "error", err)
		os.Exit(1)
	}
	logger.Info("Customer generation complete", "count", count)
}

// resolveCount reads the optional positional count argument, falling
// back to the configured default when absent or not a number. Negative
// counts are passed through unchanged; the generation loop just runs
// zero times.
func resolveCount(args []string, defaultCount int, logger *slog.Logger) int {
	if len(args) == 0 {
		return defaultCount
	}
	count, err := strconv.Atoi(args[0])
	if err != nil {
		logger.Warn("Invalid count argument, using default", "argument", args[0], "default", defaultCount)
		return defaultCount
	}
	return count
}
