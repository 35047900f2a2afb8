// Command processor runs the trade-export pipeline over a single file and
// writes the growth report CSV, without the web server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"tradelens/internal/dataprocessing"
	"tradelens/internal/exporter"
)

func main() {
	var (
		inPath  = flag.String("in", "", "input file (.csv, .xlsx, .xls or .json)")
		outPath = flag.String("out", "growth_report.csv", "output CSV path")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: processor -in <file> [-out <file>]")
		os.Exit(2)
	}

	if err := run(context.Background(), logger, *inPath, *outPath); err != nil {
		logger.Error("processing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, inPath, outPath string) error {
	file, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	processor := dataprocessing.NewProcessor(logger)
	dataset, err := processor.Process(ctx, inPath, file)
	if err != nil {
		return err
	}

	if err := exporter.WriteGrowthReportFile(outPath, dataset.Records); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.Info("report written",
		slog.String("path", outPath),
		slog.Int("records", len(dataset.Records)),
		slog.Int("dropped_rows", dataset.DroppedRows))
	return nil
}
