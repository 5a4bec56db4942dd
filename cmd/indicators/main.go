// Command indicators fetches one symbol's history, computes its indicator
// table and writes it as CSV.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"TAPull/internal/di"
	"TAPull/internal/export"
	"TAPull/internal/usecase"
	"TAPull/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "indicators: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "", "ticker symbol (required)")
	start := flag.String("start", "", "start date, YYYY-MM-DD")
	end := flag.String("end", "", "end date, YYYY-MM-DD")
	out := flag.String("out", "", "output CSV path (stdout when empty)")
	flag.Parse()

	if *symbol == "" || *start == "" || *end == "" {
		flag.Usage()
		return fmt.Errorf("-symbol, -start and -end are required")
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	uc, cleanup, err := di.InitializeUseCase(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer cleanup()
	defer uc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := uc.Run(ctx, usecase.RunParams{Symbol: *symbol, StartDate: *start, EndDate: *end})
	if err != nil {
		return err
	}

	if *out != "" {
		return export.WriteCSVFile(*out, res.Table)
	}
	bw := bufio.NewWriter(os.Stdout)
	if err := export.WriteCSV(bw, res.Table); err != nil {
		return err
	}
	return bw.Flush()
}
