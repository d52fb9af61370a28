package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/config"
	"options-spread-backtest/internal/pipeline"
	"options-spread-backtest/internal/storage"
	chstore "options-spread-backtest/internal/storage/clickhouse"
	"options-spread-backtest/internal/storage/memory"
	"options-spread-backtest/internal/storage/migrations"
	pgstore "options-spread-backtest/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional, defaults apply)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (trade results)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (price data)")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory storage seeded with fixture data")
	migrate := flag.Bool("migrate", false, "Run schema migrations before the backtest")

	// Output
	outputDir := flag.String("output", "", "Directory for boundary CSVs and the summary report (overrides config)")
	persist := flag.Bool("persist", false, "Persist trade results to PostgreSQL")

	flag.Parse()

	// .env is optional, flags and real env take precedence
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log := newLogger(cfg.Logging.Level)

	settings, err := cfg.Settings()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received signal %v, shutting down", sig)
		cancel()
	}()

	var priceStore storage.PriceStore
	var resultStore storage.TradeResultStore

	if *useFixtures {
		mem := memory.NewPriceStore()
		if err := pipeline.LoadFixtures(ctx, mem); err != nil {
			log.Fatalf("load fixtures: %v", err)
		}
		priceStore = mem
		resultStore = memory.NewTradeResultStore()
	} else {
		if *clickhouseDSN == "" {
			log.Fatal("--clickhouse-dsn is required when not using --use-fixtures")
		}
		if *persist && *postgresDSN == "" {
			log.Fatal("--postgres-dsn is required with --persist")
		}

		var conn *chstore.Conn
		if *migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, *clickhouseDSN)
		}
		if err != nil {
			log.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		priceStore = chstore.NewPriceStore(conn)

		if *postgresDSN != "" {
			pool, err := pgstore.NewPool(ctx, *postgresDSN)
			if err != nil {
				log.Fatalf("connect to postgres: %v", err)
			}
			defer pool.Close()

			if *migrate {
				if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
					log.Fatalf("postgres migrations: %v", err)
				}
			}
			resultStore = pgstore.NewTradeResultStore(pool)
		}
	}

	p := pipeline.New(priceStore, settings, log)
	if *persist && resultStore != nil {
		p = p.WithResultStore(resultStore)
	}

	dir := cfg.Output.Dir
	if *outputDir != "" {
		dir = *outputDir
	}
	if dir != "" {
		p = p.WithSnapshotDir(dir)
	}

	result, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	printSummary(result)
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func printSummary(result *pipeline.Result) {
	s := result.Summary

	fmt.Println()
	fmt.Println("=== Backtest Summary ===")
	fmt.Printf("Trading Days:       %d\n", len(result.Days))
	fmt.Printf("Signals:            %d\n", len(result.Directions))
	fmt.Printf("Trades:             %d\n", s.TotalTrades)
	fmt.Printf("Wins / Losses:      %d / %d\n", s.Wins, s.Losses)
	fmt.Printf("Win Rate:           %.2f%%\n", s.WinRate)
	fmt.Printf("Average Win:        %.2f\n", s.AvgWin)
	fmt.Printf("Average Loss:       %.2f\n", s.AvgLoss)
	fmt.Printf("Largest Win:        %.2f\n", s.LargestWin)
	fmt.Printf("Largest Loss:       %.2f\n", s.LargestLoss)
	fmt.Printf("Total P&L:          %.2f\n", s.TotalPnL)
	fmt.Printf("Max Drawdown:       %.2f\n", s.MaxDrawdown)
	fmt.Printf("Average Drawdown:   %.2f\n", s.AvgDrawdown)

	if len(result.Breakdowns) > 0 {
		fmt.Println()
		fmt.Println("By Direction:")
		for _, b := range result.Breakdowns {
			fmt.Printf("  %-5s trades=%d total_pnl=%.2f mean_pnl=%.2f mean_points=%.2f mean_premium=%.2f\n",
				b.Direction, b.Trades, b.TotalPnL, b.MeanPnL, b.MeanSpotPoints, b.MeanPremium)
		}
	}

	if s.TotalTrades > 0 {
		fmt.Println()
		fmt.Println("First trades:")
		for i, t := range result.Trades {
			if i == 5 {
				break
			}
			fmt.Printf("  %s %-5s points=%.2f premium=%.2f pnl=%.2f cumulative=%.2f drawdown=%.2f\n",
				t.Day.String(), t.Direction, t.SpotPoints, t.Premium, t.PnL, t.CumulativePnL, t.Drawdown)
		}
	}
}
