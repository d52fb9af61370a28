package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"options-spread-backtest/internal/domain"
	"options-spread-backtest/internal/ingestion"
	"options-spread-backtest/internal/storage"
	chstore "options-spread-backtest/internal/storage/clickhouse"
	"options-spread-backtest/internal/storage/migrations"
)

func main() {
	barsPath := flag.String("bars", "", "CSV file of underlying minute bars (date,time,open,high,low,close)")
	quotesPath := flag.String("quotes", "", "CSV file of option quotes (date,time,strike,type,close)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	migrate := flag.Bool("migrate", true, "Run schema migrations before loading")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	}

	if *clickhouseDSN == "" {
		log.Fatal("--clickhouse-dsn is required")
	}
	if *barsPath == "" && *quotesPath == "" {
		log.Fatal("nothing to load, pass --bars and/or --quotes")
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

	var conn *chstore.Conn
	var err error
	if *migrate {
		conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	} else {
		conn, err = chstore.NewConn(ctx, *clickhouseDSN)
	}
	if err != nil {
		log.Fatalf("connect to clickhouse: %v", err)
	}
	defer conn.Close()

	store := chstore.NewPriceStore(conn)

	if *barsPath != "" {
		if err := loadBars(ctx, store, *barsPath, log); err != nil {
			log.Fatalf("load bars: %v", err)
		}
	}
	if *quotesPath != "" {
		if err := loadQuotes(ctx, store, *quotesPath, log); err != nil {
			log.Fatalf("load quotes: %v", err)
		}
	}

	days, err := store.ListTradingDays(ctx)
	if err != nil {
		log.Fatalf("list trading days: %v", err)
	}
	log.WithField("trading_days", len(days)).Info("ingest complete")
}

func loadBars(ctx context.Context, store storage.PriceWriter, path string, log *logrus.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bars, err := ingestion.ReadUnderlyingBars(f)
	if err != nil {
		return err
	}
	if err := store.InsertBars(ctx, bars); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"file": path,
		"bars": len(bars),
		"days": countBarDays(bars),
	}).Info("underlying bars loaded")
	return nil
}

func loadQuotes(ctx context.Context, store storage.PriceWriter, path string, log *logrus.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	quotes, err := ingestion.ReadOptionQuotes(f)
	if err != nil {
		return err
	}
	if err := store.InsertQuotes(ctx, quotes); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"file":   path,
		"quotes": len(quotes),
	}).Info("option quotes loaded")
	return nil
}

func countBarDays(bars []*domain.PriceSample) int {
	days := make(map[domain.TradingDay]struct{}, len(bars))
	for _, b := range bars {
		days[b.Day] = struct{}{}
	}
	return len(days)
}
