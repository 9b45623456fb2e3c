package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fcastellanos/reventa/internal/eval"
	"github.com/fcastellanos/reventa/internal/market"
	"github.com/fcastellanos/reventa/internal/refprice"
	"github.com/fcastellanos/reventa/internal/server"
	"github.com/fcastellanos/reventa/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const logFileName = "reventa.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load .env if present; real env vars take precedence.
	_ = godotenv.Load()

	// JOURNAL_STREAM is set by systemd when running as a service. Skip file
	// logging under systemd (journald handles it).
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open log file")
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))
	}

	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Fatal().Msg("GEMINI_API_KEY is not set")
	}

	dbPath := os.Getenv("REVENTA_DB_PATH")
	if dbPath == "" {
		dbPath = "reventa.db"
	}
	listenAddr := os.Getenv("REVENTA_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	refPricesPath := os.Getenv("REFERENCE_PRICES_PATH")
	if refPricesPath == "" {
		refPricesPath = "data/reference_prices.json"
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer store.Close()
	log.Info().Str("dbPath", dbPath).Msg("store initialized")

	refPrices, err := refprice.Load(refPricesPath)
	if err != nil {
		log.Warn().Err(err).Str("path", refPricesPath).Msg("reference prices unavailable, using empty table")
		refPrices = refprice.Empty()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	judge, err := eval.NewGeminiJudge(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize judge")
	}
	log.Info().Msg("gemini judge initialized")

	var web market.WebSource
	if brave := market.NewBraveClient(market.BraveOpts{APIKey: os.Getenv("BRAVE_API_KEY")}); brave != nil {
		web = brave
		log.Info().Msg("secondary market source (web search) enabled")
	} else {
		log.Info().Msg("BRAVE_API_KEY not set, secondary market source disabled")
	}

	aggregator := market.NewAggregator(market.AggregatorOpts{
		Primary:  market.NewMeliClient(market.MeliOpts{AccessToken: os.Getenv("MELI_ACCESS_TOKEN")}),
		Web:      web,
		Cache:    market.NewStatsCache(0, 0),
		Recorder: store,
	})

	evaluator := eval.NewEvaluator(aggregator, judge, refPrices, store)
	srv := server.New(listenAddr, evaluator, store)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}
