// Command mdaggregator runs the multi-exchange market-data aggregator:
// one WebSocket session per enabled venue, normalized and fanned out over
// a local TCP socket.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"mdaggregator/internal/application/usecase/aggregate"
	"mdaggregator/internal/infrastructure/config"
	"mdaggregator/internal/infrastructure/logger"
	"mdaggregator/internal/infrastructure/session"

	_ "mdaggregator/internal/infrastructure/exchange/binance"
	_ "mdaggregator/internal/infrastructure/exchange/bybit"
	_ "mdaggregator/internal/infrastructure/exchange/coinbase"
	_ "mdaggregator/internal/infrastructure/exchange/kraken"
	_ "mdaggregator/internal/infrastructure/exchange/okx"
)

const userAgent = "mdaggregator/1.0"

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	logger.Setup("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel)

	svc, err := aggregate.New(cfg, func(venue string) session.Transport {
		return session.NewTransport(userAgent)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct supervisor")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("aggregator exited with error")
	}

	log.Info().Msg("clean shutdown")
}
