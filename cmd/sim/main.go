package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lob/internal/book"
	"lob/internal/config"
	"lob/internal/engine"
	"lob/internal/feed"
	"lob/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg := config.Load()
	cfg.SetupLogging()

	eng := engine.New(cfg.TickSize, cfg.Instruments...)
	defer func() {
		if err := eng.Stop(); err != nil {
			log.Error().Err(err).Msg("engine shutdown")
		}
	}()

	hub := sim.NewHub[feed.Message]()
	eng.SetReporter(feed.NewReporter(hub))

	t, ctx := tomb.WithContext(ctx)

	var sources []feed.DepthSource
	for i, instrument := range cfg.Instruments {
		handle, err := eng.Book(instrument)
		if err != nil {
			log.Fatal().Err(err).Msg("unknown instrument")
		}
		sources = append(sources, handle)

		walk := sim.NewWalk(cfg.StartPrice, 0, cfg.TickSize/cfg.StartPrice, time.Now().UnixNano()+int64(i))
		bots := []sim.Bot{
			sim.NewWalkBot(walk),
			sim.NewMakerBot(fmt.Sprintf("maker-bid-%s", instrument), book.Buy, walk),
			sim.NewMakerBot(fmt.Sprintf("maker-ask-%s", instrument), book.Sell, walk),
			sim.NewTakerBot(fmt.Sprintf("taker-%s", instrument)),
		}
		for _, bot := range bots {
			t.Go(func() error {
				return bot.Run(ctx, handle)
			})
		}
	}

	publisher := feed.NewPublisher(hub, cfg.DepthLevels, cfg.DepthInterval, sources...)
	t.Go(func() error {
		return publisher.Run(ctx)
	})

	if cfg.FeedAddr != "" {
		server := feed.NewServer(cfg.FeedAddr, hub)
		t.Go(func() error {
			return server.Run(ctx)
		})
	}

	log.Info().
		Strs("instruments", cfg.Instruments).
		Float64("tick_size", cfg.TickSize).
		Msg("simulation running")

	<-ctx.Done()
	if err := t.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("simulation exited")
	}
}
