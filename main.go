package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/matchgrid/internal/config"
	"github.com/robalobadob/matchgrid/internal/httpserver"
	"github.com/robalobadob/matchgrid/internal/store"
)

const janitorInterval = time.Minute

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Game.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid grid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	mem := store.NewMemoryStore(clk)
	srv := httpserver.New(mem, cfg, httpserver.WithClock(clk))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).
			Int("width", cfg.Game.Width).Int("height", cfg.Game.Height).Int("timeLimit", cfg.Game.TimeLimit).
			Msg("starting matchgrid server")
		return srv.Serve(ctx, ":"+cfg.Port)
	})
	g.Go(func() error {
		return srv.RunJanitor(ctx, janitorInterval)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	n := mem.Sweep(context.Background(), clk.Now().Add(time.Hour))
	log.Info().Int("closed", n).Msg("shutdown complete")
}
