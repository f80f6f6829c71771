// Command tui plays match-grid in the terminal against an in-process controller.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/matchgrid/internal/config"
	"github.com/robalobadob/matchgrid/internal/game"
	"github.com/robalobadob/matchgrid/internal/tui"
)

func main() {
	cfg := config.Load()

	// The terminal belongs to tview; logs only go to a file when asked.
	logger := zerolog.Nop()
	if cfg.TUILogFile != "" {
		f, err := os.OpenFile(cfg.TUILogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.TUILogFile).Msg("open log file")
		}
		defer f.Close()
		lvl, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			lvl = zerolog.InfoLevel
		}
		logger = zerolog.New(f).Level(lvl).With().Timestamp().Str("client", "tui").Logger()
	}

	opts := cfg.Game
	if err := opts.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid grid")
	}
	r := tui.NewRenderer(opts.Width, opts.Theme)
	ctrl, err := game.New(opts, r, game.WithLogger(logger))
	if err != nil {
		log.Fatal().Err(err).Msg("new game")
	}

	app := tui.NewApp(r, ctrl, logger)
	if err := app.Run(); err != nil {
		ctrl.Close()
		log.Fatal().Err(err).Msg("terminal client exited")
	}
	ctrl.Close()
}
