package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isle-conquest/internal/config"
	"isle-conquest/internal/logger"
	"isle-conquest/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	logger.Init()

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.InitWithLevel(cfg.LogLevel)

	srv, err := server.New(server.Config{
		Addr:        cfg.Addr(),
		DBPath:      cfg.DBPath,
		BoardWidth:  cfg.Board.Width,
		BoardHeight: cfg.Board.Height,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-done
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
