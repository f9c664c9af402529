package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"isle-conquest/internal/client"
	"isle-conquest/internal/logger"
	"isle-conquest/internal/protocol"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/exp/rand"
)

func main() {
	server := pflag.String("server", "", "Server address (default: last used)")
	profile := pflag.String("profile", "", "Profile name for a separate identity (e.g. bot1, bot2)")
	name := pflag.String("name", "", "Display name")
	gameID := pflag.String("game", "", "Join this game ID")
	create := pflag.Bool("create", false, "Create a new game instead of joining one")
	layout := pflag.String("layout", "", "Fixed layout for a created game (e.g. archipelago)")
	width := pflag.Int("width", 0, "Board width for a created game")
	height := pflag.Int("height", 0, "Board height for a created game")
	maxPlayers := pflag.Int("max-players", 2, "Seats in a created game")
	maxArmy := pflag.Int("max-army", 4, "Largest army the bot deploys")
	seed := pflag.Uint64("seed", 0, "Random seed for the bot's choices (0 = time based)")
	pflag.Parse()

	logger.Init()
	client.SetProfile(*profile)

	cfg, err := client.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("Using default client config")
	}
	if *server != "" {
		cfg.LastServer = *server
	}
	if *name != "" {
		cfg.PlayerName = *name
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	net := client.NewNetworkClient()
	bot := client.NewBot(net, cfg, client.BotOptions{
		GameID: *gameID,
		Create: *create,
		Settings: protocol.GameSettings{
			MaxPlayers: *maxPlayers,
			Width:      *width,
			Height:     *height,
			LayoutID:   *layout,
		},
		StartAt: *maxPlayers,
		MaxArmy: *maxArmy,
	}, rand.New(rand.NewSource(*seed)))

	disconnected := make(chan error, 1)
	net.OnMessage = bot.HandleMessage
	net.OnDisconnect = func(err error) { disconnected <- err }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := net.Connect(ctx, cfg.LastServer); err != nil {
		log.Fatal().Err(err).Str("server", cfg.LastServer).Msg("Failed to connect")
	}
	defer net.Disconnect()

	if err := bot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to authenticate")
	}

	select {
	case <-bot.Finished():
	case err := <-disconnected:
		if err != nil {
			log.Error().Err(err).Msg("Connection lost")
		}
	case <-ctx.Done():
		log.Info().Msg("Interrupted")
	}

	if err := cfg.Save(); err != nil {
		log.Warn().Err(err).Msg("Failed to save client config")
	}
}
