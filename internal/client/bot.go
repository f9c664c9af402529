package client

import (
	"sync"

	"isle-conquest/internal/game"
	"isle-conquest/internal/protocol"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Sender delivers messages to the server. *NetworkClient implements it.
type Sender interface {
	SendPayload(msgType protocol.MessageType, payload interface{}) error
}

// BotOptions controls what a bot does once authenticated.
type BotOptions struct {
	Name     string
	GameID   string // Join this game; empty means join any open game or create one
	Create   bool   // Always create a new game
	Settings protocol.GameSettings
	StartAt  int // Host starts the game once this many players are seated
	MaxArmy  int // Largest army size the bot deploys
}

// Bot plays a match over a Sender. Deployments go on free land, preferring
// tiles next to enemy armies it can capture.
type Bot struct {
	send Sender
	cfg  *Config
	opts BotOptions
	rng  *rand.Rand

	mu       sync.Mutex
	playerID string
	gameID   string
	isHost   bool
	started  bool
	state    *game.MatchSnapshot
	myTurn   bool
	finished chan struct{}
}

// NewBot creates a bot. cfg supplies and stores the player identity and may be nil.
func NewBot(send Sender, cfg *Config, opts BotOptions, rng *rand.Rand) *Bot {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if opts.Name == "" {
		opts.Name = cfg.PlayerName
	}
	if opts.StartAt < game.MinPlayers {
		opts.StartAt = game.MinPlayers
	}
	if opts.MaxArmy < 1 {
		opts.MaxArmy = 4
	}
	return &Bot{
		send:     send,
		cfg:      cfg,
		opts:     opts,
		rng:      rng,
		finished: make(chan struct{}),
	}
}

// Finished is closed when the bot's game ends.
func (b *Bot) Finished() <-chan struct{} {
	return b.finished
}

// GameID returns the game the bot is in.
func (b *Bot) GameID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gameID
}

// Start authenticates, reusing the stored token if there is one.
func (b *Bot) Start() error {
	return b.send.SendPayload(protocol.TypeAuthenticate, protocol.AuthenticatePayload{
		Token: b.cfg.PlayerToken,
		Name:  b.opts.Name,
	})
}

// HandleMessage reacts to one server message.
func (b *Bot) HandleMessage(msg *protocol.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	switch msg.Type {
	case protocol.TypeAuthResult:
		err = b.onAuth(msg)
	case protocol.TypeGameList:
		err = b.onGameList(msg)
	case protocol.TypeGameCreated:
		var p protocol.GameCreatedPayload
		if err = msg.ParsePayload(&p); err == nil {
			b.gameID = p.GameID
			b.isHost = true
			log.Info().Str("game", p.GameID).Msg("Created game, waiting for players")
		}
	case protocol.TypeJoinedGame:
		err = b.onJoined(msg)
	case protocol.TypeGameStarted:
		b.started = true
	case protocol.TypeGameState:
		var p protocol.GameStatePayload
		if err = msg.ParsePayload(&p); err == nil && p.GameID == b.gameID && p.State != nil {
			b.state = p.State
			b.started = true
		}
	case protocol.TypeTurnChanged:
		err = b.onTurn(msg)
	case protocol.TypeDeployResult:
		var p protocol.DeployResultPayload
		if err = msg.ParsePayload(&p); err == nil && p.PlayerID == b.playerID {
			log.Info().Int("x", p.X).Int("y", p.Y).Int("size", p.Size).
				Int("gold", p.GoldAwarded).Msg("Deployed")
		}
	case protocol.TypeGameEnded:
		err = b.onEnded(msg)
	case protocol.TypeError:
		err = b.onError(msg)
	}

	if err != nil {
		log.Warn().Err(err).Str("type", string(msg.Type)).Msg("Failed to handle message")
	}
}

func (b *Bot) onAuth(msg *protocol.Message) error {
	var p protocol.AuthResultPayload
	if err := msg.ParsePayload(&p); err != nil {
		return err
	}
	b.playerID = p.PlayerID
	b.cfg.PlayerID = p.PlayerID
	b.cfg.PlayerToken = p.Token
	b.cfg.PlayerName = p.Name
	if err := b.cfg.Save(); err != nil {
		log.Debug().Err(err).Msg("Could not save client config")
	}
	log.Info().Str("player", p.PlayerID).Str("name", p.Name).Msg("Authenticated")

	switch {
	case b.opts.Create:
		return b.send.SendPayload(protocol.TypeCreateGame, protocol.CreateGamePayload{
			Name:     p.Name + "'s game",
			Settings: b.opts.Settings,
		})
	case b.opts.GameID != "":
		return b.send.SendPayload(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: b.opts.GameID})
	default:
		return b.send.SendPayload(protocol.TypeListGames, struct{}{})
	}
}

func (b *Bot) onGameList(msg *protocol.Message) error {
	var p protocol.GameListPayload
	if err := msg.ParsePayload(&p); err != nil {
		return err
	}
	for _, g := range p.Games {
		if g.PlayerCount < g.MaxPlayers {
			return b.send.SendPayload(protocol.TypeJoinGame, protocol.JoinGamePayload{GameID: g.ID})
		}
	}
	return b.send.SendPayload(protocol.TypeCreateGame, protocol.CreateGamePayload{
		Name:     b.opts.Name + "'s game",
		Settings: b.opts.Settings,
	})
}

func (b *Bot) onJoined(msg *protocol.Message) error {
	var p protocol.JoinedGamePayload
	if err := msg.ParsePayload(&p); err != nil {
		return err
	}
	b.gameID = p.GameID
	b.cfg.LastGameID = p.GameID

	if b.isHost && !b.started && len(p.Players) >= b.opts.StartAt {
		b.started = true
		log.Info().Str("game", p.GameID).Int("players", len(p.Players)).Msg("Starting game")
		return b.send.SendPayload(protocol.TypeStartGame, protocol.StartGamePayload{GameID: p.GameID})
	}
	return nil
}

func (b *Bot) onTurn(msg *protocol.Message) error {
	var p protocol.TurnChangedPayload
	if err := msg.ParsePayload(&p); err != nil {
		return err
	}
	b.myTurn = p.CurrentPlayer == b.playerID
	if !b.myTurn {
		return nil
	}
	return b.act()
}

// act deploys on the best free tile or passes when none is left.
func (b *Bot) act() error {
	x, y, ok := b.chooseTile()
	if !ok {
		return b.send.SendPayload(protocol.TypePass, protocol.PassPayload{GameID: b.gameID})
	}
	size := 1 + b.rng.Intn(b.opts.MaxArmy)
	return b.send.SendPayload(protocol.TypeDeploy, protocol.DeployPayload{
		GameID: b.gameID,
		X:      x,
		Y:      y,
		Size:   size,
	})
}

// chooseTile picks a free land tile, preferring the ones touching the most
// enemy armies of size one. Ties are broken at random.
func (b *Bot) chooseTile() (int, int, bool) {
	if b.state == nil {
		return 0, 0, false
	}
	s := b.state

	type unitInfo struct {
		owner string
		size  int
		army  bool
	}
	occupied := make(map[[2]int]unitInfo, len(s.Units))
	for _, u := range s.Units {
		occupied[[2]int{u.X, u.Y}] = unitInfo{owner: u.OwnerID, size: u.Size, army: u.Kind == game.UnitArmy}
	}

	best := -1
	var candidates [][2]int
	for y, row := range s.Rows {
		for x, r := range row {
			kind, ok := game.KindFromSymbol(r)
			if !ok || !kind.IsBuildable() {
				continue
			}
			if _, taken := occupied[[2]int{x, y}]; taken {
				continue
			}

			score := 0
			for _, d := range [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
				n, ok := occupied[[2]int{x + d[0], y + d[1]}]
				if ok && n.army && n.owner != b.playerID && n.size == 1 {
					score++
				}
			}

			switch {
			case score > best:
				best = score
				candidates = [][2]int{{x, y}}
			case score == best:
				candidates = append(candidates, [2]int{x, y})
			}
		}
	}

	if len(candidates) == 0 {
		return 0, 0, false
	}
	c := candidates[b.rng.Intn(len(candidates))]
	return c[0], c[1], true
}

func (b *Bot) onEnded(msg *protocol.Message) error {
	var p protocol.GameEndedPayload
	if err := msg.ParsePayload(&p); err != nil {
		return err
	}
	if p.GameID != b.gameID {
		return nil
	}

	result := "lost"
	switch p.WinnerID {
	case b.playerID:
		result = "won"
	case "":
		result = "tied"
	}
	log.Info().
		Str("game", p.GameID).
		Str("result", result).
		Int("score", p.Scores[b.playerID]).
		Msg("Game over")

	select {
	case <-b.finished:
	default:
		close(b.finished)
	}
	return nil
}

// onError passes the turn when the bot's own action was rejected.
func (b *Bot) onError(msg *protocol.Message) error {
	var p protocol.ErrorPayload
	if err := msg.ParsePayload(&p); err != nil {
		return err
	}
	log.Warn().Str("code", string(p.Code)).Str("message", p.Message).Msg("Server error")

	if b.myTurn && p.Code != protocol.ErrCodeNotYourTurn && p.Code != protocol.ErrCodeMatchOver {
		b.myTurn = false
		return b.send.SendPayload(protocol.TypePass, protocol.PassPayload{GameID: b.gameID})
	}
	return nil
}
