package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"isle-conquest/internal/database"
	"isle-conquest/internal/game"
	"isle-conquest/internal/logger"
	"isle-conquest/internal/protocol"
	"isle-conquest/pkg/maps"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var (
	errNotAuthenticated = errors.New("not authenticated")
	errNotHost          = fmt.Errorf("%w: only the host can start the game", game.ErrIllegalAction)
	errUnknownType      = fmt.Errorf("%w: unknown message type", game.ErrInvalidArgument)
)

// Handlers processes incoming messages.
type Handlers struct {
	hub *Hub
}

// NewHandlers creates a new handler set.
func NewHandlers(hub *Hub) *Handlers {
	return &Handlers{hub: hub}
}

func (h *Handlers) db() *database.DB {
	return h.hub.server.db
}

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(client *Client, msg *protocol.Message) {
	var err error

	switch msg.Type {
	case protocol.TypeAuthenticate:
		err = h.handleAuthenticate(client, msg)
	case protocol.TypeCreateGame:
		err = h.handleCreateGame(client, msg)
	case protocol.TypeJoinGame:
		err = h.handleJoinGame(client, msg)
	case protocol.TypeStartGame:
		err = h.handleStartGame(client, msg)
	case protocol.TypeListGames:
		err = h.handleListGames(client, msg)
	case protocol.TypeDeploy:
		err = h.handleDeploy(client, msg)
	case protocol.TypePass:
		err = h.handlePass(client, msg)
	case protocol.TypeGetState:
		err = h.handleGetState(client, msg)
	case protocol.TypeGetHistory:
		err = h.handleGetHistory(client, msg)
	case protocol.TypePing:
		h.reply(client, msg.ID, protocol.TypePong, struct{}{})
	default:
		err = errUnknownType
	}

	if err != nil {
		log.Debug().Err(err).
			Str("type", string(msg.Type)).
			Str("player", client.PlayerID).
			Msg("Request rejected")
		h.sendError(client, msg.ID, err)
	}
}

func parse(msg *protocol.Message, v interface{}) error {
	if err := msg.ParsePayload(v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", game.ErrInvalidArgument, err)
	}
	return nil
}

// handleAuthenticate handles player authentication/registration.
func (h *Handlers) handleAuthenticate(client *Client, msg *protocol.Message) error {
	var payload protocol.AuthenticatePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	db := h.db()
	var player *database.Player
	var err error

	if payload.Token != "" {
		player, err = db.GetPlayerByToken(payload.Token)
		if err != nil && !errors.Is(err, database.ErrPlayerNotFound) {
			return err
		}
	}

	if player == nil {
		player, err = db.CreatePlayer(payload.Name)
		if err != nil {
			return err
		}
		log.Info().Str("player", player.ID).Str("name", player.Name).Msg("Created new player")
	} else {
		if payload.Name != "" && payload.Name != player.Name {
			if err := db.UpdatePlayerName(player.ID, payload.Name); err != nil {
				return err
			}
			updated, err := db.GetPlayerByID(player.ID)
			if err != nil {
				return err
			}
			player = updated
		}
		if err := db.UpdatePlayerLastSeen(player.ID); err != nil {
			log.Warn().Err(err).Str("player", player.ID).Msg("Failed to update last seen")
		}
		log.Info().Str("player", player.ID).Str("name", player.Name).Msg("Player reconnected")
	}

	h.hub.Identify(client, player.ID)
	client.Name = player.Name

	h.reply(client, msg.ID, protocol.TypeAuthResult, protocol.AuthResultPayload{
		Success:  true,
		PlayerID: player.ID,
		Token:    player.Token,
		Name:     player.Name,
	})
	return nil
}

// handleCreateGame creates a lobby and seats the creator as host.
func (h *Handlers) handleCreateGame(client *Client, msg *protocol.Message) error {
	if client.PlayerID == "" {
		return errNotAuthenticated
	}

	var payload protocol.CreateGamePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	settings, err := h.resolveSettings(payload.Settings)
	if err != nil {
		return err
	}
	name := payload.Name
	if name == "" {
		name = client.Name + "'s game"
	}

	db := h.db()
	g, err := db.CreateGame(name, client.PlayerID, settings)
	if err != nil {
		return err
	}
	if _, err := db.TakeSeat(g.ID, client.PlayerID, string(game.ColorOrange)); err != nil {
		return err
	}
	h.hub.Join(client, g.ID)
	h.history(g.ID, 0, client, database.EventPlayerJoined, client.Name+" created the game")

	log.Info().Str("game", g.ID).Str("name", g.Name).Str("host", client.PlayerID).Msg("Game created")

	h.reply(client, msg.ID, protocol.TypeGameCreated, protocol.GameCreatedPayload{GameID: g.ID})
	return nil
}

// resolveSettings fills defaults and checks the requested settings.
func (h *Handlers) resolveSettings(req protocol.GameSettings) (database.GameSettings, error) {
	cfg := h.hub.server.cfg
	s := database.GameSettings{
		MaxPlayers: req.MaxPlayers,
		Width:      req.Width,
		Height:     req.Height,
		LayoutID:   req.LayoutID,
		Seed:       req.Seed,
	}

	if s.MaxPlayers == 0 {
		s.MaxPlayers = 4
	}
	if s.MaxPlayers < game.MinPlayers || s.MaxPlayers > game.MaxPlayers {
		return s, fmt.Errorf("%w: max players must be %d-%d", game.ErrInvalidArgument, game.MinPlayers, game.MaxPlayers)
	}

	if s.LayoutID != "" {
		l := maps.Get(s.LayoutID)
		if l == nil {
			return s, fmt.Errorf("%w: unknown layout %q", game.ErrInvalidArgument, s.LayoutID)
		}
		s.Width, s.Height = l.Width, l.Height
		return s, nil
	}

	if s.Width == 0 {
		s.Width = cfg.BoardWidth
	}
	if s.Height == 0 {
		s.Height = cfg.BoardHeight
	}
	if s.Width < game.MinWidth || s.Height < game.MinHeight {
		return s, fmt.Errorf("%w: board %dx%d is below %dx%d",
			game.ErrInvalidArgument, s.Width, s.Height, game.MinWidth, game.MinHeight)
	}
	if s.Seed == 0 {
		s.Seed = uint64(time.Now().UnixNano())
	}
	return s, nil
}

// handleJoinGame seats a player in a waiting game, or re-attaches a player
// who is already seated.
func (h *Handlers) handleJoinGame(client *Client, msg *protocol.Message) error {
	if client.PlayerID == "" {
		return errNotAuthenticated
	}

	var payload protocol.JoinGamePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	db := h.db()
	g, err := db.GetGame(payload.GameID)
	if err != nil {
		return err
	}
	players, err := db.Seats(g.ID)
	if err != nil {
		return err
	}

	seated := false
	for _, p := range players {
		if p.PlayerID == client.PlayerID {
			seated = true
			break
		}
	}

	if !seated {
		if _, err := db.TakeSeat(g.ID, client.PlayerID, pickColor(players)); err != nil {
			return err
		}
		h.history(g.ID, 0, client, database.EventPlayerJoined, client.Name+" joined")
		log.Info().Str("game", g.ID).Str("player", client.PlayerID).Msg("Player joined game")

		if players, err = db.Seats(g.ID); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.PlayerName)
	}
	joined := protocol.JoinedGamePayload{GameID: g.ID, Players: names}
	if !seated {
		h.hub.Broadcast(g.ID, protocol.TypeJoinedGame, joined)
	}
	h.hub.Join(client, g.ID)
	h.reply(client, msg.ID, protocol.TypeJoinedGame, joined)

	if g.Status != database.GameStatusWaiting {
		return h.sendState(client, g.ID)
	}
	return nil
}

// pickColor picks the first color no seated player uses.
func pickColor(players []*database.Seat) string {
	used := make(map[string]bool)
	for _, p := range players {
		used[p.Color] = true
	}
	for _, c := range game.AllColors() {
		if !used[string(c)] {
			return string(c)
		}
	}
	return string(game.ColorOrange)
}

// handleStartGame builds the board and starts the match. Seats become the
// turn order.
func (h *Handlers) handleStartGame(client *Client, msg *protocol.Message) error {
	if client.PlayerID == "" {
		return errNotAuthenticated
	}

	var payload protocol.StartGamePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	db := h.db()
	g, err := db.GetGame(payload.GameID)
	if err != nil {
		return err
	}
	if g.HostID != client.PlayerID {
		return errNotHost
	}
	if g.Status != database.GameStatusWaiting {
		return database.ErrGameStarted
	}

	seats, err := db.Seats(g.ID)
	if err != nil {
		return err
	}
	players := make([]*game.Player, 0, len(seats))
	for _, s := range seats {
		p := game.NewPlayer(s.PlayerID, s.PlayerName)
		p.Color = game.PlayerColor(s.Color)
		players = append(players, p)
	}

	board, err := buildBoard(g.Settings)
	if err != nil {
		return err
	}
	m, err := game.NewMatch(g.ID, board, players)
	if err != nil {
		return err
	}

	if err := db.SetGameStatus(g.ID, database.GameStatusStarted); err != nil {
		return err
	}
	h.hub.server.matches.Put(m)
	h.hub.Join(client, g.ID)
	h.saveState(m)
	h.history(g.ID, m.Round, client, database.EventGameStart, "The game has started")

	glog := logger.ForGame(g.ID)
	glog.Info().
		Int("players", len(players)).
		Int("width", board.Width()).
		Int("height", board.Height()).
		Msg("Game started")

	h.hub.Broadcast(g.ID, protocol.TypeGameStarted, protocol.GameStartedPayload{GameID: g.ID})
	h.broadcastState(m)
	h.announceTurn(m)
	return nil
}

// buildBoard returns the fixed layout named by the settings, or a board
// generated from the stored seed.
func buildBoard(s database.GameSettings) (*game.Board, error) {
	if s.LayoutID != "" {
		l := maps.Get(s.LayoutID)
		if l == nil {
			return nil, fmt.Errorf("%w: unknown layout %q", game.ErrInvalidArgument, s.LayoutID)
		}
		return l.NewBoard()
	}
	return maps.Generate(s.Width, s.Height, rand.New(rand.NewSource(s.Seed)))
}

// handleListGames lists games waiting for players.
func (h *Handlers) handleListGames(client *Client, msg *protocol.Message) error {
	items, err := h.hub.server.openGames()
	if err != nil {
		return err
	}
	h.reply(client, msg.ID, protocol.TypeGameList, protocol.GameListPayload{Games: items})
	return nil
}

// handleDeploy deploys a new army for the sender.
func (h *Handlers) handleDeploy(client *Client, msg *protocol.Message) error {
	if client.PlayerID == "" {
		return errNotAuthenticated
	}

	var payload protocol.DeployPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	var actionErr error
	found := h.hub.server.matches.With(payload.GameID, func(m *game.Match) {
		result, err := m.Deploy(client.PlayerID, payload.X, payload.Y, payload.Size)
		if err != nil {
			actionErr = err
			return
		}

		wire := protocol.NewDeployResultPayload(m.ID, result)
		h.recordMove(m.ID, client.PlayerID, string(protocol.TypeDeploy), payload, wire)
		h.saveState(m)
		h.recordDeploy(m, client, result)

		h.hub.Broadcast(m.ID, protocol.TypeDeployResult, wire)
		h.afterTurn(m)
	})
	if !found {
		return database.ErrGameNotFound
	}
	return actionErr
}

// handlePass ends the sender's turn.
func (h *Handlers) handlePass(client *Client, msg *protocol.Message) error {
	if client.PlayerID == "" {
		return errNotAuthenticated
	}

	var payload protocol.PassPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	var actionErr error
	found := h.hub.server.matches.With(payload.GameID, func(m *game.Match) {
		round := m.Round
		if err := m.Pass(client.PlayerID); err != nil {
			actionErr = err
			return
		}

		h.recordMove(m.ID, client.PlayerID, string(protocol.TypePass), payload, nil)
		h.saveState(m)
		h.history(m.ID, round, client, database.EventPass, client.Name+" passed")
		h.afterTurn(m)
	})
	if !found {
		return database.ErrGameNotFound
	}
	return actionErr
}

// afterTurn broadcasts the new state and either the next turn or the end
// of the match. Callers hold the match lock.
func (h *Handlers) afterTurn(m *game.Match) {
	h.broadcastState(m)
	if m.Over {
		h.finish(m)
		return
	}
	h.announceTurn(m)
}

// finish records the end of a match and announces the winner.
func (h *Handlers) finish(m *game.Match) {
	if err := h.db().SetGameStatus(m.ID, database.GameStatusFinished); err != nil {
		log.Error().Err(err).Str("game", m.ID).Msg("Failed to mark game finished")
	}

	ended := protocol.GameEndedPayload{
		GameID: m.ID,
		Scores: make(map[string]int, len(m.PlayerOrder)),
	}
	for _, id := range m.PlayerOrder {
		ended.Scores[id] = m.Players[id].Score()
	}

	message := "The game ended in a tie"
	if w := m.Winner(); w != nil {
		ended.WinnerID = w.ID
		ended.WinnerName = w.Name
		message = w.Name + " won the game"
	}
	h.history(m.ID, m.Round, nil, database.EventGameEnd, message)

	glog := logger.ForGame(m.ID)
	glog.Info().Str("winner", ended.WinnerID).Int("round", m.Round).Msg("Game ended")
	h.hub.Broadcast(m.ID, protocol.TypeGameEnded, ended)
}

func (h *Handlers) announceTurn(m *game.Match) {
	h.hub.Broadcast(m.ID, protocol.TypeTurnChanged, protocol.TurnChangedPayload{
		GameID:        m.ID,
		CurrentPlayer: m.CurrentPlayer().ID,
		Round:         m.Round,
	})
}

func (h *Handlers) broadcastState(m *game.Match) {
	h.hub.Broadcast(m.ID, protocol.TypeGameState, protocol.GameStatePayload{
		GameID: m.ID,
		Status: statusOf(m),
		State:  m.Snapshot(),
	})
}

func statusOf(m *game.Match) string {
	if m.Over {
		return string(database.GameStatusFinished)
	}
	return string(database.GameStatusStarted)
}

// handleGetState sends the requested game's state to the sender.
func (h *Handlers) handleGetState(client *Client, msg *protocol.Message) error {
	var payload protocol.GameStatePayload
	if err := parse(msg, &payload); err != nil {
		return err
	}
	return h.sendState(client, payload.GameID)
}

// sendState sends a game's state to one client. Waiting games have no board
// yet; finished games are served from the last saved snapshot.
func (h *Handlers) sendState(client *Client, gameID string) error {
	var snap *game.MatchSnapshot
	status := ""
	if h.hub.server.matches.With(gameID, func(m *game.Match) {
		snap = m.Snapshot()
		status = statusOf(m)
	}) {
		h.send(client, protocol.TypeGameState, protocol.GameStatePayload{GameID: gameID, Status: status, State: snap})
		return nil
	}

	g, err := h.db().GetGame(gameID)
	if err != nil {
		return err
	}
	out := protocol.GameStatePayload{GameID: g.ID, Status: string(g.Status)}
	if stateJSON, err := h.db().LoadSnapshot(g.ID); err == nil && stateJSON != "" {
		var s game.MatchSnapshot
		if err := json.Unmarshal([]byte(stateJSON), &s); err == nil {
			out.State = &s
		}
	}
	h.send(client, protocol.TypeGameState, out)
	return nil
}

// handleGetHistory sends a game's event log to the sender.
func (h *Handlers) handleGetHistory(client *Client, msg *protocol.Message) error {
	var payload protocol.GetHistoryPayload
	if err := parse(msg, &payload); err != nil {
		return err
	}

	events, err := h.db().Events(payload.GameID)
	if err != nil {
		return err
	}

	out := protocol.GameHistoryPayload{
		GameID: payload.GameID,
		Events: make([]protocol.HistoryEvent, 0, len(events)),
	}
	for _, e := range events {
		out.Events = append(out.Events, protocol.HistoryEvent{
			ID:         e.ID,
			Round:      e.Round,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			Kind:       e.Kind,
			Message:    e.Message,
		})
	}
	h.reply(client, msg.ID, protocol.TypeGameHistory, out)
	return nil
}

// saveState persists the match snapshot. Failures are logged; the in-memory
// match stays authoritative.
func (h *Handlers) saveState(m *game.Match) {
	data, err := json.Marshal(m.Snapshot())
	if err != nil {
		log.Error().Err(err).Str("game", m.ID).Msg("Failed to encode game state")
		return
	}
	if err := h.db().SaveSnapshot(m.ID, string(data), m.CurrentPlayer().ID, m.Round); err != nil {
		log.Error().Err(err).Str("game", m.ID).Msg("Failed to save game state")
	}
}

// recordMove appends an accepted move and its outcome to the game's log.
func (h *Handlers) recordMove(gameID, playerID, kind string, request, outcome interface{}) {
	req, _ := json.Marshal(request)
	out := ""
	if outcome != nil {
		data, _ := json.Marshal(outcome)
		out = string(data)
	}
	if err := h.db().RecordMove(gameID, playerID, kind, string(req), out); err != nil {
		log.Error().Err(err).Str("game", gameID).Str("move", kind).Msg("Failed to record move")
	}
}

func (h *Handlers) recordDeploy(m *game.Match, client *Client, r *game.DeployResult) {
	h.history(m.ID, m.Round, client, database.EventDeploy,
		fmt.Sprintf("%s deployed an army of %d at (%d,%d)", client.Name, r.Size, r.X, r.Y))

	for _, o := range r.Outcomes {
		if o.Effect != game.EffectCaptured {
			continue
		}
		loser := o.OwnerID
		if p := m.Players[o.OwnerID]; p != nil {
			loser = p.Name
		}
		h.history(m.ID, m.Round, client, database.EventCapture,
			fmt.Sprintf("%s captured %s's army at (%d,%d)", client.Name, loser, o.X, o.Y))
	}
}

// history appends an event to the game log. A nil client records a system event.
func (h *Handlers) history(gameID string, round int, client *Client, eventType, message string) {
	playerID, playerName := "", ""
	if client != nil {
		playerID, playerName = client.PlayerID, client.Name
	}
	if err := h.db().AddEvent(gameID, round, playerID, playerName, eventType, message); err != nil {
		log.Error().Err(err).Str("game", gameID).Str("event", eventType).Msg("Failed to record history")
	}
}

func (h *Handlers) send(client *Client, msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(msgType)).Msg("Failed to encode message")
		return
	}
	client.Send(msg)
}

// reply sends a response that carries the request's message ID.
func (h *Handlers) reply(client *Client, requestID string, msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", string(msgType)).Msg("Failed to encode message")
		return
	}
	msg.ID = requestID
	client.Send(msg)
}

// sendError sends an error response.
func (h *Handlers) sendError(client *Client, msgID string, err error) {
	h.reply(client, msgID, protocol.TypeError, protocol.ErrorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	})
}

// errorCode maps an error to its wire code.
func errorCode(err error) protocol.ErrorCode {
	switch {
	case errors.Is(err, errNotAuthenticated):
		return protocol.ErrCodeNotAuthenticated
	case errors.Is(err, game.ErrUnknownLocation):
		return protocol.ErrCodeUnknownLocation
	case errors.Is(err, game.ErrNotYourTurn):
		return protocol.ErrCodeNotYourTurn
	case errors.Is(err, game.ErrMatchOver):
		return protocol.ErrCodeMatchOver
	case errors.Is(err, game.ErrIllegalAction),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, database.ErrGameStarted),
		errors.Is(err, database.ErrAlreadyInGame):
		return protocol.ErrCodeIllegalAction
	case errors.Is(err, game.ErrInvalidArgument):
		return protocol.ErrCodeInvalidArgument
	case errors.Is(err, database.ErrGameNotFound):
		return protocol.ErrCodeGameNotFound
	case errors.Is(err, database.ErrGameFull):
		return protocol.ErrCodeLobbyFull
	default:
		return protocol.ErrCodeInternalError
	}
}
