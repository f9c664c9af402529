package protocol

import "isle-conquest/internal/game"

// ==================== Authentication Payloads ====================

// AuthenticatePayload is sent to authenticate/register a player.
type AuthenticatePayload struct {
	Token string `json:"token,omitempty"` // Existing token for returning players
	Name  string `json:"name"`            // Display name
}

// AuthResultPayload is the response to authentication.
type AuthResultPayload struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"` // Save this for reconnecting
	Name     string `json:"name"`
	Error    string `json:"error,omitempty"`
}

// ==================== Lobby Payloads ====================

// CreateGamePayload is sent to create a new game. A LayoutID selects a fixed
// board; otherwise a board of the given size is generated.
type CreateGamePayload struct {
	Name     string       `json:"name"`
	Settings GameSettings `json:"settings"`
}

// GameSettings are the configurable game parameters.
type GameSettings struct {
	MaxPlayers int    `json:"max_players"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	LayoutID   string `json:"layout_id,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
}

// GameCreatedPayload is the response when a game is created.
type GameCreatedPayload struct {
	GameID string `json:"game_id"`
}

// JoinGamePayload is sent to join a game by ID.
type JoinGamePayload struct {
	GameID string `json:"game_id"`
}

// JoinedGamePayload is the response when successfully joining a game.
type JoinedGamePayload struct {
	GameID  string   `json:"game_id"`
	Players []string `json:"players"`
}

// StartGamePayload is sent by the host to begin play.
type StartGamePayload struct {
	GameID string `json:"game_id"`
}

// GameListPayload contains a list of games.
type GameListPayload struct {
	Games []GameListItem `json:"games"`
}

// GameListItem is a summary of a game.
type GameListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	HostName    string `json:"host_name,omitempty"`
}

// ==================== Game Flow Payloads ====================

// GameStartedPayload is sent when the game begins.
type GameStartedPayload struct {
	GameID string `json:"game_id"`
}

// TurnChangedPayload is sent when the active player changes.
type TurnChangedPayload struct {
	GameID        string `json:"game_id"`
	CurrentPlayer string `json:"current_player"`
	Round         int    `json:"round"`
}

// GameStatePayload contains the full game state.
type GameStatePayload struct {
	GameID string              `json:"game_id"`
	Status string              `json:"status"`
	State  *game.MatchSnapshot `json:"state,omitempty"`
}

// DeployResultPayload reports a resolved deployment to every player.
type DeployResultPayload struct {
	GameID      string           `json:"game_id"`
	PlayerID    string           `json:"player_id"`
	ArmyID      string           `json:"army_id"`
	X           int              `json:"x"`
	Y           int              `json:"y"`
	Size        int              `json:"size"`
	Outcomes    []OutcomePayload `json:"outcomes"`
	GoldAwarded int              `json:"gold_awarded"`
}

// OutcomePayload is the effect of a deployment on one neighbouring unit.
type OutcomePayload struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	UnitID     string `json:"unit_id"`
	OwnerID    string `json:"owner_id,omitempty"`
	Effect     string `json:"effect"`
	SizeBefore int    `json:"size_before"`
	SizeAfter  int    `json:"size_after"`
}

// NewDeployResultPayload converts a game result for the wire.
func NewDeployResultPayload(gameID string, r *game.DeployResult) DeployResultPayload {
	p := DeployResultPayload{
		GameID:      gameID,
		PlayerID:    r.PlayerID,
		ArmyID:      r.ArmyID,
		X:           r.X,
		Y:           r.Y,
		Size:        r.Size,
		Outcomes:    make([]OutcomePayload, 0, len(r.Outcomes)),
		GoldAwarded: r.GoldAwarded,
	}
	for _, o := range r.Outcomes {
		p.Outcomes = append(p.Outcomes, OutcomePayload{
			X:          o.X,
			Y:          o.Y,
			UnitID:     o.UnitID,
			OwnerID:    o.OwnerID,
			Effect:     o.Effect.String(),
			SizeBefore: o.SizeBefore,
			SizeAfter:  o.SizeAfter,
		})
	}
	return p
}

// GetHistoryPayload requests a game's event log.
type GetHistoryPayload struct {
	GameID string `json:"game_id"`
}

// GameHistoryPayload contains game history events.
type GameHistoryPayload struct {
	GameID string         `json:"game_id"`
	Events []HistoryEvent `json:"events"`
}

// HistoryEvent is a single event in the game history log.
type HistoryEvent struct {
	ID         int64  `json:"id"`
	Round      int    `json:"round"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

// GameEndedPayload is sent when the game concludes. WinnerID is empty on a tie.
type GameEndedPayload struct {
	GameID     string         `json:"game_id"`
	WinnerID   string         `json:"winner_id,omitempty"`
	WinnerName string         `json:"winner_name,omitempty"`
	Scores     map[string]int `json:"scores"`
}

// ==================== Action Payloads ====================

// DeployPayload asks to deploy a new army of Size at (X, Y).
type DeployPayload struct {
	GameID string `json:"game_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Size   int    `json:"size"`
}

// PassPayload ends the sender's turn without deploying.
type PassPayload struct {
	GameID string `json:"game_id"`
}

// ==================== System Payloads ====================

// WelcomePayload is sent on connection.
type WelcomePayload struct {
	ServerVersion string `json:"server_version"`
}
