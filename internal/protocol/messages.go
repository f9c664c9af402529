// Package protocol defines the network message types for client-server communication.
package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the type of message.
type MessageType string

// Authentication message types
const (
	TypeAuthenticate MessageType = "authenticate"
	TypeAuthResult   MessageType = "auth_result"
)

// Lobby message types
const (
	TypeCreateGame  MessageType = "create_game"
	TypeGameCreated MessageType = "game_created"
	TypeJoinGame    MessageType = "join_game"
	TypeJoinedGame  MessageType = "joined_game"
	TypeStartGame   MessageType = "start_game"
	TypeListGames   MessageType = "list_games"
	TypeGameList    MessageType = "game_list"
)

// Game flow message types
const (
	TypeGameStarted  MessageType = "game_started"
	TypeTurnChanged  MessageType = "turn_changed"
	TypeDeployResult MessageType = "deploy_result"
	TypeGetState     MessageType = "get_state"
	TypeGameState    MessageType = "game_state"
	TypeGameEnded    MessageType = "game_ended"
	TypeGetHistory   MessageType = "get_history"
	TypeGameHistory  MessageType = "game_history"
)

// Action message types
const (
	TypeDeploy MessageType = "deploy"
	TypePass   MessageType = "pass"
)

// System message types
const (
	TypeWelcome MessageType = "welcome"
	TypeError   MessageType = "error"
	TypePing    MessageType = "ping"
	TypePong    MessageType = "pong"
)

// Message is the envelope for all messages.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	}, nil
}

// ParsePayload unmarshals the payload into the given type.
func (m *Message) ParsePayload(v interface{}) error {
	return json.Unmarshal(m.Payload, v)
}

// ErrorCode represents an error type.
type ErrorCode string

const (
	ErrCodeUnknownLocation  ErrorCode = "unknown_location"
	ErrCodeIllegalAction    ErrorCode = "illegal_action"
	ErrCodeInvalidArgument  ErrorCode = "invalid_argument"
	ErrCodeNotYourTurn      ErrorCode = "not_your_turn"
	ErrCodeMatchOver        ErrorCode = "match_over"
	ErrCodeGameNotFound     ErrorCode = "game_not_found"
	ErrCodeLobbyFull        ErrorCode = "lobby_full"
	ErrCodeNotAuthenticated ErrorCode = "not_authenticated"
	ErrCodeInternalError    ErrorCode = "internal_error"
)

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
