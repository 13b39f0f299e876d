package session

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-saga/internal/game"
)

// Inbound event names.
const (
	EventJoinRoom = "join_room"
	EventAction   = "action"
)

// Outbound event names.
const (
	EventSystem        = "system"
	EventPlayerMessage = "player_message"
	EventUpdate        = "update"
	EventError         = "error"
)

// Error codes surfaced to clients.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

// Envelope frames every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinRoom asks to bind a player to the session.
type JoinRoom struct {
	RoomId string       `json:"roomId"`
	Player *game.Player `json:"player"`
}

// Action submits one free-text player action.
type Action struct {
	RoomId   string `json:"roomId"`
	PlayerId string `json:"playerId"`
	Action   string `json:"action"`
}

// System carries a server notice.
type System struct {
	Msg string `json:"msg"`
}

// PlayerMessage echoes a submitted action to the room, ahead of narration.
type PlayerMessage struct {
	PlayerName string `json:"playerName"`
	Action     string `json:"action"`
}

// Update carries a narrative (possibly empty) plus the world snapshot.
type Update struct {
	Narrative  string         `json:"narrative"`
	WorldState *game.Snapshot `json:"worldState"`
}

// ErrorMessage reports a dropped request back to its origin.
type ErrorMessage struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ResetTime int64  `json:"resetTime,omitempty"` // unix millis
}

// ParseInbound decodes one wire message into its tagged variant. Payloads
// are typed here; field-level validation happens in the handlers.
func ParseInbound(data []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	switch env.Type {
	case EventJoinRoom:
		var msg JoinRoom
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", env.Type, err)
		}
		return &msg, nil
	case EventAction:
		var msg Action
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", env.Type, err)
		}
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

func encodeEvent(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", eventType, err)
	}
	data, err := json.Marshal(&Envelope{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", eventType, err)
	}
	return data, nil
}
