// Package session implements the connection-level protocol: it wires
// inbound events to validation, throttling, the world state and the
// narrator, and drives outbound broadcasts.
package session

import (
	"context"

	"github.com/pixil98/go-saga/internal/game"
	"github.com/pixil98/go-saga/internal/ratelimit"
	"github.com/pixil98/go-saga/internal/validate"
)

// Publisher delivers encoded events to a whole room or a single connection.
type Publisher interface {
	Broadcast(roomId string, data []byte) error
	Send(connId string, data []byte) error
}

// Generator produces narrative text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Manager owns the shared session state and hands out one Session per
// connection.
type Manager struct {
	world    *game.WorldState
	limits   *ratelimit.Set
	narrator Generator
	pub      Publisher

	maxActionLen int
}

type ManagerOpt func(*Manager)

// WithMaxActionLen overrides the action text length bound.
func WithMaxActionLen(max int) ManagerOpt {
	return func(m *Manager) {
		if max > 0 {
			m.maxActionLen = max
		}
	}
}

func NewManager(world *game.WorldState, limits *ratelimit.Set, narrator Generator, pub Publisher, opts ...ManagerOpt) *Manager {
	m := &Manager{
		world:        world,
		limits:       limits,
		narrator:     narrator,
		pub:          pub,
		maxActionLen: validate.DefaultMaxActionLen,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// NewSession binds a freshly accepted connection. The remote address keys
// the rate limiters; onJoin fires once the session enters a room so the
// transport can attach the connection to that room's broadcast stream.
func (m *Manager) NewSession(connId, remoteAddr string, onJoin func(roomId string)) *Session {
	return &Session{
		mgr:        m,
		id:         connId,
		remoteAddr: remoteAddr,
		onJoin:     onJoin,
		state:      StateConnected,
	}
}
