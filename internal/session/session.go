package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-saga/internal/game"
	"github.com/pixil98/go-saga/internal/narrate"
	"github.com/pixil98/go-saga/internal/validate"
)

// State tracks where a connection is in its lifecycle.
type State int

const (
	StateConnected State = iota // no player bound yet
	StateJoining                // join claimed, not yet bound
	StateJoined                 // player bound, session active
	StateClosed                 // terminal, after disconnect
)

// Session is the per-connection protocol state machine. Each inbound event
// runs as its own task; the mutex covers the small state fields while the
// world state guards itself.
type Session struct {
	mgr        *Manager
	id         string
	remoteAddr string
	onJoin     func(roomId string)

	mu     sync.Mutex
	state  State
	roomId string
}

// HandleMessage dispatches one inbound wire message. Failures never close
// the connection: typed errors go back to the originating client, anything
// unexpected is logged in full and reported generically.
func (s *Session) HandleMessage(ctx context.Context, data []byte) {
	msg, err := ParseInbound(data)
	if err != nil {
		s.sendError(ctx, &ErrorMessage{Code: CodeValidation, Message: "malformed message"})
		slog.DebugContext(ctx, "discarding malformed message", "conn", s.id, "error", err)
		return
	}

	switch m := msg.(type) {
	case *JoinRoom:
		err = s.handleJoin(ctx, m)
	case *Action:
		err = s.handleAction(ctx, m)
	}
	if err == nil {
		return
	}

	var verr *validate.Error
	var rerr *rateLimitError
	switch {
	case errors.As(err, &verr):
		s.sendError(ctx, &ErrorMessage{Code: CodeValidation, Message: verr.Message})
	case errors.As(err, &rerr):
		s.sendError(ctx, &ErrorMessage{
			Code:      CodeRateLimit,
			Message:   rerr.message,
			ResetTime: rerr.resetTime.UnixMilli(),
		})
	case errors.Is(err, game.ErrPlayerNotFound):
		s.sendError(ctx, &ErrorMessage{Code: CodePlayerNotFound, Message: "player not found"})
	default:
		slog.ErrorContext(ctx, "handling session event", "conn", s.id, "error", err)
		s.sendError(ctx, &ErrorMessage{Code: CodeInternal, Message: "internal error"})
	}
}

func (s *Session) handleJoin(ctx context.Context, msg *JoinRoom) (err error) {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return &validate.Error{Field: "join_room", Message: "already joined"}
	}
	// Claim the join under the lock so a concurrent join_room on the same
	// connection cannot pass the check too.
	s.state = StateJoining
	s.mu.Unlock()

	// A failed join releases the claim so the client can retry.
	defer func() {
		if err != nil {
			s.mu.Lock()
			if s.state == StateJoining {
				s.state = StateConnected
			}
			s.mu.Unlock()
		}
	}()

	if !s.mgr.limits.Join.Allow(s.remoteAddr) {
		return &rateLimitError{
			message:   "too many join attempts, wait a minute",
			resetTime: s.mgr.limits.Join.ResetTime(s.remoteAddr),
		}
	}

	roomId, err := validate.RoomId(msg.RoomId, "roomId")
	if err != nil {
		return err
	}
	if err := validate.Player(msg.Player, "player"); err != nil {
		return err
	}

	s.mgr.world.Join(msg.Player, s.id)

	s.mu.Lock()
	s.state = StateJoined
	s.roomId = roomId
	s.mu.Unlock()

	if s.onJoin != nil {
		s.onJoin(roomId)
	}

	s.broadcastSystem(ctx, roomId, fmt.Sprintf("%s joined the game.", msg.Player.Name))

	// The first player of a session lifetime triggers the opening scene.
	if s.mgr.world.PlayerCount() == 1 && !s.mgr.world.SceneGenerated() {
		s.generateWelcome(ctx, roomId)
		return nil
	}

	s.broadcastUpdate(ctx, roomId, "")
	return nil
}

// generateWelcome asks the backend for the opening narrative. The flag is
// set whether or not generation produced text, so each session lifetime
// asks at most once.
func (s *Session) generateWelcome(ctx context.Context, roomId string) {
	narrative := ""

	prompt, err := narrate.WelcomePrompt(s.mgr.world.Snapshot())
	if err != nil {
		slog.ErrorContext(ctx, "building welcome prompt", "conn", s.id, "error", err)
	} else {
		narrative, err = s.mgr.narrator.Generate(ctx, prompt)
		if err != nil {
			slog.WarnContext(ctx, "generating welcome narrative", "conn", s.id, "error", err)
		}
	}

	if narrative != "" {
		s.mgr.world.SetScene(narrative)
	}
	s.mgr.world.MarkSceneGenerated()

	s.broadcastUpdate(ctx, roomId, narrative)
}

func (s *Session) handleAction(ctx context.Context, msg *Action) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == StateClosed {
		return nil
	}
	if state != StateJoined {
		return &validate.Error{Field: "action", Message: "join a room first"}
	}

	if !s.mgr.limits.Action.Allow(s.remoteAddr) {
		return &rateLimitError{
			message:   "too many actions, slow down",
			resetTime: s.mgr.limits.Action.ResetTime(s.remoteAddr),
		}
	}

	roomId, err := validate.RoomId(msg.RoomId, "roomId")
	if err != nil {
		return err
	}
	playerId, err := validate.PlayerId(msg.PlayerId, "playerId")
	if err != nil {
		return err
	}
	action, err := validate.PlayerAction(msg.Action, "action", s.mgr.maxActionLen)
	if err != nil {
		return err
	}

	player := s.mgr.world.Player(playerId)
	if player == nil {
		return game.ErrPlayerNotFound
	}

	// Echo the submitted action right away, independent of narration
	// latency.
	data, err := encodeEvent(EventPlayerMessage, &PlayerMessage{
		PlayerName: player.Name,
		Action:     action,
	})
	if err != nil {
		return err
	}
	if err := s.mgr.pub.Broadcast(roomId, data); err != nil {
		slog.WarnContext(ctx, "broadcasting player message", "conn", s.id, "error", err)
	}

	if _, err := s.mgr.world.RecordAction(playerId, action); err != nil {
		return err
	}

	// Mechanics are already applied; without narration budget the turn
	// simply produces no narrative.
	if !s.mgr.limits.Narration.Allow(s.remoteAddr) {
		return &rateLimitError{
			message:   "narration request limit exceeded, wait a minute",
			resetTime: s.mgr.limits.Narration.ResetTime(s.remoteAddr),
		}
	}

	narrative := ""
	prompt, err := narrate.ActionPrompt(player.Name, action, s.mgr.world.Snapshot())
	if err != nil {
		slog.ErrorContext(ctx, "building action prompt", "conn", s.id, "error", err)
	} else {
		narrative, err = s.mgr.narrator.Generate(ctx, prompt)
		if err != nil {
			slog.WarnContext(ctx, "generating action narrative", "conn", s.id, "error", err)
		}
	}

	if narrative != "" {
		s.mgr.world.SetLastResponse(narrative)
	}

	s.broadcastUpdate(ctx, roomId, narrative)
	return nil
}

// HandleDisconnect tears the session down: the player leaves the world, the
// room hears about it, and an emptied-out session resets to its initial
// state.
func (s *Session) HandleDisconnect(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	roomId := s.roomId
	s.mu.Unlock()

	p := s.mgr.world.Leave(s.id)
	if p == nil {
		return
	}

	s.broadcastSystem(ctx, roomId, fmt.Sprintf("%s left the game.", p.Name))

	if s.mgr.world.ResetIfEmpty() {
		s.broadcastUpdate(ctx, roomId, "")
	}
}

func (s *Session) broadcastSystem(ctx context.Context, roomId, text string) {
	data, err := encodeEvent(EventSystem, &System{Msg: text})
	if err != nil {
		slog.ErrorContext(ctx, "encoding system event", "conn", s.id, "error", err)
		return
	}
	if err := s.mgr.pub.Broadcast(roomId, data); err != nil {
		slog.WarnContext(ctx, "broadcasting system event", "conn", s.id, "error", err)
	}
}

func (s *Session) broadcastUpdate(ctx context.Context, roomId, narrative string) {
	data, err := encodeEvent(EventUpdate, &Update{
		Narrative:  narrative,
		WorldState: s.mgr.world.Snapshot(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "encoding update event", "conn", s.id, "error", err)
		return
	}
	if err := s.mgr.pub.Broadcast(roomId, data); err != nil {
		slog.WarnContext(ctx, "broadcasting update", "conn", s.id, "error", err)
	}
}

func (s *Session) sendError(ctx context.Context, msg *ErrorMessage) {
	data, err := encodeEvent(EventError, msg)
	if err != nil {
		slog.ErrorContext(ctx, "encoding error event", "conn", s.id, "error", err)
		return
	}
	if err := s.mgr.pub.Send(s.id, data); err != nil {
		slog.WarnContext(ctx, "sending error event", "conn", s.id, "error", err)
	}
}
