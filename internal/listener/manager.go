package listener

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pixil98/go-saga/internal/messaging"
	"github.com/pixil98/go-saga/internal/session"
)

// outboundBuffer bounds the per-connection write queue. A slow reader drops
// broadcasts rather than stalling the bus.
const outboundBuffer = 64

// ConnectionManager turns accepted websocket connections into protocol
// sessions and pumps bus messages back out to them.
type ConnectionManager struct {
	sessions *session.Manager
	pub      *messaging.RoomPublisher
}

func NewConnectionManager(sessions *session.Manager, pub *messaging.RoomPublisher) *ConnectionManager {
	return &ConnectionManager{
		sessions: sessions,
		pub:      pub,
	}
}

// Ready is closed once the bus behind the publisher accepts subscriptions.
func (m *ConnectionManager) Ready() <-chan struct{} {
	return m.pub.Ready()
}

// AcceptConnection owns the connection's whole lifetime: one goroutine
// writes, the read loop dispatches each inbound event as its own task, and
// the session is torn down when the read loop ends.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn *websocket.Conn, remoteAddr string) {
	connId := uuid.NewString()
	msgs := make(chan []byte, outboundBuffer)

	deliver := func(data []byte) {
		select {
		case msgs <- data:
		default:
			slog.Warn("dropping message for slow connection", "conn", connId)
		}
	}

	var unsubs []func()
	var unsubMu sync.Mutex

	unsub, err := m.pub.SubscribeConn(connId, deliver)
	if err != nil {
		slog.Error("subscribing connection subject", "conn", connId, "error", err)
		conn.Close()
		return
	}
	unsubs = append(unsubs, unsub)

	sess := m.sessions.NewSession(connId, remoteAddr, func(roomId string) {
		roomUnsub, err := m.pub.SubscribeRoom(roomId, deliver)
		if err != nil {
			slog.Error("subscribing room subject", "conn", connId, "room", roomId, "error", err)
			return
		}
		unsubMu.Lock()
		unsubs = append(unsubs, roomUnsub)
		unsubMu.Unlock()
	})

	writeCtx, stopWriter := context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-writeCtx.Done():
				return
			case data := <-msgs:
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					slog.Warn("writing to connection", "conn", connId, "error", err)
					return
				}
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		// One task per inbound event: the action path suspends on the
		// narration backend, and other events interleave meanwhile.
		go sess.HandleMessage(ctx, payload)
	}

	sess.HandleDisconnect(ctx)

	unsubMu.Lock()
	for _, u := range unsubs {
		u()
	}
	unsubMu.Unlock()

	stopWriter()
	if err := conn.Close(); err != nil {
		slog.Debug("closing connection", "conn", connId, "error", err)
	}
}
