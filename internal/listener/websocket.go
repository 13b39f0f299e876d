package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-log"
)

type WebsocketListener struct {
	port     uint16
	path     string
	cm       *ConnectionManager
	upgrader websocket.Upgrader
}

func NewWebsocketListener(port uint16, path string, cm *ConnectionManager) *WebsocketListener {
	return &WebsocketListener{
		port: port,
		path: path,
		cm:   cm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identity lives in the payload, not the origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	// Workers start concurrently. Hold accepts until the bus can take
	// subscriptions, otherwise an early connection would be dropped.
	select {
	case <-l.cm.Ready():
	case <-ctx.Done():
		return nil
	}

	// Create a cancelable context for all connections
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()
	connCtx = log.SetLogger(connCtx, log.GetLogger(ctx))

	mux := http.NewServeMux()
	mux.HandleFunc(l.path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := l.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.GetLogger(ctx).Errorf("upgrading connection from %s: %s", r.RemoteAddr, err)
			return
		}
		l.cm.AcceptConnection(connCtx, conn, remoteHost(r.RemoteAddr))
	})

	svr := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: mux,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	// When parent context is canceled, stop accepting and cancel all connections
	go func() {
		select {
		case <-ctx.Done():
			cancelConns()
			if err := svr.Shutdown(context.Background()); err != nil {
				log.GetLogger(ctx).Errorf("shutting down websocket server: %s", err)
			}
		case <-done:
			// Start returned (likely with error) - nothing to stop
		}
	}()

	err := svr.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	return nil
}

// remoteHost strips the ephemeral port so rate limiting keys on the source
// address alone.
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
