// Package messaging runs the embedded NATS server that fans session events
// out to connections. Every connection subscribes to its room subject plus
// a private subject for errors addressed to it alone.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-log"
)

type NatsServer struct {
	ns    *server.Server
	conn  *nats.Conn
	ready chan struct{}

	startupTimeout time.Duration
	host           string
	port           int
}

type NatsServerOpt func(*NatsServer)

func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(s *NatsServer) {
		s.startupTimeout = d
	}
}

func WithHost(host string) NatsServerOpt {
	return func(s *NatsServer) {
		s.host = host
	}
}

func WithPort(port int) NatsServerOpt {
	return func(s *NatsServer) {
		s.port = port
	}
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		ready:          make(chan struct{}),
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})

	s.ns = ns

	if err != nil {
		return nil, err
	}

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {

	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	// Create internal client connection
	conn, err := nats.Connect(n.ns.ClientURL())
	if err != nil {
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.conn = conn
	close(n.ready)

	log.GetLogger(ctx).Infof("nats server listening on %s", n.ns.Addr())

	<-ctx.Done()
	n.conn.Close()
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// Ready is closed once the internal client connection is established and
// subscriptions can be taken. Workers start concurrently, so anything that
// accepts traffic must wait on this.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	if n.conn == nil {
		return nil, fmt.Errorf("nats server not started")
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	if n.conn == nil {
		return fmt.Errorf("nats server not started")
	}
	return n.conn.Publish(subject, data)
}
