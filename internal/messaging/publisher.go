package messaging

import "fmt"

// Bus is the subject-level pubsub the publisher rides on.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
	Ready() <-chan struct{}
}

// RoomPublisher maps session-level delivery onto NATS subjects: one shared
// subject per room, one private subject per connection.
type RoomPublisher struct {
	bus Bus
}

func NewRoomPublisher(bus Bus) *RoomPublisher {
	return &RoomPublisher{bus: bus}
}

// Ready is closed once the bus accepts subscriptions.
func (p *RoomPublisher) Ready() <-chan struct{} {
	return p.bus.Ready()
}

// Broadcast delivers an encoded event to every subscriber of a room.
func (p *RoomPublisher) Broadcast(roomId string, data []byte) error {
	return p.bus.Publish(RoomSubject(roomId), data)
}

// Send delivers an encoded event to a single connection.
func (p *RoomPublisher) Send(connId string, data []byte) error {
	return p.bus.Publish(ConnSubject(connId), data)
}

// SubscribeRoom attaches a connection to a room's broadcast stream.
func (p *RoomPublisher) SubscribeRoom(roomId string, handler func(data []byte)) (func(), error) {
	return p.bus.Subscribe(RoomSubject(roomId), handler)
}

// SubscribeConn attaches a connection to its private stream.
func (p *RoomPublisher) SubscribeConn(connId string, handler func(data []byte)) (func(), error) {
	return p.bus.Subscribe(ConnSubject(connId), handler)
}

func RoomSubject(roomId string) string {
	return fmt.Sprintf("room.%s", roomId)
}

func ConnSubject(connId string) string {
	return fmt.Sprintf("conn.%s", connId)
}
