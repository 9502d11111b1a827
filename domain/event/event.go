package event

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything the engine can hand to a sink after a message has
// been accepted into a chat's history.
type DomainEvent interface {
	ChatName() string
}

// MessageAccepted is emitted once per accepted message, after the directory
// append and before fan-out. ID and At are assigned by the server at
// acceptance, never by the client.
type MessageAccepted struct {
	ID      uuid.UUID
	Chat    string
	Sender  string
	Content string
	At      time.Time
}

func (m MessageAccepted) ChatName() string {
	return m.Chat
}
