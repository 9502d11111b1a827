package httpapi

import (
	"context"
	"log/slog"
	"sync"

	"chatbois/domain/event"
	"chatbois/errors"
)

// WsSink is the channel-backed live channel handle the registry holds for a
// websocket connection. Consume is called by the engine's fan-out; the
// connection's write pump drains Events into the socket.
type WsSink struct {
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
	log    *slog.Logger
}

func NewWsSink(log *slog.Logger, bufferSize int) *WsSink {
	return &WsSink{
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
		log:    log,
	}
}

// Consume hands an event to the write pump without ever blocking the fan-out.
// A closed sink reports a transport failure so the engine detaches it; a full
// buffer drops the event (the member still has it in history).
func (s *WsSink) Consume(ctx context.Context, e event.DomainEvent) error {
	// Checked on its own first: in the combined select a ready buffer slot
	// would race the done channel, and a closed sink must never accept.
	select {
	case <-s.done:
		return errors.ErrTransport
	default:
	}

	select {
	case <-s.done:
		return errors.ErrTransport
	case <-ctx.Done():
		return ctx.Err()
	case s.events <- e:
		return nil
	default:
		s.log.Debug("Live channel buffer full, event dropped")
		return nil
	}
}

// Close releases the sink. Safe to call more than once: a superseding attach
// and the connection's own teardown can race here.
func (s *WsSink) Close() {
	s.once.Do(func() { close(s.done) })
}

// Events is drained by the write pump.
func (s *WsSink) Events() <-chan event.DomainEvent {
	return s.events
}

// Done closes when the sink has been superseded or detached.
func (s *WsSink) Done() <-chan struct{} {
	return s.done
}
