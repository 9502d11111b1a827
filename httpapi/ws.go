package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"chatbois/domain/event"
)

// handleConnect upgrades the request to a websocket and holds it open as the
// user's live channel. The connection's only core-visible effects are the
// attach here and the detach on teardown; teardown is driven by the socket
// closing, never by polling.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "username", username, "error", err)
		return
	}

	sink := NewWsSink(s.log, s.connectionBufferSize)
	gen, err := s.service.Attach(username, sink)
	if err != nil {
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown username"), deadline)
		_ = conn.Close()
		return
	}
	defer func() {
		s.service.Detach(username, gen)
		_ = conn.Close()
	}()

	// The read loop exists only to observe closure; inbound frames carry
	// nothing the core cares about.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-readerDone:
			return
		case <-sink.Done():
			// Superseded by a newer connection for the same username.
			return
		case e := <-sink.Events():
			msg, ok := e.(event.MessageAccepted)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(toWireMessage(msg)); err != nil {
				s.log.Warn("Live channel write failed", "username", username, "error", err)
				return
			}
		}
	}
}
