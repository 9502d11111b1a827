// Package httpapi is the transport adapter: it terminates client connections
// and maps HTTP routes and the websocket live channel onto the chat service.
// Request/response shapes and socket framing live here; invariants do not.
package httpapi

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"chatbois/search"
	"chatbois/services"
)

type Server struct {
	log                  *slog.Logger
	service              services.IChatService
	index                *search.Index
	validate             *validator.Validate
	upgrader             websocket.Upgrader
	httpEndpoint         string
	wsEndpoint           string
	connectionBufferSize int
}

func NewServer(log *slog.Logger, service services.IChatService, index *search.Index,
	httpEndpoint, wsEndpoint string, connectionBufferSize int) *Server {
	return &Server{
		log:                  log,
		service:              service,
		index:                index,
		validate:             validator.New(),
		upgrader:             websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		httpEndpoint:         httpEndpoint,
		wsEndpoint:           wsEndpoint,
		connectionBufferSize: connectionBufferSize,
	}
}

// Router wires every control-plane operation plus the live-channel upgrade.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/info", s.handleInfo).Methods("GET")
	r.HandleFunc("/register/{username}", s.handleRegister).Methods("POST")
	r.HandleFunc("/make_chat/{username}/{chatname}", s.handleMakeChat).Methods("POST")
	r.HandleFunc("/send_message", s.handleSendMessage).Methods("POST")
	r.HandleFunc("/lock_server/{username}", s.handleLock).Methods("POST")
	r.HandleFunc("/unlock_server/{username}", s.handleUnlock).Methods("POST")
	r.HandleFunc("/increment_users/{username}", s.handleAdjustCapacity).Methods("POST")
	r.HandleFunc("/get_chats/{username}/{token}", s.handleGetChats).Methods("GET")
	r.HandleFunc("/search/{username}/{token}", s.handleSearch).Methods("GET")
	r.HandleFunc("/connect/{username}", s.handleConnect).Methods("GET")
	return r
}
