package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"chatbois/domain"
	"chatbois/errors"
	"chatbois/search"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Info(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, InfoResponse{
		HTTPEndpoint: s.httpEndpoint,
		WsEndpoint:   s.wsEndpoint,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	token, err := s.service.Register(username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, RegisterResponse{Username: username, Token: token})
}

func (s *Server) handleMakeChat(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	creator, chatname := vars["username"], vars["chatname"]

	var req CreateChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	members, err := s.service.CreateChat(chatname, creator, req.Members)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, CreateChatResponse{Chatname: chatname, Members: members})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.service.SendMessage(r.Context(), req.toMessage()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SendMessageResponse{Delivered: true})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	locked, err := s.service.Lock(mux.Vars(r)["username"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, LockResponse{Locked: locked})
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	locked, err := s.service.Unlock(mux.Vars(r)["username"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, LockResponse{Locked: locked})
}

func (s *Server) handleAdjustCapacity(w http.ResponseWriter, r *http.Request) {
	var req CapacityRequest
	if !s.decode(w, r, &req) {
		return
	}

	maxUsers, err := s.service.AdjustCapacity(mux.Vars(r)["username"], req.Delta)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, CapacityResponse{MaxUsers: maxUsers})
}

func (s *Server) handleGetChats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username, token := vars["username"], vars["token"]

	chats, err := s.service.GetChats(username, token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, GetChatsResponse{
		Username: username,
		NoChats:  len(chats) == 0,
		Chats:    chats,
	})
}

// handleSearch runs a full-text query scoped to the chats the authenticated
// caller belongs to. Credentials are checked the same way as get_chats.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username, token := vars["username"], vars["token"]

	chats, err := s.service.GetChats(username, token)
	if err != nil {
		s.writeError(w, err)
		return
	}

	query := search.NewSearchQuery(r.URL.Query().Get("q"))
	chatNames := lo.Map(chats, func(c domain.Chat, _ int) string { return c.Name })

	hits, err := s.index.Search(r.Context(), query, chatNames)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Query: query.RawInput, Hits: hits})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
		return false
	}
	if err := s.validate.Struct(payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Response encoding failed", "error", err)
	}
}
