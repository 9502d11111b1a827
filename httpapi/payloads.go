package httpapi

import (
	"time"

	"chatbois/domain"
	"chatbois/domain/event"
	"chatbois/search"
)

type InfoResponse struct {
	HTTPEndpoint string `json:"httpEndpoint"`
	WsEndpoint   string `json:"wsEndpoint"`
}

type RegisterResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type CreateChatRequest struct {
	Members []string `json:"members" validate:"required,min=1,dive,required"`
}

type CreateChatResponse struct {
	Chatname string   `json:"chatname"`
	Members  []string `json:"members"`
}

type SendMessageRequest struct {
	Sender  string `json:"sender" validate:"required"`
	Dest    string `json:"dest" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (r SendMessageRequest) toMessage() domain.Message {
	return domain.Message{Sender: r.Sender, Dest: r.Dest, Content: r.Content}
}

type SendMessageResponse struct {
	Delivered bool `json:"delivered"`
}

type LockResponse struct {
	Locked bool `json:"locked"`
}

type CapacityRequest struct {
	Delta int `json:"delta"`
}

type CapacityResponse struct {
	MaxUsers int `json:"maxUsers"`
}

// GetChatsResponse carries the explicit no-chats marker: valid credentials
// with no memberships is a success, not an empty error.
type GetChatsResponse struct {
	Username string        `json:"username"`
	NoChats  bool          `json:"noChats"`
	Chats    []domain.Chat `json:"chats"`
}

type SearchResponse struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// WireMessage is what the websocket pushes for each accepted message.
type WireMessage struct {
	Chat    string    `json:"chat"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

func toWireMessage(e event.MessageAccepted) WireMessage {
	return WireMessage{Chat: e.Chat, Sender: e.Sender, Content: e.Content, At: e.At}
}
