//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"

	"chatbois/contract"
	"chatbois/domain"
	"chatbois/runtime"
)

// IChatService is the request-handler capability transports depend on.
// Alternate transports (HTTP today, anything else tomorrow) only ever see
// this interface, never the engine.
type IChatService interface {
	Info() error
	Register(username string) (string, error)
	CreateChat(name, creator string, members []string) ([]string, error)
	SendMessage(ctx context.Context, msg domain.Message) error
	Lock(caller string) (bool, error)
	Unlock(caller string) (bool, error)
	AdjustCapacity(caller string, delta int) (int, error)
	GetChats(username, token string) ([]domain.Chat, error)
	Attach(username string, sink contract.PushSink) (uint64, error)
	Detach(username string, gen uint64)
}

var _ IChatService = (*ChatService)(nil)

type ChatService struct {
	orchestrator *runtime.Orchestrator
}

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) Info() error {
	return s.orchestrator.Info()
}

func (s *ChatService) Register(username string) (string, error) {
	return s.orchestrator.Register(username)
}

func (s *ChatService) CreateChat(name, creator string, members []string) ([]string, error) {
	return s.orchestrator.CreateChat(name, creator, members)
}

func (s *ChatService) SendMessage(ctx context.Context, msg domain.Message) error {
	return s.orchestrator.SendMessage(ctx, msg)
}

func (s *ChatService) Lock(caller string) (bool, error) {
	return s.orchestrator.Lock(caller)
}

func (s *ChatService) Unlock(caller string) (bool, error) {
	return s.orchestrator.Unlock(caller)
}

func (s *ChatService) AdjustCapacity(caller string, delta int) (int, error) {
	return s.orchestrator.AdjustCapacity(caller, delta)
}

func (s *ChatService) GetChats(username, token string) ([]domain.Chat, error) {
	return s.orchestrator.GetChats(username, token)
}

func (s *ChatService) Attach(username string, sink contract.PushSink) (uint64, error) {
	return s.orchestrator.Attach(username, sink)
}

func (s *ChatService) Detach(username string, gen uint64) {
	s.orchestrator.Detach(username, gen)
}
