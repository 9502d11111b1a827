package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chatbois/directory"
	"chatbois/domain"
	"chatbois/domain/event"
	"chatbois/errors"
	"chatbois/moderation"
	"chatbois/runtime"
)

type stubSnapshots struct{}

func (stubSnapshots) Store(directory.Snapshot) error { return nil }
func (stubSnapshots) Load() (directory.Snapshot, bool, error) {
	return directory.Snapshot{}, false, nil
}

type recordingSink struct {
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Close() {}

func newTestService(t *testing.T) IChatService {
	t.Helper()
	moderator, err := moderation.NewModerator([]string{"heck"}, '*')
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := runtime.NewOrchestrator(log, directory.New(5), runtime.NewRegistry(),
		stubSnapshots{}, &moderator, 8)
	return NewChatService(orchestrator)
}

func TestChatService(t *testing.T) {
	t.Run("should carry every operation through to the engine", func(t *testing.T) {
		req := require.New(t)
		service := newTestService(t)

		req.NoError(service.Info())

		token, err := service.Register("alice")
		req.NoError(err)
		req.NotEmpty(token)

		members, err := service.CreateChat("room1", "alice", []string{"alice"})
		req.NoError(err)
		req.Equal([]string{"alice"}, members)

		sink := &recordingSink{}
		gen, err := service.Attach("alice", sink)
		req.NoError(err)

		req.NoError(service.SendMessage(context.Background(), domain.Message{
			Sender: "alice", Dest: "room1", Content: "hello",
		}))
		req.Len(sink.events, 1)

		chats, err := service.GetChats("alice", token)
		req.NoError(err)
		req.Len(chats, 1)
		req.Equal("hello", chats[0].History[0].Content)

		capacity, err := service.AdjustCapacity("alice", 5)
		req.NoError(err)
		req.Equal(10, capacity)

		locked, err := service.Lock("alice")
		req.NoError(err)
		req.True(locked)
		req.ErrorIs(service.Info(), errors.ErrCapacityExceeded)

		locked, err = service.Unlock("alice")
		req.NoError(err)
		req.False(locked)

		service.Detach("alice", gen)
		req.NoError(service.SendMessage(context.Background(), domain.Message{
			Sender: "alice", Dest: "room1", Content: "offline now",
		}))
		req.Len(sink.events, 1)
	})
}
