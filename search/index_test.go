package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chatbois/domain/event"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := OpenIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func indexMessage(t *testing.T, index *Index, chat, sender, content string) {
	t.Helper()
	err := index.IndexMessage(event.MessageAccepted{
		ID:      uuid.New(),
		Chat:    chat,
		Sender:  sender,
		Content: content,
		At:      time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestIndex_Search(t *testing.T) {
	t.Run("should find a message by content", func(t *testing.T) {
		req := require.New(t)
		index := newTestIndex(t)
		indexMessage(t, index, "room1", "alice", "the invoice is due friday")
		indexMessage(t, index, "room1", "bob", "lunch plans anyone")

		hits, err := index.Search(context.Background(), NewSearchQuery("invoice"), []string{"room1"})
		req.NoError(err)
		req.Len(hits, 1)
		req.Equal("alice", hits[0].Sender)
		req.Equal("room1", hits[0].Chat)
		req.Equal("the invoice is due friday", hits[0].Content)
		req.False(hits[0].At.IsZero())
	})

	t.Run("should never leak messages from chats outside the scope", func(t *testing.T) {
		req := require.New(t)
		index := newTestIndex(t)
		indexMessage(t, index, "room1", "alice", "secret invoice")
		indexMessage(t, index, "private", "carol", "secret plans")

		hits, err := index.Search(context.Background(), NewSearchQuery("secret"), []string{"room1"})
		req.NoError(err)
		req.Len(hits, 1)
		req.Equal("room1", hits[0].Chat)
	})

	t.Run("should honor the chat flag within the scope", func(t *testing.T) {
		req := require.New(t)
		index := newTestIndex(t)
		indexMessage(t, index, "room1", "alice", "status update")
		indexMessage(t, index, "room2", "alice", "status update")

		hits, err := index.Search(context.Background(),
			NewSearchQuery("status --chat room2"), []string{"room1", "room2"})
		req.NoError(err)
		req.Len(hits, 1)
		req.Equal("room2", hits[0].Chat)
	})

	t.Run("should return empty results without error for empty scope or terms", func(t *testing.T) {
		req := require.New(t)
		index := newTestIndex(t)
		indexMessage(t, index, "room1", "alice", "something")

		hits, err := index.Search(context.Background(), NewSearchQuery("something"), nil)
		req.NoError(err)
		req.Empty(hits)

		hits, err = index.Search(context.Background(), NewSearchQuery(""), []string{"room1"})
		req.NoError(err)
		req.Empty(hits)
	})

	t.Run("should cap results at the limit", func(t *testing.T) {
		req := require.New(t)
		index := newTestIndex(t)
		for i := 0; i < 5; i++ {
			indexMessage(t, index, "room1", "alice", "ping again")
		}

		hits, err := index.Search(context.Background(),
			NewSearchQuery("ping --limit 2"), []string{"room1"})
		req.NoError(err)
		req.Len(hits, 2)
	})
}
