package runtime

import (
	"context"
	errs "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatbois/directory"
	"chatbois/domain"
	"chatbois/domain/event"
	"chatbois/errors"
	"chatbois/moderation"
)

type fakeSnapshotRepo struct {
	stored []directory.Snapshot
	err    error
}

func (f *fakeSnapshotRepo) Store(snap directory.Snapshot) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, snap)
	return nil
}

func (f *fakeSnapshotRepo) Load() (directory.Snapshot, bool, error) {
	if len(f.stored) == 0 {
		return directory.Snapshot{}, false, nil
	}
	return f.stored[len(f.stored)-1], true, nil
}

// trackingSnapshotRepo measures store concurrency and keeps the written
// snapshots in arrival order.
type trackingSnapshotRepo struct {
	mu          sync.Mutex
	stored      []directory.Snapshot
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (r *trackingSnapshotRepo) Store(snap directory.Snapshot) error {
	n := r.inFlight.Add(1)
	for {
		max := r.maxInFlight.Load()
		if n <= max || r.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	time.Sleep(time.Millisecond) // widen the overlap window

	r.mu.Lock()
	r.stored = append(r.stored, snap)
	r.mu.Unlock()

	r.inFlight.Add(-1)
	return nil
}

func (r *trackingSnapshotRepo) Load() (directory.Snapshot, bool, error) {
	return directory.Snapshot{}, false, nil
}

type failingSink struct {
	err error
}

func (f *failingSink) Consume(context.Context, event.DomainEvent) error { return f.err }
func (f *failingSink) Close()                                           {}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOrchestrator(t *testing.T, repo *fakeSnapshotRepo) (*Orchestrator, *Registry) {
	t.Helper()
	registry := NewRegistry()
	moderator, err := moderation.NewModerator([]string{"heck"}, '*')
	require.NoError(t, err)
	return NewOrchestrator(testLogger(), directory.New(10), registry, repo, &moderator, 16), registry
}

func TestOrchestrator_SendMessage(t *testing.T) {
	t.Run("should push the message to every attached member", func(t *testing.T) {
		req := require.New(t)
		orchestrator, _ := newTestOrchestrator(t, &fakeSnapshotRepo{})
		_, err := orchestrator.Register("alice")
		req.NoError(err)
		_, err = orchestrator.Register("bob")
		req.NoError(err)
		_, err = orchestrator.CreateChat("room1", "alice", []string{"alice", "bob"})
		req.NoError(err)

		aliceSink := &fakeSink{}
		bobSink := &fakeSink{}
		_, err = orchestrator.Attach("alice", aliceSink)
		req.NoError(err)
		_, err = orchestrator.Attach("bob", bobSink)
		req.NoError(err)

		err = orchestrator.SendMessage(context.Background(), domain.Message{
			Sender: "alice", Dest: "room1", Content: "hello",
		})
		req.NoError(err)

		req.Len(aliceSink.consumed, 1)
		req.Len(bobSink.consumed, 1)
		accepted := bobSink.consumed[0].(event.MessageAccepted)
		req.Equal("room1", accepted.Chat)
		req.Equal("alice", accepted.Sender)
		req.Equal("hello", accepted.Content)
	})

	t.Run("should not fail for an offline member", func(t *testing.T) {
		req := require.New(t)
		orchestrator, _ := newTestOrchestrator(t, &fakeSnapshotRepo{})
		_, _ = orchestrator.Register("alice")
		_, _ = orchestrator.Register("bob")
		_, err := orchestrator.CreateChat("room1", "alice", []string{"alice", "bob"})
		req.NoError(err)

		// Nobody is attached
		err = orchestrator.SendMessage(context.Background(), domain.Message{
			Sender: "alice", Dest: "room1", Content: "into the void",
		})
		req.NoError(err)
	})

	t.Run("should detach a failing recipient without touching the others", func(t *testing.T) {
		req := require.New(t)
		orchestrator, registry := newTestOrchestrator(t, &fakeSnapshotRepo{})
		_, _ = orchestrator.Register("alice")
		_, _ = orchestrator.Register("bob")
		_, err := orchestrator.CreateChat("room1", "alice", []string{"alice", "bob"})
		req.NoError(err)

		broken := &failingSink{err: errors.ErrTransport}
		healthy := &fakeSink{}
		_, err = orchestrator.Attach("alice", broken)
		req.NoError(err)
		_, err = orchestrator.Attach("bob", healthy)
		req.NoError(err)

		err = orchestrator.SendMessage(context.Background(), domain.Message{
			Sender: "bob", Dest: "room1", Content: "still here",
		})
		req.NoError(err)

		// The broken channel is gone, the healthy one got the message
		_, _, ok := registry.Lookup("alice")
		req.False(ok)
		req.Len(healthy.consumed, 1)
	})

	t.Run("should report a persistence failure but keep the message", func(t *testing.T) {
		req := require.New(t)
		repo := &fakeSnapshotRepo{}
		orchestrator, _ := newTestOrchestrator(t, repo)
		token, err := orchestrator.Register("alice")
		req.NoError(err)
		_, err = orchestrator.CreateChat("room1", "alice", []string{"alice"})
		req.NoError(err)

		sink := &fakeSink{}
		_, err = orchestrator.Attach("alice", sink)
		req.NoError(err)

		// When the snapshot store starts failing
		repo.err = errs.New("disk on fire")
		err = orchestrator.SendMessage(context.Background(), domain.Message{
			Sender: "alice", Dest: "room1", Content: "must survive",
		})

		// Then the failure is reported
		req.ErrorIs(err, errors.ErrPersistence)

		// And the message was still accepted and broadcast
		req.Len(sink.consumed, 1)
		chats, err := orchestrator.GetChats("alice", token)
		req.NoError(err)
		req.Len(chats[0].History, 1)
		req.Equal("must survive", chats[0].History[0].Content)
	})

	t.Run("should mask censored words before acceptance", func(t *testing.T) {
		req := require.New(t)
		orchestrator, _ := newTestOrchestrator(t, &fakeSnapshotRepo{})
		token, _ := orchestrator.Register("alice")
		_, err := orchestrator.CreateChat("room1", "alice", []string{"alice"})
		req.NoError(err)

		sink := &fakeSink{}
		_, err = orchestrator.Attach("alice", sink)
		req.NoError(err)

		err = orchestrator.SendMessage(context.Background(), domain.Message{
			Sender: "alice", Dest: "room1", Content: "what the heck",
		})
		req.NoError(err)

		// The masked form reaches both history and the live channel
		chats, err := orchestrator.GetChats("alice", token)
		req.NoError(err)
		req.Equal("what the ****", chats[0].History[0].Content)
		req.Equal("what the ****", sink.consumed[0].(event.MessageAccepted).Content)
	})

	t.Run("should reject an unauthorized sender before persisting", func(t *testing.T) {
		req := require.New(t)
		repo := &fakeSnapshotRepo{}
		orchestrator, _ := newTestOrchestrator(t, repo)
		_, _ = orchestrator.Register("alice")
		_, _ = orchestrator.Register("carol")
		_, err := orchestrator.CreateChat("room1", "alice", []string{"alice"})
		req.NoError(err)
		before := len(repo.stored)

		err = orchestrator.SendMessage(context.Background(), domain.Message{
			Sender: "carol", Dest: "room1", Content: "let me in",
		})

		req.ErrorIs(err, errors.ErrUnauthorized)
		req.Len(repo.stored, before)
	})

	t.Run("should write snapshots one at a time and never regress them", func(t *testing.T) {
		req := require.New(t)
		repo := &trackingSnapshotRepo{}
		registry := NewRegistry()
		moderator, err := moderation.NewModerator([]string{"heck"}, '*')
		req.NoError(err)
		orchestrator := NewOrchestrator(testLogger(), directory.New(10), registry, repo, &moderator, 64)
		_, err = orchestrator.Register("alice")
		req.NoError(err)
		_, err = orchestrator.CreateChat("room1", "alice", []string{"alice"})
		req.NoError(err)

		// When 20 senders race through the pipeline
		sends := 20
		var wg sync.WaitGroup
		for i := 0; i < sends; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := orchestrator.SendMessage(context.Background(), domain.Message{
					Sender: "alice", Dest: "room1", Content: fmt.Sprintf("msg-%d", i),
				})
				req.NoError(err)
			}(i)
		}
		wg.Wait()

		// Then the store only ever saw one writer
		req.Equal(int32(1), repo.maxInFlight.Load())

		// And written snapshots are strictly fresher each time, with the last
		// one carrying the complete history
		req.NotEmpty(repo.stored)
		for i := 1; i < len(repo.stored); i++ {
			req.Greater(repo.stored[i].Version, repo.stored[i-1].Version)
		}
		last := repo.stored[len(repo.stored)-1]
		req.Len(last.Chats["room1"].History, sends)
	})

	t.Run("should publish accepted events for side-effect consumers", func(t *testing.T) {
		req := require.New(t)
		orchestrator, _ := newTestOrchestrator(t, &fakeSnapshotRepo{})
		_, _ = orchestrator.Register("alice")
		_, err := orchestrator.CreateChat("room1", "alice", []string{"alice"})
		req.NoError(err)

		err = orchestrator.SendMessage(context.Background(), domain.Message{
			Sender: "alice", Dest: "room1", Content: "index me",
		})
		req.NoError(err)

		select {
		case e := <-orchestrator.Accepted():
			req.Equal("index me", e.(event.MessageAccepted).Content)
		default:
			req.Fail("expected an accepted event on the stream")
		}
	})
}

func TestOrchestrator_Register(t *testing.T) {
	t.Run("should snapshot after each accepted registration", func(t *testing.T) {
		req := require.New(t)
		repo := &fakeSnapshotRepo{}
		orchestrator, _ := newTestOrchestrator(t, repo)

		_, err := orchestrator.Register("alice")
		req.NoError(err)
		req.Len(repo.stored, 1)
		req.Contains(repo.stored[0].Users, "alice")
	})
}

func TestOrchestrator_Lock(t *testing.T) {
	t.Run("should require a registered caller", func(t *testing.T) {
		req := require.New(t)
		orchestrator, _ := newTestOrchestrator(t, &fakeSnapshotRepo{})

		_, err := orchestrator.Lock("ghost")
		req.ErrorIs(err, errors.ErrForbidden)
	})

	t.Run("should make Info fail while locked", func(t *testing.T) {
		req := require.New(t)
		orchestrator, _ := newTestOrchestrator(t, &fakeSnapshotRepo{})
		_, _ = orchestrator.Register("alice")

		locked, err := orchestrator.Lock("alice")
		req.NoError(err)
		req.True(locked)
		req.ErrorIs(orchestrator.Info(), errors.ErrCapacityExceeded)

		locked, err = orchestrator.Unlock("alice")
		req.NoError(err)
		req.False(locked)
		req.NoError(orchestrator.Info())
	})
}

func TestOrchestrator_Attach(t *testing.T) {
	t.Run("should reject an unknown username", func(t *testing.T) {
		req := require.New(t)
		orchestrator, _ := newTestOrchestrator(t, &fakeSnapshotRepo{})

		_, err := orchestrator.Attach("ghost", &fakeSink{})
		req.ErrorIs(err, errors.ErrForbidden)
	})
}
