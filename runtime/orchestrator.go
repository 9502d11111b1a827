package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatbois/contract"
	"chatbois/directory"
	"chatbois/domain"
	"chatbois/domain/event"
	"chatbois/errors"
	"chatbois/moderation"
	"chatbois/repositories"
)

// Orchestrator is the chat engine: every control-plane operation enters here,
// is validated against the directory, mutates it, triggers a snapshot, and —
// for message sends — fans out to live channels.
//
// The orchestrator owns nothing singleton-shaped: directory, registry and
// snapshot store are injected, so tests run isolated instances side by side.
type Orchestrator struct {
	log       *slog.Logger
	dir       *directory.Directory
	registry  *Registry
	snapshots repositories.ISnapshotRepository
	moderator *moderation.Moderator
	accepted  chan event.DomainEvent

	// storeMu makes the snapshot store single-writer; lastStored is the
	// version of the freshest snapshot committed so far (guarded by storeMu).
	storeMu    sync.Mutex
	lastStored uint64
}

func NewOrchestrator(log *slog.Logger, dir *directory.Directory, registry *Registry,
	snapshots repositories.ISnapshotRepository, moderator *moderation.Moderator,
	bufferSize int) *Orchestrator {
	return &Orchestrator{
		log:       log,
		dir:       dir,
		registry:  registry,
		snapshots: snapshots,
		moderator: moderator,
		accepted:  make(chan event.DomainEvent, bufferSize),
	}
}

// Accepted exposes the stream of accepted-message events for side-effect
// consumers (the search indexer). Best-effort: a slow consumer loses events,
// never blocks acceptance.
func (o *Orchestrator) Accepted() <-chan event.DomainEvent {
	return o.accepted
}

// Info fails the same way registration would, so clients can avoid a doomed
// registration attempt against a full or locked server.
func (o *Orchestrator) Info() error {
	if o.dir.AtCapacity() {
		return errors.ErrCapacityExceeded
	}
	return nil
}

// Register creates a user and returns its token.
func (o *Orchestrator) Register(username string) (string, error) {
	token, err := o.dir.RegisterUser(username)
	if err != nil {
		return "", err
	}
	o.log.Info("User registered", "username", username)
	return token, o.persist()
}

// CreateChat creates a chat and returns the final member list.
func (o *Orchestrator) CreateChat(name, creator string, members []string) ([]string, error) {
	final, err := o.dir.CreateChat(name, creator, members)
	if err != nil {
		return nil, err
	}
	o.log.Info("Chat created", "chat", name, "members", final)
	return final, o.persist()
}

// SendMessage runs the Accepted -> Persisted -> Broadcast pipeline.
//
// Acceptance (directory validation + history append) is the commit point:
// once it succeeds the message is visible in memory and stays there even if
// the snapshot write fails — durability is best-effort and its failure is
// reported to the caller, never undone. Broadcast reachability is independent
// of both: an offline or broken recipient never fails the send.
func (o *Orchestrator) SendMessage(ctx context.Context, msg domain.Message) error {
	if o.moderator != nil {
		masked := o.moderator.Censor(msg.Content)
		if masked != msg.Content {
			o.log.Debug("Message content masked",
				"chat", msg.Dest,
				"lang", moderation.DetectLanguage(msg.Content))
			msg.Content = masked
		}
	}

	if err := o.dir.AppendMessage(msg); err != nil {
		return err
	}

	persistErr := o.persist()

	evt := event.MessageAccepted{
		ID:      uuid.New(),
		Chat:    msg.Dest,
		Sender:  msg.Sender,
		Content: msg.Content,
		At:      time.Now().UTC(),
	}
	o.broadcast(ctx, evt)

	select {
	case o.accepted <- evt:
	default:
		o.log.Debug("Accepted-event consumer lagging, event lost", "chat", evt.Chat)
	}

	return persistErr
}

// broadcast scatters one accepted message over the destination chat's member
// set. Each recipient is an independent unit of work: a missing sink means the
// member is offline and will catch up from history, a failing sink is detached
// and its connection torn down, and neither outcome touches the other members.
func (o *Orchestrator) broadcast(ctx context.Context, evt event.MessageAccepted) {
	members, ok := o.dir.MembersOf(evt.Chat)
	if !ok {
		return
	}
	for _, member := range members {
		sink, gen, online := o.registry.Lookup(member)
		if !online {
			continue
		}
		if err := sink.Consume(ctx, evt); err != nil {
			o.log.Warn("Dropping unreachable live channel",
				"username", member, "chat", evt.Chat, "error", err)
			o.registry.Detach(member, gen)
		}
	}
}

// Lock closes the server to new registrations. Any registered user may do
// this; there is no admin role.
func (o *Orchestrator) Lock(caller string) (bool, error) {
	if !o.dir.KnownUser(caller) {
		return false, errors.ErrForbidden
	}
	o.log.Info("Server locked", "by", caller)
	return o.dir.SetLocked(true), nil
}

// Unlock reopens the server to new registrations.
func (o *Orchestrator) Unlock(caller string) (bool, error) {
	if !o.dir.KnownUser(caller) {
		return false, errors.ErrForbidden
	}
	o.log.Info("Server unlocked", "by", caller)
	return o.dir.SetLocked(false), nil
}

// AdjustCapacity shifts the registration ceiling and returns the new value.
func (o *Orchestrator) AdjustCapacity(caller string, delta int) (int, error) {
	if !o.dir.KnownUser(caller) {
		return 0, errors.ErrForbidden
	}
	capacity := o.dir.AdjustCapacity(delta)
	o.log.Info("Capacity adjusted", "by", caller, "delta", delta, "capacity", capacity)
	return capacity, nil
}

// GetChats returns the caller's chats with full history after a token check.
func (o *Orchestrator) GetChats(username, token string) ([]domain.Chat, error) {
	return o.dir.ChatsFor(username, token)
}

// Attach installs sink as username's live channel, superseding any previous
// connection. Unknown usernames are rejected.
func (o *Orchestrator) Attach(username string, sink contract.PushSink) (uint64, error) {
	if !o.dir.KnownUser(username) {
		return 0, errors.ErrForbidden
	}
	gen := o.registry.Attach(username, sink)
	o.log.Info("Live channel attached", "username", username)
	return gen, nil
}

// Detach is the teardown side effect of a disconnect, driven by the transport
// signaling closure. Idempotent, and a stale generation is ignored.
func (o *Orchestrator) Detach(username string, gen uint64) {
	o.registry.Detach(username, gen)
	o.log.Info("Live channel detached", "username", username)
}

// Flush writes a snapshot outside the per-mutation cadence: the autosave
// worker and the shutdown path call it.
func (o *Orchestrator) Flush() error {
	return o.persist()
}

// persist writes the current directory state through the single-writer gate.
// Concurrent mutations each capture their own snapshot, but stores happen one
// at a time and in version order: a snapshot older than the freshest one
// already committed is skipped, so a slow caller can never regress durable
// rows with stale state.
func (o *Orchestrator) persist() error {
	snap := o.dir.Snapshot()

	o.storeMu.Lock()
	defer o.storeMu.Unlock()

	if snap.Version <= o.lastStored {
		return nil
	}
	if err := o.snapshots.Store(snap); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	o.lastStored = snap.Version
	return nil
}
