//go:generate go run go.uber.org/mock/mockgen -source=directory.go -destination=../mocks/mock_directory.go -package=mocks

// Package directory owns the authoritative user and chat state. It is pure
// data plus invariant checks: no I/O, no transport, no goroutines.
//
// Every mutating operation validates then commits inside one critical section
// over the whole directory. Chat creation and message append touch
// cross-referenced fields (a chat's member list and each member's chat list),
// so a single lock keeps the bidirectional membership invariant from ever
// being observable in a half-applied state. Contention is low; correctness of
// the cross-referencing wins over per-entity locking.
package directory

import (
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"chatbois/domain"
	"chatbois/errors"
)

type Directory struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	chats    map[string]*domain.Chat
	locked   bool
	maxUsers int
	// version counts persisted mutations (user/chat table changes); lock and
	// capacity are runtime-only and do not bump it.
	version uint64
}

func New(maxUsers int) *Directory {
	return &Directory{
		users:    make(map[string]*domain.User),
		chats:    make(map[string]*domain.Chat),
		maxUsers: maxUsers,
	}
}

// RegisterUser creates a new identity and returns its freshly issued token.
// Registration is refused while the directory is locked or at capacity.
func (d *Directory) RegisterUser(username string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.locked || len(d.users) >= d.maxUsers {
		return "", errors.ErrCapacityExceeded
	}
	if _, ok := d.users[username]; ok {
		return "", errors.ErrDuplicateUser
	}

	token := uuid.NewString()
	d.users[username] = &domain.User{Username: username, Token: token}
	d.version++
	return token, nil
}

// CreateChat creates a chat and links it into every member's chat list.
// The creator must be part of the member list: a user cannot open a chat on
// behalf of others only. Unknown members are reported in full, not just the
// first offender. Returns the final (deduplicated) member list.
func (d *Directory) CreateChat(name, creator string, members []string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members = lo.Uniq(members)
	if !lo.Contains(members, creator) {
		return nil, errors.ErrForbidden
	}
	if _, ok := d.chats[name]; ok {
		return nil, errors.ErrDuplicateChat
	}
	unknown := lo.Filter(members, func(m string, _ int) bool {
		_, ok := d.users[m]
		return !ok
	})
	if len(unknown) > 0 {
		return nil, &errors.UnknownMembersError{Members: unknown}
	}

	d.chats[name] = &domain.Chat{Name: name, Members: members}
	for _, m := range members {
		if !d.users[m].MemberOf(name) {
			d.users[m].ChatNames = append(d.users[m].ChatNames, name)
		}
	}
	d.version++
	return members, nil
}

// AppendMessage appends to the destination chat's history in arrival order.
// The lock serializes concurrent acceptances for the same chat, so history
// order is a total order, not just per-sender order.
func (d *Directory) AppendMessage(msg domain.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	chat, ok := d.chats[msg.Dest]
	if !ok {
		return errors.ErrChatNotFound
	}
	if !chat.HasMember(msg.Sender) {
		return errors.ErrUnauthorized
	}
	chat.History = append(chat.History, msg)
	d.version++
	return nil
}

// SetLocked flips the global admission switch and returns the new state.
func (d *Directory) SetLocked(locked bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locked = locked
	return d.locked
}

// AdjustCapacity shifts the registration ceiling by delta and returns the new
// capacity. The ceiling may drop below the current user count; existing users
// are never evicted, only new registrations fail.
func (d *Directory) AdjustCapacity(delta int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxUsers += delta
	return d.maxUsers
}

// ChatsFor returns copies of every chat the user belongs to, full history
// included, after checking the registration token. An empty non-nil slice
// means valid credentials and no memberships.
func (d *Directory) ChatsFor(username, token string) ([]domain.Chat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[username]
	if !ok {
		return nil, errors.ErrForbidden
	}
	if subtle.ConstantTimeCompare([]byte(user.Token), []byte(token)) != 1 {
		return nil, errors.ErrForbidden
	}

	chats := make([]domain.Chat, 0, len(user.ChatNames))
	for _, name := range user.ChatNames {
		if chat, ok := d.chats[name]; ok {
			chats = append(chats, copyChat(*chat))
		}
	}
	return chats, nil
}

// KnownUser reports whether username is registered. Lock, unlock and capacity
// changes only require the caller to be any registered user; there is no admin
// role (documented limitation).
func (d *Directory) KnownUser(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.users[username]
	return ok
}

// MembersOf returns the member list of a chat, or false when the chat is
// unknown. Used by the engine to scatter a broadcast.
func (d *Directory) MembersOf(name string) ([]string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	chat, ok := d.chats[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), chat.Members...), true
}

// AtCapacity reports whether a registration attempt would fail right now,
// either because the directory is full or because it is locked. The info
// endpoint uses it so clients can avoid a doomed registration.
func (d *Directory) AtCapacity() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locked || len(d.users) >= d.maxUsers
}

// Counts reports user and chat totals for operator pages.
func (d *Directory) Counts() (users, chats int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users), len(d.chats)
}

func copyChat(c domain.Chat) domain.Chat {
	c.Members = append([]string(nil), c.Members...)
	c.History = append([]domain.Message(nil), c.History...)
	return c
}
