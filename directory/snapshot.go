package directory

import (
	"fmt"
	"sort"

	"chatbois/domain"
)

// Snapshot is a deep copy of the directory's two tables, suitable for handing
// to the persistence layer outside the critical section.
//
// Version orders snapshots taken from the same directory: it is bumped on
// every persisted mutation, so of two snapshots the one with the higher
// version is the fresher state. It is in-process bookkeeping only and is not
// written to the store.
type Snapshot struct {
	Version uint64
	Users   map[string]domain.User
	Chats   map[string]domain.Chat
}

// Snapshot copies the current state. The copy shares nothing with the live
// directory, so the persistence writer can marshal it without holding the lock.
func (d *Directory) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := Snapshot{
		Version: d.version,
		Users:   make(map[string]domain.User, len(d.users)),
		Chats:   make(map[string]domain.Chat, len(d.chats)),
	}
	for name, u := range d.users {
		cu := *u
		cu.ChatNames = append([]string(nil), u.ChatNames...)
		snap.Users[name] = cu
	}
	for name, c := range d.chats {
		snap.Chats[name] = copyChat(*c)
	}
	return snap
}

// Restore builds a directory from a persisted snapshot. The bidirectional
// membership invariant is re-derived rather than trusted: chat member lists
// are the source of truth and every user's chat list is rebuilt from them,
// which repairs stale or missing user->chat links. A chat member that is not
// a registered user cannot be repaired and rejects the snapshot.
func Restore(maxUsers int, snap Snapshot) (*Directory, error) {
	d := New(maxUsers)

	for name, u := range snap.Users {
		cu := u
		cu.Username = name
		cu.ChatNames = nil
		d.users[name] = &cu
	}

	chatNames := make([]string, 0, len(snap.Chats))
	for name := range snap.Chats {
		chatNames = append(chatNames, name)
	}
	sort.Strings(chatNames)

	for _, name := range chatNames {
		c := snap.Chats[name]
		c.Name = name
		for _, m := range c.Members {
			user, ok := d.users[m]
			if !ok {
				return nil, fmt.Errorf("snapshot inconsistent: chat %q references unknown member %q", name, m)
			}
			user.ChatNames = append(user.ChatNames, name)
		}
		cc := copyChat(c)
		d.chats[name] = &cc
	}
	return d, nil
}
