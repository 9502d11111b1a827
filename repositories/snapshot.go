//go:generate go run go.uber.org/mock/mockgen -source=snapshot.go -destination=../mocks/mock_snapshot_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"chatbois/directory"
	"chatbois/domain"
)

const (
	userPrefix = "user:"
	chatPrefix = "chat:"
)

type ISnapshotRepository interface {
	Store(snap directory.Snapshot) error
	Load() (directory.Snapshot, bool, error)
}

// SnapshotRepository persists directory snapshots in BadgerDB.
//
// Rows are keyed "user:{username}" and "chat:{chatname}" with JSON values, so
// the two tables of the snapshot schema stay independently scannable with a
// prefix iterator. Users and chats are never deleted in the directory, which
// is why Store can overwrite in place without tombstoning stale keys.
type SnapshotRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSnapshotRepository(db *badger.DB, log *slog.Logger) SnapshotRepository {
	return SnapshotRepository{db: db, log: log}
}

// Store writes both tables in a single transaction. The engine triggers
// stores serially relative to the directory critical section they follow, so
// there is one snapshot writer at a time and no interleaved partial snapshots.
func (r SnapshotRepository) Store(snap directory.Snapshot) error {
	return r.db.Update(func(txn *badger.Txn) error {
		for username, user := range snap.Users {
			data, err := json.Marshal(user)
			if err != nil {
				return fmt.Errorf("marshal user %q: %w", username, err)
			}
			if err := txn.Set([]byte(userPrefix+username), data); err != nil {
				return err
			}
		}
		for name, chat := range snap.Chats {
			data, err := json.Marshal(chat)
			if err != nil {
				return fmt.Errorf("marshal chat %q: %w", name, err)
			}
			if err := txn.Set([]byte(chatPrefix+name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads both tables back. The second return value is false when the
// store holds no snapshot at all (fresh server).
func (r SnapshotRepository) Load() (directory.Snapshot, bool, error) {
	snap := directory.Snapshot{
		Users: make(map[string]domain.User),
		Chats: make(map[string]domain.Chat),
	}

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek([]byte(userPrefix)); it.ValidForPrefix([]byte(userPrefix)); it.Next() {
			item := it.Item()
			username := string(item.Key()[len(userPrefix):])
			if err := item.Value(func(val []byte) error {
				var user domain.User
				if err := json.Unmarshal(val, &user); err != nil {
					return fmt.Errorf("unmarshal user %q: %w", username, err)
				}
				snap.Users[username] = user
				return nil
			}); err != nil {
				return err
			}
		}

		for it.Seek([]byte(chatPrefix)); it.ValidForPrefix([]byte(chatPrefix)); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(chatPrefix):])
			if err := item.Value(func(val []byte) error {
				var chat domain.Chat
				if err := json.Unmarshal(val, &chat); err != nil {
					return fmt.Errorf("unmarshal chat %q: %w", name, err)
				}
				snap.Chats[name] = chat
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return directory.Snapshot{}, false, err
	}

	found := len(snap.Users) > 0 || len(snap.Chats) > 0
	if found {
		r.log.Info("Snapshot loaded", "users", len(snap.Users), "chats", len(snap.Chats))
	}
	return snap, found, nil
}
