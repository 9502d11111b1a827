package search

import (
	"context"
	"time"

	"github.com/blugelabs/bluge"

	"chatbois/domain/event"
)

// Index wraps a bluge writer holding one document per accepted message.
// Indexing is best-effort and happens off the message-acceptance path; the
// directory history stays the source of truth.
type Index struct {
	writer *bluge.Writer
}

// OpenIndex opens (or creates) the index at path. An empty path keeps the
// index in memory, which tests rely on.
func OpenIndex(path string) (*Index, error) {
	config := bluge.InMemoryOnlyConfig()
	if path != "" {
		config = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(config)
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer}, nil
}

// IndexMessage stores one accepted message as a searchable document.
func (ix *Index) IndexMessage(e event.MessageAccepted) error {
	doc := bluge.NewDocument(e.ID.String()).
		AddField(bluge.NewTextField("content", e.Content).StoreValue()).
		AddField(bluge.NewKeywordField("chat", e.Chat).StoreValue()).
		AddField(bluge.NewKeywordField("sender", e.Sender).StoreValue()).
		AddField(bluge.NewDateTimeField("at", e.At).StoreValue())
	return ix.writer.Update(doc.ID(), doc)
}

// Hit is one search result.
type Hit struct {
	Chat    string    `json:"chat"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Search matches query terms against message content, restricted to the
// given chats. The chat restriction is the authorization boundary: callers
// pass only the chats the requesting user belongs to.
func (ix *Index) Search(ctx context.Context, query Query, chats []string) ([]Hit, error) {
	if len(chats) == 0 || query.Terms == "" {
		return []Hit{}, nil
	}

	scope := bluge.NewBooleanQuery()
	scope.SetMinShould(1)
	scoped := 0
	for _, chat := range chats {
		if query.Chat != "" && chat != query.Chat {
			continue
		}
		scope.AddShould(bluge.NewTermQuery(chat).SetField("chat"))
		scoped++
	}
	if scoped == 0 {
		// a --chat flag pointing outside the caller's memberships
		return []Hit{}, nil
	}

	full := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query.Terms).SetField("content")).
		AddMust(scope)

	reader, err := ix.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(query.Limit, full))
	if err != nil {
		return nil, err
	}

	hits := []Hit{}
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit Hit
		if err := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "chat":
				hit.Chat = string(value)
			case "sender":
				hit.Sender = string(value)
			case "content":
				hit.Content = string(value)
			case "at":
				if at, err := bluge.DecodeDateTime(value); err == nil {
					hit.At = at
				}
			}
			return true
		}); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func (ix *Index) Close() error {
	return ix.writer.Close()
}
