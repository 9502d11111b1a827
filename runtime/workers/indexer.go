package workers

import (
	"context"
	"log/slog"

	"chatbois/contract"
	"chatbois/domain/event"
	"chatbois/search"
)

var _ contract.Worker = (*IndexerWorker)(nil)

// IndexerWorker drains accepted-message events into the search index.
// It runs off the acceptance path: indexing lag or failure never delays a
// send, and a lost event only means that message is not searchable.
type IndexerWorker struct {
	index    *search.Index
	accepted <-chan event.DomainEvent
	log      *slog.Logger
}

func NewIndexerWorker(index *search.Index, accepted <-chan event.DomainEvent, log *slog.Logger) *IndexerWorker {
	return &IndexerWorker{index: index, accepted: accepted, log: log}
}

func (w *IndexerWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping indexer worker")
			return nil
		case e, ok := <-w.accepted:
			if !ok {
				return nil
			}
			msg, isMessage := e.(event.MessageAccepted)
			if !isMessage {
				continue
			}
			if err := w.index.IndexMessage(msg); err != nil {
				w.log.Error("Indexing failed", "chat", msg.Chat, "error", err)
			}
		}
	}
}
