//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chatbois/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes accepted-message events. Consume must not block beyond
// the given context; a full or broken sink returns an error and the caller
// decides what to do with the connection behind it.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// PushSink is the live-channel handle held by the connection registry.
// Close releases the transport resources behind the sink; it must be safe to
// call more than once because a superseded connection and its own teardown
// can race.
type PushSink interface {
	EventSink
	Close()
}
