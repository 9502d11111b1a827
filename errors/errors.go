package errors

import (
	"fmt"
	"strings"
)

var (
	ErrCapacityExceeded = fmt.Errorf("server at user capacity")
	ErrDuplicateUser    = fmt.Errorf("username already exists")
	ErrDuplicateChat    = fmt.Errorf("chat already exists")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrChatNotFound     = fmt.Errorf("chat not found")
	ErrUnauthorized     = fmt.Errorf("sender not authorized for chat")
	ErrPersistence      = fmt.Errorf("snapshot write failed")
	ErrTransport        = fmt.Errorf("push to live channel failed")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)

// UnknownMembersError reports every member of a chat-creation request that is
// not a registered user, not just the first one found.
type UnknownMembersError struct {
	Members []string
}

func (e *UnknownMembersError) Error() string {
	return fmt.Sprintf("unknown members: [%s]", strings.Join(e.Members, ", "))
}
