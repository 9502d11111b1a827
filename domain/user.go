// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

// User is an identity record held in the directory.
//
// Username is the stable identifier, immutable once created. Token is the
// opaque secret issued at registration; it authorizes reads of the user's own
// chats. ChatNames grows when the user is included in a new chat and is never
// shrunk.
type User struct {
	Username  string   `json:"username"`
	Token     string   `json:"token"`
	ChatNames []string `json:"chatNames"`
}

// MemberOf reports whether the user already carries a membership link to name.
func (u User) MemberOf(name string) bool {
	for _, c := range u.ChatNames {
		if c == name {
			return true
		}
	}
	return false
}
