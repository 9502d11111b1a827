package domain

// Chat is a named room. Members is fixed at creation; History is append-only
// and its insertion order is the delivery order.
type Chat struct {
	Name    string    `json:"name"`
	Members []string  `json:"members"`
	History []Message `json:"history"`
}

// HasMember reports whether username belongs to the chat.
func (c Chat) HasMember(username string) bool {
	for _, m := range c.Members {
		if m == username {
			return true
		}
	}
	return false
}
