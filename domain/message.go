package domain

// Message is an immutable chat event once appended to a Chat's history.
// Sender must be a member of Dest at acceptance time; the directory enforces
// that, not this struct.
type Message struct {
	Sender  string `json:"sender"`
	Dest    string `json:"dest"`
	Content string `json:"content"`
}
