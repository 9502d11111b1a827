// Package search maintains a full-text index over accepted messages and
// answers member-scoped queries against it.
package search

import (
	"strconv"
	"strings"
)

const defaultLimit = 10

// Query represents the structured parameters of a history search. It
// decouples the raw user input from the index engine requirements.
type Query struct {
	RawInput string // the original input from the user
	Terms    string // the actual text to match against message content
	Chat     string // optional: restrict to one chat
	Limit    int    // number of results
}

// NewSearchQuery parses a raw string with command-line style flags.
// Example: invoice due --chat room1 --limit 5
func NewSearchQuery(input string) Query {
	query := Query{RawInput: input, Limit: defaultLimit}

	parts := strings.Fields(input)
	var terms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			val := parts[i+1]
			switch strings.TrimPrefix(part, "--") {
			case "chat":
				query.Chat = val
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++
			continue
		}
		terms = append(terms, part)
	}

	query.Terms = strings.Join(terms, " ")
	return query
}
