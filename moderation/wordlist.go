package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"
)

//go:embed censored/*.txt
var censoredFS embed.FS

// Wordlist carries the loaded censored words plus the language files they came
// from, for startup logging.
type Wordlist struct {
	Words     []string
	Languages []string
}

// LoadWordlist reads every embedded .txt dictionary under censored/, one word
// per line, comments starting with '#'. Duplicates across languages collapse.
func LoadWordlist() (Wordlist, error) {
	entries, err := fs.ReadDir(censoredFS, "censored")
	if err != nil {
		return Wordlist{}, err
	}

	unique := make(map[string]struct{})
	var languages []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := censoredFS.ReadFile("censored/" + entry.Name())
		if err != nil {
			return Wordlist{}, err
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			unique[strings.ToLower(word)] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return Wordlist{}, err
		}
	}

	wl := Wordlist{Languages: languages}
	for w := range unique {
		wl.Words = append(wl.Words, w)
	}
	return wl, nil
}
