// Package moderation masks censored words in chat content before it reaches
// history or any live channel.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/abadojack/whatlanggo"
)

// Moderator holds an Aho-Corasick automaton built over normalized censored
// words. Matching runs on a normalized view of the input (lowercased, leet
// characters simplified, punctuation stripped) while masking is applied to the
// original runes, so spacing and casing of the surrounding text survive.
type Moderator struct {
	matcher  *goahocorasick.Machine
	maskRune rune
}

func NewModerator(words []string, maskRune rune) (Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, w := range words {
		patterns[i] = normalize([]rune(w), nil)
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, maskRune: maskRune}, nil
}

// Censor returns content with every censored span replaced by the mask rune.
// Input that matches nothing is returned unchanged.
func (m *Moderator) Censor(content string) string {
	orig := []rune(content)
	var origIdx []int
	norm := normalize(orig, func(i int) { origIdx = append(origIdx, i) })
	if len(norm) == 0 {
		return content
	}

	spans := m.matcher.MultiPatternSearch(norm, false)
	if len(spans) == 0 {
		return content
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			orig[i] = m.maskRune
		}
	}
	return string(orig)
}

// DetectLanguage returns the ISO 639-1 code of the content's likely language,
// used for moderation logging only.
func DetectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	return info.Lang.Iso6391()
}

// normalize lowercases, simplifies leet characters and drops noise runes.
// When keep is non-nil it is called with the original index of every rune
// that survives, so callers can map match positions back to the input.
func normalize(input []rune, keep func(int)) []rune {
	out := make([]rune, 0, len(input))
	for i, r := range input {
		clean := simplifyRune(r)
		if unicode.IsPunct(clean) || unicode.IsSpace(clean) || unicode.IsSymbol(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
		if keep != nil {
			keep(i)
		}
	}
	return out
}

// simplifyRune maps common leet speak characters back to their letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
