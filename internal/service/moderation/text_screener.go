package moderation

import (
	"strings"
)

// Baseline profanity dictionary. Matching is on word boundaries so embedded
// substrings ("class", "assess") don't trip the gate. Deployments extend the
// list through configuration.
var blockedTerms = []string{
	"anal", "anus", "arse", "ass", "asshole", "ballsack", "bastard", "bitch",
	"blowjob", "bollocks", "boner", "boob", "bugger", "bullshit", "clitoris",
	"cock", "coon", "crap", "cunt", "damn", "dick", "dildo", "dyke", "fag",
	"faggot", "feck", "felching", "fellate", "fellatio", "fuck", "fudgepacker",
	"goddamn", "hell", "homo", "jerk off", "jizz", "knobend", "labia", "muff",
	"nigga", "nigger", "penis", "piss", "poop", "prick", "pube", "pussy",
	"queer", "scrotum", "sex", "sexting", "shit", "slut", "smegma", "spunk",
	"tit", "tosser", "turd", "twat", "vagina", "wank", "whore",
}

// TextScreener is the synchronous, dictionary-based profanity gate.
type TextScreener struct {
	terms map[string]struct{}
	// Multi-word terms can't be matched per token; checked as phrases.
	phrases []string
}

// NewTextScreener builds the screener from the baseline dictionary plus any
// deployment-specific additions.
func NewTextScreener(extraTerms []string) *TextScreener {
	s := &TextScreener{terms: make(map[string]struct{}, len(blockedTerms))}

	for _, term := range append(append([]string{}, blockedTerms...), extraTerms...) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.ContainsRune(term, ' ') {
			s.phrases = append(s.phrases, term)
		} else {
			s.terms[term] = struct{}{}
		}
	}

	return s
}

// IsTextUnsafe reports whether any field contains a blocked term. Case
// insensitive; a hit marks the content mature and private before insert.
func (s *TextScreener) IsTextUnsafe(fields []string) bool {
	for _, field := range fields {
		if field == "" {
			continue
		}
		lowered := strings.ToLower(field)

		for _, token := range strings.FieldsFunc(lowered, isWordSeparator) {
			if _, hit := s.terms[token]; hit {
				return true
			}
		}

		for _, phrase := range s.phrases {
			if containsPhrase(lowered, phrase) {
				return true
			}
		}
	}

	return false
}

func isWordSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '\''
}

// containsPhrase matches the phrase only on word boundaries.
func containsPhrase(text, phrase string) bool {
	start := 0
	for {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start

		beforeOK := i == 0 || isWordSeparator(rune(text[i-1]))
		end := i + len(phrase)
		afterOK := end == len(text) || isWordSeparator(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}

		start = i + 1
	}
}
