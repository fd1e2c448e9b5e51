// Package heuristics classifies free-text answers without calling the judge.
package heuristics

import (
	"strings"
	"unicode"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// Features is the heuristic view of a single answer.
type Features struct {
	WordCount    int
	HasDigits    bool
	HasKeywords  bool
	HasExamples  bool
	HasProfanity bool
	IsOffTopic   bool

	IsTooShort          bool
	IsTooLong           bool
	IsAppropriateLength bool
	// IsStrong is set when every quality check passes at once.
	IsStrong bool
}

// Analyze computes the feature set of answer for role. It is pure and never fails;
// an unknown role simply has no keywords.
func Analyze(answer string, role interview.Role) Features {
	lower := strings.ToLower(answer)
	words := len(strings.Fields(answer))

	f := Features{
		WordCount:    words,
		HasDigits:    strings.IndexFunc(answer, unicode.IsDigit) >= 0,
		HasKeywords:  containsAny(lower, RoleKeywords[role]),
		HasExamples:  containsAny(lower, ExampleMarkers),
		HasProfanity: containsAny(lower, Profanity),
		IsOffTopic:   containsAny(lower, OffTopicPhrases),

		IsTooShort:          words < tooShortWords,
		IsTooLong:           words > tooLongWords,
		IsAppropriateLength: words >= minWordsForFit && words <= maxWordsForFit,
	}

	f.IsStrong = f.IsAppropriateLength &&
		f.HasKeywords &&
		(f.HasExamples || f.HasDigits) &&
		!f.HasProfanity &&
		!f.IsOffTopic

	return f
}

// IsNonsense reports whether answer is noise rather than an attempt to answer.
func IsNonsense(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	runes := []rune(trimmed)

	if len(runes) < minNonsenseLen {
		return true
	}

	if strings.IndexFunc(trimmed, unicode.IsLetter) < 0 {
		return true
	}

	if len(runes) > spamLength && distinct(runes) < spamUniqueChars {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, literal := range NonsenseLiterals {
		if lower == literal {
			return true
		}
	}

	return false
}

// ContainsAny reports whether text contains one of terms. Both sides are
// expected to be lower-cased already.
func ContainsAny(text string, terms []string) bool {
	return containsAny(text, terms)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func distinct(runes []rune) int {
	seen := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		seen[r] = struct{}{}
	}
	return len(seen)
}
