package heuristics

import "github.com/spigell/hh-interviewer/internal/interview"

// Lexicon tables are fixed policy. Matching is case-insensitive substring
// containment against the lower-cased answer.

// RoleKeywords are the role-relevant terms a substantive answer mentions.
var RoleKeywords = map[interview.Role][]string{
	interview.RoleEngineer: {
		"code", "programming", "develop", "debug", "algorithm",
		"system", "software", "project", "api", "database",
	},
	interview.RoleSales: {
		"customer", "client", "relationship", "close", "deal",
		"revenue", "target", "pipeline", "prospect", "negotiation",
	},
	interview.RoleRetail: {
		"customer", "service", "product", "store", "experience",
		"satisfaction", "help", "assist", "purchase", "inventory",
	},
}

// ExampleMarkers signal that the answer cites a concrete situation.
var ExampleMarkers = []string{"example", "instance", "time when", "situation", "project"}

// Profanity is deliberately small; this is not a moderation system.
var Profanity = []string{"damn", "hell", "crap", "stupid", "idiot"}

// OffTopicPhrases mark answers that dodge the question's content.
var OffTopicPhrases = []string{"i don't know", "i have no idea", "not relevant", "unrelated"}

// NonsenseLiterals are whole answers treated as keyboard noise.
var NonsenseLiterals = []string{"asdf", "qwerty", "test", "12345", "abc", "xyz"}

const (
	tooShortWords   = 10
	tooLongWords    = 200
	minWordsForFit  = 20
	maxWordsForFit  = 150
	minNonsenseLen  = 3
	spamLength      = 10
	spamUniqueChars = 3
)
