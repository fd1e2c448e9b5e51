package interviewer

import (
	"slices"
	"strings"

	"github.com/spigell/hh-interviewer/internal/heuristics"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/policy"
)

const (
	EmptyMessageReply = "I'm here to help you practice for interviews. Please type a message to continue, or select a role to begin."

	RoleMenu = "I'm here to help you practice for job interviews. Which role would you like to practice for?\n\n" +
		"• Software Engineer\n• Sales Representative\n• Retail Associate\n\n" +
		"Type the role name to get started."

	InterviewOverReply = "Great job! We've completed the interview. Type 'feedback' to see your summary."
	EscalationPrefix   = "[Increased difficulty] "
	completionFormat   = "Great job! You've completed %d interview questions.\n\n%s"
)

type command int

const (
	commandNone command = iota
	commandSkip
	commandFeedback
	commandFollowup
)

// Commands match the whole message only, so "done" inside an answer is not a skip.
var commands = map[string]command{
	"next":          commandSkip,
	"next question": commandSkip,
	"skip":          commandSkip,
	"move on":       commandSkip,
	"done":          commandSkip,
	"feedback":      commandFeedback,
	"summary":       commandFeedback,
	"show feedback": commandFeedback,
	"follow up":     commandFollowup,
	"follow-up":     commandFollowup,
	"dig deeper":    commandFollowup,
}

// The turn pre-check is looser than the policy's own off-topic rule: any
// mention of a joke is stray, while talk about a company or team is not.
var (
	strayPatterns   = append(slices.Clone(policy.OffTopicPatterns), "joke")
	sessionKeywords = append(slices.Clone(policy.InterviewKeywords), "company", "team")
)

// isStray reports whether a message should be redirected before it reaches
// the transcript.
func isStray(message string) bool {
	lower := strings.ToLower(message)
	return heuristics.ContainsAny(lower, strayPatterns) && !heuristics.ContainsAny(lower, sessionKeywords)
}

func parseCommand(message string) command {
	normalized := strings.Trim(strings.ToLower(strings.TrimSpace(message)), ".!? ")
	return commands[normalized]
}

// detectRole picks the role mentioned in a free-form message.
func detectRole(message string) (interview.Role, bool) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "engineer") || strings.Contains(lower, "software"):
		return interview.RoleEngineer, true
	case strings.Contains(lower, "sales"):
		return interview.RoleSales, true
	case strings.Contains(lower, "retail"):
		return interview.RoleRetail, true
	default:
		return "", false
	}
}
