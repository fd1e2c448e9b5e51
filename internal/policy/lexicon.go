package policy

// OffTopicPatterns are requests that have nothing to do with the interview.
var OffTopicPatterns = []string{
	"what is the weather", "what time is it", "what is the date", "what day is it",
	"can you write", "can you create", "write me a resume", "create a resume",
	"what is 2+2", "calculate", "tell me a joke", "how are you",
	"what can you do", "what are your capabilities", "who are you",
	"what is your name", "where are you from",
}

// InterviewKeywords cancel an off-topic match: a message mentioning any of
// them is treated as part of the interview.
var InterviewKeywords = []string{
	"interview", "question", "answer", "role", "engineer", "software", "sales",
	"retail", "customer", "code", "project", "experience", "work", "job", "position",
}

const (
	RedirectPrefix       = "Let's focus on the interview."
	ClarifyPrefix        = "I didn't quite understand that. Let's refocus on the interview question:"
	ProfessionalPrefix   = "Let's keep our discussion professional and focused on the interview."
	MoreDetailPrompt     = "Could you please provide a more detailed answer?"
	MoreContextPrompt    = "Can you provide more context about your experience?"
	extremelyShortWords  = 5
	shortWords           = 10
	judgeMinWords        = 15
	escalationStreak     = 3
	judgeFollowupCeiling = 50
	minFollowupRunes     = 10
)
