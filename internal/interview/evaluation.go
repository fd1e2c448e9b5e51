package interview

const (
	MaxCategoryScore = 5
	MaxOverallScore  = 100

	defaultFollowupQuestion = "Can you elaborate on that?"
	defaultFeedback         = "Evaluation temporarily unavailable"
)

// Scores are the per-category judge marks, each in [0, MaxCategoryScore].
type Scores struct {
	Communication int `json:"communication"`
	Technical     int `json:"technical"`
	Examples      int `json:"examples"`
}

// Evaluation is the judge's verdict for one answer.
type Evaluation struct {
	Scores           Scores   `json:"scores"`
	Overall          int      `json:"overall"`
	ShouldFollowup   bool     `json:"should_followup"`
	FollowupQuestion string   `json:"followup_question"`
	Feedback         []string `json:"feedback"`
	// Fallback marks the fixed evaluation used when the judge could not answer.
	Fallback bool `json:"fallback,omitempty"`
}

// DefaultEvaluation is stored whenever the judge fails or returns garbage.
func DefaultEvaluation() *Evaluation {
	return &Evaluation{
		Scores:           Scores{Communication: 3, Technical: 3, Examples: 3},
		Overall:          60,
		ShouldFollowup:   true,
		FollowupQuestion: defaultFollowupQuestion,
		Feedback:         []string{defaultFeedback},
		Fallback:         true,
	}
}

// Clamp forces every score into its allowed range.
func (e *Evaluation) Clamp() {
	if e == nil {
		return
	}
	e.Scores.Communication = clamp(e.Scores.Communication, 0, MaxCategoryScore)
	e.Scores.Technical = clamp(e.Scores.Technical, 0, MaxCategoryScore)
	e.Scores.Examples = clamp(e.Scores.Examples, 0, MaxCategoryScore)
	e.Overall = clamp(e.Overall, 0, MaxOverallScore)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
