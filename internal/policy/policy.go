// Package policy decides what the interviewer does with a candidate's answer.
package policy

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/heuristics"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
)

// Action is the kind of move the interviewer makes next.
type Action int

const (
	// Advance moves on to a new question at the current difficulty.
	Advance Action = iota
	// Escalate moves on to a new question at hard difficulty. The session was
	// already escalated by the policy.
	Escalate
	// Followup asks Text and keeps the current question open.
	Followup
	// Redirect replies with Text, which repeats the current question. The
	// answer is not recorded.
	Redirect
)

func (a Action) String() string {
	switch a {
	case Advance:
		return "advance"
	case Escalate:
		return "escalate"
	case Followup:
		return "followup"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one answer.
type Decision struct {
	Action Action
	Text   string
	// Rule names the step that produced the decision.
	Rule string
	// Evaluation is the judge verdict when the judge was consulted.
	Evaluation *interview.Evaluation
}

// ShouldFollowup reports whether the interviewer keeps probing the same question.
func (d Decision) ShouldFollowup() bool {
	return d.Action == Followup
}

// turn carries one answer through the rules.
type turn struct {
	answer   string
	lower    string
	question string
	session  *interview.Session
	features heuristics.Features
	verdict  *interview.Evaluation
}

type rule struct {
	name  string
	apply func(ctx context.Context, p *Policy, t *turn) (Decision, bool)
}

// rules run in order and the first match wins.
var rules = []rule{
	{name: "off_topic", apply: offTopicRule},
	{name: "nonsense", apply: nonsenseRule},
	{name: "unprofessional", apply: unprofessionalRule},
	{name: "extremely_short", apply: extremelyShortRule},
	{name: "short_without_substance", apply: shortWithoutSubstanceRule},
	{name: "strong_streak", apply: strongStreakRule},
	{name: "judge", apply: judgeRule},
}

// Policy is stateless; all state lives on the session it is given.
type Policy struct {
	judge  ai.Judge
	logger *zap.Logger
}

// New returns a policy consulting judge for borderline answers. A nil judge
// is never consulted.
func New(judge ai.Judge, log *zap.Logger) *Policy {
	return &Policy{judge: judge, logger: logger.OrNop(log)}
}

// Decide picks the next action for answer to question and updates the
// session's difficulty and strong-answer counter. It never fails.
func (p *Policy) Decide(ctx context.Context, answer, question string, session *interview.Session) Decision {
	t := &turn{
		answer:   answer,
		lower:    strings.ToLower(answer),
		question: question,
		session:  session,
		features: heuristics.Analyze(answer, session.Role),
	}

	decision := Decision{Action: Advance, Rule: "default"}
	for _, r := range rules {
		if d, ok := r.apply(ctx, p, t); ok {
			d.Rule = r.name
			decision = d
			break
		}
	}
	if decision.Evaluation == nil {
		decision.Evaluation = t.verdict
	}

	p.logger.Debug("policy decision",
		append(logger.SessionFields(session.ID, string(session.Role), string(session.Difficulty)),
			zap.String("rule", decision.Rule),
			zap.Stringer("action", decision.Action),
			zap.Int("words", t.features.WordCount),
			zap.Bool("strong", t.features.IsStrong),
			zap.Int("strong_answers", session.StrongAnswerCount),
		)...,
	)

	return decision
}

// IsOffTopic reports whether message is a request unrelated to the interview.
func IsOffTopic(message string) bool {
	lower := strings.ToLower(message)
	return heuristics.ContainsAny(lower, OffTopicPatterns) && !heuristics.ContainsAny(lower, InterviewKeywords)
}

// RedirectText brings the candidate back to question.
func RedirectText(question string) string {
	return RedirectPrefix + " " + question
}

func offTopicRule(_ context.Context, _ *Policy, t *turn) (Decision, bool) {
	if !IsOffTopic(t.lower) {
		return Decision{}, false
	}
	return Decision{Action: Redirect, Text: RedirectText(t.question)}, true
}

func nonsenseRule(_ context.Context, _ *Policy, t *turn) (Decision, bool) {
	if !heuristics.IsNonsense(t.answer) {
		return Decision{}, false
	}
	return Decision{Action: Redirect, Text: ClarifyPrefix + " " + t.question}, true
}

func unprofessionalRule(_ context.Context, _ *Policy, t *turn) (Decision, bool) {
	if !t.features.HasProfanity && !t.features.IsOffTopic {
		return Decision{}, false
	}
	return Decision{Action: Redirect, Text: ProfessionalPrefix + " " + t.question}, true
}

func extremelyShortRule(_ context.Context, _ *Policy, t *turn) (Decision, bool) {
	if t.features.WordCount >= extremelyShortWords {
		return Decision{}, false
	}
	return Decision{Action: Followup, Text: MoreDetailPrompt}, true
}

func shortWithoutSubstanceRule(_ context.Context, _ *Policy, t *turn) (Decision, bool) {
	f := t.features
	if f.WordCount >= shortWords || f.HasKeywords || f.HasExamples {
		return Decision{}, false
	}
	return Decision{Action: Followup, Text: MoreContextPrompt}, true
}

// strongStreakRule counts strong answers and escalates on the third one. The
// counter is cumulative and only reset by an escalation.
func strongStreakRule(_ context.Context, _ *Policy, t *turn) (Decision, bool) {
	if !t.features.IsStrong {
		return Decision{}, false
	}

	s := t.session
	s.StrongAnswerCount++
	if s.StrongAnswerCount < escalationStreak || !s.Escalate(interview.DifficultyHard) {
		return Decision{}, false
	}

	s.StrongAnswerCount = 0
	return Decision{Action: Escalate}, true
}

// judgeRule consults the judge only for long answers that carry neither role
// keywords nor examples. Judge failures fall through to the default action
// with interview.DefaultEvaluation as the verdict.
func judgeRule(ctx context.Context, p *Policy, t *turn) (Decision, bool) {
	f := t.features
	if p.judge == nil || f.WordCount < judgeMinWords || f.HasExamples || f.HasKeywords {
		return Decision{}, false
	}

	eval, err := p.judge.Evaluate(ctx, t.question, t.answer, t.session.Role)
	if err != nil || eval == nil {
		// Callers store this verdict instead of asking the judge again.
		p.logger.Debug("judge skipped", zap.Error(err))
		t.verdict = interview.DefaultEvaluation()
		return Decision{}, false
	}
	eval.Clamp()
	t.verdict = eval

	followup := strings.TrimSpace(eval.FollowupQuestion)
	if !eval.ShouldFollowup || utf8.RuneCountInString(followup) <= minFollowupRunes || eval.Overall >= judgeFollowupCeiling {
		return Decision{}, false
	}

	return Decision{Action: Followup, Text: followup, Evaluation: eval}, true
}
