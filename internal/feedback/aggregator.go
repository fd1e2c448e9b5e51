// Package feedback folds per-question evaluations into the final interview summary.
package feedback

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	NoData = "No interview data available for feedback."

	excellentThreshold = 80
	goodThreshold      = 60
	questionPreviewLen = 70
	defaultParallelism = 4
	// TargetQuestions is the quota shown next to the answered count.
	TargetQuestions = 10
)

// Band is the overall performance bucket.
type Band string

const (
	BandExcellent     Band = "excellent"
	BandGood          Band = "good"
	BandNeedsPractice Band = "needs_practice"
)

var bandText = map[Band]string{
	BandExcellent:     "Excellent performance! You're well-prepared for this role.",
	BandGood:          "Good performance! Continue practicing to improve further.",
	BandNeedsPractice: "Keep practicing! Focus on providing detailed examples and staying relevant to the role.",
}

// Tips are attached to every non-empty summary.
var Tips = []string{
	"Use the STAR method (Situation, Task, Action, Result) for behavioral questions",
	"Provide specific examples from your experience",
	"Stay relevant to the role you're applying for",
	"Practice active listening and ask clarifying questions",
}

// BandFor buckets an overall mean score.
func BandFor(overall float64) Band {
	switch {
	case overall >= excellentThreshold:
		return BandExcellent
	case overall >= goodThreshold:
		return BandGood
	default:
		return BandNeedsPractice
	}
}

func (b Band) Text() string {
	return bandText[b]
}

// Averages are the arithmetic means over every evaluated answer.
type Averages struct {
	Communication float64
	Technical     float64
	Examples      float64
	Overall       float64
}

// Item is one answered question of the report.
type Item struct {
	Number     int
	Question   string
	Evaluation *interview.Evaluation
}

// Report is the structured form of a summary.
type Report struct {
	Role      interview.Role
	Items     []Item
	Responses int
	Averages  Averages
	Band      Band
}

// Aggregator builds reports. Answers that were never evaluated are sent to
// the judge once; the verdict is stored on the question record.
type Aggregator struct {
	judge       ai.Judge
	logger      *zap.Logger
	parallelism int
}

type Option func(*Aggregator)

// WithParallelism bounds concurrent judge calls during re-evaluation.
func WithParallelism(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.parallelism = n
		}
	}
}

func New(judge ai.Judge, log *zap.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{judge: judge, logger: logger.OrNop(log), parallelism: defaultParallelism}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate evaluates missing answers and computes the report. A question
// whose re-evaluation fails is left out.
func (a *Aggregator) Aggregate(ctx context.Context, s *interview.Session) Report {
	report := Report{Role: s.Role}
	if s.Role == "" {
		return report
	}

	a.evaluateMissing(ctx, s)

	var sum Averages
	for i, rec := range s.Questions {
		if !rec.Answered() || rec.Evaluation == nil {
			continue
		}
		e := rec.Evaluation
		report.Items = append(report.Items, Item{Number: i + 1, Question: rec.Question, Evaluation: e})
		sum.Communication += float64(e.Scores.Communication)
		sum.Technical += float64(e.Scores.Technical)
		sum.Examples += float64(e.Scores.Examples)
		sum.Overall += float64(e.Overall)
	}

	report.Responses = len(report.Items)
	if report.Responses == 0 {
		return report
	}

	n := float64(report.Responses)
	report.Averages = Averages{
		Communication: sum.Communication / n,
		Technical:     sum.Technical / n,
		Examples:      sum.Examples / n,
		Overall:       sum.Overall / n,
	}
	report.Band = BandFor(report.Averages.Overall)

	return report
}

// Summarize renders the report as text.
func (a *Aggregator) Summarize(ctx context.Context, s *interview.Session) string {
	return Render(a.Aggregate(ctx, s))
}

func (a *Aggregator) evaluateMissing(ctx context.Context, s *interview.Session) {
	if a.judge == nil {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)

	for _, rec := range s.Questions {
		if !rec.Answered() || rec.Evaluation != nil {
			continue
		}
		g.Go(func() error {
			eval, err := a.judge.Evaluate(ctx, rec.Question, rec.Answer, s.Role)
			if err != nil || eval == nil {
				a.logger.Debug("re-evaluation skipped",
					zap.String(logger.FieldSessionID, s.ID),
					zap.Error(err),
				)
				return nil
			}
			eval.Clamp()
			rec.Evaluation = eval
			return nil
		})
	}

	_ = g.Wait()
}

// Render formats a report deterministically.
func Render(r Report) string {
	if r.Responses == 0 {
		return NoData
	}

	rule := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "Interview Feedback Summary for %s Position\n%s\n", r.Role.Title(), rule)

	for _, item := range r.Items {
		e := item.Evaluation
		fmt.Fprintf(&b, "\nQuestion %d: %s\n", item.Number, preview(item.Question))
		fmt.Fprintf(&b, "  Communication: %d/5\n", e.Scores.Communication)
		fmt.Fprintf(&b, "  Technical: %d/5\n", e.Scores.Technical)
		fmt.Fprintf(&b, "  Examples: %d/5\n", e.Scores.Examples)
		fmt.Fprintf(&b, "  Overall: %d/100\n", e.Overall)
		if len(e.Feedback) > 0 {
			b.WriteString("  Feedback:\n")
			for _, fb := range e.Feedback {
				fmt.Fprintf(&b, "    • %s\n", fb)
			}
		}
	}

	fmt.Fprintf(&b, "\n%s\nOverall Performance:\n", rule)
	fmt.Fprintf(&b, "  Communication: %.1f/5\n", r.Averages.Communication)
	fmt.Fprintf(&b, "  Technical: %.1f/5\n", r.Averages.Technical)
	fmt.Fprintf(&b, "  Examples: %.1f/5\n", r.Averages.Examples)
	fmt.Fprintf(&b, "  Overall Score: %.1f/100\n", r.Averages.Overall)
	fmt.Fprintf(&b, "  Questions Answered: %d/%d\n", r.Responses, TargetQuestions)

	fmt.Fprintf(&b, "\n%s\n", r.Band.Text())

	b.WriteString("\nTips for improvement:")
	for _, tip := range Tips {
		fmt.Fprintf(&b, "\n  • %s", tip)
	}

	return b.String()
}

func preview(question string) string {
	runes := []rune(question)
	if len(runes) <= questionPreviewLen {
		return question
	}
	return string(runes[:questionPreviewLen])
}
