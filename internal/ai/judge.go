// Package ai defines the judge contract used by the interview loop and the
// fallbacks applied when the judge cannot answer.
package ai

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
)

// ErrJudgeUnavailable is returned when no judge is configured or it cannot be reached.
var ErrJudgeUnavailable = errors.New("judge unavailable")

// DefaultFollowup replaces a follow-up the generator failed to write.
const DefaultFollowup = "Can you provide more specific details about that?"

// Judge scores a single answer.
type Judge interface {
	Evaluate(ctx context.Context, question, answer string, role interview.Role) (*interview.Evaluation, error)
}

// FollowupGenerator writes a short probing question about an answer.
type FollowupGenerator interface {
	GenerateFollowup(ctx context.Context, role interview.Role, question, answer string) (string, error)
}

// Backend is a provider able to do both jobs.
type Backend interface {
	Judge
	FollowupGenerator
}

// Pair joins separate implementations into a Backend.
type Pair struct {
	Judge
	FollowupGenerator
}

// Offline is used when no provider is configured.
type Offline struct{}

func (Offline) Evaluate(context.Context, string, string, interview.Role) (*interview.Evaluation, error) {
	return nil, ErrJudgeUnavailable
}

func (Offline) GenerateFollowup(context.Context, interview.Role, string, string) (string, error) {
	return "", ErrJudgeUnavailable
}

// EvaluateOrDefault never fails: judge errors and empty verdicts are replaced
// by interview.DefaultEvaluation.
func EvaluateOrDefault(ctx context.Context, judge Judge, question, answer string, role interview.Role, log *zap.Logger) *interview.Evaluation {
	log = logger.OrNop(log)
	if judge == nil {
		return interview.DefaultEvaluation()
	}

	eval, err := judge.Evaluate(ctx, question, answer, role)
	if err != nil || eval == nil {
		if !errors.Is(err, ErrJudgeUnavailable) {
			log.Warn("evaluation failed, using default", zap.Error(err))
		}
		return interview.DefaultEvaluation()
	}

	eval.Clamp()
	return eval
}

// FollowupOrDefault returns the generated follow-up or DefaultFollowup.
func FollowupOrDefault(ctx context.Context, gen FollowupGenerator, role interview.Role, question, answer string, log *zap.Logger) string {
	log = logger.OrNop(log)
	if gen == nil {
		return DefaultFollowup
	}

	text, err := gen.GenerateFollowup(ctx, role, question, answer)
	if err != nil || text == "" {
		if !errors.Is(err, ErrJudgeUnavailable) {
			log.Warn("follow-up generation failed, using default", zap.Error(err))
		}
		return DefaultFollowup
	}

	return text
}
