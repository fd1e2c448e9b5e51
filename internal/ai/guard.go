package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// DefaultTimeout bounds a single judge call including its retries.
const DefaultTimeout = 30 * time.Second

// Guard bounds every call to the wrapped backend by a timeout and a shared
// token bucket. Waiting for a token counts against the timeout.
type Guard struct {
	next    Backend
	timeout time.Duration
	limiter *rate.Limiter
}

// NewGuard wraps next. A non-positive timeout selects DefaultTimeout and a nil
// limiter disables rate limiting.
func NewGuard(next Backend, timeout time.Duration, limiter *rate.Limiter) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{next: next, timeout: timeout, limiter: limiter}
}

func (g *Guard) Evaluate(ctx context.Context, question, answer string, role interview.Role) (*interview.Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	eval, err := g.next.Evaluate(ctx, question, answer, role)
	if err != nil {
		return nil, err
	}
	eval.Clamp()
	return eval, nil
}

func (g *Guard) GenerateFollowup(ctx context.Context, role interview.Role, question, answer string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.wait(ctx); err != nil {
		return "", err
	}

	return g.next.GenerateFollowup(ctx, role, question, answer)
}

func (g *Guard) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %w", ErrJudgeUnavailable, err)
	}
	return nil
}
