package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/spigell/hh-interviewer/internal/interview"
)

type stubBackend struct {
	eval     *interview.Evaluation
	err      error
	followup string
	block    bool
	calls    int
}

func (s *stubBackend) Evaluate(ctx context.Context, _, _ string, _ interview.Role) (*interview.Evaluation, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.eval, s.err
}

func (s *stubBackend) GenerateFollowup(ctx context.Context, _ interview.Role, _, _ string) (string, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.followup, s.err
}

func TestEvaluateOrDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		judge        Judge
		wantFallback bool
		wantOverall  int
	}{
		{name: "nil judge", judge: nil, wantFallback: true, wantOverall: 60},
		{name: "offline", judge: Offline{}, wantFallback: true, wantOverall: 60},
		{name: "error", judge: &stubBackend{err: errors.New("boom")}, wantFallback: true, wantOverall: 60},
		{name: "nil verdict", judge: &stubBackend{}, wantFallback: true, wantOverall: 60},
		{name: "clamped verdict", judge: &stubBackend{eval: &interview.Evaluation{Overall: 180}}, wantOverall: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			eval := EvaluateOrDefault(context.Background(), tt.judge, "q", "a", interview.RoleEngineer, nil)
			if eval.Fallback != tt.wantFallback || eval.Overall != tt.wantOverall {
				t.Fatalf("unexpected evaluation: %+v", eval)
			}
		})
	}
}

func TestEvaluateOrDefaultLogsFailures(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	EvaluateOrDefault(context.Background(), Offline{}, "q", "a", interview.RoleSales, log)
	if observed.Len() != 0 {
		t.Fatalf("offline judge must not warn")
	}

	EvaluateOrDefault(context.Background(), &stubBackend{err: errors.New("boom")}, "q", "a", interview.RoleSales, log)
	if observed.Len() != 1 {
		t.Fatalf("expected one warning, got %d", observed.Len())
	}
}

func TestFollowupOrDefault(t *testing.T) {
	t.Parallel()

	if got := FollowupOrDefault(context.Background(), Offline{}, interview.RoleRetail, "q", "a", nil); got != DefaultFollowup {
		t.Fatalf("expected default follow-up, got %q", got)
	}
	if got := FollowupOrDefault(context.Background(), &stubBackend{followup: "What did you measure?"}, interview.RoleRetail, "q", "a", nil); got != "What did you measure?" {
		t.Fatalf("unexpected follow-up %q", got)
	}
}

func TestGuardTimesOut(t *testing.T) {
	t.Parallel()

	g := NewGuard(&stubBackend{block: true}, 20*time.Millisecond, nil)

	start := time.Now()
	_, err := g.Evaluate(context.Background(), "q", "a", interview.RoleEngineer)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("guard did not bound the call")
	}

	if got := EvaluateOrDefault(context.Background(), g, "q", "a", interview.RoleEngineer, nil); !got.Fallback {
		t.Fatalf("timed out judge must produce the default evaluation")
	}
}

func TestGuardRateLimit(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{eval: &interview.Evaluation{Overall: 70}}
	g := NewGuard(backend, 50*time.Millisecond, rate.NewLimiter(rate.Every(time.Hour), 1))

	if _, err := g.Evaluate(context.Background(), "q", "a", interview.RoleEngineer); err != nil {
		t.Fatalf("first call must pass: %v", err)
	}

	_, err := g.Evaluate(context.Background(), "q", "a", interview.RoleEngineer)
	if !errors.Is(err, ErrJudgeUnavailable) {
		t.Fatalf("expected ErrJudgeUnavailable, got %v", err)
	}
	if backend.calls != 1 {
		t.Fatalf("limited call must not reach the backend, got %d calls", backend.calls)
	}
}

func TestPairCombinesImplementations(t *testing.T) {
	t.Parallel()

	var b Backend = Pair{Judge: Offline{}, FollowupGenerator: &stubBackend{followup: "Why?"}}
	if _, err := b.Evaluate(context.Background(), "q", "a", interview.RoleSales); !errors.Is(err, ErrJudgeUnavailable) {
		t.Fatalf("expected offline judge, got %v", err)
	}
	if text, _ := b.GenerateFollowup(context.Background(), interview.RoleSales, "q", "a"); text != "Why?" {
		t.Fatalf("unexpected follow-up %q", text)
	}
}
