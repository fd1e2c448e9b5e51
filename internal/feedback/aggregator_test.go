package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
)

type stubJudge struct {
	mu    sync.Mutex
	eval  *interview.Evaluation
	err   error
	calls map[string]int
}

func (s *stubJudge) Evaluate(_ context.Context, _, answer string, _ interview.Role) (*interview.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[answer]++
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.eval
	return &copied, nil
}

func (s *stubJudge) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func sessionWith(evals ...*interview.Evaluation) *interview.Session {
	now := time.Unix(0, 0)
	s := interview.NewSession("s1", now)
	s.Role = interview.RoleEngineer
	for i, e := range evals {
		s.IssueQuestion(fmt.Sprintf("Question number %d?", i+1), now)
		rec := s.RecordAnswer(fmt.Sprintf("answer %d", i+1), now)
		rec.Evaluation = e
	}
	return s
}

func evalWithOverall(overall int) *interview.Evaluation {
	return &interview.Evaluation{Scores: interview.Scores{Communication: 4, Technical: 4, Examples: 3}, Overall: overall}
}

func TestSummarizeWithoutData(t *testing.T) {
	t.Parallel()

	a := New(nil, nil)

	if got := a.Summarize(context.Background(), interview.NewSession("s", time.Unix(0, 0))); got != NoData {
		t.Fatalf("expected no data text, got %q", got)
	}

	s := sessionWith()
	s.IssueQuestion("Unanswered?", time.Unix(0, 0))
	if got := a.Summarize(context.Background(), s); got != NoData {
		t.Fatalf("unanswered questions must not count, got %q", got)
	}
}

func TestSummarizeExcellentBand(t *testing.T) {
	t.Parallel()

	s := sessionWith(evalWithOverall(80), evalWithOverall(90))
	report := New(nil, nil).Aggregate(context.Background(), s)

	if report.Responses != 2 || report.Averages.Overall != 85 || report.Band != BandExcellent {
		t.Fatalf("unexpected report: %+v", report)
	}

	text := Render(report)
	if !strings.Contains(text, BandExcellent.Text()) {
		t.Fatalf("expected the excellent band text:\n%s", text)
	}
	if !strings.Contains(text, "  Overall Score: 85.0/100") || !strings.Contains(text, "  Questions Answered: 2/10") {
		t.Fatalf("unexpected overall block:\n%s", text)
	}
}

func TestAggregateUsesExactMean(t *testing.T) {
	t.Parallel()

	s := sessionWith(
		&interview.Evaluation{Scores: interview.Scores{Communication: 5, Technical: 4, Examples: 1}, Overall: 61},
		&interview.Evaluation{Scores: interview.Scores{Communication: 4, Technical: 4, Examples: 2}, Overall: 60},
		&interview.Evaluation{Scores: interview.Scores{Communication: 4, Technical: 3, Examples: 2}, Overall: 60},
	)
	report := New(nil, nil).Aggregate(context.Background(), s)

	want := Averages{Communication: 13.0 / 3, Technical: 11.0 / 3, Examples: 5.0 / 3, Overall: 181.0 / 3}
	if report.Averages != want {
		t.Fatalf("expected %+v, got %+v", want, report.Averages)
	}
	if report.Band != BandGood {
		t.Fatalf("expected good band, got %s", report.Band)
	}
}

func TestBandFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		overall float64
		band    Band
	}{
		{overall: 100, band: BandExcellent},
		{overall: 80, band: BandExcellent},
		{overall: 79.9, band: BandGood},
		{overall: 60, band: BandGood},
		{overall: 59.99, band: BandNeedsPractice},
		{overall: 0, band: BandNeedsPractice},
	}

	for _, tt := range tests {
		if got := BandFor(tt.overall); got != tt.band {
			t.Fatalf("BandFor(%v) = %s, want %s", tt.overall, got, tt.band)
		}
	}
}

func TestRenderFormat(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 80) + "?"
	report := Report{
		Role: interview.RoleSales,
		Items: []Item{{
			Number:     2,
			Question:   long,
			Evaluation: &interview.Evaluation{Scores: interview.Scores{Communication: 3, Technical: 2, Examples: 1}, Overall: 45, Feedback: []string{"Add numbers"}},
		}},
		Responses: 1,
		Averages:  Averages{Communication: 3, Technical: 2, Examples: 1, Overall: 45},
		Band:      BandNeedsPractice,
	}

	want := strings.Join([]string{
		"Interview Feedback Summary for Sales Representative Position",
		strings.Repeat("=", 50),
		"",
		"Question 2: " + strings.Repeat("a", 70),
		"  Communication: 3/5",
		"  Technical: 2/5",
		"  Examples: 1/5",
		"  Overall: 45/100",
		"  Feedback:",
		"    • Add numbers",
		"",
		strings.Repeat("=", 50),
		"Overall Performance:",
		"  Communication: 3.0/5",
		"  Technical: 2.0/5",
		"  Examples: 1.0/5",
		"  Overall Score: 45.0/100",
		"  Questions Answered: 1/10",
		"",
		BandNeedsPractice.Text(),
		"",
		"Tips for improvement:",
		"  • " + Tips[0],
		"  • " + Tips[1],
		"  • " + Tips[2],
		"  • " + Tips[3],
	}, "\n")

	if got := Render(report); got != want {
		t.Fatalf("unexpected summary:\n%s\n--- want ---\n%s", got, want)
	}
	if Render(report) != Render(report) {
		t.Fatalf("render must be deterministic")
	}
}

func TestReevaluationIsStoredAndNotRepeated(t *testing.T) {
	t.Parallel()

	judge := &stubJudge{eval: evalWithOverall(70)}
	s := sessionWith(evalWithOverall(90), nil, nil)

	a := New(judge, nil, WithParallelism(2))
	first := a.Aggregate(context.Background(), s)
	if first.Responses != 3 {
		t.Fatalf("expected 3 responses, got %d", first.Responses)
	}
	if judge.total() != 2 || judge.calls["answer 1"] != 0 {
		t.Fatalf("only missing evaluations must be requested: %v", judge.calls)
	}
	for _, rec := range s.Questions {
		if rec.Evaluation == nil {
			t.Fatalf("re-evaluation must be stored on the record")
		}
	}

	second := a.Aggregate(context.Background(), s)
	if judge.total() != 2 {
		t.Fatalf("stored evaluations must not be requested again, got %d calls", judge.total())
	}
	if second.Averages != first.Averages {
		t.Fatalf("aggregation must be stable: %+v vs %+v", first.Averages, second.Averages)
	}
}

func TestFailedReevaluationIsSkipped(t *testing.T) {
	t.Parallel()

	s := sessionWith(evalWithOverall(50), nil)
	report := New(&stubJudge{err: errors.New("timeout")}, nil).Aggregate(context.Background(), s)

	if report.Responses != 1 || report.Averages.Overall != 50 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Items) != 1 || report.Items[0].Number != 1 {
		t.Fatalf("unexpected items: %+v", report.Items)
	}
}
