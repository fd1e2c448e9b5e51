package interview

import (
	"errors"
	"testing"
	"time"
)

func TestNewSessionStartsAtMedium(t *testing.T) {
	s := NewSession("abc", time.Unix(0, 0))

	if s.Difficulty != DifficultyMedium {
		t.Fatalf("expected medium difficulty, got %q", s.Difficulty)
	}
	if s.CurrentRecord() != nil {
		t.Fatalf("expected no active question")
	}
	if s.AnsweredCount() != 0 {
		t.Fatalf("expected zero answered questions")
	}
}

func TestRecordAnswerSetsAnswerOnce(t *testing.T) {
	now := time.Unix(100, 0)
	s := NewSession("abc", now)

	if rec := s.RecordAnswer("orphan", now); rec != nil {
		t.Fatalf("expected nil record without an active question")
	}

	issued := s.IssueQuestion("How do you debug?", now)
	rec := s.RecordAnswer("I read the logs first", now.Add(time.Second))
	if rec != issued {
		t.Fatalf("expected the issued record to be filled")
	}
	if rec.Answer != "I read the logs first" || !rec.AnsweredAt.Equal(now.Add(time.Second)) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if again := s.RecordAnswer("second answer", now); again != nil {
		t.Fatalf("expected answered record to stay untouched")
	}
	if issued.Answer != "I read the logs first" {
		t.Fatalf("answer was overwritten: %q", issued.Answer)
	}
	if s.AnsweredCount() != 1 {
		t.Fatalf("expected one answered question, got %d", s.AnsweredCount())
	}
}

func TestRecordAnswerUsesRecordIdentity(t *testing.T) {
	now := time.Unix(100, 0)
	s := NewSession("abc", now)

	skipped := s.IssueQuestion("Same question?", now)
	s.ClearCurrentQuestion()
	repeated := s.IssueQuestion("Same question?", now)

	rec := s.RecordAnswer("answer", now)
	if rec != repeated {
		t.Fatalf("expected the active record to be filled")
	}
	if skipped.Answered() {
		t.Fatalf("skipped record must stay unanswered")
	}
	if len(s.UsedQuestions) != len(s.Questions) {
		t.Fatalf("used questions and records must grow together: %d vs %d", len(s.UsedQuestions), len(s.Questions))
	}
}

func TestEscalateNeverDowngrades(t *testing.T) {
	s := NewSession("abc", time.Unix(0, 0))

	if s.Escalate(DifficultyEasy) {
		t.Fatalf("escalating to an easier level must be refused")
	}
	if !s.Escalate(DifficultyHard) || s.Difficulty != DifficultyHard {
		t.Fatalf("expected escalation to hard")
	}
	if s.Escalate(DifficultyHard) {
		t.Fatalf("escalating to the same level must be a no-op")
	}
}

func TestClampEvaluation(t *testing.T) {
	e := &Evaluation{
		Scores:  Scores{Communication: 9, Technical: -2, Examples: 4},
		Overall: -10,
	}
	e.Clamp()

	if e.Scores.Communication != 5 || e.Scores.Technical != 0 || e.Scores.Examples != 4 {
		t.Fatalf("unexpected scores: %+v", e.Scores)
	}
	if e.Overall != 0 {
		t.Fatalf("expected overall 0, got %d", e.Overall)
	}

	high := &Evaluation{Overall: 140}
	high.Clamp()
	if high.Overall != 100 {
		t.Fatalf("expected overall 100, got %d", high.Overall)
	}
}

func TestDefaultEvaluation(t *testing.T) {
	e := DefaultEvaluation()

	if e.Scores != (Scores{Communication: 3, Technical: 3, Examples: 3}) || e.Overall != 60 {
		t.Fatalf("unexpected default scores: %+v", e)
	}
	if !e.ShouldFollowup || len(e.Feedback) != 1 || !e.Fallback {
		t.Fatalf("unexpected default evaluation: %+v", e)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("  Engineer ")
	if err != nil || r != RoleEngineer {
		t.Fatalf("expected engineer, got %q (%v)", r, err)
	}

	if _, err := ParseRole("astronaut"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := ParseDifficulty("extreme"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
	if RoleSales.Title() != "Sales Representative" {
		t.Fatalf("unexpected title %q", RoleSales.Title())
	}
}
