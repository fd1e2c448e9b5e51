package questionbank

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spigell/hh-interviewer/internal/interview"
)

func newTestBank(opts ...Option) *Bank {
	return New(append([]Option{WithSource(rand.NewPCG(1, 2))}, opts...)...)
}

func TestGetRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	b := newTestBank()

	if _, err := b.Get(interview.Role("pilot"), interview.DifficultyEasy, nil); !errors.Is(err, interview.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := b.Get(interview.RoleSales, interview.Difficulty("extreme"), nil); !errors.Is(err, interview.ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestGetStaysInsideBucket(t *testing.T) {
	t.Parallel()

	b := newTestBank()
	for _, role := range interview.Roles {
		for _, difficulty := range interview.Difficulties {
			bucket := b.Questions(role, difficulty)
			for range 50 {
				q, err := b.Get(role, difficulty, nil)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !slices.Contains(bucket, q) {
					t.Fatalf("question %q is not in %s/%s", q, role, difficulty)
				}
			}
		}
	}
}

func TestGetHonoursExclusions(t *testing.T) {
	t.Parallel()

	b := newTestBank()
	bucket := b.Questions(interview.RoleRetail, interview.DifficultyMedium)
	exclude := bucket[:len(bucket)-1]
	want := bucket[len(bucket)-1]

	for range 20 {
		q, err := b.Get(interview.RoleRetail, interview.DifficultyMedium, exclude)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q != want {
			t.Fatalf("expected the only unused question %q, got %q", want, q)
		}
	}
}

func TestGetFallsBackWhenBucketIsExhausted(t *testing.T) {
	t.Parallel()

	b := newTestBank()
	bucket := b.Questions(interview.RoleEngineer, interview.DifficultyEasy)
	if len(bucket) != 3 {
		t.Fatalf("expected three easy engineer questions, got %d", len(bucket))
	}

	q, err := b.Get(interview.RoleEngineer, interview.DifficultyEasy, bucket)
	if err != nil {
		t.Fatalf("exhausted bucket must still yield a question: %v", err)
	}
	if !slices.Contains(bucket, q) {
		t.Fatalf("fallback question %q is not in the bucket", q)
	}
}

func TestDefaultCatalogIsComplete(t *testing.T) {
	t.Parallel()

	if err := DefaultCatalog().Validate(); err != nil {
		t.Fatalf("default catalog is invalid: %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	full := `
engineer:
  easy: ["What is a pointer?"]
  medium: ["How do you review code?"]
  hard: ["Design a rate limiter."]
sales:
  easy: ["Why sales?"]
  medium: ["Tell me about a lost deal."]
  hard: ["Negotiate a renewal."]
retail:
  easy: ["Why retail?"]
  medium: ["Describe a busy shift."]
  hard: ["Handle a broken till."]
`
	path := filepath.Join(dir, "questions.yaml")
	if err := os.WriteFile(path, []byte(full), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	b := newTestBank(WithCatalog(catalog))
	q, err := b.Get(interview.RoleEngineer, interview.DifficultyHard, nil)
	if err != nil || q != "Design a rate limiter." {
		t.Fatalf("unexpected question %q (%v)", q, err)
	}
}

func TestLoadCatalogValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "unknown role", content: "pilot:\n  easy: [\"x\"]\n", wantErr: interview.ErrInvalidRole},
		{name: "unknown difficulty", content: "engineer:\n  extreme: [\"x\"]\n", wantErr: interview.ErrInvalidDifficulty},
		{name: "missing buckets", content: "engineer:\n  easy: [\"x\"]\n"},
		{name: "not yaml", content: "engineer: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "questions.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write catalog: %v", err)
			}

			_, err := LoadCatalog(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
