package heuristics

import (
	"strings"
	"testing"

	"github.com/spigell/hh-interviewer/internal/interview"
)

const strongEngineerAnswer = "In my last project I designed a billing system with a database layer and an api, " +
	"and we reduced latency by 40 percent for 3 million users every day overall."

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestAnalyzeLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		answer      string
		tooShort    bool
		tooLong     bool
		appropriate bool
	}{
		{name: "two words", answer: "I code.", tooShort: true},
		{name: "nine words", answer: words(9), tooShort: true},
		{name: "ten words", answer: words(10)},
		{name: "nineteen words", answer: words(19)},
		{name: "twenty words", answer: words(20), appropriate: true},
		{name: "one hundred fifty words", answer: words(150), appropriate: true},
		{name: "one hundred fifty one words", answer: words(151)},
		{name: "two hundred fifty words", answer: words(250), tooLong: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := Analyze(tt.answer, interview.RoleEngineer)
			if f.IsTooShort != tt.tooShort || f.IsTooLong != tt.tooLong || f.IsAppropriateLength != tt.appropriate {
				t.Fatalf("unexpected length flags: %+v", f)
			}
		})
	}
}

func TestAnalyzeKeywordsAreRoleSpecific(t *testing.T) {
	t.Parallel()

	answer := "I develop software using Python and work with databases"
	if !Analyze(answer, interview.RoleEngineer).HasKeywords {
		t.Fatalf("expected engineer keywords to match")
	}

	customer := "I always put the customer first"
	if Analyze(customer, interview.RoleEngineer).HasKeywords {
		t.Fatalf("customer is not an engineer keyword")
	}
	if !Analyze(customer, interview.RoleSales).HasKeywords || !Analyze(customer, interview.RoleRetail).HasKeywords {
		t.Fatalf("customer is a sales and retail keyword")
	}
	if Analyze(answer, interview.Role("pilot")).HasKeywords {
		t.Fatalf("unknown role must have no keywords")
	}
}

func TestAnalyzeStrongAnswer(t *testing.T) {
	t.Parallel()

	f := Analyze(strongEngineerAnswer, interview.RoleEngineer)
	if f.WordCount != 30 {
		t.Fatalf("expected 30 words, got %d", f.WordCount)
	}
	if !f.HasDigits || !f.HasKeywords || !f.HasExamples {
		t.Fatalf("expected digits, keywords and examples: %+v", f)
	}
	if !f.IsStrong {
		t.Fatalf("expected strong answer: %+v", f)
	}
}

func TestAnalyzeStrongIsVetoed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
	}{
		{name: "profanity", answer: strongEngineerAnswer + " Damn."},
		{name: "off topic phrase", answer: strongEngineerAnswer + " Honestly I don't know."},
		{name: "no evidence", answer: "I like to write code and build software for people who need it, it is fun and I enjoy learning about new things every single week"},
		{name: "wrong role", answer: strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(strongEngineerAnswer, "system", "thing"), "database", "storage"), "api", "door"), "project", "job")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if f := Analyze(tt.answer, interview.RoleEngineer); f.IsStrong {
				t.Fatalf("expected answer not to be strong: %+v", f)
			}
		})
	}
}

func TestAnalyzeFlags(t *testing.T) {
	t.Parallel()

	f := Analyze("That is a STUPID question and not relevant", interview.RoleSales)
	if !f.HasProfanity || !f.IsOffTopic {
		t.Fatalf("expected profanity and off-topic flags: %+v", f)
	}
	if f.HasDigits {
		t.Fatalf("did not expect digits")
	}
}

func TestIsNonsense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		answer string
		expect bool
	}{
		{answer: "asdf", expect: true},
		{answer: "  TEST  ", expect: true},
		{answer: "xyz", expect: true},
		{answer: "123", expect: true},
		{answer: "a", expect: true},
		{answer: "", expect: true},
		{answer: "!!!???", expect: true},
		{answer: "aaaaaaaaaaaa", expect: true},
		{answer: "abababababab", expect: true},
		{answer: "ab ab ab ab ab", expect: false},
		{answer: "abab", expect: false},
		{answer: "testing my code", expect: false},
		{answer: "I am a software engineer", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			t.Parallel()
			if got := IsNonsense(tt.answer); got != tt.expect {
				t.Fatalf("IsNonsense(%q) = %v, want %v", tt.answer, got, tt.expect)
			}
		})
	}
}

func TestIsNonsenseIsStable(t *testing.T) {
	t.Parallel()

	for _, answer := range []string{"asdf", "I am a software engineer", "zzzzzzzzzzzzzz", "42"} {
		first := IsNonsense(answer)
		second := IsNonsense(answer)
		if first != second {
			t.Fatalf("IsNonsense(%q) changed between calls: %v then %v", answer, first, second)
		}
	}
}
