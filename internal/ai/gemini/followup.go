package gemini

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	followupTemperature = 0.8
	followupMaxTokens   = 50
)

//go:embed interviewer.md
var interviewerTemplate string

// FollowupWriter asks Gemini for a probing question about an answer.
type FollowupWriter struct {
	generator textGenerator
	logger    *zap.Logger
}

func NewFollowupWriter(generator textGenerator, log *zap.Logger) *FollowupWriter {
	return &FollowupWriter{generator: generator, logger: logger.OrNop(log)}
}

func (w *FollowupWriter) GenerateFollowup(ctx context.Context, role interview.Role, question, answer string) (string, error) {
	raw, err := w.generator.Generate(ctx, Request{
		Prompt:      fillTemplate(interviewerTemplate, role, question, answer),
		Temperature: followupTemperature,
		MaxTokens:   followupMaxTokens,
	})
	if err != nil {
		return "", err
	}

	text := cleanFollowup(raw)
	if text == "" {
		return "", errors.New("gemini returned an empty follow-up")
	}
	return text, nil
}

// cleanFollowup keeps the first sentence and makes it a question.
func cleanFollowup(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, `"'`)
	text, _, _ = strings.Cut(text, ".")
	text = strings.TrimSpace(text)
	if text == "" || text == "?" {
		return ""
	}
	if !strings.HasSuffix(text, "?") {
		text += "?"
	}
	return text
}
