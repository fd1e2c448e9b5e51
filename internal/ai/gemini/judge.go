package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	judgeTemperature = 0.3
	judgeMaxTokens   = 200
)

//go:embed evaluation.md
var evaluationTemplate string

var requiredEvaluationKeys = []string{"scores", "overall"}

type textGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Judge scores answers with Gemini.
type Judge struct {
	generator textGenerator
	logger    *zap.Logger
}

func NewJudge(generator textGenerator, log *zap.Logger) *Judge {
	return &Judge{generator: generator, logger: logger.OrNop(log)}
}

func (j *Judge) Evaluate(ctx context.Context, question, answer string, role interview.Role) (*interview.Evaluation, error) {
	prompt := fillTemplate(evaluationTemplate, role, question, answer)

	raw, err := j.generator.Generate(ctx, Request{
		Prompt:      prompt,
		Temperature: judgeTemperature,
		MaxTokens:   judgeMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	eval, err := parseEvaluation(raw)
	if err != nil {
		j.logger.Debug("unusable judge response", zap.String("role", string(role)), zap.Error(err))
		return nil, err
	}

	return eval, nil
}

type evaluationPayload struct {
	Scores struct {
		Communication int `mapstructure:"communication"`
		Technical     int `mapstructure:"technical"`
		Examples      int `mapstructure:"examples"`
	} `mapstructure:"scores"`
	Overall          int      `mapstructure:"overall"`
	ShouldFollowup   bool     `mapstructure:"should_followup"`
	FollowupQuestion string   `mapstructure:"followup_question"`
	Feedback         []string `mapstructure:"feedback"`
}

func parseEvaluation(raw string) (*interview.Evaluation, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	for _, key := range requiredEvaluationKeys {
		if _, ok := data[key]; !ok {
			return nil, fmt.Errorf("parse gemini response: missing %q", key)
		}
	}

	var payload evaluationPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &payload,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	feedback := make([]string, 0, len(payload.Feedback))
	for _, item := range payload.Feedback {
		if item = strings.TrimSpace(item); item != "" {
			feedback = append(feedback, item)
		}
	}

	eval := &interview.Evaluation{
		Scores: interview.Scores{
			Communication: payload.Scores.Communication,
			Technical:     payload.Scores.Technical,
			Examples:      payload.Scores.Examples,
		},
		Overall:          payload.Overall,
		ShouldFollowup:   payload.ShouldFollowup,
		FollowupQuestion: strings.TrimSpace(payload.FollowupQuestion),
		Feedback:         feedback,
	}
	eval.Clamp()

	return eval, nil
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}

func fillTemplate(template string, role interview.Role, question, answer string) string {
	return strings.NewReplacer(
		"{{ROLE}}", role.Title(),
		"{{QUESTION}}", strings.TrimSpace(question),
		"{{ANSWER}}", strings.TrimSpace(answer),
	).Replace(template)
}
