package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the judge provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the judge model identifier.
	FieldModel = "ai_model"

	FieldSessionID  = "session_id"
	FieldRole       = "role"
	FieldDifficulty = "difficulty"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	logger = OrNop(logger)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// CommonFields describe the judge provider and model.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// SessionFields describe the interview a log line belongs to. The role is
// omitted until the candidate picks one.
func SessionFields(id, role, difficulty string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSessionID, Value: id},
		StringField{Key: FieldRole, Value: role},
		StringField{Key: FieldDifficulty, Value: difficulty},
	)
}
