package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/feedback"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/interviewer"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/persist"
	"github.com/spigell/hh-interviewer/internal/policy"
	"github.com/spigell/hh-interviewer/internal/questionbank"
	"github.com/spigell/hh-interviewer/internal/secrets"
	"github.com/spigell/hh-interviewer/internal/store"
)

// components is everything a command needs to run interviews.
type components struct {
	service   *interviewer.Service
	store     *store.Memory
	persister persist.Persister
}

// Close flushes pending snapshots.
func (c *components) Close() error {
	return c.persister.Close()
}

func buildComponents(ctx context.Context, config *Config, logger *zap.Logger) (*components, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	bank, err := newQuestionBank(config.QuestionsFile)
	if err != nil {
		return nil, err
	}

	backend := newBackend(ctx, config.AI, logger)

	persister, err := newPersister(ctx, config.Storage, logger)
	if err != nil {
		return nil, err
	}

	var svc *interviewer.Service
	sessions := store.NewMemory(
		store.WithTTL(config.Session.TTL),
		store.WithSweepInterval(config.Session.SweepInterval),
		store.WithLogger(logger),
		store.WithEvictFunc(func(s *interview.Session) { svc.Evicted(s) }),
	)

	svc, err = interviewer.New(config.Interview, interviewer.Deps{
		Store:     sessions,
		Bank:      bank,
		Policy:    policy.New(backend, logger),
		Judge:     backend,
		Followups: backend,
		Feedback:  feedback.New(backend, logger),
		Persister: persister,
		Logger:    logger,
	})
	if err != nil {
		persister.Close()
		return nil, err
	}

	return &components{service: svc, store: sessions, persister: persister}, nil
}

func newQuestionBank(path string) (*questionbank.Bank, error) {
	if strings.TrimSpace(path) == "" {
		return questionbank.New(), nil
	}

	catalog, err := questionbank.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return questionbank.New(questionbank.WithCatalog(catalog)), nil
}

// newBackend falls back to ai.Offline when the provider cannot be set up, so
// interviews still run on heuristics and default evaluations.
func newBackend(ctx context.Context, config *AIConfig, logger *zap.Logger) ai.Backend {
	if config == nil || !config.Enabled {
		logger.Info("judge disabled", zap.String("reason", "ai.enabled is false"))
		return ai.Offline{}
	}

	backend, err := newGeminiBackend(ctx, config, logger)
	if err != nil {
		logger.Warn("judge disabled", zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
		return ai.Offline{}
	}

	var limiter *rate.Limiter
	if config.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), max(config.Burst, 1))
	}

	return ai.NewGuard(backend, config.Timeout, limiter)
}

func newGeminiBackend(ctx context.Context, config *AIConfig, log *zap.Logger) (ai.Backend, error) {
	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
	if config.Gemini == nil {
		return nil, errors.New("gemini configuration is missing")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.WithFields(log, logger.CommonFields(gemini.Provider, config.Gemini.Model)...)

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:        config.Gemini.Model,
		MaxRetries:   config.Gemini.MaxRetries,
		RetryDelay:   config.Gemini.RetryDelay,
		MaxLogLength: config.Gemini.MaxLogLength,
	}, genLogger.With(zap.Int("ai_retry_attempts", config.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}

	return ai.Pair{
		Judge:             gemini.NewJudge(generator, genLogger),
		FollowupGenerator: gemini.NewFollowupWriter(generator, genLogger),
	}, nil
}

func newPersister(ctx context.Context, config *StorageConfig, logger *zap.Logger) (persist.Persister, error) {
	if config == nil {
		return persist.Discard{}, nil
	}

	var (
		next persist.Persister
		err  error
	)

	switch strings.ToLower(strings.TrimSpace(config.Driver)) {
	case "", "none":
		return persist.Discard{}, nil
	case "file":
		next, err = persist.NewFileStore(config.Dir)
	case "sqlite":
		next, err = persist.NewSQLite(ctx, config.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", config.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", config.Driver, err)
	}

	logger.Info("session snapshots enabled", zap.String("driver", config.Driver))
	return persist.NewAsyncWriter(next, config.QueueSize, logger), nil
}
