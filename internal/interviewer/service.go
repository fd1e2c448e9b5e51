// Package interviewer runs the conversation around the interview policy: role
// selection, commands, question flow and completion.
package interviewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/feedback"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/persist"
	"github.com/spigell/hh-interviewer/internal/policy"
	"github.com/spigell/hh-interviewer/internal/questionbank"
	"github.com/spigell/hh-interviewer/internal/store"
)

const (
	DefaultMaxQuestions = 10
	DefaultPersistEvery = 5
)

// Config holds the interview limits.
type Config struct {
	MaxQuestions int `mapstructure:"max-questions"`
	PersistEvery int `mapstructure:"persist-every"`
}

// Deps are the collaborators of a Service. Store, Bank and Policy are required.
type Deps struct {
	Store     store.Store
	Bank      *questionbank.Bank
	Policy    *policy.Policy
	Judge     ai.Judge
	Followups ai.FollowupGenerator
	Feedback  *feedback.Aggregator
	Persister persist.Persister
	Logger    *zap.Logger
	Now       func() time.Time
}

// Reply is the outcome of one turn.
type Reply struct {
	Text           string `json:"response"`
	SessionID      string `json:"session_id"`
	Role           string `json:"role,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
	Completed      bool   `json:"completed"`
}

// Service handles turns for many sessions. Turns of one session run one at a
// time; different sessions run in parallel.
type Service struct {
	cfg       Config
	store     store.Store
	bank      *questionbank.Bank
	policy    *policy.Policy
	judge     ai.Judge
	followups ai.FollowupGenerator
	feedback  *feedback.Aggregator
	persister persist.Persister
	logger    *zap.Logger
	now       func() time.Time
	locks     *keyedMutex
}

func New(cfg Config, deps Deps) (*Service, error) {
	if deps.Store == nil || deps.Bank == nil || deps.Policy == nil {
		return nil, errors.New("interviewer: store, bank and policy are required")
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultMaxQuestions
	}
	if cfg.PersistEvery <= 0 {
		cfg.PersistEvery = DefaultPersistEvery
	}
	if deps.Feedback == nil {
		deps.Feedback = feedback.New(deps.Judge, deps.Logger)
	}
	if deps.Persister == nil {
		deps.Persister = persist.Discard{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		cfg:       cfg,
		store:     deps.Store,
		bank:      deps.Bank,
		policy:    deps.Policy,
		judge:     deps.Judge,
		followups: deps.Followups,
		feedback:  deps.Feedback,
		persister: deps.Persister,
		logger:    logger.OrNop(deps.Logger),
		now:       deps.Now,
		locks:     newKeyedMutex(),
	}, nil
}

// Handle processes one user message. Judge and persistence failures never
// fail a turn; only an invalid session id or an unusable question catalog do.
func (s *Service) Handle(ctx context.Context, sessionID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return &Reply{Text: EmptyMessageReply, SessionID: sessionID, TotalQuestions: s.cfg.MaxQuestions}, nil
	}
	if err := persist.ValidateID(sessionID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, ok := s.store.Get(sessionID)
	if !ok {
		sess = interview.NewSession(sessionID, s.now())
	}
	eventsBefore := len(sess.Transcript)

	t := &turn{svc: s, sess: sess, message: message, now: s.now()}
	text, err := t.run(ctx)
	if err != nil {
		return nil, err
	}
	sess.AppendEvent(interview.SpeakerAssistant, text, s.now())
	s.store.Put(sess)

	if t.closedNow || crossed(eventsBefore, len(sess.Transcript), s.cfg.PersistEvery) {
		s.persist(sess)
	}

	s.logger.Info("turn handled",
		append(logger.SessionFields(sess.ID, string(sess.Role), string(sess.Difficulty)),
			zap.String("outcome", t.outcome),
			zap.Int("answered", sess.AnsweredCount()),
		)...,
	)

	return s.reply(sess, text), nil
}

// Reset drops the live session after mirroring it once more.
func (s *Service) Reset(_ context.Context, sessionID string) error {
	if err := persist.ValidateID(sessionID); err != nil {
		return err
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if sess, ok := s.store.Delete(sessionID); ok {
		s.persist(sess)
		s.logger.Info("session reset", logger.SessionFields(sess.ID, string(sess.Role), string(sess.Difficulty))...)
	}
	return nil
}

// Snapshot returns the live session, or its persisted mirror once it is gone.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (*persist.Snapshot, error) {
	if err := persist.ValidateID(sessionID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(sessionID)
	sess, ok := s.store.Get(sessionID)
	var snap *persist.Snapshot
	if ok {
		snap = persist.FromSession(sess)
	}
	unlock()

	if snap != nil {
		return snap, nil
	}
	return s.persister.Load(ctx, sessionID)
}

// Evicted mirrors a session dropped by the store.
func (s *Service) Evicted(sess *interview.Session) {
	unlock := s.locks.Lock(sess.ID)
	defer unlock()
	s.persist(sess)
}

// Flush mirrors sessions taken out of the store, waiting for room in the
// persistence queue. It returns how many were handed over.
func (s *Service) Flush(ctx context.Context, sessions []*interview.Session) int {
	saved := 0
	for _, sess := range sessions {
		unlock := s.locks.Lock(sess.ID)
		snap := persist.FromSession(sess)
		unlock()

		if err := persist.SaveWait(ctx, s.persister, snap); err != nil {
			s.logger.Warn("session not persisted", zap.String(logger.FieldSessionID, sess.ID), zap.Error(err))
			continue
		}
		saved++
	}
	return saved
}

func (s *Service) persist(sess *interview.Session) {
	if err := s.persister.Save(context.Background(), persist.FromSession(sess)); err != nil {
		s.logger.Warn("session not persisted", zap.String(logger.FieldSessionID, sess.ID), zap.Error(err))
	}
}

func (s *Service) reply(sess *interview.Session, text string) *Reply {
	answered := sess.AnsweredCount()
	number := answered
	if sess.CurrentQuestion != "" {
		number = answered + 1
	}

	return &Reply{
		Text:           text,
		SessionID:      sess.ID,
		Role:           string(sess.Role),
		Difficulty:     string(sess.Difficulty),
		QuestionNumber: number,
		TotalQuestions: s.cfg.MaxQuestions,
		Completed:      sess.Completed,
	}
}

// crossed reports whether growing from before to after events passed a
// multiple of every.
func crossed(before, after, every int) bool {
	return after/every > before/every
}

// turn is the state of one Handle call.
type turn struct {
	svc       *Service
	sess      *interview.Session
	message   string
	now       time.Time
	userEvent *interview.Event
	outcome   string
	closedNow bool
}

func (t *turn) run(ctx context.Context) (string, error) {
	sess := t.sess

	if sess.Role != "" && sess.CurrentQuestion != "" && isStray(t.message) {
		sess.AppendEvent(interview.SpeakerUser, t.message, t.now)
		t.outcome = "off_topic"
		return policy.RedirectText(sess.CurrentQuestion), nil
	}

	t.userEvent = sess.AppendEvent(interview.SpeakerUser, t.message, t.now)

	if sess.Role == "" {
		role, ok := detectRole(t.message)
		if !ok {
			t.outcome = "role_menu"
			return RoleMenu, nil
		}
		sess.Role = role
		t.outcome = "role_selected"
		return t.nextQuestion(sess.Difficulty)
	}

	switch parseCommand(t.message) {
	case commandFeedback:
		t.outcome = "feedback"
		return t.summarize(ctx), nil
	case commandSkip:
		return t.skip()
	case commandFollowup:
		t.outcome = "followup_requested"
		return t.probe(ctx), nil
	}

	if sess.Completed {
		t.outcome = "completed"
		return InterviewOverReply, nil
	}
	if sess.CurrentQuestion == "" {
		t.outcome = "question"
		return t.nextQuestion(sess.Difficulty)
	}

	return t.answer(ctx)
}

func (t *turn) answer(ctx context.Context) (string, error) {
	sess := t.sess
	question := sess.CurrentQuestion

	decision := t.svc.policy.Decide(ctx, t.message, question, sess)
	t.outcome = decision.Action.String()
	if decision.Action == policy.Redirect {
		return decision.Text, nil
	}

	eval := decision.Evaluation
	if eval == nil {
		eval = ai.EvaluateOrDefault(ctx, t.svc.judge, question, t.message, sess.Role, t.svc.logger)
	}
	t.userEvent.Evaluation = eval
	if rec := sess.RecordAnswer(t.message, t.now); rec != nil {
		rec.Evaluation = eval
	}

	switch decision.Action {
	case policy.Followup:
		return decision.Text, nil
	case policy.Escalate:
		if t.quotaReached() {
			return t.complete(ctx), nil
		}
		q, err := t.nextQuestion(interview.DifficultyHard)
		if err != nil {
			return "", err
		}
		return EscalationPrefix + q, nil
	default:
		sess.ClearCurrentQuestion()
		if t.quotaReached() {
			return t.complete(ctx), nil
		}
		return t.nextQuestion(sess.Difficulty)
	}
}

func (t *turn) skip() (string, error) {
	t.outcome = "skip"
	sess := t.sess
	if sess.Completed {
		return InterviewOverReply, nil
	}

	sess.ClearCurrentQuestion()
	if len(sess.UsedQuestions) >= t.svc.cfg.MaxQuestions {
		sess.Close()
		t.closedNow = true
		return InterviewOverReply, nil
	}
	return t.nextQuestion(sess.Difficulty)
}

// probe asks a generated follow-up about the latest answer.
func (t *turn) probe(ctx context.Context) string {
	sess := t.sess

	var last *interview.QuestionRecord
	for i := len(sess.Questions) - 1; i >= 0; i-- {
		if sess.Questions[i].Answered() {
			last = sess.Questions[i]
			break
		}
	}

	if last == nil {
		if sess.CurrentQuestion != "" {
			return policy.RedirectText(sess.CurrentQuestion)
		}
		return InterviewOverReply
	}

	return ai.FollowupOrDefault(ctx, t.svc.followups, sess.Role, last.Question, last.Answer, t.svc.logger)
}

func (t *turn) nextQuestion(difficulty interview.Difficulty) (string, error) {
	sess := t.sess
	q, err := t.svc.bank.Get(sess.Role, difficulty, sess.UsedQuestions)
	if err != nil {
		return "", fmt.Errorf("next question: %w", err)
	}
	sess.IssueQuestion(q, t.now)
	return q, nil
}

func (t *turn) quotaReached() bool {
	return t.sess.AnsweredCount() >= t.svc.cfg.MaxQuestions
}

func (t *turn) complete(ctx context.Context) string {
	summary := t.summarize(ctx)
	t.sess.Close()
	t.closedNow = true
	t.outcome = "completed"
	return fmt.Sprintf(completionFormat, t.svc.cfg.MaxQuestions, summary)
}

// summarize always recomputes and stores the aggregated feedback.
func (t *turn) summarize(ctx context.Context) string {
	summary := t.svc.feedback.Summarize(ctx, t.sess)
	t.sess.Feedback = &interview.AggregatedFeedback{GeneratedAt: t.now, Summary: summary}
	return summary
}
