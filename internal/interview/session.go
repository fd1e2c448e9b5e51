package interview

import "time"

// Speaker identifies who produced a transcript event.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Event is one line of the conversation.
type Event struct {
	Time       time.Time
	Speaker    Speaker
	Text       string
	Evaluation *Evaluation
}

// QuestionRecord ties an issued question to the answer and evaluation it received.
type QuestionRecord struct {
	Question   string
	Answer     string
	AskedAt    time.Time
	AnsweredAt time.Time
	Evaluation *Evaluation
}

func (q *QuestionRecord) Answered() bool {
	return q.Answer != ""
}

// AggregatedFeedback is the final summary of a session.
type AggregatedFeedback struct {
	GeneratedAt time.Time
	Summary     string
}

// Session is the state of one interview. It is not safe for concurrent use;
// callers serialize turns per session id.
type Session struct {
	ID                string
	Role              Role
	Difficulty        Difficulty
	CurrentQuestion   string
	UsedQuestions     []string
	Questions         []*QuestionRecord
	StrongAnswerCount int
	StartedAt         time.Time
	Transcript        []*Event
	Feedback          *AggregatedFeedback
	Completed         bool

	// current indexes the record of CurrentQuestion in Questions, -1 when none.
	current int
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Difficulty: DifficultyMedium,
		StartedAt:  now,
		current:    -1,
	}
}

// IssueQuestion makes q the active question and appends its transcript record.
func (s *Session) IssueQuestion(q string, now time.Time) *QuestionRecord {
	rec := &QuestionRecord{Question: q, AskedAt: now}
	s.CurrentQuestion = q
	s.UsedQuestions = append(s.UsedQuestions, q)
	s.Questions = append(s.Questions, rec)
	s.current = len(s.Questions) - 1
	return rec
}

// RecordAnswer stores answer on the record of the active question. A record
// keeps its first answer: nil is returned when there is no active question or
// it was already answered.
func (s *Session) RecordAnswer(answer string, now time.Time) *QuestionRecord {
	rec := s.CurrentRecord()
	if rec == nil || rec.Answered() {
		return nil
	}
	rec.Answer = answer
	rec.AnsweredAt = now
	return rec
}

// CurrentRecord returns the record of the active question, if any.
func (s *Session) CurrentRecord() *QuestionRecord {
	if s.CurrentQuestion == "" || s.current < 0 || s.current >= len(s.Questions) {
		return nil
	}
	return s.Questions[s.current]
}

func (s *Session) ClearCurrentQuestion() {
	s.CurrentQuestion = ""
	s.current = -1
}

// AnsweredCount is the number of records holding an answer.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, q := range s.Questions {
		if q.Answered() {
			n++
		}
	}
	return n
}

// Escalate raises the difficulty to d. Difficulty never goes down, so the call
// is a no-op unless d is harder than the current level.
func (s *Session) Escalate(d Difficulty) bool {
	if !s.Difficulty.Below(d) {
		return false
	}
	s.Difficulty = d
	return true
}

func (s *Session) AppendEvent(speaker Speaker, text string, now time.Time) *Event {
	e := &Event{Time: now, Speaker: speaker, Text: text}
	s.Transcript = append(s.Transcript, e)
	return e
}

// Close ends the interview; no further questions are issued.
func (s *Session) Close() {
	s.ClearCurrentQuestion()
	s.Completed = true
}
