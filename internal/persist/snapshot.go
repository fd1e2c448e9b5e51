// Package persist mirrors sessions to durable storage. The live session in
// memory stays the source of truth.
package persist

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
)

var (
	ErrNotFound         = errors.New("session snapshot not found")
	ErrInvalidSessionID = errors.New("invalid session id")
)

const modeInterview = "interview"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateID rejects ids that are unsafe as file names or keys.
func ValidateID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// Snapshot is the serialized form of a session.
type Snapshot struct {
	SessionID          string    `json:"sessionId"`
	Role               string    `json:"role"`
	Difficulty         string    `json:"difficulty,omitempty"`
	Mode               string    `json:"mode"`
	StartedAt          time.Time `json:"startedAt"`
	Completed          bool      `json:"completed,omitempty"`
	Events             []Event   `json:"events"`
	AggregatedFeedback *Feedback `json:"aggregatedFeedback,omitempty"`
}

type Event struct {
	Time    time.Time             `json:"time"`
	Speaker string                `json:"speaker"`
	Text    string                `json:"text"`
	Eval    *interview.Evaluation `json:"eval,omitempty"`
}

type Feedback struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Summary     string    `json:"summary"`
}

// FromSession deep-copies s, so the snapshot can be written while the
// session keeps changing.
func FromSession(s *interview.Session) *Snapshot {
	snap := &Snapshot{
		SessionID:  s.ID,
		Role:       string(s.Role),
		Difficulty: string(s.Difficulty),
		Mode:       modeInterview,
		StartedAt:  s.StartedAt,
		Completed:  s.Completed,
		Events:     make([]Event, 0, len(s.Transcript)),
	}

	for _, e := range s.Transcript {
		snap.Events = append(snap.Events, Event{
			Time:    e.Time,
			Speaker: string(e.Speaker),
			Text:    e.Text,
			Eval:    copyEvaluation(e.Evaluation),
		})
	}

	if s.Feedback != nil {
		snap.AggregatedFeedback = &Feedback{GeneratedAt: s.Feedback.GeneratedAt, Summary: s.Feedback.Summary}
	}

	return snap
}

func copyEvaluation(e *interview.Evaluation) *interview.Evaluation {
	if e == nil {
		return nil
	}
	copied := *e
	copied.Feedback = slices.Clone(e.Feedback)
	return &copied
}

// Persister stores snapshots by session id.
type Persister interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	Close() error
}

// Discard is used when persistence is disabled.
type Discard struct{}

func (Discard) Save(context.Context, *Snapshot) error { return nil }

func (Discard) Load(context.Context, string) (*Snapshot, error) { return nil, ErrNotFound }

func (Discard) Close() error { return nil }
