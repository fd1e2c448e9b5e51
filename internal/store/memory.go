// Package store keeps live interview sessions.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	DefaultTTL           = 60 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Store maps session ids to sessions.
type Store interface {
	Get(id string) (*interview.Session, bool)
	Put(s *interview.Session)
	Delete(id string) (*interview.Session, bool)
}

// EvictFunc is called for every session dropped by the sweeper, outside the
// store lock.
type EvictFunc func(s *interview.Session)

type entry struct {
	session  *interview.Session
	lastSeen time.Time
}

// Memory is an in-process Store. Sessions idle for longer than the TTL are
// dropped by Sweep; a non-positive TTL keeps them forever.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry

	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	onEvict  EvictFunc
	logger   *zap.Logger
}

type Option func(*Memory)

func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) { m.ttl = ttl }
}

func WithSweepInterval(d time.Duration) Option {
	return func(m *Memory) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

func WithEvictFunc(fn EvictFunc) Option {
	return func(m *Memory) { m.onEvict = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Memory) { m.logger = logger.OrNop(l) }
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries:  make(map[string]*entry),
		ttl:      DefaultTTL,
		interval: DefaultSweepInterval,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session and marks it as used.
func (m *Memory) Get(id string) (*interview.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.session, true
}

func (m *Memory) Put(s *interview.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[s.ID] = &entry{session: s, lastSeen: m.now()}
}

func (m *Memory) Delete(id string) (*interview.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	delete(m.entries, id)
	return e.session, true
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Drain removes every session and returns them. The evict func is not called.
func (m *Memory) Drain() []*interview.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]*interview.Session, 0, len(m.entries))
	for id, e := range m.entries {
		sessions = append(sessions, e.session)
		delete(m.entries, id)
	}
	return sessions
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Memory) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*interview.Session
	for id, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.session)
			delete(m.entries, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.logger.Debug("session expired", logger.SessionFields(s.ID, string(s.Role), string(s.Difficulty))...)
		if m.onEvict != nil {
			m.onEvict(s)
		}
	}

	return len(expired)
}

// Run sweeps on every interval tick until ctx is done.
func (m *Memory) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("session sweeper started", zap.Duration("interval", m.interval), zap.Duration("ttl", m.ttl))
	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("expired sessions removed", zap.Int("count", n))
			}
		case <-ctx.Done():
			m.logger.Info("session sweeper stopped", zap.NamedError("reason", ctx.Err()))
			return
		}
	}
}
