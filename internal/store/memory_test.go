package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spigell/hh-interviewer/internal/interview"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryGetPutDelete(t *testing.T) {
	m := NewMemory()

	_, ok := m.Get("a")
	require.False(t, ok)

	s := interview.NewSession("a", time.Unix(0, 0))
	m.Put(s)

	got, ok := m.Get("a")
	require.True(t, ok)
	require.Same(t, s, got)
	require.Equal(t, 1, m.Len())

	deleted, ok := m.Delete("a")
	require.True(t, ok)
	require.Same(t, s, deleted)

	_, ok = m.Delete("a")
	require.False(t, ok)
	require.Zero(t, m.Len())
}

func TestMemorySweepEvictsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}

	var evicted []string
	m := NewMemory(
		WithTTL(time.Hour),
		WithClock(clock.Now),
		WithEvictFunc(func(s *interview.Session) { evicted = append(evicted, s.ID) }),
	)

	m.Put(interview.NewSession("idle", clock.Now()))
	m.Put(interview.NewSession("active", clock.Now()))

	clock.Advance(40 * time.Minute)
	_, ok := m.Get("active")
	require.True(t, ok)

	clock.Advance(30 * time.Minute)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, []string{"idle"}, evicted)

	_, ok = m.Get("idle")
	require.False(t, ok)
	_, ok = m.Get("active")
	require.True(t, ok)
}

func TestMemoryDrain(t *testing.T) {
	evicted := 0
	m := NewMemory(WithEvictFunc(func(*interview.Session) { evicted++ }))

	for _, id := range []string{"a", "b", "c"} {
		m.Put(interview.NewSession(id, time.Unix(0, 0)))
	}

	drained := m.Drain()
	require.Len(t, drained, 3)
	require.Equal(t, 0, m.Len())
	require.Zero(t, evicted)
	require.Empty(t, m.Drain())
}

func TestMemoryWithoutTTLKeepsSessions(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m := NewMemory(WithTTL(0), WithClock(clock.Now))

	m.Put(interview.NewSession("a", clock.Now()))
	clock.Advance(24 * 365 * time.Hour)

	require.Zero(t, m.Sweep())
	require.Equal(t, 1, m.Len())
}

func TestMemoryRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	evictedCh := make(chan string, 1)
	m := NewMemory(
		WithTTL(time.Nanosecond),
		WithSweepInterval(5*time.Millisecond),
		WithEvictFunc(func(s *interview.Session) { evictedCh <- s.ID }),
	)
	m.Put(interview.NewSession("short-lived", time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()

	select {
	case id := <-evictedCh:
		require.Equal(t, "short-lived", id)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not evict the session")
	}

	cancel()
	<-done
}
