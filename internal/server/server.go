// Package server exposes the interviewer over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/interviewer"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/persist"
)

// Interviewer is the part of interviewer.Service the handlers use.
type Interviewer interface {
	Handle(ctx context.Context, sessionID, message string) (*interviewer.Reply, error)
	Reset(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (*persist.Snapshot, error)
}

// DefaultLimiterIdle is how long an unused per-session bucket is kept.
const DefaultLimiterIdle = 60 * time.Minute

// Options tune the middleware stack.
type Options struct {
	// RatePerSecond and Burst bound chat turns per session. Zero disables the limit.
	RatePerSecond float64
	Burst         int
	// LimiterIdle drops buckets of sessions without traffic, normally the session TTL.
	LimiterIdle   time.Duration
	SweepInterval time.Duration
	CORSOrigins   []string
}

type Server struct {
	svc     Interviewer
	limiter *RateLimiter
	opts    Options
	logger  *zap.Logger
}

func New(svc Interviewer, opts Options, log *zap.Logger) *Server {
	s := &Server{svc: svc, opts: opts, logger: logger.OrNop(log)}
	if opts.RatePerSecond > 0 {
		s.limiter = NewRateLimiter(opts.RatePerSecond, opts.Burst, opts.LimiterIdle)
	}
	return s
}

// Run drops idle rate limit buckets until ctx is done.
func (s *Server) Run(ctx context.Context) {
	if s.limiter == nil {
		return
	}
	s.limiter.Run(ctx, s.opts.SweepInterval)
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(s.opts.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.chat)
		r.Post("/reset", s.reset)
		r.Get("/session/{id}", s.session)
	})

	return r
}
