// Package questionbank draws interview questions by role and difficulty.
package questionbank

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// Bank serves random questions from a catalog. It is safe for concurrent use.
type Bank struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	catalog Catalog
}

type Option func(*Bank)

// WithSource makes selection reproducible.
func WithSource(src rand.Source) Option {
	return func(b *Bank) {
		b.rnd = rand.New(src)
	}
}

// WithCatalog replaces the built-in questions.
func WithCatalog(c Catalog) Option {
	return func(b *Bank) {
		b.catalog = c
	}
}

func New(opts ...Option) *Bank {
	seed := uint64(time.Now().UnixNano())
	b := &Bank{
		rnd:     rand.New(rand.NewPCG(seed, seed>>1)),
		catalog: DefaultCatalog(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Get returns a question of the given role and difficulty that is not in
// exclude. When every question of the bucket is excluded the whole bucket is
// eligible again, so a valid request always yields a question.
func (b *Bank) Get(role interview.Role, difficulty interview.Difficulty, exclude []string) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", interview.ErrInvalidRole, role)
	}
	if !difficulty.Valid() {
		return "", fmt.Errorf("%w: %q", interview.ErrInvalidDifficulty, difficulty)
	}

	bucket := b.catalog[role][difficulty]
	if len(bucket) == 0 {
		return "", fmt.Errorf("no questions for %s/%s", role, difficulty)
	}

	available := make([]string, 0, len(bucket))
	for _, q := range bucket {
		if !slices.Contains(exclude, q) {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		available = bucket
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return available[b.rnd.IntN(len(available))], nil
}

// Questions returns a copy of one bucket.
func (b *Bank) Questions(role interview.Role, difficulty interview.Difficulty) []string {
	return slices.Clone(b.catalog[role][difficulty])
}
