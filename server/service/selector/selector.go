// Package selector assembles the question sets shown in feed refreshes and
// practice sessions, balancing coverage, freshness, and difficulty.
package selector

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pathlight/pathlight/server/service/stats"
	"github.com/pathlight/pathlight/store"
)

const (
	// weakScanLimit bounds how many of the hardest questions are scanned
	// when detecting weak concepts.
	weakScanLimit = 50
	// weakConceptLimit caps how many weak concepts are reported.
	weakConceptLimit = 10

	// DefaultWeakMinAttempts is the minimum sample size before a question's
	// success rate is trusted.
	DefaultWeakMinAttempts = 3
	// DefaultWeakMaxSuccessRate is the success rate at or below which a
	// question counts toward a weak concept.
	DefaultWeakMaxSuccessRate = 0.5

	// DefaultFeedExclusionHours keeps a question out of the feed after it
	// was last shown.
	DefaultFeedExclusionHours = 24

	// defaultSessionQuestionCount is used when the caller does not size the
	// session.
	defaultSessionQuestionCount = 10
)

// Store is the storage port the selector needs.
type Store interface {
	ListQuestions(ctx context.Context, find *store.FindQuestion) ([]*store.Question, error)
	ListLessons(ctx context.Context, find *store.FindLesson) ([]*store.Lesson, error)
	ListLessonProgress(ctx context.Context, find *store.FindLessonProgress) ([]*store.LessonProgress, error)

	CreatePracticeSession(ctx context.Context, create *store.PracticeSession, questions []*store.PracticeQuestion) (*store.PracticeSession, error)
	GetPracticeSession(ctx context.Context, find *store.FindPracticeSession) (*store.PracticeSession, error)
	UpdatePracticeSession(ctx context.Context, update *store.UpdatePracticeSession) error
	ListPracticeQuestions(ctx context.Context, find *store.FindPracticeQuestion) ([]*store.PracticeQuestion, error)
	UpdatePracticeQuestion(ctx context.Context, update *store.UpdatePracticeQuestion) error
}

// Service builds question sets and owns practice-session lifecycle.
type Service struct {
	store Store
	stats *stats.Service
	now   func() time.Time

	// rngMu guards rng; rand.Rand sources are not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand

	// sessionLocks serialize mutations per session so answer/skip/complete
	// read-modify-write cycles cannot interleave.
	sessionLocks [32]sync.Mutex
}

// NewService creates a new selector backed by system entropy and the system
// clock. Tests construct the struct directly with a seeded source.
func NewService(s Store, statsService *stats.Service) *Service {
	return &Service{
		store: s,
		stats: statsService,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) shuffle(questions []*store.Question) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}
