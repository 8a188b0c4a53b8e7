package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pathlight/pathlight/server/service/selector"
	"github.com/pathlight/pathlight/server/service/stats"
	"github.com/pathlight/pathlight/store"
)

// Store is the storage port the engine needs.
type Store interface {
	ListSubjects(ctx context.Context, find *store.FindSubject) ([]*store.Subject, error)
	ListUnits(ctx context.Context, find *store.FindUnit) ([]*store.Unit, error)
	ListLessons(ctx context.Context, find *store.FindLesson) ([]*store.Lesson, error)
	ListLessonProgress(ctx context.Context, find *store.FindLessonProgress) ([]*store.LessonProgress, error)
	ListQuestions(ctx context.Context, find *store.FindQuestion) ([]*store.Question, error)
	ListPracticeSessions(ctx context.Context, find *store.FindPracticeSession) ([]*store.PracticeSession, error)
}

// Service scores and ranks next-action recommendations.
type Service struct {
	store    Store
	stats    *stats.Service
	selector *selector.Service
	config   Config
	now      func() time.Time
}

// NewService creates an engine with the given configuration.
func NewService(s Store, statsService *stats.Service, selectorService *selector.Service, config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid recommendation config")
	}
	return &Service{
		store:    s,
		stats:    statsService,
		selector: selectorService,
		config:   config,
		now:      time.Now,
	}, nil
}

// GetTopRecommendations builds a context per subject in parallel, scores
// every candidate, and returns the global top slice. The whole computation
// is read-only, so cancelling the context abandons it without side effects.
func (s *Service) GetTopRecommendations(ctx context.Context, limit int) ([]*ScoredRecommendation, error) {
	subjects, err := s.store.ListSubjects(ctx, &store.FindSubject{})
	if err != nil {
		return nil, errors.Wrap(err, "list subjects")
	}

	perSubject := make([][]*ScoredRecommendation, len(subjects))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, subject := range subjects {
		i, subject := i, subject
		group.Go(func() error {
			sc, err := s.BuildContext(groupCtx, subject)
			if err != nil {
				return errors.Wrapf(err, "build context for subject %d", subject.ID)
			}
			perSubject[i] = s.scoreSubject(sc)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged := []*ScoredRecommendation{}
	for _, list := range perSubject {
		merged = append(merged, list...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	maxTotal := s.config.MaxTotal
	if limit > 0 && limit < maxTotal {
		maxTotal = limit
	}
	if len(merged) > maxTotal {
		merged = merged[:maxTotal]
	}
	return merged, nil
}

// GetSubjectRecommendations scores a single subject.
func (s *Service) GetSubjectRecommendations(ctx context.Context, subject *store.Subject) ([]*ScoredRecommendation, error) {
	sc, err := s.BuildContext(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.scoreSubject(sc), nil
}

// scoreSubject scores and truncates one subject's candidates.
func (s *Service) scoreSubject(sc *SubjectContext) []*ScoredRecommendation {
	candidates := s.generate(sc)
	scored := make([]*ScoredRecommendation, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, &ScoredRecommendation{
			Subject:        sc.Subject,
			Recommendation: c.recommendation,
			Score:          c.factors.score(s.config),
			Badge:          c.badge,
			Reason:         c.reason,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > s.config.MaxPerSubject {
		scored = scored[:s.config.MaxPerSubject]
	}
	return scored
}
