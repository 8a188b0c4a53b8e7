package recommend

import (
	"fmt"
	"time"
)

// candidate is one unscored recommendation produced by a generator.
type candidate struct {
	recommendation *Recommendation
	factors        factors
	badge          string
	reason         string
}

// generate runs every generator for one subject. Each generator emits at
// most one candidate; StartNewUnit only fires when nothing else did.
func (s *Service) generate(sc *SubjectContext) []*candidate {
	candidates := []*candidate{}
	for _, generator := range []func(*SubjectContext) *candidate{
		s.continueLesson,
		s.reviewWeakConcept,
		s.completeUnit,
		s.quickReview,
		s.streakAtRisk,
	} {
		if c := generator(sc); c != nil {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		if c := s.startNewUnit(sc); c != nil {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

func (s *Service) continueLesson(sc *SubjectContext) *candidate {
	target := sc.ContinueTarget
	if target == nil {
		return nil
	}

	var f factors
	// The no-session-today check comes first so it wins over the
	// progress branch on ties.
	switch {
	case sc.StudySessionsToday == 0:
		f.Urgency = 90
	case sc.PercentComplete > 0.7:
		f.Urgency = 85
	default:
		f.Urgency = 70
	}
	f.Relevance = 60
	if sc.LastStudiedTs != nil && s.now().Sub(time.Unix(*sc.LastStudiedTs, 0)) <= 24*time.Hour {
		f.Relevance = 90
	}
	f.Impact = min(100, sc.PercentComplete*100+30)
	f.Recency = 40
	if sc.LastStudiedTs != nil {
		f.Recency = 80
	}

	return &candidate{
		recommendation: &Recommendation{
			Type: TypeContinueLesson,
			ContinueLesson: &ContinueLessonPayload{
				LessonID:        target.Lesson.ID,
				LessonTitle:     target.Lesson.Title,
				PercentComplete: sc.PercentComplete,
			},
		},
		factors: f,
		badge:   "Keep going",
		reason:  fmt.Sprintf("Pick up where you left off in %q", target.Lesson.Title),
	}
}

func (s *Service) reviewWeakConcept(sc *SubjectContext) *candidate {
	if sc.TotalQuestionsAsked < s.config.MinSampleSize || sc.WeakConceptCount == 0 {
		return nil
	}
	successRate := 0.0
	if sc.AverageSuccessRate != nil {
		successRate = *sc.AverageSuccessRate
	}

	var f factors
	switch {
	case successRate < s.config.CriticalSuccessRate:
		f.Urgency = 95
	case successRate < s.config.WeakSuccessRate:
		f.Urgency = 80
	default:
		f.Urgency = 50
	}
	f.Relevance = 85
	f.Impact = 100 - successRate*100
	f.Recency = 50

	badge := "Needs work"
	if successRate < s.config.CriticalSuccessRate {
		badge = "Struggling"
	}
	return &candidate{
		recommendation: &Recommendation{
			Type: TypeReviewWeakConcept,
			ReviewWeakConcept: &ReviewWeakConceptPayload{
				WeakConceptCount: sc.WeakConceptCount,
				SuccessRate:      successRate,
			},
		},
		factors: f,
		badge:   badge,
		reason: fmt.Sprintf("%d concept(s) below %.0f%% success, worth a focused review",
			sc.WeakConceptCount, s.config.WeakSuccessRate*100),
	}
}

func (s *Service) completeUnit(sc *SubjectContext) *candidate {
	for _, up := range sc.Units {
		if up.PercentComplete < s.config.NearCompleteThreshold || up.PercentComplete >= 1.0 {
			continue
		}
		f := factors{
			Urgency:   min(100, up.PercentComplete*100+20),
			Relevance: 75,
			Impact:    85,
			Recency:   55,
		}
		remaining := up.TotalLessons - up.LessonsCompleted
		return &candidate{
			recommendation: &Recommendation{
				Type: TypeCompleteUnit,
				CompleteUnit: &CompleteUnitPayload{
					UnitID:           up.Unit.ID,
					UnitName:         up.Unit.Name,
					PercentComplete:  up.PercentComplete,
					LessonsRemaining: remaining,
				},
			},
			factors: f,
			badge:   "Almost there",
			reason:  fmt.Sprintf("Only %d lesson(s) left in %q", remaining, up.Unit.Name),
		}
	}
	return nil
}

func (s *Service) quickReview(sc *SubjectContext) *candidate {
	if sc.TotalQuestionsAsked < s.config.MinSampleSize {
		return nil
	}
	// Flat moderate scores: a filler when nothing sharper applies.
	return &candidate{
		recommendation: &Recommendation{
			Type:        TypeQuickReview,
			QuickReview: &QuickReviewPayload{QuestionCount: 10},
		},
		factors: factors{Urgency: 40, Relevance: 50, Impact: 45, Recency: 50},
		badge:   "Quick win",
		reason:  "A short mixed review keeps things fresh",
	}
}

func (s *Service) streakAtRisk(sc *SubjectContext) *candidate {
	if sc.StudyStreakDays < s.config.MinStreakDays || sc.StudySessionsToday > 0 {
		return nil
	}
	return &candidate{
		recommendation: &Recommendation{
			Type:         TypeStreakAtRisk,
			StreakAtRisk: &StreakAtRiskPayload{StreakDays: sc.StudyStreakDays},
		},
		factors: factors{Urgency: 88, Relevance: 70, Impact: 60, Recency: 85},
		badge:   "Streak",
		reason:  fmt.Sprintf("Study today to keep your %d-day streak alive", sc.StudyStreakDays),
	}
}

func (s *Service) startNewUnit(sc *SubjectContext) *candidate {
	if sc.PercentComplete >= 1.0 {
		return nil
	}
	for _, up := range sc.Units {
		if up.LessonsCompleted >= up.TotalLessons {
			continue
		}
		return &candidate{
			recommendation: &Recommendation{
				Type: TypeStartNewUnit,
				StartNewUnit: &StartNewUnitPayload{
					UnitID:   up.Unit.ID,
					UnitName: up.Unit.Name,
				},
			},
			factors: factors{Urgency: 60, Relevance: 55, Impact: 65, Recency: 40},
			badge:   "New ground",
			reason:  fmt.Sprintf("Start %q to keep making progress", up.Unit.Name),
		}
	}
	return nil
}
