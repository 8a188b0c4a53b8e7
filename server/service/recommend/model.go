package recommend

import (
	"github.com/pathlight/pathlight/store"
)

// Type discriminates the recommendation union.
type Type string

const (
	TypeContinueLesson    Type = "CONTINUE_LESSON"
	TypeReviewWeakConcept Type = "REVIEW_WEAK_CONCEPT"
	TypeCompleteUnit      Type = "COMPLETE_UNIT"
	TypeQuickReview       Type = "QUICK_REVIEW"
	TypeStartNewUnit      Type = "START_NEW_UNIT"
	TypeStreakAtRisk      Type = "STREAK_AT_RISK"
)

// Recommendation is a tagged union: exactly the payload matching Type is
// set, everything else is nil.
type Recommendation struct {
	Type Type `json:"type"`

	ContinueLesson    *ContinueLessonPayload    `json:"continueLesson,omitempty"`
	ReviewWeakConcept *ReviewWeakConceptPayload `json:"reviewWeakConcept,omitempty"`
	CompleteUnit      *CompleteUnitPayload      `json:"completeUnit,omitempty"`
	QuickReview       *QuickReviewPayload       `json:"quickReview,omitempty"`
	StartNewUnit      *StartNewUnitPayload      `json:"startNewUnit,omitempty"`
	StreakAtRisk      *StreakAtRiskPayload      `json:"streakAtRisk,omitempty"`
}

type ContinueLessonPayload struct {
	LessonID        int32   `json:"lessonId"`
	LessonTitle     string  `json:"lessonTitle"`
	PercentComplete float64 `json:"percentComplete"`
}

type ReviewWeakConceptPayload struct {
	WeakConceptCount int     `json:"weakConceptCount"`
	SuccessRate      float64 `json:"successRate"`
}

type CompleteUnitPayload struct {
	UnitID           int32   `json:"unitId"`
	UnitName         string  `json:"unitName"`
	PercentComplete  float64 `json:"percentComplete"`
	LessonsRemaining int     `json:"lessonsRemaining"`
}

type QuickReviewPayload struct {
	QuestionCount int `json:"questionCount"`
}

type StartNewUnitPayload struct {
	UnitID   int32  `json:"unitId"`
	UnitName string `json:"unitName"`
}

type StreakAtRiskPayload struct {
	StreakDays int `json:"streakDays"`
}

// ScoredRecommendation is one ranked entry, recomputed on every request and
// never persisted.
type ScoredRecommendation struct {
	Subject        *store.Subject  `json:"subject"`
	Recommendation *Recommendation `json:"recommendation"`
	Score          float64         `json:"score"`
	Badge          string          `json:"badge"`
	Reason         string          `json:"reason"`
}

// UnitProgress is one unit's completion state inside a SubjectContext.
type UnitProgress struct {
	Unit             *store.Unit
	TotalLessons     int
	LessonsCompleted int
	PercentComplete  float64
}

// LessonTarget is the most recently touched incomplete lesson.
type LessonTarget struct {
	Lesson         *store.Lesson
	LastAccessedTs int64
}

// SubjectContext is the per-subject snapshot the generators score against.
// It is computed per request and never persisted.
type SubjectContext struct {
	Subject *store.Subject

	LessonsCompleted int
	TotalLessons     int
	// PercentComplete is LessonsCompleted/TotalLessons as a 0..1 fraction.
	PercentComplete float64

	Units          []*UnitProgress
	ContinueTarget *LessonTarget

	// AverageSuccessRate is nil until any question has been asked.
	AverageSuccessRate  *float64
	WeakConceptCount    int
	TotalQuestionsAsked int

	AverageSessionScore *float64
	LastStudiedTs       *int64
	StudySessionsToday  int
	StudyStreakDays     int
}

// factors are the four raw component scores of one candidate, each 0..100.
type factors struct {
	Urgency   float64
	Relevance float64
	Impact    float64
	Recency   float64
}

// score folds the factors with the configured weights.
func (f factors) score(cfg Config) float64 {
	return f.Urgency*cfg.UrgencyWeight +
		f.Relevance*cfg.RelevanceWeight +
		f.Impact*cfg.ImpactWeight +
		f.Recency*cfg.RecencyWeight
}
