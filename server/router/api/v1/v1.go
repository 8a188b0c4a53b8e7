// Package v1 exposes the learning engine over a JSON API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pathlight/pathlight/internal/profile"
	"github.com/pathlight/pathlight/server/service/recommend"
	"github.com/pathlight/pathlight/server/service/review"
	"github.com/pathlight/pathlight/server/service/selector"
	"github.com/pathlight/pathlight/server/service/stats"
	"github.com/pathlight/pathlight/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	ReviewService    *review.Service
	StatsService     *stats.Service
	SelectorService  *selector.Service
	RecommendService *recommend.Service
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store) (*APIV1Service, error) {
	reviewService := review.NewService(store)
	statsService := stats.NewService(store)
	selectorService := selector.NewService(store, statsService)
	recommendService, err := recommend.NewService(store, statsService, selectorService, recommend.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &APIV1Service{
		Profile:          profile,
		Store:            store,
		ReviewService:    reviewService,
		StatsService:     statsService,
		SelectorService:  selectorService,
		RecommendService: recommendService,
	}, nil
}

// Register wires every endpoint onto the echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1")

	g.POST("/reviews", s.RecordReview)
	g.GET("/reviews/due", s.GetDueReviews)
	g.GET("/reviews/summary", s.GetReviewSummary)

	g.POST("/questions/:questionId/responses", s.RecordQuestionResponse)
	g.POST("/questions/:questionId/feed-shows", s.RecordQuestionFeedShow)
	g.GET("/questions/stats", s.GetQuestionStats)

	g.GET("/subjects/:subjectId/weak-concepts", s.GetWeakConcepts)
	g.GET("/subjects/:subjectId/questions/by-progress", s.GetQuestionsByProgress)
	g.GET("/subjects/:subjectId/feed", s.GetFeedBatch)

	g.POST("/practice-sessions", s.CreatePracticeSession)
	g.GET("/practice-sessions/:sessionId", s.GetPracticeSession)
	g.POST("/practice-sessions/:sessionId/answers", s.RecordAnswer)
	g.POST("/practice-sessions/:sessionId/skips", s.SkipQuestion)
	g.POST("/practice-sessions/:sessionId/advance", s.AdvanceIndex)
	g.POST("/practice-sessions/:sessionId/complete", s.CompleteSession)
	g.POST("/practice-sessions/:sessionId/abandon", s.AbandonSession)

	g.GET("/recommendations", s.GetRecommendations)
}

func errorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

func badRequest(c echo.Context, message string) error {
	return errorResponse(c, http.StatusBadRequest, message)
}
