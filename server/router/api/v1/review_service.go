package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pathlight/pathlight/server/service/review"
	"github.com/pathlight/pathlight/store"
)

type recordReviewRequest struct {
	ConceptID int32         `json:"conceptId"`
	Rating    review.Rating `json:"rating"`
}

type reviewRecordResponse struct {
	ConceptID      int32   `json:"conceptId"`
	FirstSeenTs    int64   `json:"firstSeenTs"`
	LastReviewedTs *int64  `json:"lastReviewedTs,omitempty"`
	NextReviewTs   int64   `json:"nextReviewTs"`
	ReviewCount    int     `json:"reviewCount"`
	CorrectCount   int     `json:"correctCount"`
	IntervalDays   int     `json:"intervalDays"`
	EaseFactor     float64 `json:"easeFactor"`
}

func convertReviewRecord(record *store.ReviewRecord) *reviewRecordResponse {
	return &reviewRecordResponse{
		ConceptID:      record.ConceptID,
		FirstSeenTs:    record.FirstSeenTs,
		LastReviewedTs: record.LastReviewedTs,
		NextReviewTs:   record.NextReviewTs,
		ReviewCount:    record.ReviewCount,
		CorrectCount:   record.CorrectCount,
		IntervalDays:   record.IntervalDays,
		EaseFactor:     record.EaseFactor,
	}
}

// RecordReview applies one self-assessed rating to a concept.
// POST /api/v1/reviews
func (s *APIV1Service) RecordReview(c echo.Context) error {
	var request recordReviewRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.ConceptID <= 0 {
		return badRequest(c, "conceptId is required")
	}

	record, err := s.ReviewService.RecordReview(c.Request().Context(), request.ConceptID, request.Rating)
	if err != nil {
		slog.Warn("failed to record review",
			slog.Int("conceptId", int(request.ConceptID)), slog.String("error", err.Error()))
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, convertReviewRecord(record))
}

// GetDueReviews lists the concepts due for review, soonest first.
// GET /api/v1/reviews/due
func (s *APIV1Service) GetDueReviews(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	due, err := s.ReviewService.GetDue(c.Request().Context(), time.Now(), limit)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to list due reviews")
	}
	response := make([]*reviewRecordResponse, 0, len(due))
	for _, record := range due {
		response = append(response, convertReviewRecord(record))
	}
	return c.JSON(http.StatusOK, response)
}

// GetReviewSummary reports the state of the review queue.
// GET /api/v1/reviews/summary
func (s *APIV1Service) GetReviewSummary(c echo.Context) error {
	summary, err := s.ReviewService.Summary(c.Request().Context(), time.Now())
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to build review summary")
	}
	return c.JSON(http.StatusOK, summary)
}
