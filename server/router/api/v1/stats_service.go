package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pathlight/pathlight/store"
)

type recordResponseRequest struct {
	Correct     bool    `json:"correct"`
	TimeSeconds float64 `json:"timeSeconds"`
}

type questionStatResponse struct {
	QuestionID        int32   `json:"questionId"`
	TimesAsked        int     `json:"timesAsked"`
	TimesCorrect      int     `json:"timesCorrect"`
	AvgTimeSeconds    float64 `json:"avgTimeSeconds"`
	SuccessRate       float64 `json:"successRate"`
	LastShownInFeedTs *int64  `json:"lastShownInFeedTs,omitempty"`
	FeedShowCount     int     `json:"feedShowCount"`
	LastAskedTs       *int64  `json:"lastAskedTs,omitempty"`
}

func convertQuestionStat(stat *store.QuestionStat) *questionStatResponse {
	return &questionStatResponse{
		QuestionID:        stat.QuestionID,
		TimesAsked:        stat.TimesAsked,
		TimesCorrect:      stat.TimesCorrect,
		AvgTimeSeconds:    stat.AvgTimeSeconds,
		SuccessRate:       stat.SuccessRate,
		LastShownInFeedTs: stat.LastShownInFeedTs,
		FeedShowCount:     stat.FeedShowCount,
		LastAskedTs:       stat.LastAskedTs,
	}
}

func convertQuestionStatList(stats []*store.QuestionStat) []*questionStatResponse {
	response := make([]*questionStatResponse, 0, len(stats))
	for _, stat := range stats {
		response = append(response, convertQuestionStat(stat))
	}
	return response
}

// RecordQuestionResponse folds one answer into a question's rolling stats.
// POST /api/v1/questions/:questionId/responses
func (s *APIV1Service) RecordQuestionResponse(c echo.Context) error {
	questionID, err := parseID(c.Param("questionId"))
	if err != nil {
		return badRequest(c, "invalid question id")
	}
	var request recordResponseRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.TimeSeconds < 0 {
		return badRequest(c, "timeSeconds must not be negative")
	}

	stat, err := s.StatsService.RecordResponse(c.Request().Context(), questionID, request.Correct, request.TimeSeconds)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to record response")
	}
	return c.JSON(http.StatusOK, convertQuestionStat(stat))
}

// RecordQuestionFeedShow marks a question as surfaced in the feed.
// POST /api/v1/questions/:questionId/feed-shows
func (s *APIV1Service) RecordQuestionFeedShow(c echo.Context) error {
	questionID, err := parseID(c.Param("questionId"))
	if err != nil {
		return badRequest(c, "invalid question id")
	}

	stat, err := s.StatsService.RecordFeedShow(c.Request().Context(), questionID)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to record feed show")
	}
	return c.JSON(http.StatusOK, convertQuestionStat(stat))
}

// GetQuestionStats returns stats for explicit ids, or the hardest/easiest
// questions when order=hardest|easiest is given instead.
// GET /api/v1/questions/stats
func (s *APIV1Service) GetQuestionStats(c echo.Context) error {
	ctx := c.Request().Context()
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	switch order := c.QueryParam("order"); order {
	case "hardest":
		stats, err := s.StatsService.GetHardest(ctx, limit)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "failed to list stats")
		}
		return c.JSON(http.StatusOK, convertQuestionStatList(stats))
	case "easiest":
		stats, err := s.StatsService.GetEasiest(ctx, limit)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "failed to list stats")
		}
		return c.JSON(http.StatusOK, convertQuestionStatList(stats))
	case "":
	default:
		return badRequest(c, "unknown order")
	}

	ids, err := parseIDList(c.QueryParam("ids"))
	if err != nil {
		return badRequest(c, "invalid ids")
	}
	if len(ids) == 0 {
		return badRequest(c, "ids or order is required")
	}
	stats, err := s.StatsService.GetStats(ctx, ids)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to list stats")
	}
	return c.JSON(http.StatusOK, convertQuestionStatList(stats))
}

func parseID(raw string) (int32, error) {
	parsed, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || parsed <= 0 {
		return 0, echo.ErrBadRequest
	}
	return int32(parsed), nil
}

func parseIDList(raw string) ([]int32, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int32, 0, len(parts))
	for _, part := range parts {
		id, err := parseID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, echo.ErrBadRequest
	}
	return parsed, nil
}
