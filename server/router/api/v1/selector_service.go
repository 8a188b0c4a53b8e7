package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/server/service/selector"
	"github.com/pathlight/pathlight/store"
)

type questionResponse struct {
	ID           int32              `json:"id"`
	SubjectID    int32              `json:"subjectId"`
	UnitID       int32              `json:"unitId"`
	LessonID     *int32             `json:"lessonId,omitempty"`
	Type         store.QuestionType `json:"type"`
	Difficulty   int                `json:"difficulty"`
	FeedEligible bool               `json:"feedEligible"`
	Prompt       string             `json:"prompt"`
	ConceptIDs   []int32            `json:"conceptIds,omitempty"`
}

func convertQuestion(question *store.Question) *questionResponse {
	return &questionResponse{
		ID:           question.ID,
		SubjectID:    question.SubjectID,
		UnitID:       question.UnitID,
		LessonID:     question.LessonID,
		Type:         question.Type,
		Difficulty:   question.Difficulty,
		FeedEligible: question.FeedEligible,
		Prompt:       question.Prompt,
		ConceptIDs:   question.ConceptIDs,
	}
}

func convertQuestionList(questions []*store.Question) []*questionResponse {
	response := make([]*questionResponse, 0, len(questions))
	for _, question := range questions {
		response = append(response, convertQuestion(question))
	}
	return response
}

// GetWeakConcepts lists the concepts the student struggles with most, ranked
// by how many hard questions vote for them.
// GET /api/v1/subjects/:subjectId/weak-concepts
func (s *APIV1Service) GetWeakConcepts(c echo.Context) error {
	subjectID, err := parseID(c.Param("subjectId"))
	if err != nil {
		return badRequest(c, "invalid subject id")
	}

	minAttempts := selector.DefaultWeakMinAttempts
	if v := c.QueryParam("minAttempts"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return badRequest(c, "invalid minAttempts")
		}
		minAttempts = parsed
	}
	maxSuccessRate := selector.DefaultWeakMaxSuccessRate
	if v := c.QueryParam("maxSuccessRate"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return badRequest(c, "invalid maxSuccessRate")
		}
		maxSuccessRate = parsed
	}

	conceptIDs, err := s.SelectorService.GetWeakConcepts(c.Request().Context(), subjectID, minAttempts, maxSuccessRate)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to detect weak concepts")
	}
	return c.JSON(http.StatusOK, map[string][]int32{"conceptIds": conceptIDs})
}

// GetQuestionsByProgress returns a difficulty-balanced batch drawn from the
// units the student has reached.
// GET /api/v1/subjects/:subjectId/questions/by-progress
func (s *APIV1Service) GetQuestionsByProgress(c echo.Context) error {
	subjectID, err := parseID(c.Param("subjectId"))
	if err != nil {
		return badRequest(c, "invalid subject id")
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "invalid limit")
	}
	filter, err := parseQuestionFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	questions, err := s.SelectorService.GetQuestionsByProgress(c.Request().Context(), subjectID, limit, filter)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to build question batch")
	}
	return c.JSON(http.StatusOK, convertQuestionList(questions))
}

// GetFeedBatch returns feed-eligible questions not shown recently and records
// the exposure so the next refresh rotates content.
// GET /api/v1/subjects/:subjectId/feed
func (s *APIV1Service) GetFeedBatch(c echo.Context) error {
	ctx := c.Request().Context()
	subjectID, err := parseID(c.Param("subjectId"))
	if err != nil {
		return badRequest(c, "invalid subject id")
	}
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "invalid limit")
	}
	conceptIDs, err := parseIDList(c.QueryParam("conceptIds"))
	if err != nil {
		return badRequest(c, "invalid conceptIds")
	}
	excludeHours := 0
	if v := c.QueryParam("excludeShownWithinHours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return badRequest(c, "invalid excludeShownWithinHours")
		}
		excludeHours = parsed
	}

	questions, err := s.SelectorService.GetQuestionsForFeed(ctx, subjectID, conceptIDs, limit, excludeHours)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to build feed batch")
	}
	if err := s.SelectorService.MarkShownInFeed(ctx, questions); err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to record feed exposure")
	}
	return c.JSON(http.StatusOK, convertQuestionList(questions))
}

func parseQuestionFilter(c echo.Context) (*selector.QuestionFilter, error) {
	filter := &selector.QuestionFilter{}
	empty := true
	if v := c.QueryParam("type"); v != "" {
		questionType := store.QuestionType(v)
		filter.Type = &questionType
		empty = false
	}
	if v := c.QueryParam("difficultyMin"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid difficultyMin")
		}
		filter.DifficultyMin = &parsed
		empty = false
	}
	if v := c.QueryParam("difficultyMax"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid difficultyMax")
		}
		filter.DifficultyMax = &parsed
		empty = false
	}
	if empty {
		return nil, nil
	}
	return filter, nil
}
