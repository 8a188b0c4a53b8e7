package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pathlight/pathlight/server/service/selector"
	"github.com/pathlight/pathlight/store"
)

type createSessionRequest struct {
	SubjectID      int32                 `json:"subjectId"`
	GenerationType store.GenerationType  `json:"generationType"`
	QuestionCount  int                   `json:"questionCount"`
	UnitID         *int32                `json:"unitId,omitempty"`
	ConceptIDs     []int32               `json:"conceptIds,omitempty"`
	Filter         *sessionFilterRequest `json:"filter,omitempty"`
}

type sessionFilterRequest struct {
	Type          *store.QuestionType `json:"type,omitempty"`
	DifficultyMin *int                `json:"difficultyMin,omitempty"`
	DifficultyMax *int                `json:"difficultyMax,omitempty"`
}

type recordAnswerRequest struct {
	QuestionID  int32 `json:"questionId"`
	AnswerIndex *int  `json:"answerIndex,omitempty"`
	Correct     bool  `json:"correct"`
}

type skipQuestionRequest struct {
	QuestionID int32 `json:"questionId"`
}

type practiceSessionResponse struct {
	ID             int32                      `json:"id"`
	UID            string                     `json:"uid"`
	SubjectID      int32                      `json:"subjectId"`
	GenerationType store.GenerationType       `json:"generationType"`
	QuestionCount  int                        `json:"questionCount"`
	CurrentIndex   int                        `json:"currentIndex"`
	CorrectCount   int                        `json:"correctCount"`
	AnsweredCount  int                        `json:"answeredCount"`
	Status         store.SessionStatus        `json:"status"`
	Score          *float64                   `json:"score,omitempty"`
	StartedTs      int64                      `json:"startedTs"`
	CompletedTs    *int64                     `json:"completedTs,omitempty"`
	Questions      []*practiceSlotResponse    `json:"questions,omitempty"`
}

type practiceSlotResponse struct {
	QuestionID  int32  `json:"questionId"`
	Position    int    `json:"position"`
	Answered    bool   `json:"answered"`
	Correct     bool   `json:"correct"`
	Skipped     bool   `json:"skipped"`
	AnswerIndex *int   `json:"answerIndex,omitempty"`
	AnsweredTs  *int64 `json:"answeredTs,omitempty"`
}

func convertPracticeSession(session *store.PracticeSession, slots []*store.PracticeQuestion) *practiceSessionResponse {
	response := &practiceSessionResponse{
		ID:             session.ID,
		UID:            session.UID,
		SubjectID:      session.SubjectID,
		GenerationType: session.GenerationType,
		QuestionCount:  session.QuestionCount,
		CurrentIndex:   session.CurrentIndex,
		CorrectCount:   session.CorrectCount,
		AnsweredCount:  session.AnsweredCount,
		Status:         session.Status,
		Score:          session.Score,
		StartedTs:      session.StartedTs,
		CompletedTs:    session.CompletedTs,
	}
	for _, slot := range slots {
		response.Questions = append(response.Questions, &practiceSlotResponse{
			QuestionID:  slot.QuestionID,
			Position:    slot.Position,
			Answered:    slot.Answered,
			Correct:     slot.Correct,
			Skipped:     slot.Skipped,
			AnswerIndex: slot.AnswerIndex,
			AnsweredTs:  slot.AnsweredTs,
		})
	}
	return response
}

// CreatePracticeSession assembles and persists a new practice session.
// POST /api/v1/practice-sessions
func (s *APIV1Service) CreatePracticeSession(c echo.Context) error {
	var request createSessionRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.SubjectID <= 0 {
		return badRequest(c, "subjectId is required")
	}

	create := &selector.CreateSessionRequest{
		SubjectID:      request.SubjectID,
		GenerationType: request.GenerationType,
		QuestionCount:  request.QuestionCount,
		UnitID:         request.UnitID,
		ConceptIDs:     request.ConceptIDs,
	}
	if request.Filter != nil {
		create.Filter = &selector.QuestionFilter{
			Type:          request.Filter.Type,
			DifficultyMin: request.Filter.DifficultyMin,
			DifficultyMax: request.Filter.DifficultyMax,
		}
	}

	session, slots, err := s.SelectorService.CreatePracticeSession(c.Request().Context(), create)
	if err != nil {
		slog.Warn("failed to create practice session",
			slog.Int("subjectId", int(request.SubjectID)), slog.String("error", err.Error()))
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, convertPracticeSession(session, slots))
}

// GetPracticeSession returns a session with its ordered question slots.
// GET /api/v1/practice-sessions/:sessionId
func (s *APIV1Service) GetPracticeSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	session, err := s.Store.GetPracticeSession(ctx, &store.FindPracticeSession{ID: &sessionID})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to get session")
	}
	if session == nil {
		return errorResponse(c, http.StatusNotFound, "session not found")
	}
	slots, err := s.Store.ListPracticeQuestions(ctx, &store.FindPracticeQuestion{SessionID: &sessionID})
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to list session questions")
	}
	return c.JSON(http.StatusOK, convertPracticeSession(session, slots))
}

// RecordAnswer records one answered question inside a session.
// POST /api/v1/practice-sessions/:sessionId/answers
func (s *APIV1Service) RecordAnswer(c echo.Context) error {
	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	var request recordAnswerRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.QuestionID <= 0 {
		return badRequest(c, "questionId is required")
	}

	session, err := s.SelectorService.RecordAnswer(c.Request().Context(), sessionID, request.QuestionID, request.AnswerIndex, request.Correct)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, convertPracticeSession(session, nil))
}

// SkipQuestion marks one question skipped without changing the score inputs.
// POST /api/v1/practice-sessions/:sessionId/skips
func (s *APIV1Service) SkipQuestion(c echo.Context) error {
	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	var request skipQuestionRequest
	if err := c.Bind(&request); err != nil {
		return badRequest(c, "malformed request body")
	}
	if request.QuestionID <= 0 {
		return badRequest(c, "questionId is required")
	}

	session, err := s.SelectorService.SkipQuestion(c.Request().Context(), sessionID, request.QuestionID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, convertPracticeSession(session, nil))
}

// AdvanceIndex moves the session cursor to the next question.
// POST /api/v1/practice-sessions/:sessionId/advance
func (s *APIV1Service) AdvanceIndex(c echo.Context) error {
	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	session, err := s.SelectorService.AdvanceIndex(c.Request().Context(), sessionID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, convertPracticeSession(session, nil))
}

// CompleteSession finishes a session and computes its completion score.
// POST /api/v1/practice-sessions/:sessionId/complete
func (s *APIV1Service) CompleteSession(c echo.Context) error {
	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	session, err := s.SelectorService.CompleteSession(c.Request().Context(), sessionID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, convertPracticeSession(session, nil))
}

// AbandonSession closes a session early; unanswered questions still count
// against the score.
// POST /api/v1/practice-sessions/:sessionId/abandon
func (s *APIV1Service) AbandonSession(c echo.Context) error {
	sessionID, err := parseID(c.Param("sessionId"))
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	session, err := s.SelectorService.AbandonSession(c.Request().Context(), sessionID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, convertPracticeSession(session, nil))
}
