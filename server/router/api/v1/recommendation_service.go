package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pathlight/pathlight/server/service/recommend"
)

type subjectResponse struct {
	ID   int32  `json:"id"`
	UID  string `json:"uid"`
	Name string `json:"name"`
}

type recommendationResponse struct {
	Subject        *subjectResponse          `json:"subject"`
	Recommendation *recommend.Recommendation `json:"recommendation"`
	Score          float64                   `json:"score"`
	Badge          string                    `json:"badge"`
	Reason         string                    `json:"reason"`
}

// GetRecommendations returns the highest-scoring next actions across all
// subjects.
// GET /api/v1/recommendations
func (s *APIV1Service) GetRecommendations(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	scored, err := s.RecommendService.GetTopRecommendations(c.Request().Context(), limit)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "failed to build recommendations")
	}
	response := make([]*recommendationResponse, 0, len(scored))
	for _, item := range scored {
		response = append(response, &recommendationResponse{
			Subject: &subjectResponse{
				ID:   item.Subject.ID,
				UID:  item.Subject.UID,
				Name: item.Subject.Name,
			},
			Recommendation: item.Recommendation,
			Score:          item.Score,
			Badge:          item.Badge,
			Reason:         item.Reason,
		})
	}
	return c.JSON(http.StatusOK, response)
}
