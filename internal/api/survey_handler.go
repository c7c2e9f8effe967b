package api

import (
	"errors"
	"net/http"
	"time"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SurveyHandler exposes the skill-assessment survey endpoint.
type SurveyHandler struct {
	surveyService service.SurveyService
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(surveyService service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

// --- DTOs ---

// SubmitSurveyRequest carries the six raw survey fields. Only the raw answers
// are sent; points and category are computed server-side.
type SubmitSurveyRequest struct {
	LeagueRating       int    `json:"leagueRating"`
	TournamentRating   int    `json:"tournamentRating"`
	TournamentsPerYear string `json:"tournamentsPerYear"`
	LeagueFrequency    string `json:"leagueFrequency"`
	PlayingYears       int    `json:"playingYears"`
	Goals              string `json:"goals,omitempty"`
}

type SubmitSurveyResponse struct {
	ID       string `json:"id"`
	Points   int    `json:"points"`
	Category string `json:"category"`
}

type SurveyResponseItem struct {
	ID          string               `json:"id"`
	Answers     domain.SurveyAnswers `json:"answers"`
	Points      int                  `json:"points"`
	Category    string               `json:"category"`
	SubmittedAt time.Time            `json:"submittedAt"`
}

// --- Handler Methods ---

// Submit godoc
// @Summary Submit the skill assessment survey
// @Description Persists the raw answers and returns the derived skill tier. Anonymous submissions allowed; the authenticated user is attached when a valid token is present.
// @Tags Survey
// @Accept json
// @Produce json
// @Param survey body SubmitSurveyRequest true "Raw survey answers"
// @Success 201 {object} SubmitSurveyResponse "Evaluation"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /surveys [post]
func (h *SurveyHandler) Submit(c *gin.Context) {
	var req SubmitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// Attach the user when the route ran through AuthMiddleware; the public
	// mount leaves this empty.
	var userID *primitive.ObjectID
	if idStr, err := getUserIDFromContext(c); err == nil {
		if id, err := primitive.ObjectIDFromHex(idStr); err == nil {
			userID = &id
		}
	}

	response, eval, err := h.surveyService.Submit(c.Request.Context(), userID, domain.SurveyAnswers{
		LeagueRating:       req.LeagueRating,
		TournamentRating:   req.TournamentRating,
		TournamentsPerYear: req.TournamentsPerYear,
		LeagueFrequency:    req.LeagueFrequency,
		PlayingYears:       req.PlayingYears,
		Goals:              req.Goals,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSurvey) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit survey.")
		}
		return
	}

	c.JSON(http.StatusCreated, SubmitSurveyResponse{
		ID:       response.ID.Hex(),
		Points:   eval.Points,
		Category: eval.Category,
	})
}

// GetMySubmissions godoc
// @Summary List my survey submissions
// @Tags Survey
// @Produce json
// @Security BearerAuth
// @Success 200 {array} SurveyResponseItem "Past submissions with evaluations"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /surveys [get]
func (h *SurveyHandler) GetMySubmissions(c *gin.Context) {
	userID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	responses, err := h.surveyService.GetMySubmissions(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve survey submissions.")
		return
	}

	items := make([]SurveyResponseItem, 0, len(responses))
	for _, r := range responses {
		points := domain.CalculatePoints(r.Answers)
		items = append(items, SurveyResponseItem{
			ID:          r.ID.Hex(),
			Answers:     r.Answers,
			Points:      points,
			Category:    domain.SkillCategory(points),
			SubmittedAt: r.SubmittedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}
