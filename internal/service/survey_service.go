package service

import (
	"context"
	"errors"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidSurvey = errors.New("survey answers are invalid")

// SurveyEvaluation is the derived result shown to the user. It is computed on
// demand from the raw answers and never persisted.
type SurveyEvaluation struct {
	Points   int    `json:"points"`
	Category string `json:"category"`
}

// --- Service Interface ---
type SurveyService interface {
	// Submit persists the raw answers and returns the evaluation for display.
	// userID may be nil for anonymous submissions.
	Submit(ctx context.Context, userID *primitive.ObjectID, answers domain.SurveyAnswers) (*domain.SurveyResponse, SurveyEvaluation, error)
	GetMySubmissions(ctx context.Context, userID primitive.ObjectID) ([]domain.SurveyResponse, error)
}

// --- Service Implementation ---

type surveyService struct {
	surveyRepo repository.SurveyRepository
}

// NewSurveyService creates a new instance of surveyService.
func NewSurveyService(surveyRepo repository.SurveyRepository) SurveyService {
	return &surveyService{surveyRepo: surveyRepo}
}

// Submit stores the raw answers and evaluates the skill tier.
func (s *surveyService) Submit(ctx context.Context, userID *primitive.ObjectID, answers domain.SurveyAnswers) (*domain.SurveyResponse, SurveyEvaluation, error) {
	if answers.LeagueRating < 0 || answers.TournamentRating < 0 || answers.PlayingYears < 0 {
		return nil, SurveyEvaluation{}, ErrInvalidSurvey
	}

	response := &domain.SurveyResponse{
		UserID:  userID,
		Answers: answers,
	}
	id, err := s.surveyRepo.Create(ctx, response)
	if err != nil {
		return nil, SurveyEvaluation{}, err
	}
	response.ID = id

	points := domain.CalculatePoints(answers)
	return response, SurveyEvaluation{
		Points:   points,
		Category: domain.SkillCategory(points),
	}, nil
}

// GetMySubmissions returns the user's past submissions, newest first.
func (s *surveyService) GetMySubmissions(ctx context.Context, userID primitive.ObjectID) ([]domain.SurveyResponse, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	return s.surveyRepo.GetByUserID(ctx, userID)
}
