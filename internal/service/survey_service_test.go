package service

import (
	"context"
	"testing"

	"courtside/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSurveySubmit_PersistsRawAnswersOnly(t *testing.T) {
	repo := &fakeSurveyRepo{}
	svc := NewSurveyService(repo)

	answers := domain.SurveyAnswers{
		LeagueRating:       1500,
		TournamentRating:   1200,
		TournamentsPerYear: domain.TournamentsFive,
		LeagueFrequency:    domain.FrequencyWeekly,
		PlayingYears:       8,
		Goals:              "Make the national qualifiers",
	}
	response, eval, err := svc.Submit(context.Background(), nil, answers)

	require.NoError(t, err)
	assert.NotEqual(t, primitive.NilObjectID, response.ID)
	assert.Nil(t, response.UserID)
	assert.Equal(t, answers, response.Answers)

	assert.Equal(t, domain.CalculatePoints(answers), eval.Points)
	assert.Equal(t, domain.SkillCategory(eval.Points), eval.Category)

	require.Len(t, repo.rows, 1)
	assert.Equal(t, answers, repo.rows[0].Answers)
}

func TestSurveySubmit_AttachesUser(t *testing.T) {
	repo := &fakeSurveyRepo{}
	svc := NewSurveyService(repo)
	userID := primitive.NewObjectID()

	_, _, err := svc.Submit(context.Background(), &userID, domain.SurveyAnswers{LeagueRating: 900})

	require.NoError(t, err)
	require.Len(t, repo.rows, 1)
	require.NotNil(t, repo.rows[0].UserID)
	assert.Equal(t, userID, *repo.rows[0].UserID)
}

func TestSurveySubmit_RejectsNegativeRatings(t *testing.T) {
	svc := NewSurveyService(&fakeSurveyRepo{})

	_, _, err := svc.Submit(context.Background(), nil, domain.SurveyAnswers{LeagueRating: -1})
	assert.ErrorIs(t, err, ErrInvalidSurvey)
}

func TestGetMySubmissions(t *testing.T) {
	repo := &fakeSurveyRepo{}
	svc := NewSurveyService(repo)
	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	_, _, err := svc.Submit(context.Background(), &userID, domain.SurveyAnswers{LeagueRating: 900})
	require.NoError(t, err)
	_, _, err = svc.Submit(context.Background(), &otherID, domain.SurveyAnswers{LeagueRating: 1700})
	require.NoError(t, err)
	_, _, err = svc.Submit(context.Background(), nil, domain.SurveyAnswers{LeagueRating: 600})
	require.NoError(t, err)

	mine, err := svc.GetMySubmissions(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 900, mine[0].Answers.LeagueRating)

	_, err = svc.GetMySubmissions(context.Background(), primitive.NilObjectID)
	assert.Error(t, err)
}
