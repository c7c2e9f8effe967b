package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Answer options for the categorical survey questions. These match the option
// labels the intake form presents verbatim.
const (
	TournamentsLessThanFive = "Less than 5"
	TournamentsFive         = "5"
	TournamentsMoreThanFive = "More than 5"

	FrequencyWeekly     = "Weekly"
	FrequencyMonthly    = "Once or twice in a month"
	FrequencyNotRegular = "Not regular"
)

// Skill categories derived from the survey point total.
const (
	CategoryElite        = "A (Top/Elite)"
	CategoryAdvanced     = "B (Advanced)"
	CategoryIntermediate = "C (Intermediate)"
	CategoryBeginner     = "D (Beginner/Entry)"
)

// SurveyAnswers holds the self-reported intake answers. Only four of the
// fields are scored; PlayingYears and Goals travel with the submission but
// carry no points.
type SurveyAnswers struct {
	LeagueRating       int    `bson:"leagueRating" json:"leagueRating"`
	TournamentRating   int    `bson:"tournamentRating" json:"tournamentRating"`
	TournamentsPerYear string `bson:"tournamentsPerYear" json:"tournamentsPerYear"`
	LeagueFrequency    string `bson:"leagueFrequency" json:"leagueFrequency"`
	PlayingYears       int    `bson:"playingYears" json:"playingYears"`
	Goals              string `bson:"goals,omitempty" json:"goals,omitempty"`
}

// SurveyResponse is a persisted intake submission. Only the raw answers are
// stored; points and category are recomputed on demand, never persisted.
type SurveyResponse struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"` // Optional: anonymous submissions allowed
	Answers     SurveyAnswers       `bson:"answers" json:"answers"`
	SubmittedAt time.Time           `bson:"submittedAt" json:"submittedAt"`
}

// ratingPoints maps a self-reported rating to its point band.
// Boundary values 800/1400/2000 land in the lower band: the original form
// evaluated overlapping comparisons first-match-wins, and that behavior is
// kept pending product clarification.
func ratingPoints(rating int) int {
	switch {
	case rating <= 0:
		return 0 // Unanswered
	case rating < 800:
		return 1
	case rating <= 1400:
		return 2
	case rating <= 2000:
		return 3
	default:
		return 4
	}
}

func tournamentsPoints(answer string) int {
	switch answer {
	case TournamentsLessThanFive:
		return 1
	case TournamentsFive:
		return 2
	case TournamentsMoreThanFive:
		return 3
	default:
		return 0 // Unanswered or unrecognized option
	}
}

func frequencyPoints(answer string) int {
	switch answer {
	case FrequencyWeekly:
		return 3
	case FrequencyMonthly:
		return 2
	case FrequencyNotRegular:
		return 1
	default:
		return 0
	}
}

// CalculatePoints sums the point bands of the four scored answers.
// Pure function; the result is always in [0,14].
func CalculatePoints(a SurveyAnswers) int {
	return ratingPoints(a.LeagueRating) +
		ratingPoints(a.TournamentRating) +
		tournamentsPoints(a.TournamentsPerYear) +
		frequencyPoints(a.LeagueFrequency)
}

// SkillCategory maps a point total to the coarse skill tier shown to the user.
func SkillCategory(points int) string {
	switch {
	case points >= 11:
		return CategoryElite
	case points >= 8:
		return CategoryAdvanced
	case points >= 6:
		return CategoryIntermediate
	default:
		return CategoryBeginner
	}
}
