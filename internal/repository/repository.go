package repository

import (
	"context"
	"time"

	"courtside/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TransactionManager runs a function with all repository calls made through
// the passed context joined into a single transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// VideoRepository defines the interface for interacting with video metadata.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error)
	GetByPlayerID(ctx context.Context, playerID primitive.ObjectID) ([]domain.Video, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error)
	// CountByPlayerInRange counts a player's videos uploaded within [from, to].
	CountByPlayerInRange(ctx context.Context, playerID primitive.ObjectID, from, to time.Time) (int64, error)
	SetAnalyzed(ctx context.Context, videoID primitive.ObjectID, analyzed bool) error
	Delete(ctx context.Context, videoID, playerID primitive.ObjectID) error
}

// AssignmentRepository defines the interface for interacting with
// video/coach assignment rows.
type AssignmentRepository interface {
	// Upsert inserts a pending assignment for (video, coach) or leaves an
	// existing row untouched. Returns the row's ID either way.
	Upsert(ctx context.Context, assignment *domain.VideoCoachAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoCoachAssignment, error)
	GetByVideoID(ctx context.Context, videoID primitive.ObjectID) ([]domain.VideoCoachAssignment, error)
	GetByCoachAndStatus(ctx context.Context, coachID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.VideoCoachAssignment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error
	DeleteByVideoAndCoaches(ctx context.Context, videoID primitive.ObjectID, coachIDs []primitive.ObjectID) error
	DeleteByVideoID(ctx context.Context, videoID primitive.ObjectID) error
}

// FeedbackRepository defines the interface for interacting with feedback rows.
type FeedbackRepository interface {
	// Create inserts a feedback row. Returns ErrDuplicate when a row already
	// exists for the same assignment (unique index).
	Create(ctx context.Context, feedback *domain.VideoFeedback) (primitive.ObjectID, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.VideoFeedback, error)
	GetByVideoID(ctx context.Context, videoID primitive.ObjectID) ([]domain.VideoFeedback, error)
	// DistinctVideoIDsByPlayer returns the IDs of the player's videos that
	// have at least one feedback row.
	DistinctVideoIDsByPlayer(ctx context.Context, playerID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// PlanRepository defines the interface for interacting with pricing plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.PricingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PricingPlan, error)
	GetByName(ctx context.Context, name string) (*domain.PricingPlan, error)
	GetActive(ctx context.Context) ([]domain.PricingPlan, error)
}

// SubscriptionRepository defines the interface for interacting with subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	// GetActiveByUserID returns the user's active subscription.
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error)
	// GetLatestByUserID returns the most recently created subscription of any
	// status. Quota falls back to this when no active one exists.
	GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error)
}

// SurveyRepository defines the interface for interacting with survey responses.
type SurveyRepository interface {
	Create(ctx context.Context, response *domain.SurveyResponse) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.SurveyResponse, error)
}
