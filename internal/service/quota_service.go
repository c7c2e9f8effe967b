package service

import (
	"context"
	"errors"
	"time"

	"courtside/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	// ErrNoSubscription means quota cannot be evaluated at all: the user has
	// never had a subscription of any status.
	ErrNoSubscription = errors.New("user has no subscription")
	ErrPlanNotFound   = errors.New("subscription references an unknown plan")
)

// QuotaStatus reports whether a player may submit another video this calendar
// month, and how much of the monthly allowance is consumed.
type QuotaStatus struct {
	CanCreate     bool      `json:"canCreate"`
	AnalysesUsed  int       `json:"analysesUsed"`
	AnalysesLimit int       `json:"analysesLimit"`
	NextResetDate time.Time `json:"nextResetDate"`
}

// --- Service Interface ---
type QuotaService interface {
	CheckUserQuota(ctx context.Context, userID primitive.ObjectID) (*QuotaStatus, error)
}

// --- Service Implementation ---

// quotaService implements the QuotaService interface. Read-only: it never
// mutates subscriptions or counters.
type quotaService struct {
	subRepo   repository.SubscriptionRepository
	planRepo  repository.PlanRepository
	videoRepo repository.VideoRepository
	now       func() time.Time
}

// NewQuotaService creates a new instance of quotaService.
func NewQuotaService(
	subRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
	videoRepo repository.VideoRepository,
) QuotaService {
	return &quotaService{
		subRepo:   subRepo,
		planRepo:  planRepo,
		videoRepo: videoRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CheckUserQuota compares the user's current-month upload count against the
// analysis limit of their plan.
//
// When no active subscription exists, the most recent subscription of any
// status is used instead. That silently treats expired plans as valid for
// quota purposes; kept as-is pending a product decision.
func (s *quotaService) CheckUserQuota(ctx context.Context, userID primitive.ObjectID) (*QuotaStatus, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}

	// 1. Resolve the subscription: active first, then latest of any status.
	sub, err := s.subRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		sub, err = s.subRepo.GetLatestByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNoSubscription
			}
			return nil, err
		}
	}

	// 2. Resolve the plan's analysis limit.
	plan, err := s.planRepo.GetByID(ctx, sub.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	// 3. Count uploads within the current calendar month, inclusive on both
	// ends (month start 00:00:00 through end-of-month 23:59:59).
	monthStart, monthEnd := calendarMonthBounds(s.now())
	used, err := s.videoRepo.CountByPlayerInRange(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	return &QuotaStatus{
		CanCreate:     int(used) < plan.AnalysisLimit,
		AnalysesUsed:  int(used),
		AnalysesLimit: plan.AnalysisLimit,
		// Always the first of the following month, regardless of the
		// subscription's billing anchor.
		NextResetDate: monthStart.AddDate(0, 1, 0),
	}, nil
}

// calendarMonthBounds returns the inclusive [start, end] of t's calendar month.
func calendarMonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second) // 23:59:59 on the last day
	return start, end
}
