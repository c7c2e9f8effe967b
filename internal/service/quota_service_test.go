package service

import (
	"context"
	"testing"
	"time"

	"courtside/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mid-month reference instant so the calendar bounds are unambiguous.
var quotaNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func newQuotaServiceForTest(subRepo *fakeSubscriptionRepo, planRepo *fakePlanRepo, videoRepo *fakeVideoRepo) *quotaService {
	return &quotaService{
		subRepo:   subRepo,
		planRepo:  planRepo,
		videoRepo: videoRepo,
		now:       func() time.Time { return quotaNow },
	}
}

func TestCheckUserQuota_UnderLimit(t *testing.T) {
	playerID := primitive.NewObjectID()
	planRepo := newFakePlanRepo()
	planID := planRepo.add(domain.PricingPlan{Name: "Pro", AnalysisLimit: 5, Active: true})

	subRepo := &fakeSubscriptionRepo{}
	subRepo.add(domain.Subscription{UserID: playerID, PlanID: planID, Status: domain.SubscriptionActive})

	videoRepo := newFakeVideoRepo()
	videoRepo.add(domain.Video{PlayerID: playerID, UploadedAt: quotaNow.AddDate(0, 0, -3)})
	videoRepo.add(domain.Video{PlayerID: playerID, UploadedAt: quotaNow.AddDate(0, 0, -1)})
	// Previous month, must not count.
	videoRepo.add(domain.Video{PlayerID: playerID, UploadedAt: quotaNow.AddDate(0, -1, 0)})
	// Another player's video, must not count.
	videoRepo.add(domain.Video{PlayerID: primitive.NewObjectID(), UploadedAt: quotaNow})

	svc := newQuotaServiceForTest(subRepo, planRepo, videoRepo)
	status, err := svc.CheckUserQuota(context.Background(), playerID)

	require.NoError(t, err)
	assert.True(t, status.CanCreate)
	assert.Equal(t, 2, status.AnalysesUsed)
	assert.Equal(t, 5, status.AnalysesLimit)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), status.NextResetDate)
}

func TestCheckUserQuota_AtLimit(t *testing.T) {
	playerID := primitive.NewObjectID()
	planRepo := newFakePlanRepo()
	planID := planRepo.add(domain.PricingPlan{Name: "Free", AnalysisLimit: 1, Active: true})

	subRepo := &fakeSubscriptionRepo{}
	subRepo.add(domain.Subscription{UserID: playerID, PlanID: planID, Status: domain.SubscriptionActive})

	videoRepo := newFakeVideoRepo()
	videoRepo.add(domain.Video{PlayerID: playerID, UploadedAt: quotaNow.AddDate(0, 0, -2)})

	svc := newQuotaServiceForTest(subRepo, planRepo, videoRepo)
	status, err := svc.CheckUserQuota(context.Background(), playerID)

	require.NoError(t, err)
	assert.False(t, status.CanCreate)
	assert.Equal(t, 1, status.AnalysesUsed)
	assert.Equal(t, 1, status.AnalysesLimit)
}

func TestCheckUserQuota_FallsBackToLatestSubscription(t *testing.T) {
	// No active subscription; the most recent one of any status is used.
	playerID := primitive.NewObjectID()
	planRepo := newFakePlanRepo()
	planID := planRepo.add(domain.PricingPlan{Name: "Pro", AnalysisLimit: 5})

	subRepo := &fakeSubscriptionRepo{}
	subRepo.add(domain.Subscription{UserID: playerID, PlanID: planID, Status: domain.SubscriptionCancelled})

	svc := newQuotaServiceForTest(subRepo, planRepo, newFakeVideoRepo())
	status, err := svc.CheckUserQuota(context.Background(), playerID)

	require.NoError(t, err)
	assert.True(t, status.CanCreate)
	assert.Equal(t, 5, status.AnalysesLimit)
}

func TestCheckUserQuota_NoSubscription(t *testing.T) {
	svc := newQuotaServiceForTest(&fakeSubscriptionRepo{}, newFakePlanRepo(), newFakeVideoRepo())
	_, err := svc.CheckUserQuota(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNoSubscription)
}

func TestCheckUserQuota_UnknownPlan(t *testing.T) {
	playerID := primitive.NewObjectID()
	subRepo := &fakeSubscriptionRepo{}
	subRepo.add(domain.Subscription{UserID: playerID, PlanID: primitive.NewObjectID(), Status: domain.SubscriptionActive})

	svc := newQuotaServiceForTest(subRepo, newFakePlanRepo(), newFakeVideoRepo())
	_, err := svc.CheckUserQuota(context.Background(), playerID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCheckUserQuota_MonthBoundsAreInclusive(t *testing.T) {
	playerID := primitive.NewObjectID()
	planRepo := newFakePlanRepo()
	planID := planRepo.add(domain.PricingPlan{Name: "Pro", AnalysisLimit: 5})

	subRepo := &fakeSubscriptionRepo{}
	subRepo.add(domain.Subscription{UserID: playerID, PlanID: planID, Status: domain.SubscriptionActive})

	videoRepo := newFakeVideoRepo()
	// First second of the month and last second of the month both count.
	videoRepo.add(domain.Video{PlayerID: playerID, UploadedAt: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)})
	videoRepo.add(domain.Video{PlayerID: playerID, UploadedAt: time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC)})

	svc := newQuotaServiceForTest(subRepo, planRepo, videoRepo)
	status, err := svc.CheckUserQuota(context.Background(), playerID)

	require.NoError(t, err)
	assert.Equal(t, 2, status.AnalysesUsed)
}
