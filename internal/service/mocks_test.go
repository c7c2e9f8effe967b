package service

// In-memory fakes for the repository and storage interfaces. They keep real
// state so reconciliation flows can be asserted against row contents.

import (
	"context"
	"time"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Transaction manager ---

type fakeTxManager struct {
	calls int
	err   error
}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

// --- File storage ---

type fakeStorage struct {
	uploadErr   error
	downloadErr error
	deleteErr   error

	presignedUploads []string
	deletedKeys      []string
}

func (f *fakeStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.presignedUploads = append(f.presignedUploads, objectKey)
	return "https://s3.test/put/" + objectKey, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return "https://s3.test/get/" + objectKey, nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedKeys = append(f.deletedKeys, objectKey)
	return nil
}

// --- User repository ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) add(user domain.User) primitive.ObjectID {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = &user
	return user.ID
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	f.users[id] = &stored
	return id, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, u := range f.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

// --- Video repository ---

type fakeVideoRepo struct {
	videos map[primitive.ObjectID]*domain.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[primitive.ObjectID]*domain.Video)}
}

func (f *fakeVideoRepo) add(video domain.Video) primitive.ObjectID {
	if video.ID == primitive.NilObjectID {
		video.ID = primitive.NewObjectID()
	}
	f.videos[video.ID] = &video
	return video.ID
}

func (f *fakeVideoRepo) Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *video
	stored.ID = id
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	f.videos[id] = &stored
	return id, nil
}

func (f *fakeVideoRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideoRepo) GetByPlayerID(ctx context.Context, playerID primitive.ObjectID) ([]domain.Video, error) {
	var result []domain.Video
	for _, v := range f.videos {
		if v.PlayerID == playerID {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (f *fakeVideoRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Video, error) {
	var result []domain.Video
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (f *fakeVideoRepo) CountByPlayerInRange(ctx context.Context, playerID primitive.ObjectID, from, to time.Time) (int64, error) {
	var count int64
	for _, v := range f.videos {
		if v.PlayerID != playerID {
			continue
		}
		if v.UploadedAt.Before(from) || v.UploadedAt.After(to) {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeVideoRepo) SetAnalyzed(ctx context.Context, videoID primitive.ObjectID, analyzed bool) error {
	v, ok := f.videos[videoID]
	if !ok {
		return repository.ErrNotFound
	}
	v.Analyzed = analyzed
	return nil
}

func (f *fakeVideoRepo) Delete(ctx context.Context, videoID, playerID primitive.ObjectID) error {
	v, ok := f.videos[videoID]
	if !ok || v.PlayerID != playerID {
		return repository.ErrNotFound
	}
	delete(f.videos, videoID)
	return nil
}

// --- Assignment repository ---

type fakeAssignmentRepo struct {
	rows map[primitive.ObjectID]*domain.VideoCoachAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{rows: make(map[primitive.ObjectID]*domain.VideoCoachAssignment)}
}

func (f *fakeAssignmentRepo) add(a domain.VideoCoachAssignment) primitive.ObjectID {
	if a.ID == primitive.NilObjectID {
		a.ID = primitive.NewObjectID()
	}
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	f.rows[a.ID] = &a
	return a.ID
}

func (f *fakeAssignmentRepo) Upsert(ctx context.Context, assignment *domain.VideoCoachAssignment) (primitive.ObjectID, error) {
	for id, row := range f.rows {
		if row.VideoID == assignment.VideoID && row.CoachID == assignment.CoachID {
			return id, nil
		}
	}
	id := primitive.NewObjectID()
	stored := *assignment
	stored.ID = id
	if stored.Status == "" {
		stored.Status = domain.StatusPending
	}
	f.rows[id] = &stored
	return id, nil
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.VideoCoachAssignment, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssignmentRepo) GetByVideoID(ctx context.Context, videoID primitive.ObjectID) ([]domain.VideoCoachAssignment, error) {
	var result []domain.VideoCoachAssignment
	for _, a := range f.rows {
		if a.VideoID == videoID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAssignmentRepo) GetByCoachAndStatus(ctx context.Context, coachID primitive.ObjectID, status domain.AssignmentStatus) ([]domain.VideoCoachAssignment, error) {
	var result []domain.VideoCoachAssignment
	for _, a := range f.rows {
		if a.CoachID == coachID && a.Status == status {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAssignmentRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	a, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeAssignmentRepo) DeleteByVideoAndCoaches(ctx context.Context, videoID primitive.ObjectID, coachIDs []primitive.ObjectID) error {
	for id, a := range f.rows {
		if a.VideoID != videoID {
			continue
		}
		for _, coachID := range coachIDs {
			if a.CoachID == coachID {
				delete(f.rows, id)
				break
			}
		}
	}
	return nil
}

func (f *fakeAssignmentRepo) DeleteByVideoID(ctx context.Context, videoID primitive.ObjectID) error {
	for id, a := range f.rows {
		if a.VideoID == videoID {
			delete(f.rows, id)
		}
	}
	return nil
}

// --- Feedback repository ---

type fakeFeedbackRepo struct {
	rows map[primitive.ObjectID]*domain.VideoFeedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{rows: make(map[primitive.ObjectID]*domain.VideoFeedback)}
}

func (f *fakeFeedbackRepo) add(fb domain.VideoFeedback) primitive.ObjectID {
	if fb.ID == primitive.NilObjectID {
		fb.ID = primitive.NewObjectID()
	}
	f.rows[fb.ID] = &fb
	return fb.ID
}

func (f *fakeFeedbackRepo) Create(ctx context.Context, feedback *domain.VideoFeedback) (primitive.ObjectID, error) {
	for _, row := range f.rows {
		if row.AssignmentID == feedback.AssignmentID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	stored := *feedback
	stored.ID = id
	f.rows[id] = &stored
	return id, nil
}

func (f *fakeFeedbackRepo) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.VideoFeedback, error) {
	for _, fb := range f.rows {
		if fb.AssignmentID == assignmentID {
			cp := *fb
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFeedbackRepo) GetByVideoID(ctx context.Context, videoID primitive.ObjectID) ([]domain.VideoFeedback, error) {
	var result []domain.VideoFeedback
	for _, fb := range f.rows {
		if fb.VideoID == videoID {
			result = append(result, *fb)
		}
	}
	return result, nil
}

func (f *fakeFeedbackRepo) DistinctVideoIDsByPlayer(ctx context.Context, playerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]bool)
	var result []primitive.ObjectID
	for _, fb := range f.rows {
		if fb.PlayerID == playerID && !seen[fb.VideoID] {
			seen[fb.VideoID] = true
			result = append(result, fb.VideoID)
		}
	}
	return result, nil
}

// --- Plan repository ---

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.PricingPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.PricingPlan)}
}

func (f *fakePlanRepo) add(plan domain.PricingPlan) primitive.ObjectID {
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	f.plans[plan.ID] = &plan
	return plan.ID
}

func (f *fakePlanRepo) Create(ctx context.Context, plan *domain.PricingPlan) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *plan
	stored.ID = id
	f.plans[id] = &stored
	return id, nil
}

func (f *fakePlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PricingPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlanRepo) GetByName(ctx context.Context, name string) (*domain.PricingPlan, error) {
	for _, p := range f.plans {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) GetActive(ctx context.Context) ([]domain.PricingPlan, error) {
	var result []domain.PricingPlan
	for _, p := range f.plans {
		if p.Active {
			result = append(result, *p)
		}
	}
	return result, nil
}

// --- Subscription repository ---

type fakeSubscriptionRepo struct {
	subs []*domain.Subscription
}

func (f *fakeSubscriptionRepo) add(sub domain.Subscription) primitive.ObjectID {
	if sub.ID == primitive.NilObjectID {
		sub.ID = primitive.NewObjectID()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	f.subs = append(f.subs, &sub)
	return sub.ID
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *sub
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	f.subs = append(f.subs, &stored)
	return id, nil
}

func (f *fakeSubscriptionRepo) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error) {
	var best *domain.Subscription
	for _, s := range f.subs {
		if s.UserID != userID || s.Status != domain.SubscriptionActive {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (f *fakeSubscriptionRepo) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Subscription, error) {
	var best *domain.Subscription
	for _, s := range f.subs {
		if s.UserID != userID {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

// --- Survey repository ---

type fakeSurveyRepo struct {
	rows []*domain.SurveyResponse
}

func (f *fakeSurveyRepo) Create(ctx context.Context, response *domain.SurveyResponse) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	stored := *response
	stored.ID = id
	if stored.SubmittedAt.IsZero() {
		stored.SubmittedAt = time.Now().UTC()
	}
	f.rows = append(f.rows, &stored)
	return id, nil
}

func (f *fakeSurveyRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.SurveyResponse, error) {
	var result []domain.SurveyResponse
	for _, r := range f.rows {
		if r.UserID != nil && *r.UserID == userID {
			result = append(result, *r)
		}
	}
	return result, nil
}

// --- Quota service stub (for video service tests) ---

type stubQuotaService struct {
	status *QuotaStatus
	err    error
}

func (s *stubQuotaService) CheckUserQuota(ctx context.Context, userID primitive.ObjectID) (*QuotaStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.status, nil
}
