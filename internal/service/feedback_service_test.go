package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type feedbackServiceFixture struct {
	svc            FeedbackService
	feedbackRepo   *fakeFeedbackRepo
	assignmentRepo *fakeAssignmentRepo
	videoRepo      *fakeVideoRepo
	storage        *fakeStorage
	tx             *fakeTxManager

	playerID     primitive.ObjectID
	coachID      primitive.ObjectID
	videoID      primitive.ObjectID
	assignmentID primitive.ObjectID
}

func newFeedbackServiceFixture() *feedbackServiceFixture {
	f := &feedbackServiceFixture{
		feedbackRepo:   newFakeFeedbackRepo(),
		assignmentRepo: newFakeAssignmentRepo(),
		videoRepo:      newFakeVideoRepo(),
		storage:        &fakeStorage{},
		tx:             &fakeTxManager{},
		playerID:       primitive.NewObjectID(),
		coachID:        primitive.NewObjectID(),
	}
	f.videoID = f.videoRepo.add(domain.Video{PlayerID: f.playerID, S3ObjectKey: "videos/x.mp4"})
	f.assignmentID = f.assignmentRepo.add(domain.VideoCoachAssignment{
		VideoID:  f.videoID,
		CoachID:  f.coachID,
		PlayerID: f.playerID,
		Status:   domain.StatusPending,
	})
	f.svc = NewFeedbackService(
		f.feedbackRepo, f.assignmentRepo, f.videoRepo, f.storage, f.tx,
		5*1024*1024, 500*1024*1024, zap.NewNop(),
	)
	return f
}

func TestSubmitFeedback_Success(t *testing.T) {
	f := newFeedbackServiceFixture()

	result, err := f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, SubmitFeedbackInput{
		Rating:   4,
		Feedback: "Strong first serve, work on your recovery step.",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Feedback)
	assert.NotEqual(t, primitive.NilObjectID, result.Feedback.ID)
	assert.Equal(t, f.videoID, result.Feedback.VideoID)
	assert.Equal(t, f.playerID, result.Feedback.PlayerID)
	assert.Equal(t, 4, result.Feedback.Rating)

	assignment, _ := f.assignmentRepo.GetByID(context.Background(), f.assignmentID)
	assert.Equal(t, domain.StatusCompleted, assignment.Status)
	assert.Equal(t, 1, f.tx.calls)
}

func TestSubmitFeedback_RejectsInvalidRating(t *testing.T) {
	f := newFeedbackServiceFixture()
	for _, rating := range []int{0, -1, 6} {
		_, err := f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, SubmitFeedbackInput{
			Rating:   rating,
			Feedback: "text",
		})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
	assert.Empty(t, f.feedbackRepo.rows)
}

func TestSubmitFeedback_RejectsBlankText(t *testing.T) {
	f := newFeedbackServiceFixture()

	_, err := f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, SubmitFeedbackInput{
		Rating:   3,
		Feedback: "   \n\t ",
	})

	assert.ErrorIs(t, err, ErrEmptyFeedback)
	assignment, _ := f.assignmentRepo.GetByID(context.Background(), f.assignmentID)
	assert.Equal(t, domain.StatusPending, assignment.Status)
}

func TestSubmitFeedback_RejectsWrongCoach(t *testing.T) {
	f := newFeedbackServiceFixture()

	_, err := f.svc.SubmitFeedback(context.Background(), primitive.NewObjectID(), f.assignmentID, SubmitFeedbackInput{
		Rating:   3,
		Feedback: "text",
	})
	assert.ErrorIs(t, err, ErrAssignmentAccessDenied)
}

func TestSubmitFeedback_UnknownAssignment(t *testing.T) {
	f := newFeedbackServiceFixture()

	_, err := f.svc.SubmitFeedback(context.Background(), f.coachID, primitive.NewObjectID(), SubmitFeedbackInput{
		Rating:   3,
		Feedback: "text",
	})
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmitFeedback_RejectsSecondSubmission(t *testing.T) {
	f := newFeedbackServiceFixture()
	input := SubmitFeedbackInput{Rating: 4, Feedback: "first review"}
	_, err := f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, input)
	require.NoError(t, err)

	_, err = f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, input)

	assert.ErrorIs(t, err, ErrFeedbackExists)
	assert.Len(t, f.feedbackRepo.rows, 1)
}

// racingFeedbackRepo hides the existing row from the pre-check so the insert
// itself hits the unique-index duplicate, like a concurrent double-submit.
type racingFeedbackRepo struct {
	*fakeFeedbackRepo
}

func (r *racingFeedbackRepo) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.VideoFeedback, error) {
	return nil, repository.ErrNotFound
}

func TestSubmitFeedback_DuplicateFromIndexMapsToFeedbackExists(t *testing.T) {
	f := newFeedbackServiceFixture()
	f.feedbackRepo.add(domain.VideoFeedback{AssignmentID: f.assignmentID, VideoID: f.videoID, CoachID: f.coachID, PlayerID: f.playerID, Rating: 5})
	svc := NewFeedbackService(
		&racingFeedbackRepo{f.feedbackRepo}, f.assignmentRepo, f.videoRepo, f.storage, f.tx,
		5*1024*1024, 500*1024*1024, zap.NewNop(),
	)

	_, err := svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, SubmitFeedbackInput{
		Rating:   4,
		Feedback: "second attempt",
	})

	assert.ErrorIs(t, err, ErrFeedbackExists)
	assert.Len(t, f.feedbackRepo.rows, 1)
}

func TestSubmitFeedback_SkipsBadAttachments(t *testing.T) {
	f := newFeedbackServiceFixture()

	result, err := f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, SubmitFeedbackInput{
		Rating:   5,
		Feedback: "See the annotated frames.",
		Attachments: []AttachmentInput{
			{FileName: "frame1.png", ContentType: "image/png", Size: 100 * 1024},
			{FileName: "huge.png", ContentType: "image/png", Size: 6 * 1024 * 1024},
			{FileName: "notes.exe", ContentType: "application/octet-stream", Size: 1024},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Attachments, 1)
	assert.Equal(t, "frame1.png", result.Attachments[0].FileName)
	assert.True(t, strings.HasPrefix(result.Attachments[0].ObjectKey, "feedback/"+f.videoID.Hex()+"/"))
	assert.NotEmpty(t, result.Attachments[0].UploadURL)

	require.Len(t, result.Skipped, 2)
	assert.Len(t, result.Feedback.AttachmentKeys, 1)
}

func TestSubmitFeedback_AttachmentVideoUsesVideoLimit(t *testing.T) {
	// A 100MB demonstration clip is over the image cap but under the video cap.
	f := newFeedbackServiceFixture()

	result, err := f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, SubmitFeedbackInput{
		Rating:   5,
		Feedback: "Demonstration attached.",
		Attachments: []AttachmentInput{
			{FileName: "demo.mp4", ContentType: "video/mp4", Size: 100 * 1024 * 1024},
		},
	})

	require.NoError(t, err)
	assert.Len(t, result.Attachments, 1)
	assert.Empty(t, result.Skipped)
}

func TestSubmitFeedback_PresignFailureSkipsButSubmits(t *testing.T) {
	f := newFeedbackServiceFixture()
	f.storage.uploadErr = errors.New("s3 unavailable")

	result, err := f.svc.SubmitFeedback(context.Background(), f.coachID, f.assignmentID, SubmitFeedbackInput{
		Rating:   4,
		Feedback: "Review with attachments.",
		Attachments: []AttachmentInput{
			{FileName: "frame1.png", ContentType: "image/png", Size: 1024},
		},
	})

	require.NoError(t, err, "attachment failures must not block the feedback")
	assert.Empty(t, result.Attachments)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "frame1.png", result.Skipped[0].FileName)
	assert.Empty(t, result.Feedback.AttachmentKeys)
}

func TestGetFeedbackForAssignment(t *testing.T) {
	f := newFeedbackServiceFixture()

	_, err := f.svc.GetFeedbackForAssignment(context.Background(), f.coachID, f.assignmentID)
	assert.ErrorIs(t, err, ErrFeedbackNotFound)

	f.feedbackRepo.add(domain.VideoFeedback{AssignmentID: f.assignmentID, VideoID: f.videoID, CoachID: f.coachID, PlayerID: f.playerID, Rating: 4})

	feedback, err := f.svc.GetFeedbackForAssignment(context.Background(), f.coachID, f.assignmentID)
	require.NoError(t, err)
	assert.Equal(t, 4, feedback.Rating)

	_, err = f.svc.GetFeedbackForAssignment(context.Background(), primitive.NewObjectID(), f.assignmentID)
	assert.ErrorIs(t, err, ErrAssignmentAccessDenied)
}

func TestGetVideoFeedback_Visibility(t *testing.T) {
	f := newFeedbackServiceFixture()
	f.feedbackRepo.add(domain.VideoFeedback{
		AssignmentID:   f.assignmentID,
		VideoID:        f.videoID,
		CoachID:        f.coachID,
		PlayerID:       f.playerID,
		Rating:         5,
		AttachmentKeys: []string{"feedback/x/frame.png"},
	})

	// Owner sees it, with attachment URLs.
	rows, err := f.svc.GetVideoFeedback(context.Background(), f.playerID, f.videoID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].AttachmentURLs, 1)
	assert.Contains(t, rows[0].AttachmentURLs[0], "feedback/x/frame.png")

	// Assigned coach sees it.
	_, err = f.svc.GetVideoFeedback(context.Background(), f.coachID, f.videoID)
	assert.NoError(t, err)

	// Anyone else does not.
	_, err = f.svc.GetVideoFeedback(context.Background(), primitive.NewObjectID(), f.videoID)
	assert.ErrorIs(t, err, ErrFeedbackAccessDenied)
}
