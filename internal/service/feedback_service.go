package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/repository"
	"courtside/coaching-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentAccessDenied = errors.New("access denied to this assignment")
	ErrFeedbackExists         = errors.New("feedback already submitted for this assignment")
	ErrFeedbackNotFound       = errors.New("feedback not found")
	ErrInvalidRating          = errors.New("rating must be an integer between 1 and 5")
	ErrEmptyFeedback          = errors.New("feedback text cannot be empty")
	ErrFeedbackAccessDenied   = errors.New("access denied to this video's feedback")
)

// Content types a coach may attach to feedback (annotated stills, diagrams,
// short demonstration clips).
var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
	"video/mp4":       true,
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

// AttachmentInput describes one file the coach wants to attach.
type AttachmentInput struct {
	FileName    string
	ContentType string
	Size        int64
}

// AttachmentUpload is a successfully prepared attachment: the object key
// recorded on the feedback row plus the presigned PUT URL to push the file to.
type AttachmentUpload struct {
	FileName  string `json:"fileName"`
	ObjectKey string `json:"-"`
	UploadURL string `json:"uploadUrl"`
}

// SkippedAttachment reports a per-file failure. Failed attachments never block
// the feedback submission itself.
type SkippedAttachment struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// SubmitFeedbackInput carries the review a coach submits for an assignment.
type SubmitFeedbackInput struct {
	Rating      int
	Feedback    string
	Attachments []AttachmentInput
}

// SubmitFeedbackResult is the outcome of a submission, including per-file
// attachment results.
type SubmitFeedbackResult struct {
	Feedback    *domain.VideoFeedback
	Attachments []AttachmentUpload
	Skipped     []SkippedAttachment
}

// FeedbackWithURLs decorates a feedback row with presigned GET URLs for its
// attachments.
type FeedbackWithURLs struct {
	Feedback       domain.VideoFeedback
	AttachmentURLs []string
}

// --- Service Interface ---
type FeedbackService interface {
	SubmitFeedback(ctx context.Context, coachID, assignmentID primitive.ObjectID, input SubmitFeedbackInput) (*SubmitFeedbackResult, error)
	// GetFeedbackForAssignment returns the existing feedback for the coach's
	// assignment, or ErrFeedbackNotFound. Backs the read-only render when a
	// review was already submitted.
	GetFeedbackForAssignment(ctx context.Context, coachID, assignmentID primitive.ObjectID) (*domain.VideoFeedback, error)
	GetVideoFeedback(ctx context.Context, callerID, videoID primitive.ObjectID) ([]FeedbackWithURLs, error)
}

// --- Service Implementation ---

// feedbackService implements the FeedbackService interface.
type feedbackService struct {
	feedbackRepo   repository.FeedbackRepository
	assignmentRepo repository.AssignmentRepository
	videoRepo      repository.VideoRepository
	fileStorage    storage.FileStorage
	txManager      repository.TransactionManager
	maxImageSize   int64
	maxVideoSize   int64
	logger         *zap.Logger
}

// NewFeedbackService creates a new instance of feedbackService.
func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	assignmentRepo repository.AssignmentRepository,
	videoRepo repository.VideoRepository,
	fileStorage storage.FileStorage,
	txManager repository.TransactionManager,
	maxImageSize, maxVideoSize int64,
	logger *zap.Logger,
) FeedbackService {
	return &feedbackService{
		feedbackRepo:   feedbackRepo,
		assignmentRepo: assignmentRepo,
		videoRepo:      videoRepo,
		fileStorage:    fileStorage,
		txManager:      txManager,
		maxImageSize:   maxImageSize,
		maxVideoSize:   maxVideoSize,
		logger:         logger,
	}
}

// SubmitFeedback attaches the coach's rating and free-text review to an
// assignment and marks the assignment completed. At most one feedback row per
// assignment: the unique index turns concurrent double-submits into
// ErrFeedbackExists.
func (s *feedbackService) SubmitFeedback(ctx context.Context, coachID, assignmentID primitive.ObjectID, input SubmitFeedbackInput) (*SubmitFeedbackResult, error) {
	// 1. Validate before any storage or database write.
	if coachID == primitive.NilObjectID || assignmentID == primitive.NilObjectID {
		return nil, errors.New("coach ID and assignment ID are required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if strings.TrimSpace(input.Feedback) == "" {
		return nil, ErrEmptyFeedback
	}

	// 2. Load the assignment and check the caller is its coach.
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CoachID != coachID {
		return nil, ErrAssignmentAccessDenied
	}

	// 3. Fast-path duplicate check. The unique index remains the actual
	// guarantee; this only gives a cleaner error without touching storage.
	if _, err := s.feedbackRepo.GetByAssignmentID(ctx, assignmentID); err == nil {
		return nil, ErrFeedbackExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 4. Prepare attachments per-file; failures are skipped with a notice and
	// never abort the submission.
	uploads, skipped := s.prepareAttachments(ctx, assignment.VideoID, input.Attachments)

	attachmentKeys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		attachmentKeys = append(attachmentKeys, u.ObjectKey)
	}

	// 5. Insert the feedback row and complete the assignment atomically.
	feedback := &domain.VideoFeedback{
		AssignmentID:   assignmentID,
		VideoID:        assignment.VideoID,
		CoachID:        coachID,
		PlayerID:       assignment.PlayerID,
		Rating:         input.Rating,
		Feedback:       input.Feedback,
		AttachmentKeys: attachmentKeys,
	}
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		feedbackID, err := s.feedbackRepo.Create(ctx, feedback)
		if err != nil {
			return err
		}
		feedback.ID = feedbackID
		return s.assignmentRepo.UpdateStatus(ctx, assignmentID, domain.StatusCompleted)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFeedbackExists
		}
		return nil, err
	}

	return &SubmitFeedbackResult{
		Feedback:    feedback,
		Attachments: uploads,
		Skipped:     skipped,
	}, nil
}

// prepareAttachments validates each attachment and generates its presigned
// upload URL. Keys are namespaced by video ID and a timestamp.
func (s *feedbackService) prepareAttachments(ctx context.Context, videoID primitive.ObjectID, attachments []AttachmentInput) ([]AttachmentUpload, []SkippedAttachment) {
	var uploads []AttachmentUpload
	var skipped []SkippedAttachment

	for _, att := range attachments {
		if err := s.validateAttachment(att); err != nil {
			skipped = append(skipped, SkippedAttachment{FileName: att.FileName, Reason: err.Error()})
			continue
		}

		objectKey := fmt.Sprintf("feedback/%s/%d-%s",
			videoID.Hex(), time.Now().UnixNano(), sanitizeFileName(att.FileName))
		uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, att.ContentType, storage.DefaultPresignedURLExpiry)
		if err != nil {
			s.logger.Warn("failed to presign attachment upload, skipping file",
				zap.String("fileName", att.FileName), zap.Error(err))
			skipped = append(skipped, SkippedAttachment{FileName: att.FileName, Reason: "upload URL generation failed"})
			continue
		}

		uploads = append(uploads, AttachmentUpload{
			FileName:  att.FileName,
			ObjectKey: objectKey,
			UploadURL: uploadURL,
		})
	}
	return uploads, skipped
}

func (s *feedbackService) validateAttachment(att AttachmentInput) error {
	if att.FileName == "" {
		return errors.New("file name is required")
	}
	if !allowedAttachmentTypes[att.ContentType] {
		return ErrUnsupportedFileType
	}
	if att.Size <= 0 {
		return ErrInvalidFileSize
	}
	limit := s.maxVideoSize
	if isImageType(att.ContentType) {
		limit = s.maxImageSize
	}
	if att.Size > limit {
		return ErrFileTooLarge
	}
	return nil
}

// sanitizeFileName keeps only the base name and replaces characters that are
// awkward in object keys.
func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

// GetFeedbackForAssignment returns the coach's existing feedback for an
// assignment, for the read-only render of an already-submitted review.
func (s *feedbackService) GetFeedbackForAssignment(ctx context.Context, coachID, assignmentID primitive.ObjectID) (*domain.VideoFeedback, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CoachID != coachID {
		return nil, ErrAssignmentAccessDenied
	}

	feedback, err := s.feedbackRepo.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return feedback, nil
}

// GetVideoFeedback returns all feedback rows for a video, visible to the
// owning player and to coaches assigned to the video.
func (s *feedbackService) GetVideoFeedback(ctx context.Context, callerID, videoID primitive.ObjectID) ([]FeedbackWithURLs, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if video.PlayerID != callerID {
		assigned, err := s.isAssignedCoach(ctx, callerID, videoID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, ErrFeedbackAccessDenied
		}
	}

	feedbacks, err := s.feedbackRepo.GetByVideoID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	result := make([]FeedbackWithURLs, 0, len(feedbacks))
	for _, fb := range feedbacks {
		urls := make([]string, 0, len(fb.AttachmentKeys))
		for _, key := range fb.AttachmentKeys {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
			if err != nil {
				s.logger.Warn("failed to presign attachment download",
					zap.String("objectKey", key), zap.Error(err))
				continue
			}
			urls = append(urls, url)
		}
		result = append(result, FeedbackWithURLs{Feedback: fb, AttachmentURLs: urls})
	}
	return result, nil
}

func (s *feedbackService) isAssignedCoach(ctx context.Context, coachID, videoID primitive.ObjectID) (bool, error) {
	assignments, err := s.assignmentRepo.GetByVideoID(ctx, videoID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if a.CoachID == coachID {
			return true, nil
		}
	}
	return false, nil
}
