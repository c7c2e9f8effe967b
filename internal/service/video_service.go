package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/repository"
	"courtside/coaching-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrVideoAccessDenied   = errors.New("access denied to this video")
	ErrQuotaExceeded       = errors.New("monthly analysis quota exceeded")
	ErrQuotaUnavailable    = errors.New("quota cannot be determined for this user")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds the size limit")
	ErrInvalidFileSize     = errors.New("file size must be positive")
	ErrCoachNotFound       = errors.New("coach user not found")
	ErrNotACoach           = errors.New("user found but is not a coach")
)

// Content types accepted for match video uploads.
var allowedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-msvideo":  true,
	"video/x-matroska": true,
}

// UploadRequest describes the file a player wants to upload plus its display
// metadata. Validated before any storage call.
type UploadRequest struct {
	Title       string
	Description string
	FocusArea   string
	FileName    string
	ContentType string
	Size        int64
}

// UploadTicket pairs the created video row with the presigned PUT URL the
// client uploads the file to.
type UploadTicket struct {
	Video     *domain.Video
	UploadURL string
}

// VideoWithURL decorates a video row with a presigned GET URL for playback.
// DownloadURL may be empty when URL generation failed; the row itself is
// still returned.
type VideoWithURL struct {
	Video       domain.Video
	DownloadURL string
}

// --- Service Interface ---
type VideoService interface {
	// Player flows
	RequestUpload(ctx context.Context, playerID primitive.ObjectID, req UploadRequest) (*UploadTicket, error)
	GetMyVideos(ctx context.Context, playerID primitive.ObjectID) ([]VideoWithURL, error)
	DeleteVideo(ctx context.Context, playerID, videoID primitive.ObjectID) error
	AssignCoaches(ctx context.Context, playerID, videoID primitive.ObjectID, coachIDs []primitive.ObjectID) error
	GetReviewedVideos(ctx context.Context, playerID primitive.ObjectID) ([]VideoWithURL, error)
	ListCoaches(ctx context.Context) ([]domain.User, error)

	// Coach flows
	GetPendingVideos(ctx context.Context, coachID primitive.ObjectID) ([]VideoWithURL, error)
	GetCompletedVideos(ctx context.Context, coachID primitive.ObjectID) ([]VideoWithURL, error)
}

// --- Service Implementation ---

// videoService implements the VideoService interface.
type videoService struct {
	videoRepo      repository.VideoRepository
	assignmentRepo repository.AssignmentRepository
	feedbackRepo   repository.FeedbackRepository
	userRepo       repository.UserRepository
	quotaService   QuotaService
	fileStorage    storage.FileStorage
	txManager      repository.TransactionManager
	maxVideoSize   int64
	logger         *zap.Logger
}

// NewVideoService creates a new instance of videoService.
func NewVideoService(
	videoRepo repository.VideoRepository,
	assignmentRepo repository.AssignmentRepository,
	feedbackRepo repository.FeedbackRepository,
	userRepo repository.UserRepository,
	quotaService QuotaService,
	fileStorage storage.FileStorage,
	txManager repository.TransactionManager,
	maxVideoSize int64,
	logger *zap.Logger,
) VideoService {
	return &videoService{
		videoRepo:      videoRepo,
		assignmentRepo: assignmentRepo,
		feedbackRepo:   feedbackRepo,
		userRepo:       userRepo,
		quotaService:   quotaService,
		fileStorage:    fileStorage,
		txManager:      txManager,
		maxVideoSize:   maxVideoSize,
		logger:         logger,
	}
}

// === Player: Upload ===

// RequestUpload validates the file, checks the player's monthly quota, creates
// the video row and hands back a presigned PUT URL for the actual upload.
func (s *videoService) RequestUpload(ctx context.Context, playerID primitive.ObjectID, req UploadRequest) (*UploadTicket, error) {
	// 1. Validate inputs before any storage or network work.
	if playerID == primitive.NilObjectID {
		return nil, errors.New("player ID is required")
	}
	if req.Title == "" || req.FileName == "" {
		return nil, errors.New("title and file name are required")
	}
	if !allowedVideoTypes[req.ContentType] {
		return nil, ErrUnsupportedFileType
	}
	if req.Size <= 0 {
		return nil, ErrInvalidFileSize
	}
	if req.Size > s.maxVideoSize {
		return nil, ErrFileTooLarge
	}

	// 2. Enforce the monthly quota.
	quota, err := s.quotaService.CheckUserQuota(ctx, playerID)
	if err != nil {
		if errors.Is(err, ErrNoSubscription) {
			return nil, ErrQuotaUnavailable
		}
		return nil, err
	}
	if !quota.CanCreate {
		return nil, ErrQuotaExceeded
	}

	// 3. Create the metadata row.
	objectKey := fmt.Sprintf("videos/%s/%s%s", playerID.Hex(), uuid.NewString(), strings.ToLower(filepath.Ext(req.FileName)))
	video := &domain.Video{
		PlayerID:    playerID,
		S3ObjectKey: objectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		Title:       req.Title,
		Description: req.Description,
		FocusArea:   req.FocusArea,
		Analyzed:    false,
	}
	videoID, err := s.videoRepo.Create(ctx, video)
	if err != nil {
		return nil, err
	}
	video.ID = videoID

	// 4. Presign the upload. If this fails the row is removed again so the
	// quota count is not consumed by a video that can never be uploaded.
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, req.ContentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		if delErr := s.videoRepo.Delete(ctx, videoID, playerID); delErr != nil {
			s.logger.Warn("failed to clean up video row after presign failure",
				zap.String("videoId", videoID.Hex()), zap.Error(delErr))
		}
		return nil, err
	}

	return &UploadTicket{Video: video, UploadURL: uploadURL}, nil
}

// GetMyVideos returns the player's videos, newest first, with playback URLs.
func (s *videoService) GetMyVideos(ctx context.Context, playerID primitive.ObjectID) ([]VideoWithURL, error) {
	if playerID == primitive.NilObjectID {
		return nil, errors.New("player ID is required")
	}
	videos, err := s.videoRepo.GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.withDownloadURLs(ctx, videos), nil
}

// DeleteVideo removes the player's video: the storage object first, then the
// row and its assignment rows. Feedback rows are kept as history.
func (s *videoService) DeleteVideo(ctx context.Context, playerID, videoID primitive.ObjectID) error {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}
	if video.PlayerID != playerID {
		return ErrVideoAccessDenied
	}

	// An orphaned storage object is tolerable; a dangling row is not. Log and
	// keep going when the object delete fails.
	if err := s.fileStorage.DeleteObject(ctx, video.S3ObjectKey); err != nil {
		s.logger.Warn("failed to delete storage object for video",
			zap.String("videoId", videoID.Hex()), zap.Error(err))
	}

	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.videoRepo.Delete(ctx, videoID, playerID); err != nil {
			return err
		}
		return s.assignmentRepo.DeleteByVideoID(ctx, videoID)
	})
}

// === Player: Coach assignment workflow ===

// AssignCoaches reconciles the video's assignment rows against the newly
// selected coach set: de-selected coaches' rows are deleted, new coaches get a
// pending row, and the video's analyzed flag tracks whether any coach remains
// assigned. The analyzed flag flips at assignment time, not at feedback time;
// that is the behavior the product ships with.
func (s *videoService) AssignCoaches(ctx context.Context, playerID, videoID primitive.ObjectID, coachIDs []primitive.ObjectID) error {
	// 1. Verify ownership.
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}
	if video.PlayerID != playerID {
		return ErrVideoAccessDenied
	}

	// 2. Validate the selection: dedupe, and every ID must be a coach.
	selected := make(map[primitive.ObjectID]bool, len(coachIDs))
	for _, coachID := range coachIDs {
		if selected[coachID] {
			continue
		}
		user, err := s.userRepo.GetByID(ctx, coachID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCoachNotFound
			}
			return err
		}
		if !user.IsCoach() {
			return ErrNotACoach
		}
		selected[coachID] = true
	}

	// 3. Set difference against the current assignment rows.
	existing, err := s.assignmentRepo.GetByVideoID(ctx, videoID)
	if err != nil {
		return err
	}
	var toRemove []primitive.ObjectID
	for _, a := range existing {
		if !selected[a.CoachID] {
			toRemove = append(toRemove, a.CoachID)
		}
	}

	// 4. Reconcile rows and the analyzed flag in one transaction.
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.assignmentRepo.DeleteByVideoAndCoaches(ctx, videoID, toRemove); err != nil {
			return err
		}
		for coachID := range selected {
			assignment := &domain.VideoCoachAssignment{
				VideoID:  videoID,
				CoachID:  coachID,
				PlayerID: playerID,
				Status:   domain.StatusPending,
			}
			if _, err := s.assignmentRepo.Upsert(ctx, assignment); err != nil {
				return err
			}
		}
		return s.videoRepo.SetAnalyzed(ctx, videoID, len(selected) > 0)
	})
}

// GetReviewedVideos returns the player's videos that have at least one
// feedback row.
func (s *videoService) GetReviewedVideos(ctx context.Context, playerID primitive.ObjectID) ([]VideoWithURL, error) {
	if playerID == primitive.NilObjectID {
		return nil, errors.New("player ID is required")
	}
	videoIDs, err := s.feedbackRepo.DistinctVideoIDsByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	videos, err := s.videoRepo.GetByIDs(ctx, videoIDs)
	if err != nil {
		return nil, err
	}
	return s.withDownloadURLs(ctx, videos), nil
}

// ListCoaches returns the coach directory for the selection UI.
func (s *videoService) ListCoaches(ctx context.Context) ([]domain.User, error) {
	coaches, err := s.userRepo.GetByRole(ctx, domain.RoleCoach)
	if err != nil {
		return nil, err
	}
	for i := range coaches {
		coaches[i].PasswordHash = ""
	}
	return coaches, nil
}

// === Coach: review queues ===

// GetPendingVideos returns videos awaiting this coach's review.
func (s *videoService) GetPendingVideos(ctx context.Context, coachID primitive.ObjectID) ([]VideoWithURL, error) {
	return s.videosByCoachStatus(ctx, coachID, domain.StatusPending)
}

// GetCompletedVideos returns videos this coach has already reviewed.
func (s *videoService) GetCompletedVideos(ctx context.Context, coachID primitive.ObjectID) ([]VideoWithURL, error) {
	return s.videosByCoachStatus(ctx, coachID, domain.StatusCompleted)
}

func (s *videoService) videosByCoachStatus(ctx context.Context, coachID primitive.ObjectID, status domain.AssignmentStatus) ([]VideoWithURL, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	assignments, err := s.assignmentRepo.GetByCoachAndStatus(ctx, coachID, status)
	if err != nil {
		return nil, err
	}

	videoIDs := make([]primitive.ObjectID, 0, len(assignments))
	for _, a := range assignments {
		videoIDs = append(videoIDs, a.VideoID)
	}
	videos, err := s.videoRepo.GetByIDs(ctx, videoIDs)
	if err != nil {
		return nil, err
	}
	return s.withDownloadURLs(ctx, videos), nil
}

// withDownloadURLs decorates videos with presigned GET URLs. Presign failures
// leave that video's URL empty rather than failing the whole listing.
func (s *videoService) withDownloadURLs(ctx context.Context, videos []domain.Video) []VideoWithURL {
	result := make([]VideoWithURL, 0, len(videos))
	for _, v := range videos {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, v.S3ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			s.logger.Warn("failed to presign download URL",
				zap.String("videoId", v.ID.Hex()), zap.Error(err))
			url = ""
		}
		result = append(result, VideoWithURL{Video: v, DownloadURL: url})
	}
	return result
}
