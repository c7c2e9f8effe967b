package api

import (
	"errors"
	"net/http"
	"time"

	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlayerHandler exposes the player-side flows: uploads, quota, coach
// assignment and feedback viewing.
type PlayerHandler struct {
	videoService    service.VideoService
	quotaService    service.QuotaService
	feedbackService service.FeedbackService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(
	videoService service.VideoService,
	quotaService service.QuotaService,
	feedbackService service.FeedbackService,
) *PlayerHandler {
	return &PlayerHandler{
		videoService:    videoService,
		quotaService:    quotaService,
		feedbackService: feedbackService,
	}
}

// --- DTOs ---

type UploadVideoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
	FocusArea   string `json:"focusArea,omitempty"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

type VideoResponse struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"playerId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FocusArea   string    `json:"focusArea,omitempty"`
	Analyzed    bool      `json:"analyzed"`
	UploadedAt  time.Time `json:"uploadedAt"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
}

type UploadTicketResponse struct {
	Video     VideoResponse `json:"video"`
	UploadURL string        `json:"uploadUrl"`
}

type AssignCoachesRequest struct {
	CoachIDs []string `json:"coachIds" binding:"required"`
}

// --- Handler Methods ---

// RequestUpload godoc
// @Summary Request a video upload
// @Description Validates the file and quota, creates the video record and returns a presigned upload URL.
// @Tags Player
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param video body UploadVideoRequest true "Video metadata"
// @Success 201 {object} UploadTicketResponse "Upload ticket"
// @Failure 400 {object} gin.H "Invalid input (file type, size)"
// @Failure 402 {object} gin.H "Quota exceeded"
// @Failure 409 {object} gin.H "Quota unavailable (no subscription)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /player/videos [post]
func (h *PlayerHandler) RequestUpload(c *gin.Context) {
	playerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	var req UploadVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ticket, err := h.videoService.RequestUpload(c.Request.Context(), playerID, service.UploadRequest{
		Title:       req.Title,
		Description: req.Description,
		FocusArea:   req.FocusArea,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType),
			errors.Is(err, service.ErrFileTooLarge),
			errors.Is(err, service.ErrInvalidFileSize):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrQuotaExceeded):
			abortWithError(c, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, service.ErrQuotaUnavailable):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to prepare upload.")
		}
		return
	}

	c.JSON(http.StatusCreated, UploadTicketResponse{
		Video:     mapVideoToResponse(ticket.Video, ""),
		UploadURL: ticket.UploadURL,
	})
}

// GetMyVideos godoc
// @Summary List my uploaded videos
// @Tags Player
// @Produce json
// @Security BearerAuth
// @Success 200 {array} VideoResponse "List of videos"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /player/videos [get]
func (h *PlayerHandler) GetMyVideos(c *gin.Context) {
	playerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	videos, err := h.videoService.GetMyVideos(c.Request.Context(), playerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve videos.")
		return
	}
	c.JSON(http.StatusOK, mapVideosWithURLs(videos))
}

// DeleteVideo godoc
// @Summary Delete one of my videos
// @Description Removes the video, its storage object and its coach assignments.
// @Tags Player
// @Produce json
// @Security BearerAuth
// @Param videoId path string true "Video ObjectID Hex"
// @Success 204 "Deleted"
// @Failure 400 {object} gin.H "Invalid video ID format"
// @Failure 403 {object} gin.H "Forbidden (not the owner)"
// @Failure 404 {object} gin.H "Video not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /player/videos/{videoId} [delete]
func (h *PlayerHandler) DeleteVideo(c *gin.Context) {
	playerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return
	}

	err = h.videoService.DeleteVideo(c.Request.Context(), playerID, videoID)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrVideoAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete video.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignCoaches godoc
// @Summary Set the coaches assigned to a video
// @Description Reconciles assignments to match the selected coach set. An empty list removes all assignments.
// @Tags Player
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param videoId path string true "Video ObjectID Hex"
// @Param coaches body AssignCoachesRequest true "Selected coach IDs"
// @Success 204 "Assignments reconciled"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (not the owner)"
// @Failure 404 {object} gin.H "Video or coach not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /player/videos/{videoId}/coaches [put]
func (h *PlayerHandler) AssignCoaches(c *gin.Context) {
	playerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return
	}

	var req AssignCoachesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachIDs := make([]primitive.ObjectID, 0, len(req.CoachIDs))
	for _, idStr := range req.CoachIDs {
		coachID, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid coach ID format: "+idStr)
			return
		}
		coachIDs = append(coachIDs, coachID)
	}

	err = h.videoService.AssignCoaches(c.Request.Context(), playerID, videoID, coachIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound), errors.Is(err, service.ErrCoachNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrVideoAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrNotACoach):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update coach assignments.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetReviewedVideos godoc
// @Summary List my videos that have received feedback
// @Tags Player
// @Produce json
// @Security BearerAuth
// @Success 200 {array} VideoResponse "List of reviewed videos"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /player/videos/reviewed [get]
func (h *PlayerHandler) GetReviewedVideos(c *gin.Context) {
	playerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	videos, err := h.videoService.GetReviewedVideos(c.Request.Context(), playerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve reviewed videos.")
		return
	}
	c.JSON(http.StatusOK, mapVideosWithURLs(videos))
}

// GetQuota godoc
// @Summary Get my monthly analysis quota
// @Tags Player
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.QuotaStatus "Quota status"
// @Failure 404 {object} gin.H "No subscription found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /player/quota [get]
func (h *PlayerHandler) GetQuota(c *gin.Context) {
	playerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	quota, err := h.quotaService.CheckUserQuota(c.Request.Context(), playerID)
	if err != nil {
		if errors.Is(err, service.ErrNoSubscription) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to check quota.")
		}
		return
	}
	c.JSON(http.StatusOK, quota)
}

// GetVideoFeedback godoc
// @Summary Get the feedback submitted for one of my videos
// @Tags Player
// @Produce json
// @Security BearerAuth
// @Param videoId path string true "Video ObjectID Hex"
// @Success 200 {array} FeedbackResponse "Feedback entries"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Video not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /player/videos/{videoId}/feedback [get]
func (h *PlayerHandler) GetVideoFeedback(c *gin.Context) {
	playerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	videoID, err := primitive.ObjectIDFromHex(c.Param("videoId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return
	}

	feedbacks, err := h.feedbackService.GetVideoFeedback(c.Request.Context(), playerID, videoID)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrFeedbackAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve feedback.")
		}
		return
	}
	c.JSON(http.StatusOK, mapFeedbacksWithURLs(feedbacks))
}

// ListCoaches godoc
// @Summary List the coach directory
// @Tags Player
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse "List of coaches"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coaches [get]
func (h *PlayerHandler) ListCoaches(c *gin.Context) {
	coaches, err := h.videoService.ListCoaches(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve coaches.")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(coaches))
}

// --- Mapping helpers ---

// objectIDFromToken pulls the authenticated user's ID out of the request
// context. Aborts the request itself when the ID is missing or malformed.
func objectIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func mapVideoToResponse(video *domain.Video, downloadURL string) VideoResponse {
	return VideoResponse{
		ID:          video.ID.Hex(),
		PlayerID:    video.PlayerID.Hex(),
		FileName:    video.FileName,
		ContentType: video.ContentType,
		Size:        video.Size,
		Title:       video.Title,
		Description: video.Description,
		FocusArea:   video.FocusArea,
		Analyzed:    video.Analyzed,
		UploadedAt:  video.UploadedAt,
		DownloadURL: downloadURL,
	}
}

func mapVideosWithURLs(videos []service.VideoWithURL) []VideoResponse {
	resp := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		resp = append(resp, mapVideoToResponse(&videos[i].Video, videos[i].DownloadURL))
	}
	return resp
}
