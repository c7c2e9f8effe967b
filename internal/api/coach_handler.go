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

// CoachHandler exposes the coach-side flows: review queues and feedback
// submission.
type CoachHandler struct {
	videoService    service.VideoService
	feedbackService service.FeedbackService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(videoService service.VideoService, feedbackService service.FeedbackService) *CoachHandler {
	return &CoachHandler{
		videoService:    videoService,
		feedbackService: feedbackService,
	}
}

// --- DTOs ---

type AttachmentRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

type SubmitFeedbackRequest struct {
	Rating      int                 `json:"rating" binding:"required,min=1,max=5"`
	Feedback    string              `json:"feedback" binding:"required"`
	Attachments []AttachmentRequest `json:"attachments,omitempty"`
}

type FeedbackResponse struct {
	ID             string    `json:"id"`
	AssignmentID   string    `json:"assignmentId"`
	VideoID        string    `json:"videoId"`
	CoachID        string    `json:"coachId"`
	PlayerID       string    `json:"playerId"`
	Rating         int       `json:"rating"`
	Feedback       string    `json:"feedback"`
	AttachmentURLs []string  `json:"attachmentUrls,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type SubmitFeedbackResponse struct {
	Feedback    FeedbackResponse            `json:"feedback"`
	Attachments []service.AttachmentUpload  `json:"attachments,omitempty"`
	Skipped     []service.SkippedAttachment `json:"skippedAttachments,omitempty"`
}

// --- Handler Methods ---

// GetPendingVideos godoc
// @Summary List videos awaiting my review
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} VideoResponse "Pending videos"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/videos/pending [get]
func (h *CoachHandler) GetPendingVideos(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	videos, err := h.videoService.GetPendingVideos(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve pending videos.")
		return
	}
	c.JSON(http.StatusOK, mapVideosWithURLs(videos))
}

// GetCompletedVideos godoc
// @Summary List videos I have already reviewed
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} VideoResponse "Completed videos"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/videos/completed [get]
func (h *CoachHandler) GetCompletedVideos(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	videos, err := h.videoService.GetCompletedVideos(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve completed videos.")
		return
	}
	c.JSON(http.StatusOK, mapVideosWithURLs(videos))
}

// SubmitFeedback godoc
// @Summary Submit feedback for an assignment
// @Description Attaches a rating and free-text feedback, marks the assignment completed. One submission per assignment.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ObjectID Hex"
// @Param feedback body SubmitFeedbackRequest true "Feedback details"
// @Success 201 {object} SubmitFeedbackResponse "Feedback created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (not the assigned coach)"
// @Failure 404 {object} gin.H "Assignment not found"
// @Failure 409 {object} gin.H "Feedback already submitted"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/assignments/{assignmentId}/feedback [post]
func (h *CoachHandler) SubmitFeedback(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format.")
		return
	}

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	attachments := make([]service.AttachmentInput, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, service.AttachmentInput{
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}

	result, err := h.feedbackService.SubmitFeedback(c.Request.Context(), coachID, assignmentID, service.SubmitFeedbackInput{
		Rating:      req.Rating,
		Feedback:    req.Feedback,
		Attachments: attachments,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssignmentAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrFeedbackExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrEmptyFeedback):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to submit feedback.")
		}
		return
	}

	c.JSON(http.StatusCreated, SubmitFeedbackResponse{
		Feedback:    mapFeedbackToResponse(result.Feedback, nil),
		Attachments: result.Attachments,
		Skipped:     result.Skipped,
	})
}

// GetFeedbackForAssignment godoc
// @Summary Get my existing feedback for an assignment
// @Description Used to render an already-submitted review read-only instead of the submission form.
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ObjectID Hex"
// @Success 200 {object} FeedbackResponse "Existing feedback"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Assignment or feedback not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/assignments/{assignmentId}/feedback [get]
func (h *CoachHandler) GetFeedbackForAssignment(c *gin.Context) {
	coachID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format.")
		return
	}

	feedback, err := h.feedbackService.GetFeedbackForAssignment(c.Request.Context(), coachID, assignmentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound), errors.Is(err, service.ErrFeedbackNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssignmentAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve feedback.")
		}
		return
	}
	c.JSON(http.StatusOK, mapFeedbackToResponse(feedback, nil))
}

// --- Mapping helpers ---

func mapFeedbackToResponse(fb *domain.VideoFeedback, attachmentURLs []string) FeedbackResponse {
	if fb == nil {
		return FeedbackResponse{}
	}
	return FeedbackResponse{
		ID:             fb.ID.Hex(),
		AssignmentID:   fb.AssignmentID.Hex(),
		VideoID:        fb.VideoID.Hex(),
		CoachID:        fb.CoachID.Hex(),
		PlayerID:       fb.PlayerID.Hex(),
		Rating:         fb.Rating,
		Feedback:       fb.Feedback,
		AttachmentURLs: attachmentURLs,
		CreatedAt:      fb.CreatedAt,
	}
}

func mapFeedbacksWithURLs(feedbacks []service.FeedbackWithURLs) []FeedbackResponse {
	resp := make([]FeedbackResponse, 0, len(feedbacks))
	for i := range feedbacks {
		resp = append(resp, mapFeedbackToResponse(&feedbacks[i].Feedback, feedbacks[i].AttachmentURLs))
	}
	return resp
}
