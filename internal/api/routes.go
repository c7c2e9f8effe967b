package api

import (
	"net/http"

	"courtside/coaching-app/internal/config"
	"courtside/coaching-app/internal/domain"
	"courtside/coaching-app/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	cfg config.Config,
	authService service.AuthService,
	videoService service.VideoService,
	quotaService service.QuotaService,
	feedbackService service.FeedbackService,
	surveyService service.SurveyService,
) {
	authHandler := NewAuthHandler(authService)
	playerHandler := NewPlayerHandler(videoService, quotaService, feedbackService)
	coachHandler := NewCoachHandler(videoService, feedbackService)
	surveyHandler := NewSurveyHandler(surveyService)

	authMiddleware := AuthMiddleware(cfg.JWT.Secret)

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Survey intake is public; the client posts raw answers only.
	router.POST("/api/surveys", surveyHandler.Submit)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// Coach directory, visible to any authenticated user.
		protected.GET("/coaches", playerHandler.ListCoaches)

		// Authenticated survey history (submission itself is public above).
		protected.GET("/surveys", surveyHandler.GetMySubmissions)

		// --- Player Routes ---
		playerGroup := protected.Group("/player")
		playerGroup.Use(RoleMiddleware(domain.RolePlayer))
		{
			// POST /api/v1/player/videos
			playerGroup.POST("/videos", playerHandler.RequestUpload)
			// GET /api/v1/player/videos
			playerGroup.GET("/videos", playerHandler.GetMyVideos)
			// GET /api/v1/player/videos/reviewed
			playerGroup.GET("/videos/reviewed", playerHandler.GetReviewedVideos)
			// DELETE /api/v1/player/videos/{videoId}
			playerGroup.DELETE("/videos/:videoId", playerHandler.DeleteVideo)
			// PUT /api/v1/player/videos/{videoId}/coaches
			playerGroup.PUT("/videos/:videoId/coaches", playerHandler.AssignCoaches)
			// GET /api/v1/player/videos/{videoId}/feedback
			playerGroup.GET("/videos/:videoId/feedback", playerHandler.GetVideoFeedback)
			// GET /api/v1/player/quota
			playerGroup.GET("/quota", playerHandler.GetQuota)
		}

		// --- Coach Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			// GET /api/v1/coach/videos/pending
			coachGroup.GET("/videos/pending", coachHandler.GetPendingVideos)
			// GET /api/v1/coach/videos/completed
			coachGroup.GET("/videos/completed", coachHandler.GetCompletedVideos)
			// POST /api/v1/coach/assignments/{assignmentId}/feedback
			coachGroup.POST("/assignments/:assignmentId/feedback", coachHandler.SubmitFeedback)
			// GET /api/v1/coach/assignments/{assignmentId}/feedback
			coachGroup.GET("/assignments/:assignmentId/feedback", coachHandler.GetFeedbackForAssignment)
		}
	}
}
