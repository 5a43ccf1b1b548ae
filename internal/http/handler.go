package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"birdieo-service/internal/config"
	"birdieo-service/internal/domain/round"
	"birdieo-service/internal/domain/user"
	"birdieo-service/internal/service"
	"birdieo-service/internal/vision"
)

type Handler struct {
	authService   *service.AuthService
	roundService  *service.RoundService
	visionService *service.VisionService
	config        *config.Config
	log           zerolog.Logger
}

func NewHandler(
	authService *service.AuthService,
	roundService *service.RoundService,
	visionService *service.VisionService,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		authService:   authService,
		roundService:  roundService,
		visionService: visionService,
		config:        cfg,
		log:           log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/auth/register", h.register)
		public.POST("/auth/login", h.login)
	}

	// Protected endpoints
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/auth/me", h.me)
		protected.PUT("/auth/profile", h.updateProfile)

		protected.POST("/checkin", h.checkin)
		protected.POST("/checkin/photos", h.capturePhotos)
		protected.POST("/verify-clothing", h.verifyClothing)

		protected.GET("/rounds", h.listRounds)
		protected.GET("/rounds/:id", h.getRound)
		protected.GET("/clips/:round_id", h.listClips)
		protected.POST("/demo/generate-clips/:round_id", h.generateDemoClips)

		protected.POST("/vision/detection-event", h.logDetectionEvent)
		protected.POST("/vision/trigger-capture", h.triggerCapture)
		protected.GET("/vision/events/:round_id", h.listVisionEvents)
		protected.GET("/vision/roster/:round_id", h.getRoster)
		protected.POST("/vision/events/cleanup", h.cleanupVisionEvents)
	}
}

func (h *Handler) register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.authService.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(u))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var upd user.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	u, err := h.authService.UpdateProfile(c.Request.Context(), currentUserID(c), upd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(u))
}

func (h *Handler) checkin(c *gin.Context) {
	var req round.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.roundService.Checkin(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":           "Check-in successful",
		"round_id":          result.RoundID,
		"expected_timeline": result.ExpectedTimeline,
	})
}

func (h *Handler) capturePhotos(c *gin.Context) {
	var req round.PhotoCaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	subjectID, err := h.roundService.SavePhotos(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Photos captured successfully",
		"subject_id": subjectID,
	})
}

func (h *Handler) verifyClothing(c *gin.Context) {
	var req round.ClothingVerification
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	subjectID, err := h.roundService.VerifyClothing(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Clothing details verified and saved",
		"confirmed":  req.Confirmed,
		"subject_id": subjectID,
	})
}

func (h *Handler) listRounds(c *gin.Context) {
	rounds, err := h.roundService.ListRounds(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(rounds))
}

func (h *Handler) getRound(c *gin.Context) {
	details, err := h.roundService.GetRound(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(details))
}

func (h *Handler) listClips(c *gin.Context) {
	clips, err := h.roundService.ListClips(c.Request.Context(), currentUserID(c), c.Param("round_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(clips))
}

func (h *Handler) generateDemoClips(c *gin.Context) {
	count, err := h.roundService.GenerateDemoClips(c.Request.Context(), currentUserID(c), c.Param("round_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Demo clips generated",
		"clips_created": count,
	})
}

func (h *Handler) logDetectionEvent(c *gin.Context) {
	var payload vision.EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if payload.EventTime.IsZero() {
		payload.EventTime = time.Now()
	}
	if payload.CameraAngle == "" {
		payload.CameraAngle = h.config.Camera.Angle
	}

	if err := h.visionService.LogDetectionEvent(c.Request.Context(), payload); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          "Detection event logged successfully",
		"detections_count": len(payload.Detections),
	})
}

func (h *Handler) triggerCapture(c *gin.Context) {
	var payload vision.TriggerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.visionService.TriggerCapture(c.Request.Context(), currentUserID(c), payload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Shot capture triggered successfully",
		"trigger_id": result.TriggerID,
		"status":     result.Status,
	})
}

func (h *Handler) listVisionEvents(c *gin.Context) {
	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.visionService.ListEvents(c.Request.Context(), currentUserID(c), c.Param("round_id"), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(events))
}

func (h *Handler) getRoster(c *gin.Context) {
	roster, err := h.visionService.BuildRoster(c.Request.Context(), currentUserID(c), c.Param("round_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(roster))
}

func (h *Handler) cleanupVisionEvents(c *gin.Context) {
	days := 30
	if d := c.Query("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}

	removed, err := h.visionService.CleanupOldEvents(c.Request.Context(), days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Old detection events removed",
		"events_removed": removed,
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
