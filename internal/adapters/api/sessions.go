package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/apurv-sgh/test-edtech/internal/app"
	"github.com/apurv-sgh/test-edtech/internal/domain"
)

// SessionService is the lifecycle controller surface the REST layer needs.
type SessionService interface {
	Create(ctx context.Context, in app.CreateSessionInput) (*domain.Session, error)
	Start(ctx context.Context, id string, requester domain.UserID) (*domain.Session, error)
	Stop(ctx context.Context, id string, requester domain.UserID) (*domain.Session, error)
	Cancel(ctx context.Context, id string, requester domain.UserID) (*domain.Session, error)
	Join(ctx context.Context, id string, user domain.User) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	List(ctx context.Context, status domain.SessionStatus, subject string) ([]domain.Session, error)
}

type SessionHandler struct {
	Sessions SessionService
}

func NewSessionHandler(s SessionService) *SessionHandler {
	return &SessionHandler{Sessions: s}
}

type createSessionRequest struct {
	Title           string    `json:"title" binding:"required"`
	Description     string    `json:"description"`
	Subject         string    `json:"subject" binding:"required"`
	ScheduledTime   time.Time `json:"scheduledTime" binding:"required"`
	Duration        int       `json:"duration"`
	MaxParticipants int       `json:"maxParticipants"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	sess, err := h.Sessions.Create(c.Request.Context(), app.CreateSessionInput{
		Title:           req.Title,
		Description:     req.Description,
		Subject:         req.Subject,
		ScheduledAt:     req.ScheduledTime,
		Duration:        req.Duration,
		MaxParticipants: req.MaxParticipants,
		Instructor:      currentUser(c),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Live session created successfully",
		"session": sess,
	})
}

func (h *SessionHandler) Start(c *gin.Context) {
	sess, err := h.Sessions.Start(c.Request.Context(), c.Param("sessionId"), currentUser(c).ID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session started successfully", "session": sess})
}

func (h *SessionHandler) Stop(c *gin.Context) {
	sess, err := h.Sessions.Stop(c.Request.Context(), c.Param("sessionId"), currentUser(c).ID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session stopped successfully", "session": sess})
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	sess, err := h.Sessions.Cancel(c.Request.Context(), c.Param("sessionId"), currentUser(c).ID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session cancelled", "session": sess})
}

func (h *SessionHandler) Join(c *gin.Context) {
	sess, err := h.Sessions.Join(c.Request.Context(), c.Param("sessionId"), currentUser(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Joined session successfully",
		"session": gin.H{
			"id":           sess.ID,
			"title":        sess.Title,
			"roomId":       sess.RoomToken,
			"instructor":   sess.InstructorName,
			"participants": len(sess.Participants),
		},
	})
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.Sessions.List(c.Request.Context(), domain.SessionStatus(c.Query("status")), c.Query("subject"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": sessions})
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.Sessions.Get(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Session not found"})
	case errors.Is(err, domain.ErrNotInstructor):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Only instructor can do that"})
	case errors.Is(err, domain.ErrBadState):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid session state"})
	case errors.Is(err, domain.ErrSessionFull):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Session is full"})
	default:
		log.Error().Err(err).Str("module", "api").Msg("session handler error")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}
