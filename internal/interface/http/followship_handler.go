package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-social-user-service/pkg/response"
	"github.com/oksasatya/go-social-user-service/pkg/validation"
)

type FollowService interface {
	Follow(ctx context.Context, requesterID, targetID string) error
	Unfollow(ctx context.Context, requesterID, targetID string) error
}

type FollowshipHandler struct {
	Svc    FollowService
	Logger *logrus.Logger
}

func NewFollowshipHandler(svc FollowService, logger *logrus.Logger) *FollowshipHandler {
	return &FollowshipHandler{Svc: svc, Logger: logger}
}

type followRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *FollowshipHandler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Follow(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.ID); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"followingId": req.ID})
}

func (h *FollowshipHandler) Unfollow(c *gin.Context) {
	target := c.Param("followingId")
	if err := h.Svc.Unfollow(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), target); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"followingId": target})
}
