package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
	"github.com/linkfolio/linkfolio/pkg/response"
	"github.com/linkfolio/linkfolio/pkg/validation"
)

type FriendshipHandler struct {
	Svc    *application.FriendshipService
	Logger *logrus.Logger
}

func NewFriendshipHandler(svc *application.FriendshipService, logger *logrus.Logger) *FriendshipHandler {
	return &FriendshipHandler{Svc: svc, Logger: logger}
}

type sendRequestRequest struct {
	Username string `json:"username" binding:"required,username"`
}

func (h *FriendshipHandler) SendRequest(c *gin.Context) {
	var req sendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	f, err := h.Svc.SendRequest(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), req.Username)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":     f.ID,
		"status": f.Status,
	}, "friend request sent", nil)
}

func (h *FriendshipHandler) Accept(c *gin.Context) {
	f, err := h.Svc.Accept(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":     f.ID,
		"status": f.Status,
	}, "friend request accepted", nil)
}

func (h *FriendshipHandler) Reject(c *gin.Context) {
	err := h.Svc.Reject(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"rejected": c.Param("id")}, "friend request rejected", nil)
}

func (h *FriendshipHandler) Unfriend(c *gin.Context) {
	err := h.Svc.Unfriend(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("accountID"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"unfriended": c.Param("accountID")}, "unfriended", nil)
}

func (h *FriendshipHandler) Block(c *gin.Context) {
	err := h.Svc.Block(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("accountID"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"blocked": c.Param("accountID")}, "blocked", nil)
}

func (h *FriendshipHandler) List(c *gin.Context) {
	status := entity.FriendshipStatus(c.DefaultQuery("status", string(entity.FriendshipAccepted)))
	switch status {
	case entity.FriendshipPending, entity.FriendshipAccepted, entity.FriendshipBlocked:
	default:
		response.Error[any](c, http.StatusBadRequest, "invalid status", nil)
		return
	}
	rows, err := h.Svc.List(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), status)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows, "relationships", gin.H{"count": len(rows)})
}
