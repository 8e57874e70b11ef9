package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
	"github.com/linkfolio/linkfolio/pkg/response"
	"github.com/linkfolio/linkfolio/pkg/validation"
)

type AdminHandler struct {
	Svc    *application.AdminService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *application.AdminService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

type bulkItemRequest struct {
	Action     string `json:"action" binding:"required,oneof=ban unban confirm_email delete"`
	AccountID  string `json:"account_id" binding:"required,uuid"`
	BanMinutes int    `json:"ban_minutes" binding:"omitempty,min=0"`
}

type bulkRequest struct {
	StopOnError bool              `json:"stop_on_error"`
	Items       []bulkItemRequest `json:"items" binding:"required,min=1,max=100,dive"`
}

// ApplyBulk runs a moderation batch. The response always carries
// per-item outcomes; a failed item does not fail the batch.
func (h *AdminHandler) ApplyBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	items := make([]application.BulkItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, application.BulkItem{
			Action:      application.AdminAction(it.Action),
			AccountID:   it.AccountID,
			BanDuration: time.Duration(it.BanMinutes) * time.Minute,
		})
	}
	results, err := h.Svc.ApplyBulk(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), items, req.StopOnError)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	response.Success(c, http.StatusOK, results, "batch applied", gin.H{
		"attempted": len(results),
		"failed":    failed,
	})
}

// applyOne routes a single moderation call through the batch controller
// so both surfaces share one code path and one audit shape.
func (h *AdminHandler) applyOne(c *gin.Context, item application.BulkItem) {
	results, err := h.Svc.ApplyBulk(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), []application.BulkItem{item}, false)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	r := results[0]
	if !r.OK {
		response.Error[any](c, http.StatusUnprocessableEntity, r.Error, nil)
		return
	}
	response.Success(c, http.StatusOK, r, "applied", nil)
}

type banRequest struct {
	BanMinutes int `json:"ban_minutes" binding:"omitempty,min=0"`
}

// Ban handles POST /admin/accounts/:accountID/ban. An empty body or zero
// ban_minutes means a permanent ban.
func (h *AdminHandler) Ban(c *gin.Context) {
	var req banRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
	}
	h.applyOne(c, application.BulkItem{
		Action:      application.AdminActionBan,
		AccountID:   c.Param("accountID"),
		BanDuration: time.Duration(req.BanMinutes) * time.Minute,
	})
}

func (h *AdminHandler) Unban(c *gin.Context) {
	h.applyOne(c, application.BulkItem{Action: application.AdminActionUnban, AccountID: c.Param("accountID")})
}

func (h *AdminHandler) ConfirmEmail(c *gin.Context) {
	h.applyOne(c, application.BulkItem{Action: application.AdminActionConfirmEmail, AccountID: c.Param("accountID")})
}

func (h *AdminHandler) DeleteAccount(c *gin.Context) {
	h.applyOne(c, application.BulkItem{Action: application.AdminActionDelete, AccountID: c.Param("accountID")})
}

func (h *AdminHandler) ListAccounts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	accounts, err := h.Svc.ListAccounts(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), limit, offset)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		v := accountView(a)
		v["banned_until"] = a.BannedUntil
		out = append(out, v)
	}
	response.Success(c, http.StatusOK, out, "accounts", gin.H{"count": len(out)})
}
