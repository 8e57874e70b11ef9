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

type ProfileHandler struct {
	Svc      *application.ProfileService
	Accounts *application.AccountService
	Logger   *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, accounts *application.AccountService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Accounts: accounts, Logger: logger}
}

func profileView(p *entity.Profile) gin.H {
	return gin.H{
		"id":         p.ID,
		"name":       p.Name,
		"slug":       p.Slug,
		"is_public":  p.IsPublic,
		"is_default": p.IsDefault,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

func linkView(l *entity.SocialLink) gin.H {
	return gin.H{
		"id":          l.ID,
		"profile_id":  l.ProfileID,
		"platform":    l.Platform,
		"url":         l.URL,
		"label":       l.Label,
		"is_visible":  l.IsVisible,
		"order_index": l.OrderIndex,
	}
}

func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.Svc.List(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileView(p))
	}
	response.Success(c, http.StatusOK, out, "profiles", gin.H{"count": len(out)})
}

type createProfileRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	IsPublic *bool  `json:"is_public"`
}

func (h *ProfileHandler) Create(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	account, err := h.Accounts.Get(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	isPublic := account.IsPublic
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	p, err := h.Svc.CreateProfile(c.Request.Context(), account, req.Name, isPublic)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, profileView(p), "profile created", nil)
}

func (h *ProfileHandler) GetDefault(c *gin.Context) {
	p, err := h.Svc.GetDefault(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profileView(p), "default profile", nil)
}

func (h *ProfileHandler) SetDefault(c *gin.Context) {
	err := h.Svc.SetDefault(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"default": c.Param("id")}, "default profile set", nil)
}

type updateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Slug     *string `json:"slug" binding:"omitempty,slug"`
	IsPublic *bool   `json:"is_public"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"), application.UpdateProfileInput{
		Name:     req.Name,
		Slug:     req.Slug,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profileView(p), "profile updated", nil)
}

func (h *ProfileHandler) Delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": c.Param("id")}, "profile deleted", nil)
}

func (h *ProfileHandler) ListLinks(c *gin.Context) {
	links, err := h.Svc.ListLinks(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(links))
	for _, l := range links {
		out = append(out, linkView(l))
	}
	response.Success(c, http.StatusOK, out, "links", gin.H{"count": len(out)})
}

type addLinkRequest struct {
	Platform  string `json:"platform" binding:"required,platform"`
	URL       string `json:"url" binding:"required,url"`
	Label     string `json:"label" binding:"omitempty,max=100"`
	IsVisible *bool  `json:"is_visible"`
}

func (h *ProfileHandler) AddLink(c *gin.Context) {
	var req addLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	visible := true
	if req.IsVisible != nil {
		visible = *req.IsVisible
	}
	l, err := h.Svc.AddLink(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"), application.LinkInput{
		Platform:  req.Platform,
		URL:       req.URL,
		Label:     req.Label,
		IsVisible: visible,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, linkView(l), "link added", nil)
}

type updateLinkRequest struct {
	Platform  *string `json:"platform" binding:"omitempty,platform"`
	URL       *string `json:"url" binding:"omitempty,url"`
	Label     *string `json:"label" binding:"omitempty,max=100"`
	IsVisible *bool   `json:"is_visible"`
}

func (h *ProfileHandler) UpdateLink(c *gin.Context) {
	var req updateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	l, err := h.Svc.UpdateLink(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("linkID"), application.UpdateLinkInput{
		Platform:  req.Platform,
		URL:       req.URL,
		Label:     req.Label,
		IsVisible: req.IsVisible,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, linkView(l), "link updated", nil)
}

func (h *ProfileHandler) RemoveLink(c *gin.Context) {
	err := h.Svc.RemoveLink(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("linkID"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": c.Param("linkID")}, "link removed", nil)
}

type reorderLinksRequest struct {
	LinkIDs []string `json:"link_ids" binding:"required,min=1,dive,required"`
}

func (h *ProfileHandler) ReorderLinks(c *gin.Context) {
	var req reorderLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.ReorderLinks(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), c.Param("id"), req.LinkIDs)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reordered": true}, "links reordered", nil)
}
