package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
	"github.com/linkfolio/linkfolio/pkg/response"
)

// PageHandler serves the public pages. The viewer is resolved through
// OptionalAuth; anonymous requests are the common case.
type PageHandler struct {
	Svc    *application.PageService
	Logger *logrus.Logger
}

func NewPageHandler(svc *application.PageService, logger *logrus.Logger) *PageHandler {
	return &PageHandler{Svc: svc, Logger: logger}
}

func (h *PageHandler) resolve(c *gin.Context, slug string) {
	preview := c.Query("preview") == "public"
	page, err := h.Svc.Resolve(
		c.Request.Context(),
		c.Param("username"),
		slug,
		c.GetString(middleware.CtxAccountIDKey),
		preview,
	)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, page, "page", nil)
}

// DefaultPage handles GET /u/:username.
func (h *PageHandler) DefaultPage(c *gin.Context) {
	h.resolve(c, "")
}

// NamedPage handles GET /u/:username/:slug.
func (h *PageHandler) NamedPage(c *gin.Context) {
	h.resolve(c, c.Param("slug"))
}
