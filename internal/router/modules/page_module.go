package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/container"
	handlers "github.com/linkfolio/linkfolio/internal/interface/http"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
)

// PageModule wires the public pages under /u. OptionalAuth resolves the
// viewer when a session cookie is present; everything stays reachable
// anonymously.
type PageModule struct {
	Handler *handlers.PageHandler
	Svc     *application.AccountService
}

func NewPageModule(h *handlers.PageHandler, svc *application.AccountService) *PageModule {
	return &PageModule{Handler: h, Svc: svc}
}

func (m *PageModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.Use(rl, middleware.OptionalAuth(m.Svc))
	rg.GET("/:username", m.Handler.DefaultPage)
	rg.GET("/:username/:slug", m.Handler.NamedPage)
}
