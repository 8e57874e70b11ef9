package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/container"
	handlers "github.com/linkfolio/linkfolio/internal/interface/http"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
)

// ProfileModule wires profile and link management, all behind auth.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Svc     *application.AccountService
}

func NewProfileModule(h *handlers.ProfileHandler, svc *application.AccountService) *ProfileModule {
	return &ProfileModule{Handler: h, Svc: svc}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Svc))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByAccountID(), nil))
	{
		auth.GET("/profiles", m.Handler.List)
		auth.POST("/profiles", m.Handler.Create)
		auth.GET("/profiles/default", m.Handler.GetDefault)
		auth.PUT("/profiles/:id", m.Handler.Update)
		auth.DELETE("/profiles/:id", m.Handler.Delete)
		auth.POST("/profiles/:id/default", m.Handler.SetDefault)

		auth.GET("/profiles/:id/links", m.Handler.ListLinks)
		auth.POST("/profiles/:id/links", m.Handler.AddLink)
		auth.PUT("/profiles/:id/links/order", m.Handler.ReorderLinks)
		auth.PUT("/links/:linkID", m.Handler.UpdateLink)
		auth.DELETE("/links/:linkID", m.Handler.RemoveLink)
	}
}
