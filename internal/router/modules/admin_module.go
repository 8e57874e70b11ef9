package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/container"
	handlers "github.com/linkfolio/linkfolio/internal/interface/http"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
)

// AdminModule wires the moderation console. Auth resolves the caller;
// the service itself checks the allow-list on every call.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Svc     *application.AccountService
}

func NewAdminModule(h *handlers.AdminHandler, svc *application.AccountService) *AdminModule {
	return &AdminModule{Handler: h, Svc: svc}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/admin")
	auth.Use(middleware.Auth(m.Svc))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByAccountID(), middleware.AllowPrivateIP()))
	{
		auth.GET("/accounts", m.Handler.ListAccounts)
		auth.POST("/accounts/bulk", m.Handler.ApplyBulk)
		auth.POST("/accounts/:accountID/ban", m.Handler.Ban)
		auth.POST("/accounts/:accountID/unban", m.Handler.Unban)
		auth.POST("/accounts/:accountID/confirm-email", m.Handler.ConfirmEmail)
		auth.DELETE("/accounts/:accountID", m.Handler.DeleteAccount)
	}
}
