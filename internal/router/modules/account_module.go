package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/container"
	handlers "github.com/linkfolio/linkfolio/internal/interface/http"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
)

// AccountModule wires identity routes.
// Public: POST /api/signup, /api/login, /api/refresh, /api/password/forgot, /api/password/reset
// Protected: POST /api/logout, GET/PUT /api/account, POST /api/account/password,
// POST /api/account/avatar, GET /api/accounts/search
type AccountModule struct {
	Handler *handlers.AccountHandler
	Svc     *application.AccountService
}

func NewAccountModule(h *handlers.AccountHandler, svc *application.AccountService) *AccountModule {
	return &AccountModule{Handler: h, Svc: svc}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.SignUp)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/password/forgot", resetLimiter, m.Handler.ForgotPassword)
	rg.POST("/password/reset", resetLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Svc))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByAccountID(), nil),
	)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/account", m.Handler.Me)
		auth.PUT("/account", m.Handler.Update)
		auth.POST("/account/password", m.Handler.ChangePassword)
		auth.POST("/account/avatar", m.Handler.UploadAvatar)
		auth.GET("/accounts/search", m.Handler.Search)
	}
}
