package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/container"
	handlers "github.com/linkfolio/linkfolio/internal/interface/http"
	"github.com/linkfolio/linkfolio/internal/interface/middleware"
)

// FriendshipModule wires the relationship state machine, all behind auth.
type FriendshipModule struct {
	Handler *handlers.FriendshipHandler
	Svc     *application.AccountService
}

func NewFriendshipModule(h *handlers.FriendshipHandler, svc *application.AccountService) *FriendshipModule {
	return &FriendshipModule{Handler: h, Svc: svc}
}

func (m *FriendshipModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Svc))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByAccountID(), nil))
	{
		auth.GET("/friends", m.Handler.List)
		auth.POST("/friends/requests", m.Handler.SendRequest)
		auth.POST("/friends/requests/:id/accept", m.Handler.Accept)
		auth.POST("/friends/requests/:id/reject", m.Handler.Reject)
		auth.DELETE("/friends/:accountID", m.Handler.Unfriend)
		auth.POST("/friends/:accountID/block", m.Handler.Block)
	}
}
