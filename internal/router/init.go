package router

import (
	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/internal/container"
	pginfra "github.com/linkfolio/linkfolio/internal/infrastructure/postgres"
	"github.com/linkfolio/linkfolio/internal/infrastructure/search"
	handlers "github.com/linkfolio/linkfolio/internal/interface/http"
	"github.com/linkfolio/linkfolio/internal/notify"
	"github.com/linkfolio/linkfolio/internal/router/modules"
)

// Deps holds every constructed service so modules and workers can share
// one wiring.
type Deps struct {
	Accounts    *application.AccountService
	Profiles    *application.ProfileService
	Pages       *application.PageService
	Friendships *application.FriendshipService
	Admin       *application.AdminService
}

// BuildDeps constructs the repository and service graph from the
// container singletons.
func BuildDeps() *Deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()
	rdb := container.GetRedis()

	accountRepo := pginfra.NewAccountRepository(pool)
	identityRepo := pginfra.NewExternalIdentityRepository(pool)
	profileRepo := pginfra.NewProfileRepository(pool)
	linkRepo := pginfra.NewLinkRepository(pool)
	friendshipRepo := pginfra.NewFriendshipRepository(pool)

	emitter := notify.NewEmitter(container.GetRabbitPub(), logger)

	var index *search.AccountIndex
	if es := container.GetES(); es != nil {
		index = search.NewAccountIndex(es, cfg.ESAccountsIndex)
	}

	profiles := application.NewProfileService(profileRepo, linkRepo, rdb, logger, emitter, cfg.PublicBaseURL)

	accounts := &application.AccountService{
		Accounts:   accountRepo,
		Identities: identityRepo,
		Profiles:   profiles,
		Redis:      rdb,
		JWT:        container.GetJWT(),
		GCS:        container.GetGCS(),
		GCSBucket:  cfg.GCSBucket,
		Index:      index,
		Logger:     logger,
		Notify:     emitter,
		ResetURL:   cfg.ResetPasswordURL,
	}

	pages := application.NewPageService(accountRepo, friendshipRepo, profiles, rdb, logger, cfg.PageCacheTTL)
	friendships := application.NewFriendshipService(friendshipRepo, accountRepo, logger, emitter, cfg.PublicBaseURL)

	admin := &application.AdminService{
		Accounts:    accountRepo,
		Identities:  identityRepo,
		Profiles:    profileRepo,
		Links:       linkRepo,
		Friendships: friendshipRepo,
		Sessions:    accounts,
		Logger:      logger,
		Notify:      emitter,
		AllowList:   cfg.AdminAllowList,
	}

	return &Deps{
		Accounts:    accounts,
		Profiles:    profiles,
		Pages:       pages,
		Friendships: friendships,
		Admin:       admin,
	}
}

// InitModules wires all feature modules into the registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	deps := BuildDeps()

	accountHandler := handlers.NewAccountHandler(deps.Accounts, logger, cfg.CookieDomain, cfg.CookieSecure)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.Accounts, logger)
	pageHandler := handlers.NewPageHandler(deps.Pages, logger)
	friendshipHandler := handlers.NewFriendshipHandler(deps.Friendships, logger)
	adminHandler := handlers.NewAdminHandler(deps.Admin, logger)

	r.Add(modules.NewAccountModule(accountHandler, deps.Accounts))
	r.Add(modules.NewProfileModule(profileHandler, deps.Accounts))
	r.Add(modules.NewFriendshipModule(friendshipHandler, deps.Accounts))
	r.Add(modules.NewAdminModule(adminHandler, deps.Accounts))
	r.Add(modules.NewDebugModule())
	r.AddPages(modules.NewPageModule(pageHandler, deps.Accounts))
}
