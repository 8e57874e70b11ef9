package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
	"github.com/linkfolio/linkfolio/pkg/helpers"
)

// Call-to-action rendered on a locked page.
const (
	CallToActionSignIn        = "sign_in"
	CallToActionFriendRequest = "send_friend_request"
)

type PageOwner struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type PageLink struct {
	ID         string `json:"id"`
	Platform   string `json:"platform"`
	URL        string `json:"url,omitempty"`
	Label      string `json:"label,omitempty"`
	OrderIndex int    `json:"order_index"`
}

// PageView is the rendered public page. Locked pages carry no link
// destinations and a call-to-action instead.
type PageView struct {
	Owner        PageOwner  `json:"owner"`
	ProfileID    string     `json:"profile_id"`
	ProfileName  string     `json:"profile_name"`
	Slug         string     `json:"slug"`
	Locked       bool       `json:"locked"`
	CallToAction string     `json:"call_to_action,omitempty"`
	Links        []PageLink `json:"links"`
}

// PageService resolves public pages at /u/:username and
// /u/:username/:slug. Rendered pages are cached in Redis per viewer
// class, not per viewer; the call-to-action is the only per-viewer field
// and is filled in after the cache.
type PageService struct {
	Accounts    repository.AccountRepository
	Friendships repository.FriendshipRepository
	Profiles    *ProfileService
	Redis       *redis.Client
	Logger      *logrus.Logger
	CacheTTL    time.Duration
}

func NewPageService(accounts repository.AccountRepository, friendships repository.FriendshipRepository, profiles *ProfileService, rdb *redis.Client, logger *logrus.Logger, cacheTTL time.Duration) *PageService {
	return &PageService{
		Accounts:    accounts,
		Friendships: friendships,
		Profiles:    profiles,
		Redis:       rdb,
		Logger:      logger,
		CacheTTL:    cacheTTL,
	}
}

// Resolve renders the page for owner username and profile slug. An empty
// slug resolves the owner's default profile. viewerID is empty for
// anonymous visitors; preview forces the anonymous rendering regardless
// of who is asking.
func (s *PageService) Resolve(ctx context.Context, username, slug, viewerID string, preview bool) (*PageView, error) {
	owner, err := s.Accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	// A banned owner's pages are indistinguishable from absent ones.
	if owner.Banned() {
		return nil, domainerr.ErrNotFound
	}

	var profile *entity.Profile
	if slug == "" {
		profile, err = s.Profiles.GetDefault(ctx, owner.ID)
	} else {
		profile, err = s.Profiles.Profiles.GetBySlug(ctx, owner.ID, slug)
	}
	if err != nil {
		return nil, err
	}

	status := s.friendshipStatus(ctx, viewerID, owner.ID)
	view := View{
		ViewerID:           viewerID,
		OwnerID:            owner.ID,
		ProfilePublic:      profile.IsPublic,
		Friendship:         status,
		PreviewAsAnonymous: preview,
	}
	class := viewerClass(view)

	page, hit := s.cacheGet(ctx, profile.ID, class)
	if !hit {
		page = s.render(ctx, owner, profile, view, class)
		s.cachePut(ctx, profile.ID, class, page)
	}
	if page.Locked {
		page.CallToAction = callToAction(viewerID, preview)
	}
	return page, nil
}

func (s *PageService) friendshipStatus(ctx context.Context, viewerID, ownerID string) entity.FriendshipStatus {
	if viewerID == "" || viewerID == ownerID {
		return ""
	}
	f, err := s.Friendships.GetByPair(ctx, viewerID, ownerID)
	if err != nil {
		if !errors.Is(err, domainerr.ErrRelationshipNotFound) && s.Logger != nil {
			s.Logger.WithError(err).Warn("friendship lookup failed, treating viewer as stranger")
		}
		return ""
	}
	return f.Status
}

// viewerClass buckets a request for caching. Preview always renders the
// anonymous page, so it shares the anon bucket.
func viewerClass(v View) string {
	if v.PreviewAsAnonymous {
		return "anon"
	}
	switch {
	case v.ViewerID != "" && v.ViewerID == v.OwnerID:
		return "owner"
	case v.ViewerID != "" && v.Friendship == entity.FriendshipAccepted:
		return "friend"
	default:
		return "anon"
	}
}

func (s *PageService) render(ctx context.Context, owner *entity.Account, profile *entity.Profile, view View, class string) *PageView {
	page := &PageView{
		Owner: PageOwner{
			Username:    owner.Username,
			DisplayName: owner.DisplayName,
			Bio:         owner.Bio,
			AvatarURL:   owner.AvatarURL,
		},
		ProfileID:   profile.ID,
		ProfileName: profile.Name,
		Slug:        profile.Slug,
		Links:       []PageLink{},
	}

	showDetails := CanViewDetails(view)
	showIcons := CanViewIcons(view)
	page.Locked = !showDetails
	if !showIcons {
		return page
	}

	links, err := s.Profiles.Links.ListByProfile(ctx, profile.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("profile_id", profile.ID).Error("listing page links failed")
		}
		return page
	}
	for _, l := range links {
		if !l.IsVisible && class != "owner" {
			continue
		}
		pl := PageLink{
			ID:         l.ID,
			Platform:   l.Platform,
			Label:      l.Label,
			OrderIndex: l.OrderIndex,
		}
		if showDetails {
			pl.URL = l.URL
		}
		page.Links = append(page.Links, pl)
	}
	return page
}

func callToAction(viewerID string, preview bool) string {
	if viewerID == "" || preview {
		return CallToActionSignIn
	}
	return CallToActionFriendRequest
}

func (s *PageService) cacheGet(ctx context.Context, profileID, class string) (*PageView, bool) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return nil, false
	}
	var page PageView
	hit, err := helpers.RedisGetJSON(ctx, s.Redis, "page:"+profileID+":"+class, &page)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("page cache read failed")
		}
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &page, true
}

func (s *PageService) cachePut(ctx context.Context, profileID, class string, page *PageView) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}
	if err := helpers.RedisSetJSON(ctx, s.Redis, "page:"+profileID+":"+class, page, s.CacheTTL); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("page cache write failed")
	}
}
