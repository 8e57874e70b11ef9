package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
	"github.com/linkfolio/linkfolio/internal/notify"
	"github.com/linkfolio/linkfolio/pkg/identifier"
)

// ErrNotProfileOwner is returned when a caller mutates a profile or link
// they do not own.
var ErrNotProfileOwner = errors.New("profile not owned by caller")

// starterLinks is the onboarding template expanded into a new default
// profile. URLs are placeholders the owner edits during onboarding.
var starterLinks = []entity.SocialLink{
	{Platform: "instagram", URL: "https://instagram.com/", IsVisible: true},
	{Platform: "x", URL: "https://x.com/", IsVisible: true},
	{Platform: "youtube", URL: "https://youtube.com/", IsVisible: true},
}

// ProfileService owns the profile graph: one account, many named profiles,
// exactly one default, slugs unique per account.
type ProfileService struct {
	Profiles      repository.ProfileRepository
	Links         repository.LinkRepository
	Redis         *redis.Client
	Logger        *logrus.Logger
	Notify        *notify.Emitter
	PublicBaseURL string
}

func NewProfileService(profiles repository.ProfileRepository, links repository.LinkRepository, rdb *redis.Client, logger *logrus.Logger, emitter *notify.Emitter, publicBaseURL string) *ProfileService {
	return &ProfileService{
		Profiles:      profiles,
		Links:         links,
		Redis:         rdb,
		Logger:        logger,
		Notify:        emitter,
		PublicBaseURL: publicBaseURL,
	}
}

func pageCacheKeys(profileID string) []string {
	return []string{
		"page:" + profileID + ":owner",
		"page:" + profileID + ":friend",
		"page:" + profileID + ":anon",
	}
}

func (s *ProfileService) invalidatePage(ctx context.Context, profileID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, pageCacheKeys(profileID)...).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("profile_id", profileID).Warn("page cache invalidation failed")
	}
}

// CreateDefaultProfile creates the onboarding profile and expands the
// starter link template into it. When two onboarding flows race, the loser
// adopts the winner's row instead of failing.
func (s *ProfileService) CreateDefaultProfile(ctx context.Context, account *entity.Account) (*entity.Profile, error) {
	name := account.DisplayName
	if name == "" {
		name = account.Username
	}
	p, err := s.createWithSlug(ctx, account.ID, name, account.IsPublic, true, name)
	if errors.Is(err, domainerr.ErrDefaultProfileExists) {
		return s.Profiles.GetDefault(ctx, account.ID)
	}
	if err != nil {
		return nil, err
	}
	for i := range starterLinks {
		l := starterLinks[i]
		l.ProfileID = p.ID
		l.OrderIndex = -1 // append
		if err := s.Links.Create(ctx, &l); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("profile_id", p.ID).Warn("starter link creation failed")
		}
	}
	return p, nil
}

// CreateProfile creates an additional named profile. An empty name derives
// one from the account display name.
func (s *ProfileService) CreateProfile(ctx context.Context, account *entity.Account, name string, isPublic bool) (*entity.Profile, error) {
	if name == "" {
		name = account.DisplayName
		if name == "" {
			name = account.Username
		}
	}
	p, err := s.createWithSlug(ctx, account.ID, name, isPublic, false, name)
	if err != nil {
		return nil, err
	}
	s.Notify.Emit(ctx, notify.Event{
		Kind:             notify.KindProfileCreated,
		RecipientAddress: account.Email,
		TemplateData: map[string]any{
			"RecipientName": account.DisplayName,
			"PageURL":       fmt.Sprintf("%s/u/%s/%s", s.PublicBaseURL, account.Username, p.Slug),
		},
	})
	return p, nil
}

// createWithSlug allocates a per-account-unique slug and inserts the
// profile in one step; the slug constraint violation drives the retry.
func (s *ProfileService) createWithSlug(ctx context.Context, accountID, name string, isPublic, isDefault bool, desiredSlug string) (*entity.Profile, error) {
	p := &entity.Profile{
		AccountID: accountID,
		Name:      name,
		IsPublic:  isPublic,
		IsDefault: isDefault,
	}
	_, err := AllocateSlug(ctx, desiredSlug, func(ctx context.Context, candidate string) error {
		p.Slug = candidate
		return s.Profiles.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetDefault returns the account's default profile, self-healing a
// transient zero-default state by electing the oldest remaining profile.
func (s *ProfileService) GetDefault(ctx context.Context, accountID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetDefault(ctx, accountID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domainerr.ErrNoDefaultProfile) {
		return nil, err
	}
	return s.electDefault(ctx, accountID)
}

// electDefault promotes the oldest remaining profile to default.
func (s *ProfileService) electDefault(ctx context.Context, accountID string) (*entity.Profile, error) {
	all, err := s.Profiles.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, domainerr.ErrNotFound
	}
	oldest := all[0]
	if err := s.Profiles.SetDefault(ctx, accountID, oldest.ID); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"profile_id": oldest.ID,
		}).Warn("elected default profile after zero-default state")
	}
	oldest.IsDefault = true
	return oldest, nil
}

func (s *ProfileService) List(ctx context.Context, accountID string) ([]*entity.Profile, error) {
	return s.Profiles.ListByAccount(ctx, accountID)
}

// SetDefault atomically moves the default flag to the given profile.
func (s *ProfileService) SetDefault(ctx context.Context, accountID, profileID string) error {
	p, err := s.owned(ctx, accountID, profileID)
	if err != nil {
		return err
	}
	if err := s.Profiles.SetDefault(ctx, accountID, p.ID); err != nil {
		return err
	}
	s.invalidatePage(ctx, p.ID)
	return nil
}

type UpdateProfileInput struct {
	Name     *string
	Slug     *string
	IsPublic *bool
}

func (s *ProfileService) Update(ctx context.Context, accountID, profileID string, in UpdateProfileInput) (*entity.Profile, error) {
	p, err := s.owned(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != "" {
		p.Name = *in.Name
	}
	if in.Slug != nil && *in.Slug != "" {
		// The owner picked this exact slug; a collision is surfaced directly
		// instead of walking the candidate sequence.
		p.Slug = identifier.NormalizeSlug(*in.Slug)
	}
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}
	if err := s.Profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidatePage(ctx, p.ID)
	return p, nil
}

// Delete removes a profile. The last remaining profile can never be
// deleted; deleting the default promotes the oldest remaining profile
// first so the account never observes zero defaults.
func (s *ProfileService) Delete(ctx context.Context, accountID, profileID string) error {
	p, err := s.owned(ctx, accountID, profileID)
	if err != nil {
		return err
	}
	n, err := s.Profiles.CountByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return domainerr.ErrLastProfile
	}
	if p.IsDefault {
		if err := s.promoteSuccessor(ctx, accountID, p.ID); err != nil {
			return err
		}
	}
	if err := s.Links.DeleteByProfile(ctx, p.ID); err != nil {
		return err
	}
	if err := s.Profiles.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.invalidatePage(ctx, p.ID)
	return nil
}

func (s *ProfileService) promoteSuccessor(ctx context.Context, accountID, exceptID string) error {
	all, err := s.Profiles.ListByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, c := range all {
		if c.ID != exceptID {
			return s.Profiles.SetDefault(ctx, accountID, c.ID)
		}
	}
	return domainerr.ErrLastProfile
}

func (s *ProfileService) owned(ctx context.Context, accountID, profileID string) (*entity.Profile, error) {
	p, err := s.Profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.AccountID != accountID {
		return nil, ErrNotProfileOwner
	}
	return p, nil
}

// --- Link aggregator ---

type LinkInput struct {
	Platform  string
	URL       string
	Label     string
	IsVisible bool
}

func (s *ProfileService) AddLink(ctx context.Context, accountID, profileID string, in LinkInput) (*entity.SocialLink, error) {
	p, err := s.owned(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	l := &entity.SocialLink{
		ProfileID:  p.ID,
		Platform:   in.Platform,
		URL:        in.URL,
		Label:      in.Label,
		IsVisible:  in.IsVisible,
		OrderIndex: -1, // append
	}
	if err := s.Links.Create(ctx, l); err != nil {
		return nil, err
	}
	s.invalidatePage(ctx, p.ID)
	return l, nil
}

type UpdateLinkInput struct {
	Platform  *string
	URL       *string
	Label     *string
	IsVisible *bool
}

func (s *ProfileService) UpdateLink(ctx context.Context, accountID, linkID string, in UpdateLinkInput) (*entity.SocialLink, error) {
	l, p, err := s.ownedLink(ctx, accountID, linkID)
	if err != nil {
		return nil, err
	}
	if in.Platform != nil && *in.Platform != "" {
		l.Platform = *in.Platform
	}
	if in.URL != nil && *in.URL != "" {
		l.URL = *in.URL
	}
	if in.Label != nil {
		l.Label = *in.Label
	}
	if in.IsVisible != nil {
		l.IsVisible = *in.IsVisible
	}
	if err := s.Links.Update(ctx, l); err != nil {
		return nil, err
	}
	s.invalidatePage(ctx, p.ID)
	return l, nil
}

func (s *ProfileService) RemoveLink(ctx context.Context, accountID, linkID string) error {
	l, p, err := s.ownedLink(ctx, accountID, linkID)
	if err != nil {
		return err
	}
	if err := s.Links.Delete(ctx, l.ID); err != nil {
		return err
	}
	s.invalidatePage(ctx, p.ID)
	return nil
}

func (s *ProfileService) ReorderLinks(ctx context.Context, accountID, profileID string, orderedIDs []string) error {
	p, err := s.owned(ctx, accountID, profileID)
	if err != nil {
		return err
	}
	if err := s.Links.Reorder(ctx, p.ID, orderedIDs); err != nil {
		return err
	}
	s.invalidatePage(ctx, p.ID)
	return nil
}

func (s *ProfileService) ListLinks(ctx context.Context, accountID, profileID string) ([]*entity.SocialLink, error) {
	p, err := s.owned(ctx, accountID, profileID)
	if err != nil {
		return nil, err
	}
	return s.Links.ListByProfile(ctx, p.ID)
}

func (s *ProfileService) ownedLink(ctx context.Context, accountID, linkID string) (*entity.SocialLink, *entity.Profile, error) {
	l, err := s.Links.GetByID(ctx, linkID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.owned(ctx, accountID, l.ProfileID)
	if err != nil {
		return nil, nil, err
	}
	return l, p, nil
}
