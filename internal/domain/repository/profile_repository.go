package repository

import (
	"context"

	"github.com/linkfolio/linkfolio/internal/domain/entity"
)

// ProfileRepository defines profile persistence. Create must surface
// (account_id, slug) uniqueness violations as
// domainerr.ErrDuplicateIdentifier. SetDefault clears the previous default
// and sets the new one inside a single transaction.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetBySlug(ctx context.Context, accountID, slug string) (*entity.Profile, error)
	// GetDefault returns domainerr.ErrNoDefaultProfile when no row has
	// is_default set; the service self-heals by electing the oldest.
	GetDefault(ctx context.Context, accountID string) (*entity.Profile, error)
	ListByAccount(ctx context.Context, accountID string) ([]*entity.Profile, error)
	CountByAccount(ctx context.Context, accountID string) (int, error)
	SetDefault(ctx context.Context, accountID, profileID string) error
	Update(ctx context.Context, p *entity.Profile) error
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) error
}

// LinkRepository defines social link persistence per profile.
type LinkRepository interface {
	Create(ctx context.Context, l *entity.SocialLink) error
	GetByID(ctx context.Context, id string) (*entity.SocialLink, error)
	ListByProfile(ctx context.Context, profileID string) ([]*entity.SocialLink, error)
	Update(ctx context.Context, l *entity.SocialLink) error
	Reorder(ctx context.Context, profileID string, orderedIDs []string) error
	Delete(ctx context.Context, id string) error
	DeleteByProfile(ctx context.Context, profileID string) error
	DeleteByAccount(ctx context.Context, accountID string) error
}
