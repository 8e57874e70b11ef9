package repository

import (
	"context"
	"time"

	"github.com/linkfolio/linkfolio/internal/domain/entity"
)

// AccountRepository defines account persistence. Create must surface
// username/email uniqueness violations as domainerr.ErrDuplicateIdentifier;
// the allocator depends on that signal instead of a check-then-insert.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	List(ctx context.Context, limit, offset int) ([]*entity.Account, error)
	SetBannedUntil(ctx context.Context, id string, until *time.Time) error
	SetEmailConfirmed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// ExternalIdentityRepository owns the provider-side identity records.
// DeleteByAccount is the last step of the account removal cascade.
type ExternalIdentityRepository interface {
	Create(ctx context.Context, e *entity.ExternalIdentity) error
	ListByAccount(ctx context.Context, accountID string) ([]*entity.ExternalIdentity, error)
	DeleteByAccount(ctx context.Context, accountID string) error
}
