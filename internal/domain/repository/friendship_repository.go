package repository

import (
	"context"

	"github.com/linkfolio/linkfolio/internal/domain/entity"
)

// FriendshipRepository stores one row per unordered account pair. Create
// must surface pair uniqueness violations as
// domainerr.ErrDuplicateFriendRequest. GetByPair matches both directions.
type FriendshipRepository interface {
	Create(ctx context.Context, f *entity.Friendship) error
	GetByID(ctx context.Context, id string) (*entity.Friendship, error)
	GetByPair(ctx context.Context, a, b string) (*entity.Friendship, error)
	ListForAccount(ctx context.Context, accountID string, status entity.FriendshipStatus) ([]*entity.Friendship, error)
	UpdateStatus(ctx context.Context, id string, status entity.FriendshipStatus) error
	Delete(ctx context.Context, id string) error
	DeleteAllForAccount(ctx context.Context, accountID string) error
}
