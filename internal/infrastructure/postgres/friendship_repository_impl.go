package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
)

const friendshipColumns = `id, requester_id, addressee_id, status, created_at, updated_at`

type FriendshipRepository struct {
	pool *pgxpool.Pool
}

func NewFriendshipRepository(pool *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{pool: pool}
}

func scanFriendship(row pgx.Row) (*entity.Friendship, error) {
	f := &entity.Friendship{}
	err := row.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerr.ErrRelationshipNotFound
		}
		return nil, err
	}
	return f, nil
}

// Create inserts the directional row. The unique index on the canonical pair
// is the authoritative duplicate check; a violation means a relationship
// already exists in either direction.
func (r *FriendshipRepository) Create(ctx context.Context, f *entity.Friendship) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO friendships (requester_id, addressee_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, f.RequesterID, f.AddresseeID, f.Status)
	if err := row.Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domainerr.ErrDuplicateFriendRequest
		}
		return err
	}
	return nil
}

func (r *FriendshipRepository) GetByID(ctx context.Context, id string) (*entity.Friendship, error) {
	return scanFriendship(r.pool.QueryRow(ctx, `
		SELECT `+friendshipColumns+` FROM friendships WHERE id = $1
	`, id))
}

// GetByPair matches both directions of the unordered pair.
func (r *FriendshipRepository) GetByPair(ctx context.Context, a, b string) (*entity.Friendship, error) {
	return scanFriendship(r.pool.QueryRow(ctx, `
		SELECT `+friendshipColumns+` FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2)
		   OR (requester_id = $2 AND addressee_id = $1)
	`, a, b))
}

func (r *FriendshipRepository) ListForAccount(ctx context.Context, accountID string, status entity.FriendshipStatus) ([]*entity.Friendship, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+friendshipColumns+` FROM friendships
		WHERE (requester_id = $1 OR addressee_id = $1) AND status = $2
		ORDER BY created_at DESC
	`, accountID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Friendship
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FriendshipRepository) UpdateStatus(ctx context.Context, id string, status entity.FriendshipStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE friendships SET status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrRelationshipNotFound
	}
	return nil
}

func (r *FriendshipRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrRelationshipNotFound
	}
	return nil
}

func (r *FriendshipRepository) DeleteAllForAccount(ctx context.Context, accountID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM friendships WHERE requester_id = $1 OR addressee_id = $1
	`, accountID)
	return err
}

var _ repository.FriendshipRepository = (*FriendshipRepository)(nil)
