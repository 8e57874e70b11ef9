package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
)

const linkColumns = `id, profile_id, platform, url, label, is_visible, order_index, created_at, updated_at`

type LinkRepository struct {
	pool *pgxpool.Pool
}

func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

func scanLink(row pgx.Row) (*entity.SocialLink, error) {
	l := &entity.SocialLink{}
	err := row.Scan(&l.ID, &l.ProfileID, &l.Platform, &l.URL, &l.Label, &l.IsVisible,
		&l.OrderIndex, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerr.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *LinkRepository) Create(ctx context.Context, l *entity.SocialLink) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO social_links (profile_id, platform, url, label, is_visible, order_index)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE(NULLIF($6, -1),
				(SELECT COALESCE(MAX(order_index), -1) + 1 FROM social_links WHERE profile_id = $1)))
		RETURNING id, order_index, created_at, updated_at
	`, l.ProfileID, l.Platform, l.URL, l.Label, l.IsVisible, l.OrderIndex)
	return row.Scan(&l.ID, &l.OrderIndex, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LinkRepository) GetByID(ctx context.Context, id string) (*entity.SocialLink, error) {
	return scanLink(r.pool.QueryRow(ctx, `
		SELECT `+linkColumns+` FROM social_links WHERE id = $1
	`, id))
}

// ListByProfile returns links in owner order; ties break by creation order.
func (r *LinkRepository) ListByProfile(ctx context.Context, profileID string) ([]*entity.SocialLink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+linkColumns+` FROM social_links
		WHERE profile_id = $1
		ORDER BY order_index, created_at, id
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.SocialLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LinkRepository) Update(ctx context.Context, l *entity.SocialLink) error {
	l.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE social_links
		SET platform = $1, url = $2, label = $3, is_visible = $4, order_index = $5, updated_at = $6
		WHERE id = $7
	`, l.Platform, l.URL, l.Label, l.IsVisible, l.OrderIndex, l.UpdatedAt, l.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

// Reorder rewrites order_index for the given ids in one transaction.
func (r *LinkRepository) Reorder(ctx context.Context, profileID string, orderedIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, id := range orderedIDs {
		res, err := tx.Exec(ctx, `
			UPDATE social_links SET order_index = $1, updated_at = now()
			WHERE id = $2 AND profile_id = $3
		`, i, id, profileID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return domainerr.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM social_links WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

func (r *LinkRepository) DeleteByProfile(ctx context.Context, profileID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM social_links WHERE profile_id = $1`, profileID)
	return err
}

func (r *LinkRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM social_links
		WHERE profile_id IN (SELECT id FROM profiles WHERE account_id = $1)
	`, accountID)
	return err
}

var _ repository.LinkRepository = (*LinkRepository)(nil)
