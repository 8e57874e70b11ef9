package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
)

type ExternalIdentityRepository struct {
	pool *pgxpool.Pool
}

func NewExternalIdentityRepository(pool *pgxpool.Pool) *ExternalIdentityRepository {
	return &ExternalIdentityRepository{pool: pool}
}

func (r *ExternalIdentityRepository) Create(ctx context.Context, e *entity.ExternalIdentity) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO external_identities (account_id, provider, external_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, e.AccountID, e.Provider, e.ExternalID)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domainerr.ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

func (r *ExternalIdentityRepository) ListByAccount(ctx context.Context, accountID string) ([]*entity.ExternalIdentity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, provider, external_id, created_at
		FROM external_identities
		WHERE account_id = $1
		ORDER BY created_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.ExternalIdentity
	for rows.Next() {
		e := &entity.ExternalIdentity{}
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Provider, &e.ExternalID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExternalIdentityRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM external_identities WHERE account_id = $1`, accountID)
	return err
}

var _ repository.ExternalIdentityRepository = (*ExternalIdentityRepository)(nil)
