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

const profileColumns = `id, account_id, name, slug, is_public, is_default, created_at, updated_at`

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	p := &entity.Profile{}
	err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.Slug, &p.IsPublic, &p.IsDefault,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerr.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (account_id, name, slug, is_public, is_default)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.AccountID, p.Name, p.Slug, p.IsPublic, p.IsDefault)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if violatedConstraint(err) == "profiles_default_key" {
			return domainerr.ErrDefaultProfileExists
		}
		if isUniqueViolation(err) {
			return domainerr.ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE id = $1
	`, id))
}

func (r *ProfileRepository) GetBySlug(ctx context.Context, accountID, slug string) (*entity.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE account_id = $1 AND slug = $2
	`, accountID, slug))
}

func (r *ProfileRepository) GetDefault(ctx context.Context, accountID string) (*entity.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE account_id = $1 AND is_default
	`, accountID))
	if errors.Is(err, domainerr.ErrNotFound) {
		return nil, domainerr.ErrNoDefaultProfile
	}
	return p, err
}

func (r *ProfileRepository) ListByAccount(ctx context.Context, accountID string) ([]*entity.Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+` FROM profiles
		WHERE account_id = $1
		ORDER BY created_at, id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProfileRepository) CountByAccount(ctx context.Context, accountID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM profiles WHERE account_id = $1
	`, accountID).Scan(&n)
	return n, err
}

// SetDefault clears the previous default and sets the new one inside one
// transaction so a reader can never observe two defaults.
func (r *ProfileRepository) SetDefault(ctx context.Context, accountID, profileID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE profiles SET is_default = false, updated_at = now()
		WHERE account_id = $1 AND is_default
	`, accountID); err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `
		UPDATE profiles SET is_default = true, updated_at = now()
		WHERE id = $1 AND account_id = $2
	`, profileID, accountID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET name = $1, slug = $2, is_public = $3, updated_at = $4
		WHERE id = $5
	`, p.Name, p.Slug, p.IsPublic, p.UpdatedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerr.ErrDuplicateIdentifier
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE account_id = $1`, accountID)
	return err
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
