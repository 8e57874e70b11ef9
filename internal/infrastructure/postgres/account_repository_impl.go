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

const accountColumns = `id, username, email, password_hash, display_name, bio, avatar_url,
	is_public, onboarding_completed, user_type, email_confirmed_at, banned_until,
	created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.Password, &a.DisplayName, &a.Bio,
		&a.AvatarURL, &a.IsPublic, &a.OnboardingCompleted, &a.UserType,
		&a.EmailConfirmedAt, &a.BannedUntil, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerr.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, display_name, bio, avatar_url,
			is_public, onboarding_completed, user_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, a.Username, a.Email, a.Password, a.DisplayName, a.Bio, a.AvatarURL,
		a.IsPublic, a.OnboardingCompleted, a.UserType)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if violatedConstraint(err) == "accounts_email_key" {
			return domainerr.ErrEmailInUse
		}
		if isUniqueViolation(err) {
			return domainerr.ErrDuplicateIdentifier
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1
	`, id))
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE username = $1
	`, username))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE email = $1
	`, email))
}

func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) error {
	a.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET username = $1, email = $2, password_hash = $3, display_name = $4, bio = $5,
			avatar_url = $6, is_public = $7, onboarding_completed = $8, user_type = $9,
			updated_at = $10
		WHERE id = $11
	`, a.Username, a.Email, a.Password, a.DisplayName, a.Bio, a.AvatarURL,
		a.IsPublic, a.OnboardingCompleted, a.UserType, a.UpdatedAt, a.ID)
	if err != nil {
		if violatedConstraint(err) == "accounts_email_key" {
			return domainerr.ErrEmailInUse
		}
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

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*entity.Account, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepository) SetBannedUntil(ctx context.Context, id string, until *time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts SET banned_until = $1, updated_at = now() WHERE id = $2
	`, until, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) SetEmailConfirmed(ctx context.Context, id string, at time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts SET email_confirmed_at = $1, updated_at = now() WHERE id = $2
	`, at, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domainerr.ErrNotFound
	}
	return nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
