package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
	"github.com/linkfolio/linkfolio/internal/infrastructure/search"
	"github.com/linkfolio/linkfolio/internal/notify"
	"github.com/linkfolio/linkfolio/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBanned      = errors.New("account is banned")
	ErrSessionExpired     = errors.New("session expired")
	ErrResetTokenInvalid  = errors.New("password reset token is invalid or expired")
)

const (
	sessionKeyPrefix = "session:"
	resetKeyPrefix   = "pwreset:"
	resetTokenTTL    = 30 * time.Minute
)

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AccountService owns identity: signup with username allocation, login
// sessions, password lifecycle, avatar storage and the search index.
type AccountService struct {
	Accounts   repository.AccountRepository
	Identities repository.ExternalIdentityRepository
	Profiles   *ProfileService
	Redis      *redis.Client
	JWT        *helpers.JWTManager
	GCS        *storage.Client
	GCSBucket  string
	Index      *search.AccountIndex
	Logger     *logrus.Logger
	Notify     *notify.Emitter
	ResetURL   string
}

type SignUpInput struct {
	Email           string
	Password        string
	DisplayName     string
	DesiredUsername string
	IsPublic        bool
	UserType        entity.UserType
}

// SignUp creates the account, allocating a unique username from the
// desired one, then creates the default profile and issues a session.
// An email collision aborts immediately; retrying usernames cannot fix it.
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (*entity.Account, *TokenPair, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}
	if in.UserType == "" {
		in.UserType = entity.UserTypeStandard
	}
	desired := in.DesiredUsername
	if desired == "" {
		desired = in.DisplayName
	}
	if desired == "" {
		desired = strings.SplitN(in.Email, "@", 2)[0]
	}

	a := &entity.Account{
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Password:    hash,
		DisplayName: in.DisplayName,
		IsPublic:    in.IsPublic,
		UserType:    in.UserType,
	}
	if _, err := AllocateUsername(ctx, desired, func(ctx context.Context, candidate string) error {
		a.Username = candidate
		return s.Accounts.Create(ctx, a)
	}); err != nil {
		return nil, nil, err
	}

	if _, err := s.Profiles.CreateDefaultProfile(ctx, a); err != nil {
		// The account exists; onboarding repairs the missing default on
		// first read. Surface nothing to the caller beyond a log line.
		s.Logger.WithError(err).WithField("account_id", a.ID).Error("default profile creation failed during signup")
	}

	s.indexAccount(ctx, a)
	s.Notify.Emit(ctx, notify.Event{
		Kind:             notify.KindWelcome,
		RecipientAddress: a.Email,
		TemplateData: map[string]any{
			"RecipientName": a.DisplayName,
			"Username":      a.Username,
		},
	})

	tokens, err := s.issueSession(ctx, a.ID)
	if err != nil {
		return nil, nil, err
	}
	return a, tokens, nil
}

// Login verifies credentials and opens a new session. Banned accounts
// cannot log in; unknown emails and bad passwords are indistinguishable.
func (s *AccountService) Login(ctx context.Context, email, password string) (*entity.Account, *TokenPair, error) {
	a, err := s.Accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domainerr.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !helpers.CompareHashAndPassword(a.Password, password) {
		return nil, nil, ErrInvalidCredentials
	}
	if a.Banned() {
		return nil, nil, ErrAccountBanned
	}
	tokens, err := s.issueSession(ctx, a.ID)
	if err != nil {
		return nil, nil, err
	}
	return a, tokens, nil
}

func (s *AccountService) issueSession(ctx context.Context, accountID string) (*TokenPair, error) {
	sessionID := uuid.NewString()
	if err := s.Redis.Set(ctx, sessionKey(accountID, sessionID), time.Now().Unix(), s.JWT.RefreshTTL).Err(); err != nil {
		return nil, err
	}
	return s.tokensFor(accountID, sessionID)
}

func (s *AccountService) tokensFor(accountID, sessionID string) (*TokenPair, error) {
	access, accessExp, err := s.JWT.GenerateAccessToken(accountID, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.JWT.GenerateRefreshToken(accountID, sessionID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// session key must still exist; logout and admin purges kill it.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrSessionExpired
	}
	key := sessionKey(claims.AccountID, claims.SessionID)
	n, err := s.Redis.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrSessionExpired
	}
	if err := s.Redis.Expire(ctx, key, s.JWT.RefreshTTL).Err(); err != nil {
		return nil, err
	}
	return s.tokensFor(claims.AccountID, claims.SessionID)
}

func (s *AccountService) Logout(ctx context.Context, accountID, sessionID string) error {
	return s.Redis.Del(ctx, sessionKey(accountID, sessionID)).Err()
}

// SessionAlive reports whether the session backing an access token still
// exists. The auth middleware calls this so revocation takes effect
// before the access token expires.
func (s *AccountService) SessionAlive(ctx context.Context, accountID, sessionID string) (bool, error) {
	n, err := s.Redis.Exists(ctx, sessionKey(accountID, sessionID)).Result()
	return n > 0, err
}

// PurgeSessions deletes every live session for the account.
func (s *AccountService) PurgeSessions(ctx context.Context, accountID string) error {
	if s.Redis == nil {
		return nil
	}
	var cursor uint64
	pattern := sessionKeyPrefix + accountID + ":*"
	for {
		keys, next, err := s.Redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func sessionKey(accountID, sessionID string) string {
	return sessionKeyPrefix + accountID + ":" + sessionID
}

func (s *AccountService) Get(ctx context.Context, accountID string) (*entity.Account, error) {
	return s.Accounts.GetByID(ctx, accountID)
}

type UpdateAccountInput struct {
	DisplayName         *string
	Bio                 *string
	IsPublic            *bool
	OnboardingCompleted *bool
}

func (s *AccountService) Update(ctx context.Context, accountID string, in UpdateAccountInput) (*entity.Account, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil && *in.DisplayName != "" {
		a.DisplayName = *in.DisplayName
	}
	if in.Bio != nil {
		a.Bio = *in.Bio
	}
	if in.IsPublic != nil {
		a.IsPublic = *in.IsPublic
	}
	if in.OnboardingCompleted != nil {
		a.OnboardingCompleted = *in.OnboardingCompleted
	}
	if err := s.Accounts.Update(ctx, a); err != nil {
		return nil, err
	}
	s.indexAccount(ctx, a)
	return a, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(a.Password, current) {
		return ErrInvalidCredentials
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	a.Password = hash
	return s.Accounts.Update(ctx, a)
}

// RequestPasswordReset issues a one-time token. Unknown emails report
// success to the caller so the endpoint cannot be used to probe accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	a, err := s.Accounts.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domainerr.ErrNotFound) {
			return nil
		}
		return err
	}
	token := uuid.NewString()
	if err := s.Redis.Set(ctx, resetKeyPrefix+token, a.ID, resetTokenTTL).Err(); err != nil {
		return err
	}
	s.Notify.Emit(ctx, notify.Event{
		Kind:             notify.KindPasswordReset,
		RecipientAddress: a.Email,
		TemplateData: map[string]any{
			"RecipientName": a.DisplayName,
			"ResetURL":      fmt.Sprintf("%s?token=%s", s.ResetURL, token),
		},
	})
	return nil
}

// ResetPassword consumes the token, replaces the password and kills every
// live session.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	accountID, err := s.Redis.Get(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return err
	}
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	a.Password = hash
	if err := s.Accounts.Update(ctx, a); err != nil {
		return err
	}
	_ = s.Redis.Del(ctx, resetKeyPrefix+token).Err()
	return s.PurgeSessions(ctx, accountID)
}

// UploadAvatar stores the image in GCS and records its public URL.
func (s *AccountService) UploadAvatar(ctx context.Context, accountID, filename, contentType string, r io.Reader) (*entity.Account, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	object := fmt.Sprintf("avatars/%s/%s%s", accountID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, object, contentType, r)
	if err != nil {
		return nil, err
	}
	a.AvatarURL = url
	if err := s.Accounts.Update(ctx, a); err != nil {
		return nil, err
	}
	s.indexAccount(ctx, a)
	return a, nil
}

// Search queries the accounts index for public accounts.
func (s *AccountService) Search(ctx context.Context, query string, limit int) ([]search.AccountDoc, error) {
	if s.Index == nil {
		return nil, errors.New("search index not configured")
	}
	return s.Index.Search(ctx, query, limit)
}

func (s *AccountService) indexAccount(ctx context.Context, a *entity.Account) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, a); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", a.ID).Warn("account indexing failed")
	}
}

// DeindexAccount removes the account from search. Used by the admin
// delete cascade.
func (s *AccountService) DeindexAccount(ctx context.Context, accountID string) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Delete(ctx, accountID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", accountID).Warn("account deindexing failed")
	}
}
