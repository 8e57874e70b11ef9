package entity

import "time"

// UserType distinguishes creator accounts from standard ones.
type UserType string

const (
	UserTypeCreator  UserType = "creator"
	UserTypeStandard UserType = "standard"
)

// Account is the aggregate root for an authenticated identity.
// Passwords are stored as bcrypt hashes in Password.
type Account struct {
	ID                  string
	Username            string // globally unique, lowercase [a-z0-9._-]{3,}
	Email               string
	Password            string
	DisplayName         string
	Bio                 string
	AvatarURL           string
	IsPublic            bool // global default for new profiles
	OnboardingCompleted bool
	UserType            UserType
	EmailConfirmedAt    *time.Time
	BannedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Banned reports whether the account is currently banned.
func (a *Account) Banned() bool {
	return a.BannedUntil != nil && a.BannedUntil.After(time.Now())
}

// EmailConfirmed reports whether the account email has been confirmed.
func (a *Account) EmailConfirmed() bool {
	return a.EmailConfirmedAt != nil
}

// ExternalIdentity links an Account to an identity record held by an
// external auth provider. Deleted last in the account removal cascade.
type ExternalIdentity struct {
	ID         string
	AccountID  string
	Provider   string // e.g. "google", "github"
	ExternalID string
	CreatedAt  time.Time
}
