package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
	"github.com/linkfolio/linkfolio/internal/notify"
)

// AdminAction names a moderation operation applied to one account.
type AdminAction string

const (
	AdminActionBan          AdminAction = "ban"
	AdminActionUnban        AdminAction = "unban"
	AdminActionConfirmEmail AdminAction = "confirm_email"
	AdminActionDelete       AdminAction = "delete"
)

var ErrUnknownAdminAction = errors.New("unknown admin action")

// AdminService applies moderation actions. Authorization is resolved
// against the configured allow-list on every call, so rotating the list
// needs no restart.
type AdminService struct {
	Accounts    repository.AccountRepository
	Identities  repository.ExternalIdentityRepository
	Profiles    repository.ProfileRepository
	Links       repository.LinkRepository
	Friendships repository.FriendshipRepository
	Sessions    *AccountService
	Logger      *logrus.Logger
	Notify      *notify.Emitter

	// AllowList returns the current administrator emails, lowercased.
	AllowList func() []string
}

// Authorize checks the caller against the allow-list. Every admin entry
// point calls this; nothing is cached between calls.
func (s *AdminService) Authorize(ctx context.Context, callerID string) error {
	caller, err := s.Accounts.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	email := strings.ToLower(caller.Email)
	for _, allowed := range s.AllowList() {
		if email == allowed {
			return nil
		}
	}
	return domainerr.ErrAdminPrivilegeRequired
}

// BulkItem is one (action, account) instruction in a batch.
type BulkItem struct {
	Action    AdminAction `json:"action"`
	AccountID string      `json:"account_id"`
	// BanDuration applies to ban actions; zero means permanent.
	BanDuration time.Duration `json:"ban_duration,omitempty"`
}

// ItemResult reports the outcome of one batch item.
type ItemResult struct {
	AccountID string      `json:"account_id"`
	Action    AdminAction `json:"action"`
	OK        bool        `json:"ok"`
	Error     string      `json:"error,omitempty"`
}

// ApplyBulk applies the items in order. Items are independent; a failed
// item never rolls back earlier ones. With stopOnError the remaining
// items are left unattempted and unreported.
func (s *AdminService) ApplyBulk(ctx context.Context, callerID string, items []BulkItem, stopOnError bool) ([]ItemResult, error) {
	if err := s.Authorize(ctx, callerID); err != nil {
		return nil, err
	}
	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		err := s.apply(ctx, item)
		r := ItemResult{AccountID: item.AccountID, Action: item.Action, OK: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
		if err != nil && stopOnError {
			break
		}
	}
	return results, nil
}

func (s *AdminService) apply(ctx context.Context, item BulkItem) error {
	switch item.Action {
	case AdminActionBan:
		until := time.Now().Add(item.BanDuration)
		if item.BanDuration == 0 {
			until = time.Now().AddDate(100, 0, 0)
		}
		if err := s.Accounts.SetBannedUntil(ctx, item.AccountID, &until); err != nil {
			return err
		}
		return s.Sessions.PurgeSessions(ctx, item.AccountID)
	case AdminActionUnban:
		return s.Accounts.SetBannedUntil(ctx, item.AccountID, nil)
	case AdminActionConfirmEmail:
		return s.Accounts.SetEmailConfirmed(ctx, item.AccountID, time.Now())
	case AdminActionDelete:
		return s.deleteAccount(ctx, item.AccountID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAdminAction, item.Action)
	}
}

// deleteAccount removes everything the account owns, innermost records
// first, the external identity record last. The external record belongs
// to the auth provider and has no foreign key to accounts; if its removal
// fails after the account row is gone, the deletion is reported as
// orphaned so operators can reconcile, because the internal removal
// cannot be undone.
func (s *AdminService) deleteAccount(ctx context.Context, accountID string) error {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.Links.DeleteByAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.Friendships.DeleteAllForAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.Profiles.DeleteByAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.Accounts.Delete(ctx, accountID); err != nil {
		return err
	}

	if err := s.Sessions.PurgeSessions(ctx, accountID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", accountID).Warn("session purge failed during account deletion")
	}
	s.Sessions.DeindexAccount(ctx, accountID)
	s.Notify.Emit(ctx, notify.Event{
		Kind:             notify.KindAccountDeleted,
		RecipientAddress: a.Email,
		TemplateData: map[string]any{
			"RecipientName": a.DisplayName,
		},
	})

	if err := s.Identities.DeleteByAccount(ctx, accountID); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", accountID).Error("external identity removal failed after account deletion")
		}
		return fmt.Errorf("%w: account %s", domainerr.ErrOrphanedExternalIdentity, accountID)
	}
	return nil
}

// ListAccounts pages through all accounts for the admin console.
func (s *AdminService) ListAccounts(ctx context.Context, callerID string, limit, offset int) ([]*entity.Account, error) {
	if err := s.Authorize(ctx, callerID); err != nil {
		return nil, err
	}
	return s.Accounts.List(ctx, limit, offset)
}
