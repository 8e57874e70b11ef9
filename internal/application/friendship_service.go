package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/domain/repository"
	"github.com/linkfolio/linkfolio/internal/notify"
)

var (
	ErrSelfFriendship      = errors.New("cannot befriend yourself")
	ErrNotRequestAddressee = errors.New("only the addressee can respond to a request")
	ErrInvalidTransition   = errors.New("invalid relationship transition")
)

// FriendshipService drives the relationship state machine: a pending
// request becomes accepted or disappears on rejection; an accepted
// relationship can end by unfriending or harden into blocked.
type FriendshipService struct {
	Friendships   repository.FriendshipRepository
	Accounts      repository.AccountRepository
	Logger        *logrus.Logger
	Notify        *notify.Emitter
	PublicBaseURL string
}

func NewFriendshipService(friendships repository.FriendshipRepository, accounts repository.AccountRepository, logger *logrus.Logger, emitter *notify.Emitter, publicBaseURL string) *FriendshipService {
	return &FriendshipService{
		Friendships:   friendships,
		Accounts:      accounts,
		Logger:        logger,
		Notify:        emitter,
		PublicBaseURL: publicBaseURL,
	}
}

// SendRequest creates a pending request toward the target username. Any
// existing relationship for the pair, in either direction and any state,
// rejects the request as a duplicate.
func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, targetUsername string) (*entity.Friendship, error) {
	target, err := s.Accounts.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == requesterID {
		return nil, ErrSelfFriendship
	}
	f := &entity.Friendship{
		RequesterID: requesterID,
		AddresseeID: target.ID,
		Status:      entity.FriendshipPending,
	}
	if err := s.Friendships.Create(ctx, f); err != nil {
		return nil, err
	}

	requester, err := s.Accounts.GetByID(ctx, requesterID)
	if err == nil {
		s.Notify.Emit(ctx, notify.Event{
			Kind:             notify.KindFriendRequest,
			RecipientAddress: target.Email,
			TemplateData: map[string]any{
				"RecipientName": target.DisplayName,
				"FriendName":    requester.DisplayName,
				"Username":      requester.Username,
				"PageURL":       fmt.Sprintf("%s/u/%s", s.PublicBaseURL, requester.Username),
			},
		})
	} else if s.Logger != nil {
		s.Logger.WithError(err).Warn("requester lookup failed, skipping friend request notification")
	}
	return f, nil
}

// Accept moves a pending request to accepted. Only the addressee may
// accept, and only from pending.
func (s *FriendshipService) Accept(ctx context.Context, accountID, friendshipID string) (*entity.Friendship, error) {
	f, err := s.addressedRequest(ctx, accountID, friendshipID)
	if err != nil {
		return nil, err
	}
	if err := s.Friendships.UpdateStatus(ctx, f.ID, entity.FriendshipAccepted); err != nil {
		return nil, err
	}
	f.Status = entity.FriendshipAccepted

	requester, err := s.Accounts.GetByID(ctx, f.RequesterID)
	if err == nil {
		accepter, aerr := s.Accounts.GetByID(ctx, accountID)
		if aerr == nil {
			s.Notify.Emit(ctx, notify.Event{
				Kind:             notify.KindFriendAccepted,
				RecipientAddress: requester.Email,
				TemplateData: map[string]any{
					"RecipientName": requester.DisplayName,
					"FriendName":    accepter.DisplayName,
					"PageURL":       fmt.Sprintf("%s/u/%s", s.PublicBaseURL, accepter.Username),
				},
			})
		}
	}
	return f, nil
}

// Reject deletes a pending request outright. The requester may send a
// fresh request later; no tombstone is kept.
func (s *FriendshipService) Reject(ctx context.Context, accountID, friendshipID string) error {
	f, err := s.addressedRequest(ctx, accountID, friendshipID)
	if err != nil {
		return err
	}
	return s.Friendships.Delete(ctx, f.ID)
}

// addressedRequest loads a pending request addressed to accountID.
func (s *FriendshipService) addressedRequest(ctx context.Context, accountID, friendshipID string) (*entity.Friendship, error) {
	f, err := s.Friendships.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, err
	}
	if f.AddresseeID != accountID {
		return nil, ErrNotRequestAddressee
	}
	if f.Status != entity.FriendshipPending {
		return nil, ErrInvalidTransition
	}
	return f, nil
}

// Unfriend removes an accepted relationship between the caller and the
// other account.
func (s *FriendshipService) Unfriend(ctx context.Context, accountID, otherID string) error {
	f, err := s.Friendships.GetByPair(ctx, accountID, otherID)
	if err != nil {
		return err
	}
	if f.Status != entity.FriendshipAccepted {
		return ErrInvalidTransition
	}
	return s.Friendships.Delete(ctx, f.ID)
}

// Block hardens an accepted relationship into blocked. Blocked is
// terminal: it neither grants friend visibility nor allows a new request
// while the row exists.
func (s *FriendshipService) Block(ctx context.Context, accountID, otherID string) error {
	f, err := s.Friendships.GetByPair(ctx, accountID, otherID)
	if err != nil {
		return err
	}
	if !f.Involves(accountID) || f.Status != entity.FriendshipAccepted {
		return ErrInvalidTransition
	}
	return s.Friendships.UpdateStatus(ctx, f.ID, entity.FriendshipBlocked)
}

// StatusBetween reports the relationship status for an unordered pair,
// or "" when none exists.
func (s *FriendshipService) StatusBetween(ctx context.Context, a, b string) (entity.FriendshipStatus, error) {
	if a == "" || b == "" || a == b {
		return "", nil
	}
	f, err := s.Friendships.GetByPair(ctx, a, b)
	if err != nil {
		if errors.Is(err, domainerr.ErrRelationshipNotFound) {
			return "", nil
		}
		return "", err
	}
	return f.Status, nil
}

// FriendSummary is one row of a relationship listing.
type FriendSummary struct {
	FriendshipID string                  `json:"friendship_id"`
	AccountID    string                  `json:"account_id"`
	Username     string                  `json:"username"`
	DisplayName  string                  `json:"display_name"`
	AvatarURL    string                  `json:"avatar_url,omitempty"`
	Status       entity.FriendshipStatus `json:"status"`
	Incoming     bool                    `json:"incoming"`
}

// List returns the caller's relationships in the given status, resolved
// to the peer account. Peers that fail to resolve are skipped.
func (s *FriendshipService) List(ctx context.Context, accountID string, status entity.FriendshipStatus) ([]FriendSummary, error) {
	rels, err := s.Friendships.ListForAccount(ctx, accountID, status)
	if err != nil {
		return nil, err
	}
	out := make([]FriendSummary, 0, len(rels))
	for _, f := range rels {
		peer, err := s.Accounts.GetByID(ctx, f.OtherSide(accountID))
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("friendship_id", f.ID).Warn("peer lookup failed in relationship listing")
			}
			continue
		}
		out = append(out, FriendSummary{
			FriendshipID: f.ID,
			AccountID:    peer.ID,
			Username:     peer.Username,
			DisplayName:  peer.DisplayName,
			AvatarURL:    peer.AvatarURL,
			Status:       f.Status,
			Incoming:     f.AddresseeID == accountID,
		})
	}
	return out, nil
}
