package application

import "github.com/linkfolio/linkfolio/internal/domain/entity"

// View carries everything the visibility policy needs for one
// (viewer, profile) decision. It is assembled by callers from the profile
// store and the friendship machine; the evaluator itself does no I/O.
type View struct {
	// ViewerID is empty for anonymous visitors.
	ViewerID string
	OwnerID  string
	// ProfilePublic is the named profile's own flag, not the account default.
	ProfilePublic bool
	// Friendship is the relationship between viewer and owner, or "" when none.
	Friendship entity.FriendshipStatus
	// PreviewAsAnonymous forces the decision a stranger would get. It is
	// applied before the owner rule so an owner's preview cannot leak
	// private content.
	PreviewAsAnonymous bool
}

// CanViewDetails decides whether link destinations and details may be shown.
// Denial is a normal decision rendered as locked content, never an error.
//
// Priority order, first match wins:
//  1. preview mode -> decide as anonymous
//  2. viewer owns the profile -> allow
//  3. profile is public -> allow
//  4. private profile, authenticated viewer, accepted friendship -> allow
//  5. deny
func CanViewDetails(v View) bool {
	if v.PreviewAsAnonymous {
		v.ViewerID = ""
	}
	if v.ViewerID != "" && v.ViewerID == v.OwnerID {
		return true
	}
	if v.ProfilePublic {
		return true
	}
	if v.ViewerID != "" && v.Friendship == entity.FriendshipAccepted {
		return true
	}
	return false
}

// CanViewIcons decides whether link icons may be shown. The product keeps
// this separate from CanViewDetails even though the truth tables currently
// match, so the two can diverge without an API change.
func CanViewIcons(v View) bool {
	return CanViewDetails(v)
}
