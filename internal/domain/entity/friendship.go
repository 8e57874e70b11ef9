package entity

import "time"

// FriendshipStatus is the state of a relationship between two accounts.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship is a single row per unordered account pair. RequesterID and
// AddresseeID record who asked for audit purposes; all duplicate and
// relationship checks treat (A,B) and (B,A) as the same pair.
type Friendship struct {
	ID          string
	RequesterID string
	AddresseeID string
	Status      FriendshipStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Involves reports whether the given account is one side of the pair.
func (f *Friendship) Involves(accountID string) bool {
	return f.RequesterID == accountID || f.AddresseeID == accountID
}

// OtherSide returns the peer of the given account in this relationship.
func (f *Friendship) OtherSide(accountID string) string {
	if f.RequesterID == accountID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// CanonicalPair returns the two account ids in a stable order so that
// (A,B) and (B,A) produce the same key.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
