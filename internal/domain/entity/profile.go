package entity

import "time"

// Profile is a user-named page grouping social links. Slug is unique per
// owning account, not globally. Exactly one profile per account has
// IsDefault set; the profile and friendship services maintain that invariant.
type Profile struct {
	ID        string
	AccountID string
	Name      string
	Slug      string
	IsPublic  bool
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SocialLink is one outbound URL entry attached to a Profile. Ordering is
// owner-controlled via OrderIndex; ties break by creation order.
type SocialLink struct {
	ID         string
	ProfileID  string
	Platform   string
	URL        string
	Label      string
	IsVisible  bool
	OrderIndex int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
