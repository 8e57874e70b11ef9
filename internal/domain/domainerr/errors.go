package domainerr

import "errors"

// Sentinel errors shared across services. Handlers map these onto the API
// envelope; services compare with errors.Is.
var (
	// ErrDuplicateIdentifier is returned by repositories when an insert hits
	// a username/slug uniqueness constraint. It is the allocator's collision
	// signal, not a user-facing failure by itself.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrAllocationExhausted means the allocator ran out of candidate
	// identifiers within its retry bound.
	ErrAllocationExhausted = errors.New("identifier allocation exhausted")

	// ErrEmailInUse distinguishes an email collision from a username one;
	// the allocator must not retry usernames when the email is the problem.
	ErrEmailInUse = errors.New("email already in use")

	// ErrLastProfile rejects deleting an account's only remaining profile.
	ErrLastProfile = errors.New("cannot delete the last profile")

	// ErrNoDefaultProfile marks the transient zero-default state. It is
	// repaired on read and never surfaced to users.
	ErrNoDefaultProfile = errors.New("account has no default profile")

	// ErrDefaultProfileExists is raised when two onboarding flows race to
	// create the default profile; the loser adopts the winner's row.
	ErrDefaultProfileExists = errors.New("default profile already exists")

	// ErrDuplicateFriendRequest is returned when a relationship already
	// exists for the unordered pair in either direction.
	ErrDuplicateFriendRequest = errors.New("friend request already exists")

	ErrRelationshipNotFound = errors.New("relationship not found")

	// ErrAdminPrivilegeRequired gates the admin batch controller.
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")

	// ErrOrphanedExternalIdentity marks a delete that removed all internal
	// records but failed to remove the external identity record. Internal
	// removal is irreversible; operators reconcile the remainder manually.
	ErrOrphanedExternalIdentity = errors.New("orphaned external identity")

	ErrNotFound = errors.New("not found")
)
