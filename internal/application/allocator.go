package application

import (
	"context"
	"errors"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/pkg/identifier"
)

// InsertFunc attempts to persist a candidate identifier. Implementations
// must return domainerr.ErrDuplicateIdentifier when the storage layer's
// unique constraint rejects the candidate; that violation is the only
// trusted collision signal. Pre-checking for existence and then inserting
// is a race and must not be done here or in callers.
type InsertFunc func(ctx context.Context, candidate string) error

// AllocateIdentifier walks the bounded candidate sequence for the desired
// identifier, attempting each insert until one lands or the sequence runs
// out, in which case it returns domainerr.ErrAllocationExhausted.
func AllocateIdentifier(ctx context.Context, desired string, normalize func(string) string, insert InsertFunc) (string, error) {
	return allocate(ctx, identifier.NewCandidates(normalize(desired), identifier.DefaultMaxAttempts), insert)
}

func allocate(ctx context.Context, candidates *identifier.Candidates, insert InsertFunc) (string, error) {
	for {
		candidate, ok := candidates.Next()
		if !ok {
			return "", domainerr.ErrAllocationExhausted
		}
		err := insert(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if errors.Is(err, domainerr.ErrDuplicateIdentifier) {
			continue
		}
		return "", err
	}
}

// AllocateUsername allocates a globally unique username.
func AllocateUsername(ctx context.Context, desired string, insert InsertFunc) (string, error) {
	return AllocateIdentifier(ctx, desired, identifier.NormalizeUsername, insert)
}

// AllocateSlug allocates a slug unique within one account.
func AllocateSlug(ctx context.Context, desired string, insert InsertFunc) (string, error) {
	return AllocateIdentifier(ctx, desired, identifier.NormalizeSlug, insert)
}
