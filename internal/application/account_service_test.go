package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
)

// Signup's username allocation runs against the account store's
// uniqueness rules; these tests drive the same closure SignUp uses.
func TestUsernameAllocationAgainstStore(t *testing.T) {
	ctx := context.Background()

	signup := func(repo *fakeAccountRepo, desired, email string) (*entity.Account, error) {
		a := &entity.Account{Email: email, DisplayName: desired}
		_, err := AllocateUsername(ctx, desired, func(ctx context.Context, candidate string) error {
			a.Username = candidate
			return repo.Create(ctx, a)
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	t.Run("second jane gets a suffix", func(t *testing.T) {
		assert := assert.New(t)
		repo := newFakeAccountRepo()

		first, err := signup(repo, "Jane Doe", "jane1@example.com")
		require.NoError(t, err)
		assert.Equal("jane-doe", first.Username)

		second, err := signup(repo, "Jane Doe", "jane2@example.com")
		require.NoError(t, err)
		assert.Equal("jane-doe-1", second.Username)
	})

	t.Run("email collision aborts without burning candidates", func(t *testing.T) {
		assert := assert.New(t)
		repo := newFakeAccountRepo()

		_, err := signup(repo, "Jane Doe", "jane@example.com")
		require.NoError(t, err)

		_, err = signup(repo, "Someone Else", "jane@example.com")
		assert.ErrorIs(err, domainerr.ErrEmailInUse)

		_, err = repo.GetByUsername(ctx, "someone-else")
		assert.ErrorIs(err, domainerr.ErrNotFound, "no account row was left behind")
	})
}
