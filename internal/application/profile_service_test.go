package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/notify"
)

func newProfileServiceForTest() (*ProfileService, *fakeProfileRepo, *fakeLinkRepo, *recordingPublisher) {
	profiles := newFakeProfileRepo()
	links := newFakeLinkRepo()
	pub := &recordingPublisher{}
	svc := NewProfileService(profiles, links, nil, quietLogger(), notify.NewEmitter(pub, quietLogger()), "http://localhost:8080")
	return svc, profiles, links, pub
}

func testAccount(username string) *entity.Account {
	return &entity.Account{
		ID:          "acct-" + username,
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: username,
		IsPublic:    true,
	}
}

func TestCreateDefaultProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates default with starter links", func(t *testing.T) {
		assert := assert.New(t)
		svc, _, links, _ := newProfileServiceForTest()
		account := testAccount("jane")

		p, err := svc.CreateDefaultProfile(ctx, account)
		require.NoError(t, err)
		assert.True(p.IsDefault)
		assert.Equal(account.ID, p.AccountID)
		assert.Equal("jane", p.Slug)

		got, err := links.ListByProfile(ctx, p.ID)
		require.NoError(t, err)
		assert.Len(got, len(starterLinks))
		for i, l := range got {
			assert.Equal(i, l.OrderIndex)
		}
	})

	t.Run("racing loser adopts the winner", func(t *testing.T) {
		assert := assert.New(t)
		svc, _, _, _ := newProfileServiceForTest()
		account := testAccount("jane")

		winner, err := svc.CreateDefaultProfile(ctx, account)
		require.NoError(t, err)
		loser, err := svc.CreateDefaultProfile(ctx, account)
		require.NoError(t, err)
		assert.Equal(winner.ID, loser.ID)
	})
}

func TestCreateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates a suffixed slug on collision", func(t *testing.T) {
		assert := assert.New(t)
		svc, _, _, _ := newProfileServiceForTest()
		account := testAccount("jane")
		_, err := svc.CreateDefaultProfile(ctx, account)
		require.NoError(t, err)

		p, err := svc.CreateProfile(ctx, account, "jane", true)
		require.NoError(t, err)
		assert.Equal("jane-1", p.Slug)
		assert.False(p.IsDefault)
	})

	t.Run("emits profile_created", func(t *testing.T) {
		assert := assert.New(t)
		svc, _, _, pub := newProfileServiceForTest()
		account := testAccount("jane")
		_, err := svc.CreateProfile(ctx, account, "Music", true)
		require.NoError(t, err)
		assert.Equal([]notify.Kind{notify.KindProfileCreated}, pub.kinds())
	})

	t.Run("slugs collide per account, not globally", func(t *testing.T) {
		assert := assert.New(t)
		svc, _, _, _ := newProfileServiceForTest()
		p1, err := svc.CreateProfile(ctx, testAccount("jane"), "Music", true)
		require.NoError(t, err)
		p2, err := svc.CreateProfile(ctx, testAccount("john"), "Music", true)
		require.NoError(t, err)
		assert.Equal("music", p1.Slug)
		assert.Equal("music", p2.Slug)
	})
}

func TestGetDefaultSelfHeal(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	svc, profiles, _, _ := newProfileServiceForTest()
	account := testAccount("jane")

	first, err := svc.CreateDefaultProfile(ctx, account)
	require.NoError(t, err)
	_, err = svc.CreateProfile(ctx, account, "Music", true)
	require.NoError(t, err)

	// Simulate the transient zero-default state.
	profiles.mu.Lock()
	for _, p := range profiles.profiles {
		p.IsDefault = false
	}
	profiles.mu.Unlock()

	healed, err := svc.GetDefault(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(first.ID, healed.ID, "oldest profile becomes the new default")
	assert.True(healed.IsDefault)

	again, err := svc.GetDefault(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(first.ID, again.ID)
}

func TestSetDefault(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	svc, profiles, _, _ := newProfileServiceForTest()
	account := testAccount("jane")

	first, err := svc.CreateDefaultProfile(ctx, account)
	require.NoError(t, err)
	second, err := svc.CreateProfile(ctx, account, "Music", true)
	require.NoError(t, err)

	require.NoError(t, svc.SetDefault(ctx, account.ID, second.ID))

	got, err := profiles.GetDefault(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(second.ID, got.ID)

	old, err := profiles.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(old.IsDefault, "exactly one default at a time")

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := svc.SetDefault(ctx, "someone-else", second.ID)
		assert.ErrorIs(err, ErrNotProfileOwner)
	})
}

func TestDeleteProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("last profile is protected", func(t *testing.T) {
		assert := assert.New(t)
		svc, _, _, _ := newProfileServiceForTest()
		account := testAccount("jane")
		p, err := svc.CreateDefaultProfile(ctx, account)
		require.NoError(t, err)

		err = svc.Delete(ctx, account.ID, p.ID)
		assert.ErrorIs(err, domainerr.ErrLastProfile)
	})

	t.Run("deleting the default promotes the oldest remaining", func(t *testing.T) {
		assert := assert.New(t)
		svc, profiles, _, _ := newProfileServiceForTest()
		account := testAccount("jane")
		def, err := svc.CreateDefaultProfile(ctx, account)
		require.NoError(t, err)
		second, err := svc.CreateProfile(ctx, account, "Music", true)
		require.NoError(t, err)
		_, err = svc.CreateProfile(ctx, account, "Art", true)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, account.ID, def.ID))

		got, err := profiles.GetDefault(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(second.ID, got.ID)
	})

	t.Run("deleting a profile removes its links", func(t *testing.T) {
		assert := assert.New(t)
		svc, _, links, _ := newProfileServiceForTest()
		account := testAccount("jane")
		_, err := svc.CreateDefaultProfile(ctx, account)
		require.NoError(t, err)
		p, err := svc.CreateProfile(ctx, account, "Music", true)
		require.NoError(t, err)
		_, err = svc.AddLink(ctx, account.ID, p.ID, LinkInput{Platform: "x", URL: "https://x.com/jane", IsVisible: true})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, account.ID, p.ID))
		got, err := links.ListByProfile(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(got)
	})
}

func TestLinks(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ProfileService, *entity.Account, *entity.Profile) {
		svc, _, _, _ := newProfileServiceForTest()
		account := testAccount("jane")
		p, err := svc.CreateProfile(ctx, account, "Music", true)
		require.NoError(t, err)
		return svc, account, p
	}

	t.Run("add appends to the end", func(t *testing.T) {
		assert := assert.New(t)
		svc, account, p := setup(t)
		l1, err := svc.AddLink(ctx, account.ID, p.ID, LinkInput{Platform: "x", URL: "https://x.com/jane", IsVisible: true})
		require.NoError(t, err)
		l2, err := svc.AddLink(ctx, account.ID, p.ID, LinkInput{Platform: "youtube", URL: "https://youtube.com/@jane", IsVisible: true})
		require.NoError(t, err)
		assert.Equal(0, l1.OrderIndex)
		assert.Equal(1, l2.OrderIndex)
	})

	t.Run("reorder rewrites owner order", func(t *testing.T) {
		assert := assert.New(t)
		svc, account, p := setup(t)
		l1, _ := svc.AddLink(ctx, account.ID, p.ID, LinkInput{Platform: "x", URL: "https://x.com/jane", IsVisible: true})
		l2, _ := svc.AddLink(ctx, account.ID, p.ID, LinkInput{Platform: "youtube", URL: "https://youtube.com/@jane", IsVisible: true})

		require.NoError(t, svc.ReorderLinks(ctx, account.ID, p.ID, []string{l2.ID, l1.ID}))
		got, err := svc.ListLinks(ctx, account.ID, p.ID)
		require.NoError(t, err)
		assert.Equal([]string{l2.ID, l1.ID}, []string{got[0].ID, got[1].ID})
	})

	t.Run("link mutations check profile ownership", func(t *testing.T) {
		assert := assert.New(t)
		svc, account, p := setup(t)
		l, err := svc.AddLink(ctx, account.ID, p.ID, LinkInput{Platform: "x", URL: "https://x.com/jane", IsVisible: true})
		require.NoError(t, err)

		err = svc.RemoveLink(ctx, "someone-else", l.ID)
		assert.ErrorIs(err, ErrNotProfileOwner)
	})
}
