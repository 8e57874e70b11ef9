package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkfolio/linkfolio/internal/domain/domainerr"
	"github.com/linkfolio/linkfolio/internal/domain/entity"
	"github.com/linkfolio/linkfolio/internal/notify"
)

type adminFixture struct {
	svc         *AdminService
	accounts    *fakeAccountRepo
	identities  *fakeIdentityRepo
	profiles    *fakeProfileRepo
	links       *fakeLinkRepo
	friendships *fakeFriendshipRepo
	pub         *recordingPublisher
	admin       *entity.Account
	target      *entity.Account
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	ctx := context.Background()

	accounts := newFakeAccountRepo()
	identities := newFakeIdentityRepo()
	profiles := newFakeProfileRepo()
	links := newFakeLinkRepo()
	friendships := newFakeFriendshipRepo()
	pub := &recordingPublisher{}
	emitter := notify.NewEmitter(pub, quietLogger())

	sessions := &AccountService{
		Accounts: accounts,
		Logger:   quietLogger(),
		Notify:   emitter,
	}

	svc := &AdminService{
		Accounts:    accounts,
		Identities:  identities,
		Profiles:    profiles,
		Links:       links,
		Friendships: friendships,
		Sessions:    sessions,
		Logger:      quietLogger(),
		Notify:      emitter,
		AllowList:   func() []string { return []string{"admin@example.com"} },
	}

	admin := &entity.Account{Username: "admin", Email: "admin@example.com", DisplayName: "Admin"}
	target := &entity.Account{Username: "target", Email: "target@example.com", DisplayName: "Target"}
	require.NoError(t, accounts.Create(ctx, admin))
	require.NoError(t, accounts.Create(ctx, target))

	return &adminFixture{
		svc: svc, accounts: accounts, identities: identities, profiles: profiles,
		links: links, friendships: friendships, pub: pub, admin: admin, target: target,
	}
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	t.Run("allow-listed email passes", func(t *testing.T) {
		fx := newAdminFixture(t)
		assert.NoError(t, fx.svc.Authorize(ctx, fx.admin.ID))
	})

	t.Run("other accounts are rejected", func(t *testing.T) {
		fx := newAdminFixture(t)
		err := fx.svc.Authorize(ctx, fx.target.ID)
		assert.ErrorIs(t, err, domainerr.ErrAdminPrivilegeRequired)
	})

	t.Run("comparison is case-insensitive", func(t *testing.T) {
		fx := newAdminFixture(t)
		upper := &entity.Account{Username: "admin2", Email: "Admin2@example.com", DisplayName: "Admin2"}
		require.NoError(t, fx.accounts.Create(ctx, upper))
		fx.svc.AllowList = func() []string { return []string{"admin2@example.com"} }
		assert.NoError(t, fx.svc.Authorize(ctx, upper.ID))
	})
}

func TestApplyBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin caller is rejected outright", func(t *testing.T) {
		fx := newAdminFixture(t)
		_, err := fx.svc.ApplyBulk(ctx, fx.target.ID, []BulkItem{{Action: AdminActionBan, AccountID: fx.admin.ID}}, false)
		assert.ErrorIs(t, err, domainerr.ErrAdminPrivilegeRequired)
	})

	t.Run("failed item does not stop the batch", func(t *testing.T) {
		assert := assert.New(t)
		fx := newAdminFixture(t)
		results, err := fx.svc.ApplyBulk(ctx, fx.admin.ID, []BulkItem{
			{Action: AdminActionBan, AccountID: "missing"},
			{Action: AdminActionConfirmEmail, AccountID: fx.target.ID},
		}, false)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.False(results[0].OK)
		assert.True(results[1].OK)

		got, err := fx.accounts.GetByID(ctx, fx.target.ID)
		require.NoError(t, err)
		assert.True(got.EmailConfirmed())
	})

	t.Run("stop on error leaves the rest unattempted", func(t *testing.T) {
		assert := assert.New(t)
		fx := newAdminFixture(t)
		results, err := fx.svc.ApplyBulk(ctx, fx.admin.ID, []BulkItem{
			{Action: AdminActionBan, AccountID: "missing"},
			{Action: AdminActionConfirmEmail, AccountID: fx.target.ID},
		}, true)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.False(results[0].OK)

		got, err := fx.accounts.GetByID(ctx, fx.target.ID)
		require.NoError(t, err)
		assert.False(got.EmailConfirmed())
	})

	t.Run("unknown action fails its item only", func(t *testing.T) {
		fx := newAdminFixture(t)
		results, err := fx.svc.ApplyBulk(ctx, fx.admin.ID, []BulkItem{
			{Action: "promote", AccountID: fx.target.ID},
		}, false)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Contains(t, results[0].Error, "unknown admin action")
	})
}

func TestBanUnban(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	fx := newAdminFixture(t)

	results, err := fx.svc.ApplyBulk(ctx, fx.admin.ID, []BulkItem{
		{Action: AdminActionBan, AccountID: fx.target.ID, BanDuration: time.Hour},
	}, false)
	require.NoError(t, err)
	require.True(t, results[0].OK)

	got, err := fx.accounts.GetByID(ctx, fx.target.ID)
	require.NoError(t, err)
	assert.True(got.Banned())

	results, err = fx.svc.ApplyBulk(ctx, fx.admin.ID, []BulkItem{
		{Action: AdminActionUnban, AccountID: fx.target.ID},
	}, false)
	require.NoError(t, err)
	require.True(t, results[0].OK)

	got, err = fx.accounts.GetByID(ctx, fx.target.ID)
	require.NoError(t, err)
	assert.False(got.Banned())
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()

	seedTarget := func(t *testing.T, fx *adminFixture) {
		p := &entity.Profile{AccountID: fx.target.ID, Name: "Target", Slug: "target", IsDefault: true}
		require.NoError(t, fx.profiles.Create(ctx, p))
		require.NoError(t, fx.links.Create(ctx, &entity.SocialLink{ProfileID: p.ID, Platform: "x", URL: "https://x.com/target", OrderIndex: -1}))
		require.NoError(t, fx.friendships.Create(ctx, &entity.Friendship{RequesterID: fx.target.ID, AddresseeID: fx.admin.ID, Status: entity.FriendshipAccepted}))
		require.NoError(t, fx.identities.Create(ctx, &entity.ExternalIdentity{AccountID: fx.target.ID, Provider: "google", ExternalID: "g-1"}))
	}

	t.Run("removes everything and notifies", func(t *testing.T) {
		assert := assert.New(t)
		fx := newAdminFixture(t)
		seedTarget(t, fx)

		results, err := fx.svc.ApplyBulk(ctx, fx.admin.ID, []BulkItem{
			{Action: AdminActionDelete, AccountID: fx.target.ID},
		}, false)
		require.NoError(t, err)
		require.True(t, results[0].OK, "error: %s", results[0].Error)

		_, err = fx.accounts.GetByID(ctx, fx.target.ID)
		assert.ErrorIs(err, domainerr.ErrNotFound)

		profiles, err := fx.profiles.ListByAccount(ctx, fx.target.ID)
		require.NoError(t, err)
		assert.Empty(profiles)

		_, err = fx.friendships.GetByPair(ctx, fx.target.ID, fx.admin.ID)
		assert.ErrorIs(err, domainerr.ErrRelationshipNotFound)

		ext, err := fx.identities.ListByAccount(ctx, fx.target.ID)
		require.NoError(t, err)
		assert.Empty(ext)

		assert.Equal([]notify.Kind{notify.KindAccountDeleted}, fx.pub.kinds())
	})

	t.Run("external identity failure reports orphan after internal removal", func(t *testing.T) {
		assert := assert.New(t)
		fx := newAdminFixture(t)
		seedTarget(t, fx)
		fx.identities.failDelete = true

		results, err := fx.svc.ApplyBulk(ctx, fx.admin.ID, []BulkItem{
			{Action: AdminActionDelete, AccountID: fx.target.ID},
		}, false)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.False(results[0].OK)
		assert.Contains(results[0].Error, "orphaned external identity")

		// Internal records are gone regardless; the failure is not a rollback.
		_, err = fx.accounts.GetByID(ctx, fx.target.ID)
		assert.ErrorIs(err, domainerr.ErrNotFound)

		ext, err := fx.identities.ListByAccount(ctx, fx.target.ID)
		require.NoError(t, err)
		assert.NotEmpty(ext, "external record remains for operators to reconcile")
	})
}
