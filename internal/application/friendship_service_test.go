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

type friendshipFixture struct {
	svc      *FriendshipService
	accounts *fakeAccountRepo
	pub      *recordingPublisher
	jane     *entity.Account
	john     *entity.Account
}

func newFriendshipFixture(t *testing.T) *friendshipFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	pub := &recordingPublisher{}
	svc := NewFriendshipService(newFakeFriendshipRepo(), accounts, quietLogger(), notify.NewEmitter(pub, quietLogger()), "http://localhost:8080")

	jane := &entity.Account{Username: "jane", Email: "jane@example.com", DisplayName: "Jane"}
	john := &entity.Account{Username: "john", Email: "john@example.com", DisplayName: "John"}
	require.NoError(t, accounts.Create(context.Background(), jane))
	require.NoError(t, accounts.Create(context.Background(), john))
	return &friendshipFixture{svc: svc, accounts: accounts, pub: pub, jane: jane, john: john}
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending request and notifies", func(t *testing.T) {
		assert := assert.New(t)
		fx := newFriendshipFixture(t)

		f, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)
		assert.Equal(entity.FriendshipPending, f.Status)
		assert.Equal(fx.jane.ID, f.RequesterID)
		assert.Equal(fx.john.ID, f.AddresseeID)
		assert.Equal([]notify.Kind{notify.KindFriendRequest}, fx.pub.kinds())
	})

	t.Run("self request is rejected", func(t *testing.T) {
		fx := newFriendshipFixture(t)
		_, err := fx.svc.SendRequest(ctx, fx.jane.ID, "jane")
		assert.ErrorIs(t, err, ErrSelfFriendship)
	})

	t.Run("duplicate in either direction is rejected", func(t *testing.T) {
		assert := assert.New(t)
		fx := newFriendshipFixture(t)
		_, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)

		_, err = fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		assert.ErrorIs(err, domainerr.ErrDuplicateFriendRequest)

		_, err = fx.svc.SendRequest(ctx, fx.john.ID, "jane")
		assert.ErrorIs(err, domainerr.ErrDuplicateFriendRequest)
	})

	t.Run("unknown target is not found", func(t *testing.T) {
		fx := newFriendshipFixture(t)
		_, err := fx.svc.SendRequest(ctx, fx.jane.ID, "nobody")
		assert.ErrorIs(t, err, domainerr.ErrNotFound)
	})
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	t.Run("addressee accepts", func(t *testing.T) {
		assert := assert.New(t)
		fx := newFriendshipFixture(t)
		f, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)

		accepted, err := fx.svc.Accept(ctx, fx.john.ID, f.ID)
		require.NoError(t, err)
		assert.Equal(entity.FriendshipAccepted, accepted.Status)
		assert.Equal([]notify.Kind{notify.KindFriendRequest, notify.KindFriendAccepted}, fx.pub.kinds())
	})

	t.Run("requester cannot accept their own request", func(t *testing.T) {
		fx := newFriendshipFixture(t)
		f, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)
		_, err = fx.svc.Accept(ctx, fx.jane.ID, f.ID)
		assert.ErrorIs(t, err, ErrNotRequestAddressee)
	})

	t.Run("reject removes the row so a fresh request works", func(t *testing.T) {
		assert := assert.New(t)
		fx := newFriendshipFixture(t)
		f, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)

		require.NoError(t, fx.svc.Reject(ctx, fx.john.ID, f.ID))

		status, err := fx.svc.StatusBetween(ctx, fx.jane.ID, fx.john.ID)
		require.NoError(t, err)
		assert.Equal(entity.FriendshipStatus(""), status)

		_, err = fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		assert.NoError(err, "rejection leaves no tombstone")
	})

	t.Run("accept is pending-only", func(t *testing.T) {
		fx := newFriendshipFixture(t)
		f, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)
		_, err = fx.svc.Accept(ctx, fx.john.ID, f.ID)
		require.NoError(t, err)
		_, err = fx.svc.Accept(ctx, fx.john.ID, f.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestUnfriendAndBlock(t *testing.T) {
	ctx := context.Background()

	accepted := func(t *testing.T) *friendshipFixture {
		fx := newFriendshipFixture(t)
		f, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)
		_, err = fx.svc.Accept(ctx, fx.john.ID, f.ID)
		require.NoError(t, err)
		return fx
	}

	t.Run("unfriend removes the relationship", func(t *testing.T) {
		assert := assert.New(t)
		fx := accepted(t)
		require.NoError(t, fx.svc.Unfriend(ctx, fx.jane.ID, fx.john.ID))

		status, err := fx.svc.StatusBetween(ctx, fx.jane.ID, fx.john.ID)
		require.NoError(t, err)
		assert.Equal(entity.FriendshipStatus(""), status)
	})

	t.Run("unfriend requires an accepted relationship", func(t *testing.T) {
		fx := newFriendshipFixture(t)
		_, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
		require.NoError(t, err)
		err = fx.svc.Unfriend(ctx, fx.jane.ID, fx.john.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("block is terminal", func(t *testing.T) {
		assert := assert.New(t)
		fx := accepted(t)
		require.NoError(t, fx.svc.Block(ctx, fx.jane.ID, fx.john.ID))

		status, err := fx.svc.StatusBetween(ctx, fx.jane.ID, fx.john.ID)
		require.NoError(t, err)
		assert.Equal(entity.FriendshipBlocked, status)

		// The blocked row occupies the pair; no fresh request can land.
		_, err = fx.svc.SendRequest(ctx, fx.john.ID, "jane")
		assert.ErrorIs(err, domainerr.ErrDuplicateFriendRequest)
	})
}

func TestListRelationships(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	fx := newFriendshipFixture(t)

	f, err := fx.svc.SendRequest(ctx, fx.jane.ID, "john")
	require.NoError(t, err)

	pending, err := fx.svc.List(ctx, fx.john.ID, entity.FriendshipPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal("jane", pending[0].Username)
	assert.True(pending[0].Incoming)

	_, err = fx.svc.Accept(ctx, fx.john.ID, f.ID)
	require.NoError(t, err)

	friends, err := fx.svc.List(ctx, fx.jane.ID, entity.FriendshipAccepted)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal("john", friends[0].Username)
	assert.False(friends[0].Incoming)
}
