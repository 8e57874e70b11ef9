package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkfolio/linkfolio/internal/domain/entity"
)

func TestCanViewDetails(t *testing.T) {
	assert := assert.New(t)

	t.Run("owner always sees a private profile", func(t *testing.T) {
		assert.True(CanViewDetails(View{ViewerID: "a", OwnerID: "a", ProfilePublic: false}))
	})

	t.Run("anyone sees a public profile", func(t *testing.T) {
		assert.True(CanViewDetails(View{ViewerID: "", OwnerID: "a", ProfilePublic: true}))
		assert.True(CanViewDetails(View{ViewerID: "b", OwnerID: "a", ProfilePublic: true}))
	})

	t.Run("accepted friend sees a private profile", func(t *testing.T) {
		assert.True(CanViewDetails(View{
			ViewerID: "b", OwnerID: "a",
			ProfilePublic: false,
			Friendship:    entity.FriendshipAccepted,
		}))
	})

	t.Run("pending friendship grants nothing", func(t *testing.T) {
		assert.False(CanViewDetails(View{
			ViewerID: "b", OwnerID: "a",
			ProfilePublic: false,
			Friendship:    entity.FriendshipPending,
		}))
	})

	t.Run("blocked relationship grants nothing", func(t *testing.T) {
		assert.False(CanViewDetails(View{
			ViewerID: "b", OwnerID: "a",
			ProfilePublic: false,
			Friendship:    entity.FriendshipBlocked,
		}))
	})

	t.Run("anonymous viewer denied on private profile", func(t *testing.T) {
		assert.False(CanViewDetails(View{ViewerID: "", OwnerID: "a", ProfilePublic: false}))
	})

	t.Run("preview beats the owner rule", func(t *testing.T) {
		v := View{
			ViewerID: "a", OwnerID: "a",
			ProfilePublic:      false,
			PreviewAsAnonymous: true,
		}
		assert.False(CanViewDetails(v), "owner previewing a private profile must see the locked page")
	})

	t.Run("preview of a public profile still allows", func(t *testing.T) {
		v := View{
			ViewerID: "a", OwnerID: "a",
			ProfilePublic:      true,
			PreviewAsAnonymous: true,
		}
		assert.True(CanViewDetails(v))
	})

	t.Run("preview strips friendship too", func(t *testing.T) {
		v := View{
			ViewerID: "b", OwnerID: "a",
			ProfilePublic:      false,
			Friendship:         entity.FriendshipAccepted,
			PreviewAsAnonymous: true,
		}
		assert.False(CanViewDetails(v))
	})
}

func TestCanViewIcons(t *testing.T) {
	// Icons currently follow the details decision exactly.
	views := []View{
		{ViewerID: "a", OwnerID: "a"},
		{ViewerID: "", OwnerID: "a", ProfilePublic: true},
		{ViewerID: "b", OwnerID: "a", Friendship: entity.FriendshipAccepted},
		{ViewerID: "b", OwnerID: "a"},
		{ViewerID: "a", OwnerID: "a", PreviewAsAnonymous: true},
	}
	for _, v := range views {
		assert.Equal(t, CanViewDetails(v), CanViewIcons(v))
	}
}
