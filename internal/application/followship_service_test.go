package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
)

func TestFollow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seed("alice", entity.RoleUser, "pw12")
	bob := f.seed("bob", entity.RoleUser, "pw12")

	require.NoError(t, f.svc.Follow(ctx, alice.ID, bob.ID))

	err := f.svc.Follow(ctx, alice.ID, bob.ID)
	requireKind(t, err, KindConflict, MsgAlreadyFollowing)

	err = f.svc.Follow(ctx, alice.ID, alice.ID)
	requireKind(t, err, KindValidation, MsgSelfFollow)

	err = f.svc.Follow(ctx, alice.ID, "missing")
	requireKind(t, err, KindNotFound, MsgUserNotFound)
}

func TestFollow_AdminIsNotFollowable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seed("alice", entity.RoleUser, "pw12")
	root := f.seed("root", entity.RoleAdmin, "pw12")

	err := f.svc.Follow(ctx, alice.ID, root.ID)
	requireKind(t, err, KindNotFound, MsgUserNotFound)

	ids, _ := f.follows.FollowingIDs(ctx, alice.ID)
	assert.Empty(t, ids)
}

func TestUnfollow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.seed("alice", entity.RoleUser, "pw12")
	bob := f.seed("bob", entity.RoleUser, "pw12")

	err := f.svc.Unfollow(ctx, alice.ID, bob.ID)
	requireKind(t, err, KindNotFound, MsgNotFollowing)

	require.NoError(t, f.svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, f.svc.Unfollow(ctx, alice.ID, bob.ID))

	ids, _ := f.follows.FollowingIDs(ctx, alice.ID)
	assert.Empty(t, ids)
}
