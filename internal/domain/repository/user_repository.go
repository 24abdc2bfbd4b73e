package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrEmailTaken       = errors.New("email already taken")
	ErrAccountTaken     = errors.New("account already taken")
	ErrAlreadyFollowing = errors.New("already following")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByAccount(ctx context.Context, account string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// ListWithFollowerCount returns every user ordered by created_at, id.
	ListWithFollowerCount(ctx context.Context) ([]entity.UserRankRow, error)
	GetProfile(ctx context.Context, id string) (*entity.Profile, error)
}

// FollowshipRepository owns the follow graph.
type FollowshipRepository interface {
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
}
