package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-social-user-service/internal/domain/repository"
)

type FollowshipRepository struct {
	db DBTX
}

func NewFollowshipRepository(db DBTX) *FollowshipRepository {
	return &FollowshipRepository{db: db}
}

func (r *FollowshipRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	if !validID(userID) {
		return []string{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT following_id::text FROM followships WHERE follower_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("following ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("following ids: %w", err)
	}
	return ids, nil
}

func (r *FollowshipRepository) Create(ctx context.Context, followerID, followingID string) error {
	if !validID(followerID) || !validID(followingID) {
		return repository.ErrNotFound
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO followships (follower_id, following_id) VALUES ($1, $2)
	`, followerID, followingID)
	if err == nil {
		return nil
	}
	if pgErr, ok := pgError(err); ok {
		switch pgErr.Code {
		case codeUniqueViolation:
			return repository.ErrAlreadyFollowing
		case codeForeignKeyViolation:
			return repository.ErrNotFound
		}
	}
	return fmt.Errorf("create followship: %w", err)
}

func (r *FollowshipRepository) Delete(ctx context.Context, followerID, followingID string) error {
	if !validID(followerID) || !validID(followingID) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `
		DELETE FROM followships WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("delete followship: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.FollowshipRepository = (*FollowshipRepository)(nil)
