package application

import (
	"context"
	"errors"

	repo "github.com/oksasatya/go-social-user-service/internal/domain/repository"
)

// Follow makes requesterID follow targetID.
func (s *Service) Follow(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return ValidationError(MsgSelfFollow)
	}
	target, err := s.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError(MsgUserNotFound)
		}
		return err
	}
	// admins live in the back office and are not followable
	if target.Role.IsAdmin() {
		return NotFoundError(MsgUserNotFound)
	}
	if err := s.Follows.Create(ctx, requesterID, targetID); err != nil {
		switch {
		case errors.Is(err, repo.ErrAlreadyFollowing):
			return ConflictError(MsgAlreadyFollowing)
		case errors.Is(err, repo.ErrNotFound):
			return NotFoundError(MsgUserNotFound)
		}
		return err
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, requesterID, targetID string) error {
	if err := s.Follows.Delete(ctx, requesterID, targetID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError(MsgNotFollowing)
		}
		return err
	}
	return nil
}
