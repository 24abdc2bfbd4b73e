package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
	"github.com/oksasatya/go-social-user-service/pkg/mailer"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// UserIndexer keeps the search index in step with the users table.
type UserIndexer interface {
	Index(ctx context.Context, u entity.PublicUser) error
	Search(ctx context.Context, q string, size int) ([]entity.UserSummary, error)
}

// Notifier queues account emails.
type Notifier interface {
	Notify(ctx context.Context, job mailer.EmailJob) error
}

type nopIndexer struct{}

func (nopIndexer) Index(context.Context, entity.PublicUser) error { return nil }
func (nopIndexer) Search(context.Context, string, int) ([]entity.UserSummary, error) {
	return []entity.UserSummary{}, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, mailer.EmailJob) error { return nil }
