package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
	"github.com/oksasatya/go-social-user-service/internal/domain/repository"
)

const userColumns = `id::text, account, email, name, password, role, avatar, cover, introduction, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (account, email, name, password, role, avatar, cover, introduction)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at, updated_at
	`, u.Account, u.Email, u.Name, u.Password, string(u.Role), u.Avatar, u.Cover, u.Introduction)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return translateUserErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByAccount(ctx context.Context, account string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE account = $1`, account)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Account, &u.Email, &u.Name, &u.Password, &role,
		&u.Avatar, &u.Cover, &u.Introduction, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, ok := entity.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q for user %s", role, u.ID)
	}
	u.Role = parsed
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if !validID(u.ID) {
		return repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET account = $1, email = $2, name = $3, password = $4, avatar = $5, cover = $6,
		    introduction = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`, u.Account, u.Email, u.Name, u.Password, u.Avatar, u.Cover, u.Introduction, u.ID)

	if err := row.Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return translateUserErr(err)
	}
	return nil
}

func (r *UserRepository) ListWithFollowerCount(ctx context.Context) ([]entity.UserRankRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id::text, u.account, u.name, u.avatar, COUNT(f.follower_id) AS follower_count
		FROM users u
		LEFT JOIN followships f ON f.following_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at, u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.UserRankRow, error) {
		var (
			rr    entity.UserRankRow
			count int64
		)
		err := row.Scan(&rr.ID, &rr.Account, &rr.Name, &rr.Avatar, &count)
		rr.FollowerCount = int(count)
		return rr, err
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) GetProfile(ctx context.Context, id string) (*entity.Profile, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	p := &entity.Profile{}
	var role string
	err := r.db.QueryRow(ctx, `
		SELECT id::text, name, account, email, avatar, cover, introduction, role
		FROM users WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Account, &p.Email, &p.Avatar, &p.Cover, &p.Introduction, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Role, _ = entity.ParseRole(role)

	if p.Tweets, err = queryList(ctx, r.db, `
		SELECT id::text, user_id::text, description, created_at, updated_at
		FROM tweets WHERE user_id = $1 ORDER BY created_at DESC
	`, id, func(row pgx.CollectableRow) (entity.Tweet, error) {
		var t entity.Tweet
		err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.CreatedAt, &t.UpdatedAt)
		return t, err
	}); err != nil {
		return nil, fmt.Errorf("profile tweets: %w", err)
	}

	if p.Replies, err = queryList(ctx, r.db, `
		SELECT id::text, user_id::text, tweet_id::text, comment, created_at, updated_at
		FROM replies WHERE user_id = $1 ORDER BY created_at DESC
	`, id, func(row pgx.CollectableRow) (entity.Reply, error) {
		var rp entity.Reply
		err := row.Scan(&rp.ID, &rp.UserID, &rp.TweetID, &rp.Comment, &rp.CreatedAt, &rp.UpdatedAt)
		return rp, err
	}); err != nil {
		return nil, fmt.Errorf("profile replies: %w", err)
	}

	if p.Likes, err = queryList(ctx, r.db, `
		SELECT id::text, user_id::text, tweet_id::text, created_at
		FROM likes WHERE user_id = $1 ORDER BY created_at DESC
	`, id, func(row pgx.CollectableRow) (entity.Like, error) {
		var l entity.Like
		err := row.Scan(&l.ID, &l.UserID, &l.TweetID, &l.CreatedAt)
		return l, err
	}); err != nil {
		return nil, fmt.Errorf("profile likes: %w", err)
	}

	if p.Followers, err = queryList(ctx, r.db, `
		SELECT u.id::text, u.account, u.name, u.avatar, u.introduction
		FROM followships f JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1 ORDER BY f.created_at DESC
	`, id, scanSummary); err != nil {
		return nil, fmt.Errorf("profile followers: %w", err)
	}

	if p.Followings, err = queryList(ctx, r.db, `
		SELECT u.id::text, u.account, u.name, u.avatar, u.introduction
		FROM followships f JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1 ORDER BY f.created_at DESC
	`, id, scanSummary); err != nil {
		return nil, fmt.Errorf("profile followings: %w", err)
	}

	return p, nil
}

func scanSummary(row pgx.CollectableRow) (entity.UserSummary, error) {
	var s entity.UserSummary
	err := row.Scan(&s.ID, &s.Account, &s.Name, &s.Avatar, &s.Introduction)
	return s, err
}

func queryList[T any](ctx context.Context, db DBTX, query, id string, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}

// translateUserErr maps unique violations on users to repository sentinels.
func translateUserErr(err error) error {
	if pgErr, ok := pgError(err); ok && pgErr.Code == codeUniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return repository.ErrEmailTaken
		case "users_account_key":
			return repository.ErrAccountTaken
		}
	}
	return fmt.Errorf("write user: %w", err)
}

var _ repository.UserRepository = (*UserRepository)(nil)
