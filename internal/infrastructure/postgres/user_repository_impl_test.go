package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
	"github.com/oksasatya/go-social-user-service/internal/domain/repository"
)

const (
	uid1 = "8f14e45f-ceea-467f-a0e6-5e4c1a1f0a01"
	uid2 = "8f14e45f-ceea-467f-a0e6-5e4c1a1f0a02"
)

var userCols = []string{"id", "account", "email", "name", "password", "role", "avatar", "cover", "introduction", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "alice@example.com", "Alice", "hash", "user", "", "", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uid1, now, now))

	u := &entity.User{Account: "alice", Email: "alice@example.com", Name: "Alice", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, uid1, u.ID)
	assert.Equal(t, entity.RoleUser, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateTranslatesUniqueViolation(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"users_email_key", repository.ErrEmailTaken},
		{"users_account_key", repository.ErrAccountTaken},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			mock := newMock(t)
			repo := NewUserRepository(mock)
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			err := repo.Create(context.Background(), &entity.User{Account: "a", Email: "a@x.io", Name: "A", Password: "h"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(uid1, "alice", "alice@example.com", "Alice", "hash", "admin", "", "", "", now, now))

	u, err := repo.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.Equal(t, "hash", u.Password)
}

func TestUserRepository_GetByAccountNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE account = $1")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByAccount(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_GetByIDMalformed(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	_, err := repo.GetByID(context.Background(), "42")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WithArgs("alice", "new@example.com", "Alice", "hash", "a.png", "", "hi", uid1).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &entity.User{ID: uid1, Account: "alice", Email: "new@example.com", Name: "Alice", Password: "hash", Avatar: "a.png", Introduction: "hi"}
	require.NoError(t, repo.Update(context.Background(), u))
	assert.Equal(t, now, u.UpdatedAt)
}

func TestUserRepository_UpdateConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Update(context.Background(), &entity.User{ID: uid1})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), &entity.User{ID: uid1})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ListWithFollowerCount(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(f.follower_id)")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "account", "name", "avatar", "follower_count"}).
			AddRow(uid1, "alice", "Alice", "", int64(0)).
			AddRow(uid2, "bob", "Bob", "b.png", int64(3)))

	rows, err := repo.ListWithFollowerCount(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].Account)
	assert.Equal(t, 3, rows[1].FollowerCount)
}

func TestUserRepository_GetProfile(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(uid1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "account", "email", "avatar", "cover", "introduction", "role"}).
			AddRow(uid1, "Alice", "alice", "alice@example.com", "", "", "", "user"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM tweets")).WithArgs(uid1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "description", "created_at", "updated_at"}).
			AddRow("t1", uid1, "hello", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM replies")).WithArgs(uid1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "tweet_id", "comment", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM likes")).WithArgs(uid1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "tweet_id", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = f.follower_id")).WithArgs(uid1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "account", "name", "avatar", "introduction"}).
			AddRow(uid2, "bob", "Bob", "", ""))
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = f.following_id")).WithArgs(uid1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "account", "name", "avatar", "introduction"}))

	p, err := repo.GetProfile(context.Background(), uid1)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Account)
	assert.Len(t, p.Tweets, 1)
	assert.Empty(t, p.Replies)
	require.Len(t, p.Followers, 1)
	assert.Equal(t, "bob", p.Followers[0].Account)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetProfileNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(uid1).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetProfile(context.Background(), uid1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
