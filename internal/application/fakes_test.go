package application

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
	repo "github.com/oksasatya/go-social-user-service/internal/domain/repository"
	"github.com/oksasatya/go-social-user-service/pkg/helpers"
	"github.com/oksasatya/go-social-user-service/pkg/mailer"
)

// memUsers is an in-memory UserRepository honouring the unique constraints.
type memUsers struct {
	mu    sync.Mutex
	order []string
	byID  map[string]*entity.User
	seq   int
	calls int

	// raceEmail simulates a concurrent insert: Create fails with ErrEmailTaken.
	raceEmail bool
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*entity.User{}} }

func (m *memUsers) add(u entity.User) *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		m.seq++
		u.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := u
	m.byID[u.ID] = &cp
	m.order = append(m.order, u.ID)
	return &cp
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.calls++
	if m.raceEmail {
		return repo.ErrEmailTaken
	}
	for _, id := range m.order {
		if m.byID[id].Email == u.Email {
			return repo.ErrEmailTaken
		}
		if m.byID[id].Account == u.Account {
			return repo.ErrAccountTaken
		}
	}
	created := m.add(*u)
	*u = *created
	return nil
}

func (m *memUsers) find(match func(*entity.User) bool) (*entity.User, error) {
	m.calls++
	for _, id := range m.order {
		if u := m.byID[id]; match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Email == email })
}

func (m *memUsers) GetByAccount(_ context.Context, account string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Account == account })
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.calls++
	cur, ok := m.byID[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for _, id := range m.order {
		if id == u.ID {
			continue
		}
		if m.byID[id].Email == u.Email {
			return repo.ErrEmailTaken
		}
		if m.byID[id].Account == u.Account {
			return repo.ErrAccountTaken
		}
	}
	u.UpdatedAt = time.Now()
	cp := *u
	cp.CreatedAt = cur.CreatedAt
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) ListWithFollowerCount(context.Context) ([]entity.UserRankRow, error) {
	return nil, fmt.Errorf("use memGraph")
}

func (m *memUsers) GetProfile(_ context.Context, id string) (*entity.Profile, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &entity.Profile{ID: u.ID, Name: u.Name, Account: u.Account, Email: u.Email, Role: u.Role,
		Tweets: []entity.Tweet{}, Replies: []entity.Reply{}, Likes: []entity.Like{},
		Followers: []entity.UserSummary{}, Followings: []entity.UserSummary{}}, nil
}

// memGraph joins users and edges for the ranking query.
type memGraph struct {
	*memUsers
	follows *memFollows
}

func (g *memGraph) ListWithFollowerCount(context.Context) ([]entity.UserRankRow, error) {
	counts := map[string]int{}
	for e := range g.follows.edges {
		counts[e[1]]++
	}
	out := make([]entity.UserRankRow, 0, len(g.order))
	for _, id := range g.order {
		u := g.byID[id]
		out = append(out, entity.UserRankRow{ID: u.ID, Account: u.Account, Name: u.Name, Avatar: u.Avatar, FollowerCount: counts[id]})
	}
	return out, nil
}

type memFollows struct {
	edges map[[2]string]struct{}
}

func newMemFollows() *memFollows { return &memFollows{edges: map[[2]string]struct{}{}} }

func (f *memFollows) FollowingIDs(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	for e := range f.edges {
		if e[0] == userID {
			ids = append(ids, e[1])
		}
	}
	return ids, nil
}

func (f *memFollows) Create(_ context.Context, followerID, followingID string) error {
	k := [2]string{followerID, followingID}
	if _, ok := f.edges[k]; ok {
		return repo.ErrAlreadyFollowing
	}
	f.edges[k] = struct{}{}
	return nil
}

func (f *memFollows) Delete(_ context.Context, followerID, followingID string) error {
	k := [2]string{followerID, followingID}
	if _, ok := f.edges[k]; !ok {
		return repo.ErrNotFound
	}
	delete(f.edges, k)
	return nil
}

type fakeUploader struct {
	paths []string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return "", fmt.Errorf("upload without deadline")
	}
	_, _ = io.Copy(io.Discard, r)
	f.paths = append(f.paths, objectPath)
	return "https://img.example.com/" + objectPath, nil
}

type fakeIndexer struct {
	indexed []entity.PublicUser
	err     error
	hits    []entity.UserSummary
	size    int
}

func (f *fakeIndexer) Index(_ context.Context, u entity.PublicUser) error {
	f.indexed = append(f.indexed, u)
	return f.err
}

func (f *fakeIndexer) Search(_ context.Context, _ string, size int) ([]entity.UserSummary, error) {
	f.size = size
	return f.hits, nil
}

type fakeNotifier struct {
	jobs []mailer.EmailJob
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, job mailer.EmailJob) error {
	f.jobs = append(f.jobs, job)
	return f.err
}

type fixture struct {
	svc      *Service
	users    *memUsers
	follows  *memFollows
	images   *fakeUploader
	indexer  *fakeIndexer
	notifier *fakeNotifier
	jwt      *helpers.JWTManager
}

func newFixture() *fixture {
	users := newMemUsers()
	follows := newMemFollows()
	f := &fixture{
		users:    users,
		follows:  follows,
		images:   &fakeUploader{},
		indexer:  &fakeIndexer{},
		notifier: &fakeNotifier{},
		jwt:      helpers.NewJWTManager("test-secret", 30*24*time.Hour),
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	f.svc = NewService(&memGraph{memUsers: users, follows: follows}, follows, f.jwt, f.images, f.indexer, f.notifier, logger)
	return f
}

// seed stores a user whose password is the given plain text.
func (f *fixture) seed(account string, role entity.Role, password string) *entity.User {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return f.users.add(entity.User{
		Account:  account,
		Email:    account + "@example.com",
		Name:     account,
		Password: hash,
		Role:     role,
	})
}
