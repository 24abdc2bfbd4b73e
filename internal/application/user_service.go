package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
	repo "github.com/oksasatya/go-social-user-service/internal/domain/repository"
	"github.com/oksasatya/go-social-user-service/internal/metrics"
	"github.com/oksasatya/go-social-user-service/pkg/helpers"
	"github.com/oksasatya/go-social-user-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-social-user-service/pkg/mailer/templates"
)

const (
	maxNameLen         = 50
	maxIntroductionLen = 160

	// bcrypt only accepts this many bytes of input.
	maxPasswordBytes = 72

	defaultSearchSize = 10
	maxSearchSize     = 50

	notifyTimeout = 3 * time.Second
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Service struct {
	Users    repo.UserRepository
	Follows  repo.FollowshipRepository
	JWT      *helpers.JWTManager
	Images   ImageUploader
	Indexer  UserIndexer
	Notifier Notifier
	Logger   *logrus.Logger

	UploadTimeout  time.Duration
	MaxUploadBytes int64
}

// NewService wires the user service. images, indexer and notifier may be nil.
func NewService(users repo.UserRepository, follows repo.FollowshipRepository, jwt *helpers.JWTManager, images ImageUploader, indexer UserIndexer, notifier Notifier, logger *logrus.Logger) *Service {
	if indexer == nil {
		indexer = nopIndexer{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Users:          users,
		Follows:        follows,
		JWT:            jwt,
		Images:         images,
		Indexer:        indexer,
		Notifier:       notifier,
		Logger:         logger,
		UploadTimeout:  15 * time.Second,
		MaxUploadBytes: 5 << 20,
	}
}

type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      entity.PublicUser `json:"user"`
}

// Login authenticates a front-end user by email and password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, ValidationError(MsgFieldsRequired)
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.LoginAttemptsTotal.WithLabelValues("unknown_user").Inc()
			return nil, AuthError(MsgUserDoesNotExist)
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if !u.Role.CanSignInToFront() {
		metrics.LoginAttemptsTotal.WithLabelValues("forbidden_role").Inc()
		return nil, AuthError(MsgAccountNotExist)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("wrong_password").Inc()
		return nil, AuthError(MsgWrongPassword)
	}

	pub := u.Sanitized()
	token, exp, err := s.JWT.GenerateToken(pub)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, ExpiresAt: exp, User: pub}, nil
}

type RegisterInput struct {
	Account       string
	Name          string
	Email         string
	Password      string
	CheckPassword string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.PublicUser, error) {
	in.Account = strings.TrimSpace(in.Account)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Account == "" || in.Name == "" || in.Email == "" ||
		strings.TrimSpace(in.Password) == "" || strings.TrimSpace(in.CheckPassword) == "" {
		return nil, ValidationError(MsgFieldsRequired)
	}
	if in.Password != in.CheckPassword {
		return nil, ValidationError(MsgPasswordMismatch)
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, ValidationError(MsgPasswordTooLong)
	}
	if utf8.RuneCountInString(in.Name) > maxNameLen {
		return nil, ValidationError(MsgNameTooLong)
	}

	// email is reported before account; the unique constraints still decide races
	if taken, err := s.exists(ctx, s.Users.GetByEmail, in.Email); err != nil {
		return nil, err
	} else if taken != nil {
		return nil, ConflictError(MsgEmailRegistered)
	}
	if taken, err := s.exists(ctx, s.Users.GetByAccount, in.Account); err != nil {
		return nil, err
	} else if taken != nil {
		return nil, ConflictError(MsgAccountRegistered)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Account:  in.Account,
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     entity.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			return nil, ConflictError(MsgEmailRegistered)
		case errors.Is(err, repo.ErrAccountTaken):
			return nil, ConflictError(MsgAccountRegistered)
		}
		return nil, err
	}
	metrics.RegistrationsTotal.Inc()

	pub := u.Sanitized()
	s.index(ctx, pub)
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.WelcomeData(u.Name, u.Account, u.Email),
	})
	return &pub, nil
}

// exists returns the user found by lookup, nil when there is none.
func (s *Service) exists(ctx context.Context, lookup func(context.Context, string) (*entity.User, error), key string) (*entity.User, error) {
	u, err := lookup(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ProfileView is a user profile as seen by the requester.
// IsFollowed is nil when there is no requester to compare against.
type ProfileView struct {
	entity.Profile
	IsFollowed *bool `json:"isFollowed"`
}

func (s *Service) GetUser(ctx context.Context, id, requesterID string) (*ProfileView, error) {
	p, err := s.Users.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError(MsgUserNotFound)
		}
		return nil, err
	}
	view := &ProfileView{Profile: *p}
	if requesterID != "" {
		following, err := s.followingSet(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		_, ok := following[p.ID]
		view.IsFollowed = &ok
	}
	return view, nil
}

type RankedUser struct {
	ID            string `json:"id"`
	Account       string `json:"account"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	FollowerCount int    `json:"followerCount"`
	IsFollowed    bool   `json:"isFollowed"`
}

// ListUsers ranks every user by follower count, most followed first.
// top <= 0 returns the whole list.
func (s *Service) ListUsers(ctx context.Context, requesterID string, top int) ([]RankedUser, error) {
	rows, err := s.Users.ListWithFollowerCount(ctx)
	if err != nil {
		return nil, err
	}
	following, err := s.followingSet(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	out := make([]RankedUser, 0, len(rows))
	for _, r := range rows {
		_, followed := following[r.ID]
		out = append(out, RankedUser{
			ID:            r.ID,
			Account:       r.Account,
			Name:          r.Name,
			Avatar:        r.Avatar,
			FollowerCount: r.FollowerCount,
			IsFollowed:    followed,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FollowerCount > out[j].FollowerCount })
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out, nil
}

func (s *Service) followingSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	if userID == "" {
		return set, nil
	}
	ids, err := s.Follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// AccountPatch carries the account fields to change; nil leaves a field as is.
type AccountPatch struct {
	Account       *string
	Name          *string
	Email         *string
	Password      *string
	CheckPassword *string
}

// AccountView is the account update response: no password, images, introduction or role.
type AccountView struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Service) UpdateAccount(ctx context.Context, id, requesterID string, patch AccountPatch) (*AccountView, error) {
	u, err := s.ownedUser(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}

	account, okAccount := trimmed(patch.Account)
	name, okName := trimmed(patch.Name)
	email, okEmail := trimmed(patch.Email)
	if (patch.Account != nil && !okAccount) || (patch.Name != nil && !okName) || (patch.Email != nil && !okEmail) {
		return nil, ValidationError(MsgFieldEmpty)
	}
	if okName && utf8.RuneCountInString(name) > maxNameLen {
		return nil, ValidationError(MsgNameTooLong)
	}

	if okAccount && account != u.Account {
		other, err := s.exists(ctx, s.Users.GetByAccount, account)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != u.ID {
			return nil, ConflictError(MsgAccountTaken)
		}
	}
	if okEmail && email != u.Email {
		other, err := s.exists(ctx, s.Users.GetByEmail, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != u.ID {
			return nil, ConflictError(MsgEmailTaken)
		}
	}

	newPassword := patch.Password != nil && *patch.Password != ""
	if newPassword && (patch.CheckPassword == nil || *patch.CheckPassword != *patch.Password) {
		return nil, ValidationError(MsgPasswordMismatch)
	}
	if newPassword && len(*patch.Password) > maxPasswordBytes {
		return nil, ValidationError(MsgPasswordTooLong)
	}

	prevEmail := u.Email
	var changes []string
	if okAccount {
		u.Account = account
	}
	if okName {
		u.Name = name
	}
	if okEmail && email != u.Email {
		u.Email = email
		changes = append(changes, "email")
	}
	if newPassword {
		hash, err := helpers.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		changes = append(changes, "password")
	}

	if err := s.Users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrAccountTaken):
			return nil, ConflictError(MsgAccountTaken)
		case errors.Is(err, repo.ErrEmailTaken):
			return nil, ConflictError(MsgEmailTaken)
		case errors.Is(err, repo.ErrNotFound):
			return nil, NotFoundError(MsgUserNotFound)
		}
		return nil, err
	}

	s.index(ctx, u.Sanitized())
	if len(changes) > 0 {
		s.notify(ctx, mailer.EmailJob{
			To:       prevEmail,
			Template: mailtpl.AccountUpdated,
			Data:     mailtpl.AccountUpdatedData(u.Name, u.Account, u.Email, changes, u.UpdatedAt),
		})
	}
	return &AccountView{
		ID:        u.ID,
		Account:   u.Account,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

// trimmed reports the trimmed value of p and whether it is non-empty.
func trimmed(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}

// ImageFile is an uploaded image as received by the transport.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ProfilePatch changes the public profile. A nil image keeps the current one;
// a nil Introduction keeps it and an empty one clears it.
type ProfilePatch struct {
	Name         string
	Introduction *string
	Avatar       *ImageFile
	Cover        *ImageFile
}

// ProfileUpdateView is the profile update response: no password or role.
type ProfileUpdateView struct {
	ID           string    `json:"id"`
	Account      string    `json:"account"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	Cover        string    `json:"cover"`
	Introduction string    `json:"introduction"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s *Service) UpdateProfile(ctx context.Context, id, requesterID string, patch ProfilePatch) (*ProfileUpdateView, error) {
	name := strings.TrimSpace(patch.Name)
	if name == "" {
		return nil, ValidationError(MsgNameRequired)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, ValidationError(MsgNameTooLong)
	}
	if patch.Introduction != nil && utf8.RuneCountInString(*patch.Introduction) > maxIntroductionLen {
		return nil, ValidationError(MsgIntroductionTooLong)
	}

	u, err := s.ownedUser(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	for _, f := range []*ImageFile{patch.Avatar, patch.Cover} {
		if err := s.checkImage(f); err != nil {
			return nil, err
		}
	}

	if patch.Avatar != nil {
		url, err := s.uploadImage(ctx, "avatars", u.ID, patch.Avatar)
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		u.Avatar = url
	}
	if patch.Cover != nil {
		url, err := s.uploadImage(ctx, "covers", u.ID, patch.Cover)
		if err != nil {
			return nil, fmt.Errorf("upload cover: %w", err)
		}
		u.Cover = url
	}
	u.Name = name
	if patch.Introduction != nil {
		u.Introduction = *patch.Introduction
	}

	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError(MsgUserNotFound)
		}
		return nil, err
	}
	s.index(ctx, u.Sanitized())

	return &ProfileUpdateView{
		ID:           u.ID,
		Account:      u.Account,
		Name:         u.Name,
		Email:        u.Email,
		Avatar:       u.Avatar,
		Cover:        u.Cover,
		Introduction: u.Introduction,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

// ownedUser loads id and checks that requesterID may modify it.
func (s *Service) ownedUser(ctx context.Context, id, requesterID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError(MsgUserNotFound)
		}
		return nil, err
	}
	if requesterID == "" || requesterID != u.ID {
		return nil, AuthzError(MsgNoPermission)
	}
	return u, nil
}

func (s *Service) checkImage(f *ImageFile) error {
	if f == nil {
		return nil
	}
	if _, ok := allowedImageTypes[strings.ToLower(f.ContentType)]; !ok {
		return ValidationError(MsgImageType)
	}
	if s.MaxUploadBytes > 0 && f.Size > s.MaxUploadBytes {
		return ValidationError(MsgImageTooLarge)
	}
	return nil
}

func (s *Service) uploadImage(ctx context.Context, folder, userID string, f *ImageFile) (string, error) {
	kind := strings.TrimSuffix(folder, "s")
	if s.Images == nil {
		metrics.ImageUploadsTotal.WithLabelValues(kind, "error").Inc()
		return "", errors.New("image storage not configured")
	}
	contentType := strings.ToLower(f.ContentType)
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if ext == "" {
		ext = allowedImageTypes[contentType]
	}
	objectPath := path.Join(folder, userID, uuid.NewString()+ext)

	c, cancel := context.WithTimeout(ctx, s.UploadTimeout)
	defer cancel()
	url, err := s.Images.Upload(c, objectPath, contentType, f.Content)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues(kind, "error").Inc()
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "object": objectPath}).Error("image upload failed")
		return "", err
	}
	metrics.ImageUploadsTotal.WithLabelValues(kind, "success").Inc()
	return url, nil
}

// CurrentUser returns the requester's own record.
func (s *Service) CurrentUser(ctx context.Context, requesterID string) (*entity.PublicUser, error) {
	u, err := s.Users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError(MsgUserNotFound)
		}
		return nil, err
	}
	pub := u.Sanitized()
	return &pub, nil
}

// SearchUsers queries the search index. size defaults to 10 and is capped at 50.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]entity.UserSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ValidationError(MsgQueryRequired)
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	return s.Indexer.Search(ctx, q, size)
}

func (s *Service) index(ctx context.Context, u entity.PublicUser) {
	if err := s.Indexer.Index(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("index user failed")
	}
}

func (s *Service) notify(ctx context.Context, job mailer.EmailJob) {
	c, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.Notifier.Notify(c, job); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Warn("queue email failed")
	}
}
