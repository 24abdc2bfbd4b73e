package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-user-service/internal/application"
	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
	"github.com/oksasatya/go-social-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-social-user-service/pkg/helpers"
	"github.com/oksasatya/go-social-user-service/pkg/response"
	"github.com/oksasatya/go-social-user-service/pkg/validation"
)

// UserService is what the user routes need from the application layer.
type UserService interface {
	Login(ctx context.Context, email, password string) (*application.LoginResult, error)
	Register(ctx context.Context, in application.RegisterInput) (*entity.PublicUser, error)
	CurrentUser(ctx context.Context, requesterID string) (*entity.PublicUser, error)
	SearchUsers(ctx context.Context, q string, size int) ([]entity.UserSummary, error)
	GetUser(ctx context.Context, id, requesterID string) (*application.ProfileView, error)
	ListUsers(ctx context.Context, requesterID string, top int) ([]application.RankedUser, error)
	UpdateAccount(ctx context.Context, id, requesterID string, patch application.AccountPatch) (*application.AccountView, error)
	UpdateProfile(ctx context.Context, id, requesterID string, patch application.ProfilePatch) (*application.ProfileUpdateView, error)
}

const (
	// room for the text fields and part headers next to the two images
	multipartSlack  = 1 << 20
	multipartMemory = 8 << 20
)

type UserHandler struct {
	Svc     UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager

	// MaxBodyBytes caps the profile upload body; zero disables the cap.
	MaxBodyBytes int64
}

func NewUserHandler(svc UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{
		Svc:          svc,
		Logger:       logger,
		Cookies:      helpers.NewCookie(cookieDomain, cookieSecure),
		MaxBodyBytes: ProfileBodyLimit(5 << 20),
	}
}

// ProfileBodyLimit is the body cap for a profile update carrying two images of at most perImage bytes.
func ProfileBodyLimit(perImage int64) int64 {
	return 2*perImage + multipartSlack
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Account       string `json:"account" binding:"omitempty,max=50"`
	Name          string `json:"name" binding:"omitempty,uname"`
	Email         string `json:"email" binding:"omitempty,max=255,email"`
	Password      string `json:"password" binding:"omitempty,pwd"`
	CheckPassword string `json:"checkPassword"`
}

type updateAccountRequest struct {
	Account       *string `json:"account" binding:"omitempty,max=50"`
	Name          *string `json:"name"`
	Email         *string `json:"email" binding:"omitempty,max=255,email"`
	Password      *string `json:"password" binding:"omitempty,max=64"`
	CheckPassword *string `json:"checkPassword"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  entity.PublicUser `json:"user"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, loginResponse{Token: res.Token, User: res.User})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{"loggedOut": true})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Account:       req.Account,
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		CheckPassword: req.CheckPassword,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits)
}

// ListUsers answers GET /users?top=N. A missing or malformed top lists everyone.
func (h *UserHandler) ListUsers(c *gin.Context) {
	top, _ := strconv.Atoi(c.Query("top"))
	users, err := h.Svc.ListUsers(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), top)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	p, err := h.Svc.GetUser(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateAccount(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey), application.AccountPatch{
		Account:       req.Account,
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		CheckPassword: req.CheckPassword,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// UpdateProfile takes multipart fields name and introduction plus optional avatar and cover files.
// The body is read at most MaxBodyBytes deep; anything longer is refused before a file is opened.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	if h.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(c, h.Logger, application.ValidationError(application.MsgImageTooLarge))
			return
		}
		response.Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}

	patch := application.ProfilePatch{Name: c.PostForm("name")}
	if intro, ok := c.GetPostForm("introduction"); ok {
		patch.Introduction = &intro
	}

	for field, dst := range map[string]**application.ImageFile{"avatar": &patch.Avatar, "cover": &patch.Cover} {
		fh, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{field: "unreadable file"})
			return
		}
		img, closer, err := openImage(fh)
		if err != nil {
			writeError(c, h.Logger, err)
			return
		}
		defer closer.Close()
		*dst = img
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey), patch)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// openImage opens an uploaded part, sniffing the content type when the client sent none.
func openImage(fh *multipart.FileHeader) (*application.ImageFile, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	img := &application.ImageFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	}
	if img.ContentType == "" || img.ContentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, err := io.ReadFull(f, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			_ = f.Close()
			return nil, nil, err
		}
		img.ContentType = http.DetectContentType(head[:n])
		img.Content = io.MultiReader(bytes.NewReader(head[:n]), f)
	}
	return img, f, nil
}
