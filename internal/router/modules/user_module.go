package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-user-service/internal/container"
	handlers "github.com/oksasatya/go-social-user-service/internal/interface/http"
	"github.com/oksasatya/go-social-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-social-user-service/pkg/helpers"
)

// UserModule mounts the account routes under the given group (usually /api).
// Public: POST /login, /users/login, /users
// Protected: everything else under /users
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/users/login", loginLimiter, m.Handler.Login)
	rg.POST("/users", registerLimiter, m.Handler.Register)

	auth := rg.Group("/users")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/current", m.Handler.CurrentUser)
		auth.GET("/search", m.Handler.SearchUsers)
		auth.GET("", m.Handler.ListUsers)
		auth.GET("/:id", m.Handler.GetUser)
		auth.PUT("/:id/account", m.Handler.UpdateAccount)
		auth.PUT("/:id/profile", m.Handler.UpdateProfile)
	}
}
