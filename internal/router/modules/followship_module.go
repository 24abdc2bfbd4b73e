package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-user-service/internal/container"
	handlers "github.com/oksasatya/go-social-user-service/internal/interface/http"
	"github.com/oksasatya/go-social-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-social-user-service/pkg/helpers"
)

type FollowshipModule struct {
	Handler *handlers.FollowshipHandler
	JWT     *helpers.JWTManager
}

func NewFollowshipModule(h *handlers.FollowshipHandler, jwt *helpers.JWTManager) *FollowshipModule {
	return &FollowshipModule{Handler: h, JWT: jwt}
}

func (m *FollowshipModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/followships")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", m.Handler.Follow)
		auth.DELETE("/:followingId", m.Handler.Unfollow)
	}
}
