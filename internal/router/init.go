package router

import (
	"github.com/oksasatya/go-social-user-service/internal/application"
	"github.com/oksasatya/go-social-user-service/internal/container"
	esinfra "github.com/oksasatya/go-social-user-service/internal/infrastructure/elasticsearch"
	pginfra "github.com/oksasatya/go-social-user-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-social-user-service/internal/interface/http"
	"github.com/oksasatya/go-social-user-service/internal/router/modules"
)

type UserModuleDeps struct {
	Service    *application.Service
	Users      *handlers.UserHandler
	Followship *handlers.FollowshipHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	var indexer application.UserIndexer
	if es := container.GetES(); es != nil {
		indexer = esinfra.NewUserIndexer(es, cfg.ESUsersIndex)
	}
	var notifier application.Notifier
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		notifier = pub
	}

	service := application.NewService(
		pginfra.NewUserRepository(pool),
		pginfra.NewFollowshipRepository(pool),
		container.GetJWT(),
		container.GetUploader(),
		indexer,
		notifier,
		logger,
	)
	if cfg.UploadTimeout > 0 {
		service.UploadTimeout = cfg.UploadTimeout
	}
	if cfg.MaxUploadBytes > 0 {
		service.MaxUploadBytes = cfg.MaxUploadBytes
	}

	users := handlers.NewUserHandler(service, logger, cfg.CookieDomain, cfg.CookieSecure)
	users.MaxBodyBytes = handlers.ProfileBodyLimit(service.MaxUploadBytes)

	return UserModuleDeps{
		Service:    service,
		Users:      users,
		Followship: handlers.NewFollowshipHandler(service, logger),
	}
}

// InitModules wires every feature module into the registry. Call once at startup.
func InitModules(r *Registry) {
	deps := buildUserDeps()
	jwt := container.GetJWT()

	r.Add(modules.NewHealthModule(
		handlers.NewHealthHandler(container.GetPGPool(), container.GetRedis(), container.GetLogger()),
		container.GetConfig().MetricsEnabled,
	))
	r.Add(modules.NewUserModule(deps.Users, jwt))
	r.Add(modules.NewFollowshipModule(deps.Followship, jwt))
}
