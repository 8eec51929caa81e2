package router

import (
	"github.com/authgate/authgate/internal/application"
	"github.com/authgate/authgate/internal/container"
	pginfra "github.com/authgate/authgate/internal/infrastructure/postgres"
	handlers "github.com/authgate/authgate/internal/interface/http"
	"github.com/authgate/authgate/internal/router/modules"
)

type ModuleDeps struct {
	Users *application.UserService
	RBAC  *application.RBACService
	Auth  *application.AuthService
}

func buildDeps() ModuleDeps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	rbacRepo := pginfra.NewRBACRepository(pool)
	tokenRepo := pginfra.NewRefreshTokenRepository(pool)

	// Avoid a non-nil interface wrapping a nil publisher when RabbitMQ is down.
	var pub application.EventPublisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}

	users := application.NewUserService(
		userRepo,
		pub,
		container.GetLogger(),
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetES(),
		cfg.ESUsersIndex,
	)
	rbac := application.NewRBACService(rbacRepo)
	auth := application.NewAuthService(users, tokenRepo, container.GetJWT(), pub, container.GetLogger())

	return ModuleDeps{Users: users, RBAC: rbac, Auth: auth}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	authHandler := handlers.NewAuthHandler(deps.Auth, logger, cfg)
	userHandler := handlers.NewUserHandler(deps.Users, logger, cfg)
	rbacHandler := handlers.NewRBACHandler(deps.RBAC, logger, cfg)

	r.Add(modules.NewAuthModule(authHandler, jwt))
	r.Add(modules.NewUserModule(userHandler, jwt, deps.RBAC))
	r.Add(modules.NewRBACModule(rbacHandler, jwt, deps.RBAC))
	r.Add(modules.NewDebugModule())
}
