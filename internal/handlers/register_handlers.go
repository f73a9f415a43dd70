package handlers

import (
	"github.com/openjms/journal_mgmt_app/cmd/docs"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/openjms/journal_mgmt_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts every HTTP route on the engine: the public root and
// auth endpoints, the authenticated /api/v1 surface and the mixed-access
// journal content tree.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	r.GET("/", getHome)
	r.GET("/health", getHealth)

	// Password login, registration and token refresh live outside /api/v1 so
	// they are never behind the auth middleware.
	registerAuthRoutes(r, cfg, services.User, services.TokenService)

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes builds the /api/v1 groups and delegates to the per-area
// route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Google sign-in happens before the caller has a token.
	public := r.Group("/api/v1/auth")
	registerGoogleOAuthRoutes(public, cfg, services)

	// Routes that always require an authenticated user.
	v1 := r.Group("/api/v1", middleware.APITokenAuth(services.APIToken), middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(v1, services.User)
	RegisterAPITokenRoutes(v1, services.APIToken)
	registerNotificationRoutes(v1, services.Notification)
	registerStatsCompileRoute(v1, services)

	// The journal tree resolves the bearer token when present but admits
	// anonymous readers; published content is public and everything else is
	// authorized per operation in the services.
	content := r.Group("/api/v1", middleware.APITokenAuth(services.APIToken), middleware.OptionalAuthMiddleware(cfg.JWTSecret))

	registerJournalRoutes(content, cfg, services)
}

// setupSwaggerRoutes serves the swagger UI outside production.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
