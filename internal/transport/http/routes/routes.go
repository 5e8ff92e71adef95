package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/infra/config"
	"github.com/platformkit/account-service/internal/transport/http/handlers"
	"github.com/platformkit/account-service/internal/transport/http/middleware"
	"github.com/platformkit/account-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Registration  *usecase.RegistrationService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Notifier    port.Notifier
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	if httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err != nil {
		if deps.Logger != nil {
			deps.Logger.Warn("http metrics disabled", zap.Error(err))
		}
	} else {
		r.Use(httpMetrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		registrationHandler := handlers.NewRegistrationHandler(deps.Services.Registration, deps.Notifier)

		signupHandlers := append(buildRateLimitMiddlewares(deps, "signup_ip", deps.Config.RateLimit.SignupMaxAttempts), registrationHandler.Signup)
		authGroup.POST("/signup", signupHandlers...)
		authGroup.GET("/verify/:token", registrationHandler.Verify)

		resendHandlers := append(buildRateLimitMiddlewares(deps, "resend_verification_ip", deps.Config.RateLimit.ResendMaxAttempts), registrationHandler.ResendVerification)
		authGroup.POST("/resend-verification", resendHandlers...)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, deps.Notifier)

		resetMiddlewares := buildRateLimitMiddlewares(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts)
		resetGroup := authGroup.Group("/password-reset")
		if len(resetMiddlewares) > 0 {
			resetGroup.Use(resetMiddlewares...)
		}
		resetGroup.POST("/request", passwordHandler.RequestReset)
		resetGroup.POST("/confirm", passwordHandler.ConfirmReset)
	}

	return r
}

func buildRateLimitMiddlewares(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
