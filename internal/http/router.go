package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/healthmate/internal/config"
	"github.com/geocoder89/healthmate/internal/http/handlers"
	"github.com/geocoder89/healthmate/internal/http/middlewares"
	"github.com/geocoder89/healthmate/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Services is everything the HTTP surface calls into.
type Services struct {
	Identity interface {
		middlewares.IdentityResolver
		handlers.TokenResolver
	}
	Users interface {
		handlers.Registrar
		handlers.ProfileService
	}
	Spots     handlers.SpotService
	Favorites handlers.FavoriteService
	Ping      func(ctx context.Context) error
	Prom      *observability.Prom
}

func NewRouter(log *slog.Logger, cfg config.Config, svc Services) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	if svc.Prom != nil {
		r.Use(svc.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(svc.Prom.Handler()))
	}

	// health
	h := handlers.NewHealthHandler(svc.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	// Wire up handlers
	authMW := middlewares.NewAuthMiddleware(svc.Identity)
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Identity)
	profileHandler := handlers.NewProfileHandler(svc.Users)
	spotsHandler := handlers.NewSpotsHandler(svc.Spots)
	favoritesHandler := handlers.NewFavoritesHandler(svc.Favorites)

	// credential endpoints are rate limited per client IP
	limiter := middlewares.NewRateLimiter(cfg.RateLimitAuth, cfg.RateLimitWindow)
	authLimit := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.POST("/register", authLimit, authHandler.Register)
	r.POST("/login", authLimit, authHandler.Login)
	r.GET("/me", authHandler.Me)

	// spot creation is limited per authenticated user
	writeLimit := middlewares.NewRateLimiter(cfg.RateLimitWrites, cfg.RateLimitWindow).
		RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	protected := r.Group("/")
	protected.Use(authMW.RequireAuth())

	protected.GET("/profile", profileHandler.Get)
	protected.PUT("/profile/update", profileHandler.Update)
	protected.PUT("/profile/change-password", profileHandler.ChangePassword)

	spots := protected.Group("/workout-spots")
	spots.GET("", spotsHandler.List)
	spots.POST("", writeLimit, spotsHandler.Create)
	spots.GET("/mine", spotsHandler.Mine)
	spots.POST("/by-ids", spotsHandler.ByIDs)
	spots.PUT("/:id", spotsHandler.Update)
	spots.DELETE("/:id", spotsHandler.Delete)

	favorites := protected.Group("/favorites")
	favorites.GET("", favoritesHandler.List)
	favorites.POST("/:id", favoritesHandler.Add)
	favorites.DELETE("/:id", favoritesHandler.Remove)

	return r
}
