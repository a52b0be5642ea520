package server

import (
	"github.com/gin-gonic/gin"

	"findoc-backend/internal/shared/auth"
	"findoc-backend/internal/shared/config"
	"findoc-backend/internal/shared/metrics"
	"findoc-backend/internal/shared/server/middleware"
)

// RouteRegistrar attaches a handler's routes to a router group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// PublicRegistrar attaches unauthenticated routes to a router group.
type PublicRegistrar interface {
	RegisterPublicRoutes(rg *gin.RouterGroup)
}

// RouterDeps collects everything the router needs.
type RouterDeps struct {
	Config        config.Config
	Tokens        *auth.Tokens
	UserLookup    middleware.UserLookup
	HealthHandler gin.HandlerFunc
	Public        []PublicRegistrar
	Authenticated []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	public := r.Group("/api/v1")
	if deps.HealthHandler != nil {
		public.GET("/health", deps.HealthHandler)
	}
	for _, reg := range deps.Public {
		reg.RegisterPublicRoutes(public)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(deps.Tokens, deps.UserLookup))
	for _, reg := range deps.Authenticated {
		reg.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
