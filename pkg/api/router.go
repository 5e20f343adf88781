package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/rgbprofile/pkg/api/handlers"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine *gin.Engine
	daemon handlers.Daemon
}

// NewRouter creates a new admin API router
func NewRouter(daemon handlers.Daemon) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine: engine,
		daemon: daemon,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.daemon)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		sessionsHandler := handlers.NewSessionsHandler(r.daemon)
		v1.GET("/sessions", sessionsHandler.ListSessions)

		profilesHandler := handlers.NewProfilesHandler(r.daemon)
		v1.GET("/profiles", profilesHandler.ListProfiles)

		devicesHandler := handlers.NewDevicesHandler(r.daemon)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.GET("/:index", devicesHandler.GetDevice)
		}
	}
}

// Handler exposes the engine for http.Server and httptest.
func (r *Router) Handler() http.Handler {
	return r.engine
}
