package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/travel-point/api-go/controllers"
	"github.com/travel-point/api-go/metrics"
	"github.com/travel-point/api-go/middleware"
	"go.uber.org/zap"
)

// Dependencies are the handlers and settings the router is built from.
type Dependencies struct {
	Places    controllers.PlaceQueries
	DB        controllers.Pinger
	JWTSecret string
	Logger    *zap.Logger
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		metrics.Middleware(),
	)

	// Initialize controllers
	placeController := controllers.NewPlaceController(deps.Places)
	healthController := controllers.NewHealthController(deps.DB)

	r.GET("/healthz", healthController.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Places are public; a bearer token, when sent, scopes personal routes
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(deps.JWTSecret))
	{
		SetupPlaceRoutes(api, placeController)
	}
}
