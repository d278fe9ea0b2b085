package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/travel-point/api-go/controllers"
	"github.com/travel-point/api-go/middleware"
)

func SetupPlaceRoutes(api *gin.RouterGroup, placeController *controllers.PlaceController) {
	places := api.Group("/places")
	{
		places.GET("/nearby", placeController.GetNearbyPlaces)
		places.GET("/by-type", placeController.GetPlacesByType)
		places.GET("/top", placeController.GetTopPlaces)
		places.GET("/categories", placeController.GetCategories)
		places.GET("/best-for-you/:user_id", middleware.RequireSameUser("user_id"), placeController.GetBestForYou)
	}
}
