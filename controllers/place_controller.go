package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/travel-point/api-go/logger"
	"github.com/travel-point/api-go/services"
	"github.com/travel-point/api-go/types"
	"go.uber.org/zap"
)

// PlaceQueries is the orchestrator surface the controller depends on.
type PlaceQueries interface {
	Nearby(ctx context.Context, q types.NearbyPlacesQuery) (services.PlacePage, error)
	ByType(ctx context.Context, q types.PlacesByTypeQuery) (services.PlacePage, error)
	Top(ctx context.Context, q types.TopPlacesQuery) ([]types.Place, error)
	BestForUser(ctx context.Context, userID uint, q types.BestForYouQuery) (services.PlacePage, error)
	Categories() []types.CategoryResponse
}

type PlaceController struct {
	places PlaceQueries
}

func NewPlaceController(places PlaceQueries) *PlaceController {
	return &PlaceController{places: places}
}

// GetNearbyPlaces godoc
// @Summary Get places near a location
// @Tags places
// @Produce json
// @Param latitude query number true "Center latitude"
// @Param longitude query number true "Center longitude"
// @Param radius_km query number false "Search radius in km (0.1-50, default 5)"
// @Param category query string false "Base or conceptual category"
// @Param q query string false "Name search"
// @Param sort_by query string false "relevance, name_asc or name_desc"
// @Param page query integer false "Page number"
// @Param size query integer false "Items per page"
// @Success 200 {object} types.PaginatedPlacesResponse
// @Router /places/nearby [get]
func (pc *PlaceController) GetNearbyPlaces(c *gin.Context) {
	var query types.NearbyPlacesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	page, err := pc.places.Nearby(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error fetching nearby places")
		return
	}
	c.JSON(http.StatusOK, page.Response())
}

// GetPlacesByType godoc
// @Summary Get places by OSM tag
// @Tags places
// @Produce json
// @Param osm_key query string true "OSM tag key, e.g. amenity"
// @Param osm_value query string true "OSM tag value, e.g. cafe"
// @Param city_id query integer false "City filter"
// @Param q query string false "Name search"
// @Param sort_by query string false "relevance, name_asc or name_desc"
// @Param page query integer false "Page number"
// @Param size query integer false "Items per page"
// @Success 200 {object} types.PaginatedPlacesResponse
// @Router /places/by-type [get]
func (pc *PlaceController) GetPlacesByType(c *gin.Context) {
	var query types.PlacesByTypeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	page, err := pc.places.ByType(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error fetching places by type")
		return
	}
	c.JSON(http.StatusOK, page.Response())
}

// GetTopPlaces godoc
// @Summary Get recently added places
// @Tags places
// @Produce json
// @Param criteria query string false "Only 'recent' is supported"
// @Param time_window query string false "day, week, month, year or all"
// @Param limit query integer false "1-50, default 10"
// @Param category query string false "Base or conceptual category, default landmark"
// @Param latitude query number false "Center latitude"
// @Param longitude query number false "Center longitude"
// @Param radius_km query number false "Radius in km (0.5-100)"
// @Success 200 {array} types.Place
// @Router /places/top [get]
func (pc *PlaceController) GetTopPlaces(c *gin.Context) {
	var query types.TopPlacesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	items, err := pc.places.Top(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Error fetching top places")
		return
	}
	if items == nil {
		items = []types.Place{}
	}
	c.JSON(http.StatusOK, items)
}

// GetBestForYou godoc
// @Summary Get personalized recommendations
// @Tags places
// @Produce json
// @Param user_id path integer true "User ID"
// @Param latitude query number false "Current latitude"
// @Param longitude query number false "Current longitude"
// @Param radius_km query number false "Radius in km (0.5-100, default 10)"
// @Param category query string false "Base or conceptual category"
// @Param interests query []string false "Interests overriding the stored profile"
// @Param sort_by query string false "relevance, name_asc or name_desc"
// @Param page query integer false "Page number"
// @Param size query integer false "Items per page"
// @Success 200 {object} types.PaginatedPlacesResponse
// @Router /places/best-for-you/{user_id} [get]
func (pc *PlaceController) GetBestForYou(c *gin.Context) {
	var params types.UserPathParams
	if err := c.ShouldBindUri(&params); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	var query types.BestForYouQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	query.Interests = collectInterests(query.Interests, c.QueryArray("interests[]"))

	page, err := pc.places.BestForUser(c.Request.Context(), params.UserID, query)
	if err != nil {
		respondError(c, err, "Error fetching recommendations")
		return
	}
	c.JSON(http.StatusOK, page.Response())
}

// GetCategories godoc
// @Summary List supported conceptual categories
// @Tags categories
// @Produce json
// @Success 200 {array} types.CategoryResponse
// @Router /places/categories [get]
func (pc *PlaceController) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, pc.places.Categories())
}

// collectInterests merges repeated and bracketed parameters and splits
// comma-separated values.
func collectInterests(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, v := range list {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func respondError(c *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrInvalidParams) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	logger.FromContext(c.Request.Context()).Error(message, zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: message})
}
