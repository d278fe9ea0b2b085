package types

// NearbyPlacesQuery binds GET /places/nearby.
type NearbyPlacesQuery struct {
	Latitude  *float64 `form:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `form:"longitude" binding:"omitempty,min=-180,max=180"`
	RadiusKm  *float64 `form:"radius_km"`
	Category  string   `form:"category"`
	Q         string   `form:"q" binding:"max=200"`
	SortBy    string   `form:"sort_by" binding:"omitempty,oneof=relevance name_asc name_desc"`
	Page      int      `form:"page,default=1" binding:"min=1"`
	Size      int      `form:"size"`
}

// PlacesByTypeQuery binds GET /places/by-type.
type PlacesByTypeQuery struct {
	OsmKey   string `form:"osm_key" binding:"required,max=64"`
	OsmValue string `form:"osm_value" binding:"required,max=128"`
	CityID   *uint  `form:"city_id" binding:"omitempty,min=1"`
	Q        string `form:"q" binding:"max=200"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=relevance name_asc name_desc"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Size     int    `form:"size"`
}

// TopPlacesQuery binds GET /places/top.
type TopPlacesQuery struct {
	Criteria   string   `form:"criteria,default=recent"`
	TimeWindow string   `form:"time_window,default=all" binding:"oneof=day week month year all"`
	Limit      int      `form:"limit,default=10" binding:"min=1,max=50"`
	Category   string   `form:"category"`
	Latitude   *float64 `form:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude  *float64 `form:"longitude" binding:"omitempty,min=-180,max=180"`
	RadiusKm   *float64 `form:"radius_km"`
}

// BestForYouQuery binds GET /places/best-for-you/:user_id.
type BestForYouQuery struct {
	Latitude  *float64 `form:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `form:"longitude" binding:"omitempty,min=-180,max=180"`
	RadiusKm  *float64 `form:"radius_km"`
	Category  string   `form:"category"`
	Interests []string `form:"interests"`
	SortBy    string   `form:"sort_by" binding:"omitempty,oneof=relevance name_asc name_desc"`
	Page      int      `form:"page,default=1" binding:"min=1"`
	Size      int      `form:"size"`
}

// UserPathParams binds the :user_id path segment.
type UserPathParams struct {
	UserID uint `uri:"user_id" binding:"required,min=1"`
}
