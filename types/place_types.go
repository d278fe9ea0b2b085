package types

import (
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/utils"
)

// PlaceDetails is the category-specific payload of a Place. The set of
// implementations is closed.
type PlaceDetails interface {
	Category() models.Category
	isPlaceDetails()
}

type LandmarkDetails struct {
	EntryFee *string
}

func (LandmarkDetails) Category() models.Category { return models.CategoryLandmark }
func (LandmarkDetails) isPlaceDetails()           {}

type NaturalWonderDetails struct {
	EntryFee *string
}

func (NaturalWonderDetails) Category() models.Category { return models.CategoryNaturalWonder }
func (NaturalWonderDetails) isPlaceDetails()           {}

type RestaurantFoodDetails struct {
	Cuisine *string
}

func (RestaurantFoodDetails) Category() models.Category { return models.CategoryRestaurantFood }
func (RestaurantFoodDetails) isPlaceDetails()           {}

// DetailsFor builds the payload matching a row's category.
func DetailsFor(row models.PlaceRow) PlaceDetails {
	switch row.Category {
	case models.CategoryNaturalWonder:
		return NaturalWonderDetails{EntryFee: row.EntryFee}
	case models.CategoryRestaurantFood:
		return RestaurantFoodDetails{Cuisine: row.Cuisine}
	default:
		return LandmarkDetails{EntryFee: row.EntryFee}
	}
}

// Place is one processed result row.
type Place struct {
	ID           uint
	Name         string
	Latitude     *float64
	Longitude    *float64
	Tags         utils.Tags
	Website      *string
	Description  *string
	OpeningHours *string
	OsmType      *string
	OsmID        *int64
	CreatedAt    *time.Time
	Details      PlaceDetails

	Address    *string
	ImageURL   *string
	DistanceKm *float64

	// Set only by recommendation queries.
	RelevanceScore *float64
	Reason         []string
}

// Category is derived from the details variant.
func (p Place) Category() models.Category {
	if p.Details == nil {
		return ""
	}
	return p.Details.Category()
}

// placeJSON is the uniform wire shape; fields a category lacks are null.
type placeJSON struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	Address        *string    `json:"address"`
	Website        *string    `json:"website"`
	Description    *string    `json:"description"`
	OpeningHours   *string    `json:"opening_hours"`
	EntryFee       *string    `json:"entry_fee"`
	Cuisine        *string    `json:"cuisine"`
	OsmType        *string    `json:"osm_type"`
	OsmID          *int64     `json:"osm_id"`
	ImageURL       *string    `json:"image_url"`
	DistanceKm     *float64   `json:"distance_km"`
	RelevanceScore *float64   `json:"relevance_score"`
	Reason         []string   `json:"reason"`
	Tags           utils.Tags `json:"tags"`
	CreatedAt      *time.Time `json:"created_at"`
}

func (p Place) MarshalJSON() ([]byte, error) {
	out := placeJSON{
		ID:             p.ID,
		Name:           p.Name,
		Category:       string(p.Category()),
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Address:        p.Address,
		Website:        p.Website,
		Description:    p.Description,
		OpeningHours:   p.OpeningHours,
		OsmType:        p.OsmType,
		OsmID:          p.OsmID,
		ImageURL:       p.ImageURL,
		DistanceKm:     p.DistanceKm,
		RelevanceScore: p.RelevanceScore,
		Reason:         p.Reason,
		Tags:           p.Tags,
		CreatedAt:      p.CreatedAt,
	}
	switch d := p.Details.(type) {
	case LandmarkDetails:
		out.EntryFee = d.EntryFee
	case NaturalWonderDetails:
		out.EntryFee = d.EntryFee
	case RestaurantFoodDetails:
		out.Cuisine = d.Cuisine
	}
	return json.Marshal(out)
}

// PaginatedPlacesResponse is the envelope for paged place lists.
type PaginatedPlacesResponse struct {
	Items      []Place `json:"items"`
	TotalItems int64   `json:"total_items"`
	TotalPages int     `json:"total_pages"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
}

// NewPaginatedPlacesResponse computes total_pages from the effective page
// size; Size reports how many items were actually returned.
func NewPaginatedPlacesResponse(items []Place, total int64, page, pageSize int) PaginatedPlacesResponse {
	if items == nil {
		items = []Place{}
	}
	return PaginatedPlacesResponse{
		Items:      items,
		TotalItems: total,
		TotalPages: TotalPages(total, pageSize),
		Page:       page,
		Size:       len(items),
	}
}

// TotalPages is ceil(total/size), zero for an empty result.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(size)))
}

// CategoryResponse describes one supported conceptual category.
type CategoryResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	OsmKey      string `json:"osm_key"`
	OsmValue    string `json:"osm_value"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
